package http

import "testing"

func TestFormatCents(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{100, "1.00"},
		{2999, "29.99"},
		{3000, "30.00"},
		{-150, "-1.50"},
	}

	for _, tc := range cases {
		if got := formatCents(tc.cents); got != tc.want {
			t.Errorf("formatCents(%d) = %s, want %s", tc.cents, got, tc.want)
		}
	}
}
