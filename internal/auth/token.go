package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token lifetime is deliberately longer than the session inactivity window:
// the session manager, not the token, decides when a user is logged out.
const tokenTTL = 72 * time.Hour

var ErrInvalidToken = errors.New("auth: invalid token")

// Claims carry the user identity and a unique session id (jti) that keys
// the session record.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

type TokenManager struct {
	signKey []byte
}

func NewTokenManager(signKey []byte) *TokenManager {
	return &TokenManager{signKey: signKey}
}

// Issue signs an HS256 token for the user and returns it together with the
// session id embedded as the jti claim.
func (t *TokenManager) Issue(userID, role string) (token, sessionID string, err error) {
	sessionID = uuid.NewString()
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
		Role: role,
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.signKey)
	if err != nil {
		return "", "", fmt.Errorf("sign token: %w", err)
	}
	return token, sessionID, nil
}

// Parse validates the token signature and expiry and returns its claims.
func (t *TokenManager) Parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.signKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
