package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/MN15LONER/grocer/internal/cache"
	"github.com/MN15LONER/grocer/internal/domain"
	"github.com/MN15LONER/grocer/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRepository struct {
	m       sync.RWMutex
	carts   map[string]*domain.Cart
	saveErr error
	loadErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{carts: make(map[string]*domain.Cart)}
}

func (m *mockRepository) Load(_ context.Context, userID string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	cart, ok := m.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return cart.Clone(), nil
}

func (m *mockRepository) Save(_ context.Context, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.carts[cart.UserID] = cart.Clone()
	return nil
}

func (m *mockRepository) Delete(_ context.Context, userID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	delete(m.carts, userID)
	return nil
}

func (m *mockRepository) get(userID string) *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.carts[userID]
}

type mockCache struct {
	m     sync.RWMutex
	carts map[string]*domain.Cart
	err   error
}

func newMockCache() *mockCache {
	return &mockCache{carts: make(map[string]*domain.Cart)}
}

func (m *mockCache) Get(_ context.Context, userID string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	cart, ok := m.carts[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return cart.Clone(), nil
}

func (m *mockCache) Set(_ context.Context, userID string, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.carts[userID] = cart.Clone()
	return m.err
}

func (m *mockCache) Delete(_ context.Context, userID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.carts, userID)
	return m.err
}

func (m *mockCache) get(userID string) *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.carts[userID]
}

func bread() domain.LineItem {
	return domain.LineItem{
		ProductID:  "P1",
		StoreID:    "S1",
		Name:       "Bread",
		StoreName:  "Shop A",
		PriceCents: 1000,
	}
}

func TestGetCart_MissingCartIsEmpty(t *testing.T) {
	sut := NewCartService(newMockRepository(), newMockCache(), zap.NewNop())

	cart := sut.GetCart(context.Background(), "123")

	require.NotNil(t, cart)
	assert.Equal(t, "123", cart.UserID)
	assert.Empty(t, cart.Items)
}

func TestGetCart_LoadsFromRepoAndSetsCache(t *testing.T) {
	mockRepo := newMockRepository()
	mockRepo.carts["123"] = &domain.Cart{
		UserID: "123",
		Items:  []domain.LineItem{{ProductID: "P1", StoreID: "S1", Quantity: 5, PriceCents: 1000}},
	}
	mockC := newMockCache()

	sut := NewCartService(mockRepo, mockC, zap.NewNop())
	cart := sut.GetCart(context.Background(), "123")

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)

	require.Eventually(t, func() bool {
		return mockC.get("123") != nil
	}, 100*time.Millisecond, 10*time.Millisecond, "cart was not set in cache")
}

func TestGetCart_CacheHit(t *testing.T) {
	mockRepo := newMockRepository() // repo should NOT be called
	mockC := newMockCache()
	mockC.carts["123"] = &domain.Cart{
		UserID: "123",
		Items:  []domain.LineItem{{ProductID: "P1", StoreID: "S1", Quantity: 3}},
	}

	sut := NewCartService(mockRepo, mockC, zap.NewNop())
	cart := sut.GetCart(context.Background(), "123")

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
}

func TestGetCart_RepoErrorDegradesToEmptyCart(t *testing.T) {
	mockRepo := newMockRepository()
	mockRepo.loadErr = fmt.Errorf("database error")

	sut := NewCartService(mockRepo, newMockCache(), zap.NewNop())
	cart := sut.GetCart(context.Background(), "123")

	require.NotNil(t, cart)
	assert.Empty(t, cart.Items)
}

func TestAddItem_PersistsAndInvalidatesCache(t *testing.T) {
	mockRepo := newMockRepository()
	mockC := newMockCache()
	mockC.carts["123"] = &domain.Cart{UserID: "123"}

	sut := NewCartService(mockRepo, mockC, zap.NewNop())
	cart := sut.AddItem(context.Background(), "123", bread())

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)

	require.Eventually(t, func() bool {
		saved := mockRepo.get("123")
		return saved != nil && len(saved.Items) == 1
	}, 100*time.Millisecond, 10*time.Millisecond, "cart was not persisted")

	require.Eventually(t, func() bool {
		return mockC.get("123") == nil
	}, 100*time.Millisecond, 10*time.Millisecond, "cache was not invalidated")
}

func TestAddItem_RepeatedAddsAccumulate(t *testing.T) {
	sut := NewCartService(newMockRepository(), newMockCache(), zap.NewNop())

	sut.AddItem(context.Background(), "123", bread())
	sut.AddItem(context.Background(), "123", bread())
	cart := sut.AddItem(context.Background(), "123", bread())

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, int64(3000), cart.TotalCents())
}

func TestAddItem_SaveErrorDoesNotRollBack(t *testing.T) {
	mockRepo := newMockRepository()
	mockRepo.saveErr = fmt.Errorf("database error")

	sut := NewCartService(mockRepo, newMockCache(), zap.NewNop())
	sut.AddItem(context.Background(), "123", bread())

	// The in-memory cart stays authoritative even though the mirror
	// write failed.
	cart := sut.GetCart(context.Background(), "123")
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestUpdateQuantity_ZeroRemovesItem(t *testing.T) {
	sut := NewCartService(newMockRepository(), newMockCache(), zap.NewNop())
	sut.AddItem(context.Background(), "123", bread())

	cart := sut.UpdateQuantity(context.Background(), "123", "P1", "S1", 0)

	assert.Empty(t, cart.Items)
}

func TestUpdateQuantity_UnknownItemIsNoOp(t *testing.T) {
	sut := NewCartService(newMockRepository(), newMockCache(), zap.NewNop())
	sut.AddItem(context.Background(), "123", bread())

	cart := sut.UpdateQuantity(context.Background(), "123", "missing", "S1", 5)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestClearCart_DeletesPersistedRecord(t *testing.T) {
	mockRepo := newMockRepository()
	mockC := newMockCache()

	sut := NewCartService(mockRepo, mockC, zap.NewNop())
	sut.AddItem(context.Background(), "123", bread())

	require.Eventually(t, func() bool {
		return mockRepo.get("123") != nil
	}, 100*time.Millisecond, 10*time.Millisecond, "cart was not persisted")

	cart := sut.ClearCart(context.Background(), "123")
	assert.Empty(t, cart.Items)

	require.Eventually(t, func() bool {
		return mockRepo.get("123") == nil
	}, 100*time.Millisecond, 10*time.Millisecond, "persisted cart was not deleted")
}

func TestPersistenceRoundTrip(t *testing.T) {
	mockRepo := newMockRepository()

	first := NewCartService(mockRepo, newMockCache(), zap.NewNop())
	first.AddItem(context.Background(), "123", bread())
	first.AddItem(context.Background(), "123", bread())
	milk := domain.LineItem{ProductID: "P2", StoreID: "S1", Name: "Milk", StoreName: "Shop A", PriceCents: 500}
	want := first.AddItem(context.Background(), "123", milk)

	require.Eventually(t, func() bool {
		saved := mockRepo.get("123")
		return saved != nil && len(saved.Items) == 2
	}, 100*time.Millisecond, 10*time.Millisecond, "cart was not persisted")

	// A fresh process loads an identical collection.
	second := NewCartService(mockRepo, newMockCache(), zap.NewNop())
	got := second.GetCart(context.Background(), "123")

	assert.Equal(t, want.Items, got.Items)
	assert.Equal(t, want.TotalCents(), got.TotalCents())
}
