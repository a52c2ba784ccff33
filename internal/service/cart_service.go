package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MN15LONER/grocer/internal/cache"
	"github.com/MN15LONER/grocer/internal/domain"
	"github.com/MN15LONER/grocer/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const persistTimeout = 5 * time.Second

// CartService is the single source of truth for shopping carts. Carts held
// in memory are authoritative for the process lifetime; every mutation
// schedules a mirror write to the repository and invalidates the cache.
// A failed write never rolls back the in-memory mutation.
type CartService struct {
	repo   repository.CartRepository
	cache  cache.CartCache
	logger *zap.Logger
	sfg    singleflight.Group // Prevents load stampede on cold reads

	mu    sync.Mutex
	carts map[string]*domain.Cart
	seq   map[string]uint64

	// writeMu serializes mirror writes so the latest mutation also wins
	// in the store, matching the in-memory state.
	writeMu  sync.Mutex
	mirrored map[string]uint64
}

func NewCartService(repo repository.CartRepository, cache cache.CartCache, logger *zap.Logger) *CartService {
	return &CartService{
		repo:     repo,
		cache:    cache,
		logger:   logger,
		carts:    make(map[string]*domain.Cart),
		seq:      make(map[string]uint64),
		mirrored: make(map[string]uint64),
	}
}

// GetCart returns a snapshot of the user's cart, loading it through the
// cache and repository on first touch. A missing cart is an empty cart,
// never an error.
func (s *CartService) GetCart(ctx context.Context, userID string) *domain.Cart {
	return s.ensure(ctx, userID)
}

// AddItem adds exactly one unit of the product to the cart.
func (s *CartService) AddItem(ctx context.Context, userID string, item domain.LineItem) *domain.Cart {
	return s.mutate(ctx, userID, func(c *domain.Cart) {
		c.AddItem(item)
	})
}

// UpdateQuantity sets the quantity of an existing line. Zero or negative
// removes the line; an unknown item is silently ignored.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID, storeID string, quantity int) *domain.Cart {
	return s.mutate(ctx, userID, func(c *domain.Cart) {
		c.UpdateQuantity(productID, storeID, quantity)
	})
}

// RemoveItem deletes the matching line; an unknown item is silently ignored.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID, storeID string) *domain.Cart {
	return s.mutate(ctx, userID, func(c *domain.Cart) {
		c.RemoveItem(productID, storeID)
	})
}

// ClearCart empties the cart and deletes the persisted record.
func (s *CartService) ClearCart(ctx context.Context, userID string) *domain.Cart {
	s.ensure(ctx, userID)

	s.mu.Lock()
	cart := s.carts[userID]
	cart.Clear()
	snapshot := cart.Clone()
	s.seq[userID]++
	seq := s.seq[userID]
	s.mu.Unlock()

	s.scheduleMirror(userID, seq, func(ctx context.Context) error {
		return s.repo.Delete(ctx, userID)
	})

	return snapshot
}

func (s *CartService) mutate(ctx context.Context, userID string, fn func(*domain.Cart)) *domain.Cart {
	s.ensure(ctx, userID)

	s.mu.Lock()
	cart := s.carts[userID]
	fn(cart)
	snapshot := cart.Clone()
	s.seq[userID]++
	seq := s.seq[userID]
	s.mu.Unlock()

	s.scheduleMirror(userID, seq, func(ctx context.Context) error {
		return s.repo.Save(ctx, snapshot)
	})
	return snapshot
}

// scheduleMirror schedules a mirror write of the full cart. Failures are
// logged and swallowed: memory stays authoritative. Writes carry a per-user
// sequence so a slow older write can never clobber a newer one.
func (s *CartService) scheduleMirror(userID string, seq uint64, write func(ctx context.Context) error) {
	go func() {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		if seq <= s.mirrored[userID] {
			return // a newer mutation already reached the store
		}

		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := write(ctx); err != nil {
			s.logger.Warn("cart mirror write failed", zap.String("user_id", userID), zap.Error(err))
		}
		s.mirrored[userID] = seq
		s.invalidateCache(userID)
	}()
}

// ensure loads the user's cart into memory if absent and returns a snapshot.
func (s *CartService) ensure(ctx context.Context, userID string) *domain.Cart {
	s.mu.Lock()
	if cart, ok := s.carts[userID]; ok {
		snapshot := cart.Clone()
		s.mu.Unlock()
		return snapshot
	}
	s.mu.Unlock()

	v, _, _ := s.sfg.Do(userID, func() (interface{}, error) {
		return s.load(ctx, userID), nil
	})
	loaded := v.(*domain.Cart)

	s.mu.Lock()
	cart, ok := s.carts[userID]
	if !ok {
		// First writer wins; a cart mutated while we loaded stays authoritative.
		cart = loaded
		s.carts[userID] = cart
	}
	snapshot := cart.Clone()
	s.mu.Unlock()
	return snapshot
}

// load reads through the cache to the repository. Read failures degrade to
// an empty cart rather than propagate.
func (s *CartService) load(ctx context.Context, userID string) *domain.Cart {
	cart, err := s.cache.Get(ctx, userID)
	if err == nil {
		return cart
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("cache get failed", zap.String("user_id", userID), zap.Error(err))
	}

	cart, err = s.repo.Load(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrCartNotFound) {
			s.logger.Warn("cart load failed, starting empty", zap.String("user_id", userID), zap.Error(err))
		}
		return domain.NewCart(userID)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := s.cache.Set(ctx, userID, cart); err != nil {
			s.logger.Warn("cache set failed", zap.String("user_id", userID), zap.Error(err))
		}
	}()

	return cart
}

func (s *CartService) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("user_id", userID), zap.Error(err))
	}
}
