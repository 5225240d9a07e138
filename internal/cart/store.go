// Package cart manages per-session shopping carts. Carts live in Redis so a
// session survives a service restart; every mutation persists a full snapshot.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cvety-kz/cvety-chat-service/internal/logging"
	"github.com/cvety-kz/cvety-chat-service/internal/models"
)

const keyPrefix = "cvety-cart:"

// Store is the session cart store backed by Redis.
type Store struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewStore creates a cart store. ttl bounds how long an idle session keeps
// its cart.
func NewStore(rdb *redis.Client, ttl time.Duration, logger *logging.Logger) *Store {
	return &Store{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

func cartKey(sessionID string) string {
	return keyPrefix + sessionID
}

// Get loads the cart for a session. A missing or unreadable snapshot yields
// an empty cart rather than an error; a corrupt snapshot must never take the
// whole conversation down.
func (s *Store) Get(ctx context.Context, sessionID string) (*models.Cart, error) {
	raw, err := s.rdb.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &models.Cart{Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return nil, err
	}

	var cart models.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		s.logger.Warn("Discarding unreadable cart snapshot", logging.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return &models.Cart{Items: []models.CartItem{}}, nil
	}

	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	cart.RecalculateTotal()
	return &cart, nil
}

// AddItem adds quantity units of product to the session cart, merging with
// an existing line for the same product ID. A non-positive quantity adds one
// unit.
func (s *Store) AddItem(ctx context.Context, sessionID string, product models.Product, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		quantity = 1
	}

	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].Product.ID == product.ID {
			cart.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, models.CartItem{Product: product, Quantity: quantity})
	}

	if err := s.save(ctx, sessionID, cart); err != nil {
		return nil, err
	}

	s.logger.Info("Product added to cart", logging.Fields{
		"session_id": sessionID,
		"product_id": product.ID,
		"items":      cart.ItemCount(),
	})

	return cart, nil
}

// UpdateQuantity sets the quantity of a cart line. Zero or negative removes
// the line. Updating a product that is not in the cart returns ErrNotFound.
func (s *Store) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (*models.Cart, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range cart.Items {
		if cart.Items[i].Product.ID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, models.ErrNotFound
	}

	if quantity <= 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	} else {
		cart.Items[idx].Quantity = quantity
	}

	if err := s.save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem drops a cart line. Removing an absent product returns
// ErrNotFound.
func (s *Store) RemoveItem(ctx context.Context, sessionID, productID string) (*models.Cart, error) {
	return s.UpdateQuantity(ctx, sessionID, productID, 0)
}

// Clear empties the session cart.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return err
	}

	s.logger.Info("Cart cleared", logging.Fields{"session_id": sessionID})
	return nil
}

// ItemCount returns the total number of units across all lines.
func (s *Store) ItemCount(ctx context.Context, sessionID string) (int, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return cart.ItemCount(), nil
}

func (s *Store) save(ctx context.Context, sessionID string, cart *models.Cart) error {
	cart.RecalculateTotal()

	raw, err := json.Marshal(cart)
	if err != nil {
		return err
	}

	return s.rdb.Set(ctx, cartKey(sessionID), raw, s.ttl).Err()
}
