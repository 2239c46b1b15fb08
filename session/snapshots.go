package session

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Cart/wishlist snapshots and the buy-now staging slot are opaque JSON
// blobs owned by the cart and checkout collaborators. The store only
// guarantees that what comes back out is valid JSON; a corrupted blob
// reads as absent.

// SetCart persists the cart snapshot.
func (s *Store) SetCart(ctx context.Context, cart json.RawMessage) {
	s.setSnapshot(ctx, s.keys.Cart, cart)
}

// Cart returns the persisted cart snapshot, or nil if absent or
// corrupted.
func (s *Store) Cart(ctx context.Context) json.RawMessage {
	return s.snapshot(ctx, s.keys.Cart)
}

// SetWishlist persists the wishlist snapshot.
func (s *Store) SetWishlist(ctx context.Context, wishlist json.RawMessage) {
	s.setSnapshot(ctx, s.keys.Wishlist, wishlist)
}

// Wishlist returns the persisted wishlist snapshot, or nil if absent or
// corrupted.
func (s *Store) Wishlist(ctx context.Context) json.RawMessage {
	return s.snapshot(ctx, s.keys.Wishlist)
}

// StageBuyNow writes the product payload the checkout page reads after
// a buy-now hard navigation.
func (s *Store) StageBuyNow(ctx context.Context, product json.RawMessage) {
	s.setSnapshot(ctx, s.keys.BuyNow, product)
}

// BuyNowProduct returns the staged buy-now payload, or nil.
func (s *Store) BuyNowProduct(ctx context.Context) json.RawMessage {
	return s.snapshot(ctx, s.keys.BuyNow)
}

// ClearBuyNow drops the staged buy-now payload.
func (s *Store) ClearBuyNow(ctx context.Context) {
	s.remove(ctx, s.keys.BuyNow)
}

func (s *Store) setSnapshot(ctx context.Context, key string, blob json.RawMessage) {
	if len(blob) == 0 || !json.Valid(blob) {
		s.logger.Warn("rejected invalid snapshot", slog.String("key", key))
		return
	}
	s.write(ctx, key, string(blob))
}

func (s *Store) snapshot(ctx context.Context, key string) json.RawMessage {
	value, ok := s.read(ctx, key)
	if !ok {
		return nil
	}
	if !json.Valid([]byte(value)) {
		s.logger.Warn("persisted snapshot corrupted", slog.String("key", key))
		return nil
	}
	return json.RawMessage(value)
}
