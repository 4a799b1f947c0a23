package domain

import (
	"context"
	"time"
)

type WishlistEntry struct {
	ProductID ProductID `json:"productId"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Image     string    `json:"image,omitempty"`
	AddedAt   time.Time `json:"addedAt"`
}

// WishlistRequest is the body of POST /wishlist.
type WishlistRequest struct {
	ProductID ProductID `json:"productId"`
}

// WishlistStatus answers GET /wishlist/{productId}.
type WishlistStatus struct {
	ProductID  ProductID `json:"productId"`
	InWishlist bool      `json:"inWishlist"`
}

// WishlistRemote is the server-backed wishlist as seen by the client.
// Mutations are followed by a list so callers always get the canonical set.
type WishlistRemote interface {
	List(ctx context.Context) ([]WishlistEntry, error)
	Add(ctx context.Context, entry WishlistEntry) ([]WishlistEntry, error)
	Remove(ctx context.Context, productID ProductID) ([]WishlistEntry, error)
}

type WishlistRepository interface {
	GetEntries(ctx context.Context, userID string) ([]WishlistEntry, error)
	AddEntry(ctx context.Context, userID string, entry WishlistEntry) error
	RemoveEntry(ctx context.Context, userID string, productID ProductID) error
	CheckEntry(ctx context.Context, userID string, productID ProductID) (bool, error)
}
