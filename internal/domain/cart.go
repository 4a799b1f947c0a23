package domain

import (
	"context"
)

// --- Cart Entities ---

// CartLine is one addressable unit in the cart.
type CartLine struct {
	ProductID      ProductID `json:"productId"`
	Name           string    `json:"name"`
	UnitPrice      float64   `json:"unitPrice"`
	SelectedSize   string    `json:"selectedSize"`
	SelectedColor  string    `json:"selectedColor"`
	Quantity       int       `json:"quantity"`
	ProductImage   string    `json:"productImage,omitempty"`
	MannequinImage string    `json:"mannequinImage,omitempty"`
	ColorVariants  RawJSON   `json:"colorVariants,omitempty"`
}

// LineKey identifies a cart line. Two lines of the same product with a
// different size or color are distinct.
type LineKey struct {
	ProductID     ProductID `json:"productId"`
	SelectedSize  string    `json:"selectedSize"`
	SelectedColor string    `json:"selectedColor"`
}

func (l CartLine) Key() LineKey {
	return LineKey{
		ProductID:     l.ProductID,
		SelectedSize:  l.SelectedSize,
		SelectedColor: l.SelectedColor,
	}
}

// Subtotal is quantity × unit price.
func (l CartLine) Subtotal() float64 {
	return float64(l.Quantity) * l.UnitPrice
}

// CartItemRequest is the body of POST/PATCH /cart/items.
type CartItemRequest struct {
	ProductID     ProductID `json:"productId"`
	Quantity      int       `json:"quantity"`
	SelectedSize  string    `json:"selectedSize"`
	SelectedColor string    `json:"selectedColor"`
}

// --- Interfaces ---

// CartRemote is the server-backed cart as seen by the client.
// Every call returns the canonical list after the operation.
type CartRemote interface {
	List(ctx context.Context) ([]CartLine, error)
	Add(ctx context.Context, line CartLine) ([]CartLine, error)
	Remove(ctx context.Context, key LineKey) ([]CartLine, error)
	UpdatePartial(ctx context.Context, key LineKey, quantity int) ([]CartLine, error)
	Clear(ctx context.Context) ([]CartLine, error)
}

// CartRepository stores carts on the sandbox API side.
type CartRepository interface {
	GetLines(ctx context.Context, userID string) ([]CartLine, error)
	SaveLines(ctx context.Context, userID string, lines []CartLine) error
	Clear(ctx context.Context, userID string) error
}
