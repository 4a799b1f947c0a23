package remote

import (
	"context"
	"fmt"
	"net/http"

	"rokomferi-storefront/internal/domain"
)

// CartClient implements domain.CartRemote over the storefront API.
type CartClient struct {
	c *Client
}

var _ domain.CartRemote = (*CartClient)(nil)

// List retrieves the canonical cart.
func (cc *CartClient) List(ctx context.Context) ([]domain.CartLine, error) {
	return cc.send(ctx, http.MethodGet, pathCart, nil)
}

// Add puts quantity units of a line into the cart. The server merges
// with an existing line of the same key.
func (cc *CartClient) Add(ctx context.Context, line domain.CartLine) ([]domain.CartLine, error) {
	body := &domain.CartItemRequest{
		ProductID:     line.ProductID,
		Quantity:      line.Quantity,
		SelectedSize:  line.SelectedSize,
		SelectedColor: line.SelectedColor,
	}
	return cc.send(ctx, http.MethodPost, pathCartItems, body)
}

// Remove deletes the line identified by key.
func (cc *CartClient) Remove(ctx context.Context, key domain.LineKey) ([]domain.CartLine, error) {
	return cc.send(ctx, http.MethodDelete, pathCartItems, &key)
}

// UpdatePartial sets the quantity of an existing line.
func (cc *CartClient) UpdatePartial(ctx context.Context, key domain.LineKey, quantity int) ([]domain.CartLine, error) {
	if quantity < 1 {
		return nil, domain.NewValidationError("quantity", "must be at least 1")
	}
	body := &domain.CartItemRequest{
		ProductID:     key.ProductID,
		Quantity:      quantity,
		SelectedSize:  key.SelectedSize,
		SelectedColor: key.SelectedColor,
	}
	return cc.send(ctx, http.MethodPatch, pathCartItems, body)
}

// Clear empties the cart.
func (cc *CartClient) Clear(ctx context.Context) ([]domain.CartLine, error) {
	return cc.send(ctx, http.MethodDelete, pathCart, nil)
}

func (cc *CartClient) send(ctx context.Context, method, path string, body interface{}) ([]domain.CartLine, error) {
	var resp domain.ListResponse[domain.CartLine]
	if err := cc.c.call(ctx, method, path, body, &resp); err != nil {
		return nil, fmt.Errorf("cart %s: %w", method, err)
	}
	if resp.Data == nil {
		resp.Data = []domain.CartLine{}
	}
	return resp.Data, nil
}
