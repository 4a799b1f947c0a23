package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"rokomferi-storefront/internal/domain"
)

// WishlistClient implements domain.WishlistRemote over the storefront API.
type WishlistClient struct {
	c *Client
}

var _ domain.WishlistRemote = (*WishlistClient)(nil)

// List retrieves the canonical wishlist.
func (wc *WishlistClient) List(ctx context.Context) ([]domain.WishlistEntry, error) {
	var resp domain.ListResponse[domain.WishlistEntry]
	if err := wc.c.call(ctx, http.MethodGet, pathWishlist, nil, &resp); err != nil {
		return nil, fmt.Errorf("wishlist list: %w", err)
	}
	if resp.Data == nil {
		resp.Data = []domain.WishlistEntry{}
	}
	return resp.Data, nil
}

// Add saves a product. The endpoint only acknowledges, so the canonical
// set is fetched afterwards.
func (wc *WishlistClient) Add(ctx context.Context, entry domain.WishlistEntry) ([]domain.WishlistEntry, error) {
	body := &domain.WishlistRequest{ProductID: entry.ProductID}
	if err := wc.c.call(ctx, http.MethodPost, pathWishlist, body, nil); err != nil {
		return nil, fmt.Errorf("wishlist add %s: %w", entry.ProductID, err)
	}
	return wc.List(ctx)
}

// Remove drops a product and returns the canonical set.
func (wc *WishlistClient) Remove(ctx context.Context, productID domain.ProductID) ([]domain.WishlistEntry, error) {
	path := pathWishlist + "/" + url.PathEscape(productID.String())
	if err := wc.c.call(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return nil, fmt.Errorf("wishlist remove %s: %w", productID, err)
	}
	return wc.List(ctx)
}
