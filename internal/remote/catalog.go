package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"rokomferi-storefront/internal/domain"
)

const (
	pathProducts = "/products"
	pathProduct  = "/product/"
)

// CatalogClient reads the public catalog. It needs no token.
type CatalogClient struct {
	c *Client
}

// Catalog returns the catalog endpoints.
func (c *Client) Catalog() *CatalogClient {
	return &CatalogClient{c: c}
}

func (cc *CatalogClient) List(ctx context.Context) ([]domain.Product, error) {
	var resp domain.ListResponse[domain.Product]
	if err := cc.c.callWithToken(ctx, http.MethodGet, pathProducts, "", nil, &resp); err != nil {
		return nil, fmt.Errorf("catalog list: %w", err)
	}
	if resp.Data == nil {
		return []domain.Product{}, nil
	}
	return resp.Data, nil
}

func (cc *CatalogClient) Get(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	var product domain.Product
	if err := cc.c.callWithToken(ctx, http.MethodGet, pathProduct+url.PathEscape(id.String()), "", nil, &product); err != nil {
		return nil, fmt.Errorf("catalog get %s: %w", id, err)
	}
	return &product, nil
}
