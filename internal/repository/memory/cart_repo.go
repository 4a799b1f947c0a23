// Package memrepo implements the sandbox API repositories on the in-memory
// cache.
package memrepo

import (
	"context"

	"rokomferi-storefront/internal/domain"
	"rokomferi-storefront/pkg/cache"
)

const cartKeyPrefix = "cart:"

type cartRepository struct {
	cache cache.CacheService
}

func NewCartRepository(c cache.CacheService) domain.CartRepository {
	return &cartRepository{cache: c}
}

func (r *cartRepository) GetLines(ctx context.Context, userID string) ([]domain.CartLine, error) {
	v, ok := r.cache.Get(cartKeyPrefix + userID)
	if !ok {
		return []domain.CartLine{}, nil
	}
	lines, _ := v.([]domain.CartLine)
	return append([]domain.CartLine{}, lines...), nil
}

func (r *cartRepository) SaveLines(ctx context.Context, userID string, lines []domain.CartLine) error {
	r.cache.Set(cartKeyPrefix+userID, append([]domain.CartLine{}, lines...), -1)
	return nil
}

func (r *cartRepository) Clear(ctx context.Context, userID string) error {
	r.cache.Delete(cartKeyPrefix + userID)
	return nil
}
