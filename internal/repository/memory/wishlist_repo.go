package memrepo

import (
	"context"

	"rokomferi-storefront/internal/domain"
	"rokomferi-storefront/pkg/cache"
)

const wishlistKeyPrefix = "wishlist:"

type wishlistRepository struct {
	cache cache.CacheService
}

func NewWishlistRepository(c cache.CacheService) domain.WishlistRepository {
	return &wishlistRepository{cache: c}
}

func (r *wishlistRepository) load(userID string) []domain.WishlistEntry {
	v, ok := r.cache.Get(wishlistKeyPrefix + userID)
	if !ok {
		return nil
	}
	entries, _ := v.([]domain.WishlistEntry)
	return entries
}

func (r *wishlistRepository) GetEntries(ctx context.Context, userID string) ([]domain.WishlistEntry, error) {
	return append([]domain.WishlistEntry{}, r.load(userID)...), nil
}

// AddEntry is idempotent per product.
func (r *wishlistRepository) AddEntry(ctx context.Context, userID string, entry domain.WishlistEntry) error {
	r.cache.Update(wishlistKeyPrefix+userID, -1, func(current interface{}, found bool) (interface{}, bool) {
		entries, _ := current.([]domain.WishlistEntry)
		for _, e := range entries {
			if e.ProductID == entry.ProductID {
				return entries, true
			}
		}
		return append(append([]domain.WishlistEntry{}, entries...), entry), true
	})
	return nil
}

func (r *wishlistRepository) RemoveEntry(ctx context.Context, userID string, productID domain.ProductID) error {
	r.cache.Update(wishlistKeyPrefix+userID, -1, func(current interface{}, found bool) (interface{}, bool) {
		entries, _ := current.([]domain.WishlistEntry)
		next := make([]domain.WishlistEntry, 0, len(entries))
		for _, e := range entries {
			if e.ProductID != productID {
				next = append(next, e)
			}
		}
		return next, len(next) > 0
	})
	return nil
}

func (r *wishlistRepository) CheckEntry(ctx context.Context, userID string, productID domain.ProductID) (bool, error) {
	for _, e := range r.load(userID) {
		if e.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}
