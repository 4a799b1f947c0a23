package usecase

import (
	"context"
	"fmt"
	"time"

	"rokomferi-storefront/internal/domain"
	"rokomferi-storefront/pkg/cache"
)

type CatalogUsecase struct {
	repo       domain.ProductRepository
	cache      cache.CacheService
	productTTL time.Duration
}

func NewCatalogUsecase(repo domain.ProductRepository, cache cache.CacheService, productTTL time.Duration) *CatalogUsecase {
	return &CatalogUsecase{
		repo:       repo,
		cache:      cache,
		productTTL: productTTL,
	}
}

// ListProducts returns the active products.
func (u *CatalogUsecase) ListProducts(ctx context.Context) ([]domain.Product, error) {
	all, err := u.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active, nil
}

func (u *CatalogUsecase) GetProductByID(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	key := fmt.Sprintf("product:id:%s", id)
	if val, found := u.cache.Get(key); found {
		return val.(*domain.Product), nil
	}

	product, err := u.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError("product not found")
	}
	u.cache.Set(key, product, u.productTTL)

	return product, nil
}
