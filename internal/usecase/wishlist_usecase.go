package usecase

import (
	"context"
	"time"

	"rokomferi-storefront/internal/domain"
	"rokomferi-storefront/pkg/logger"
)

type WishlistUsecase struct {
	repo     domain.WishlistRepository
	products domain.ProductRepository
	now      func() time.Time
}

func NewWishlistUsecase(repo domain.WishlistRepository, products domain.ProductRepository) *WishlistUsecase {
	return &WishlistUsecase{
		repo:     repo,
		products: products,
		now:      time.Now,
	}
}

func (u *WishlistUsecase) GetMyWishlist(ctx context.Context, userID string) ([]domain.WishlistEntry, error) {
	return u.repo.GetEntries(ctx, userID)
}

// AddToWishlist saves a catalog product. Saving it twice is not an error.
func (u *WishlistUsecase) AddToWishlist(ctx context.Context, userID string, productID domain.ProductID) error {
	if productID == "" {
		return domain.NewValidationError("productId", "is required")
	}
	product, err := u.products.GetProductByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.NewValidationError("productId", "unknown product "+productID.String())
	}

	logger.WithContext(ctx).Debug().Str("user_id", userID).Str("product_id", productID.String()).Msg("Wishlist add")
	return u.repo.AddEntry(ctx, userID, domain.WishlistEntry{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.EffectivePrice(),
		Image:     product.Image,
		AddedAt:   u.now().UTC(),
	})
}

// RemoveFromWishlist is idempotent.
func (u *WishlistUsecase) RemoveFromWishlist(ctx context.Context, userID string, productID domain.ProductID) error {
	return u.repo.RemoveEntry(ctx, userID, productID)
}

func (u *WishlistUsecase) IsInWishlist(ctx context.Context, userID string, productID domain.ProductID) (bool, error) {
	return u.repo.CheckEntry(ctx, userID, productID)
}
