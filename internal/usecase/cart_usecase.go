package usecase

import (
	"context"
	"fmt"
	"sync"

	"rokomferi-storefront/internal/domain"
	"rokomferi-storefront/pkg/logger"
)

// CartUsecase is the server side of the cart. Lines are keyed by product,
// size and color; every operation returns the resulting cart.
type CartUsecase struct {
	repo     domain.CartRepository
	products domain.ProductRepository
	maxQty   int

	// mu serializes read-modify-write cycles on the repository.
	mu sync.Mutex
}

func NewCartUsecase(repo domain.CartRepository, products domain.ProductRepository, maxQty int) *CartUsecase {
	return &CartUsecase{repo: repo, products: products, maxQty: maxQty}
}

func (u *CartUsecase) GetMyCart(ctx context.Context, userID string) ([]domain.CartLine, error) {
	return u.repo.GetLines(ctx, userID)
}

// AddToCart adds quantity to the line, creating it when needed.
func (u *CartUsecase) AddToCart(ctx context.Context, userID string, req domain.CartItemRequest) ([]domain.CartLine, error) {
	log := logger.WithContext(ctx)

	if err := u.checkQuantity(req.Quantity); err != nil {
		return nil, err
	}
	product, err := u.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	lines, err := u.repo.GetLines(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := domain.LineKey{ProductID: req.ProductID, SelectedSize: req.SelectedSize, SelectedColor: req.SelectedColor}
	i := indexOf(lines, key)
	existingQty := 0
	if i >= 0 {
		existingQty = lines[i].Quantity
	}
	newTotal := existingQty + req.Quantity
	if newTotal > u.maxQty {
		return nil, domain.NewValidationError("quantity", fmt.Sprintf("exceeds maximum of %d", u.maxQty))
	}

	if i >= 0 {
		lines[i].Quantity = newTotal
	} else {
		lines = append(lines, domain.CartLine{
			ProductID:      product.ID,
			Name:           product.Name,
			UnitPrice:      product.EffectivePrice(),
			SelectedSize:   req.SelectedSize,
			SelectedColor:  req.SelectedColor,
			Quantity:       req.Quantity,
			ProductImage:   product.Image,
			MannequinImage: product.MannequinImage,
			ColorVariants:  product.ColorVariants,
		})
	}

	log.Info().
		Str("user_id", userID).
		Str("product_id", req.ProductID.String()).
		Int("existing_qty", existingQty).
		Int("new_total", newTotal).
		Msg("Cart add")

	if err := u.repo.SaveLines(ctx, userID, lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// UpdateCartItemQuantity sets the quantity of an existing line.
func (u *CartUsecase) UpdateCartItemQuantity(ctx context.Context, userID string, req domain.CartItemRequest) ([]domain.CartLine, error) {
	if err := u.checkQuantity(req.Quantity); err != nil {
		return nil, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	lines, err := u.repo.GetLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	i := indexOf(lines, domain.LineKey{ProductID: req.ProductID, SelectedSize: req.SelectedSize, SelectedColor: req.SelectedColor})
	if i < 0 {
		return nil, domain.NewNotFoundError("line not in cart")
	}
	lines[i].Quantity = req.Quantity

	if err := u.repo.SaveLines(ctx, userID, lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// RemoveFromCart drops the line with key.
func (u *CartUsecase) RemoveFromCart(ctx context.Context, userID string, key domain.LineKey) ([]domain.CartLine, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	lines, err := u.repo.GetLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	i := indexOf(lines, key)
	if i < 0 {
		return nil, domain.NewNotFoundError("line not in cart")
	}
	lines = append(lines[:i], lines[i+1:]...)

	if err := u.repo.SaveLines(ctx, userID, lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (u *CartUsecase) ClearCart(ctx context.Context, userID string) ([]domain.CartLine, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.repo.Clear(ctx, userID); err != nil {
		return nil, err
	}
	return []domain.CartLine{}, nil
}

func (u *CartUsecase) checkQuantity(qty int) error {
	if qty < 1 {
		return domain.NewValidationError("quantity", "must be positive")
	}
	if qty > u.maxQty {
		return domain.NewValidationError("quantity", fmt.Sprintf("exceeds maximum of %d", u.maxQty))
	}
	return nil
}

// resolve looks up the product and checks the selected variant is offered.
func (u *CartUsecase) resolve(ctx context.Context, req domain.CartItemRequest) (*domain.Product, error) {
	if req.ProductID == "" {
		return nil, domain.NewValidationError("productId", "is required")
	}
	product, err := u.products.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewValidationError("productId", "unknown product "+req.ProductID.String())
	}
	if !product.IsActive {
		return nil, domain.NewValidationError("productId", "product unavailable")
	}
	if !product.HasSize(req.SelectedSize) {
		return nil, domain.NewValidationError("selectedSize", "size "+req.SelectedSize+" not offered")
	}
	if !product.HasColor(req.SelectedColor) {
		return nil, domain.NewValidationError("selectedColor", "color "+req.SelectedColor+" not offered")
	}
	return product, nil
}

func indexOf(lines []domain.CartLine, key domain.LineKey) int {
	for i, l := range lines {
		if l.Key() == key {
			return i
		}
	}
	return -1
}
