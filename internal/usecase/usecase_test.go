package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"rokomferi-storefront/internal/domain"
	infracache "rokomferi-storefront/internal/infrastructure/cache"
	memrepo "rokomferi-storefront/internal/repository/memory"
	"rokomferi-storefront/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCart(maxQty int) *CartUsecase {
	return NewCartUsecase(
		memrepo.NewCartRepository(infracache.NewMemoryCache(-1, 0)),
		memrepo.NewProductRepository(memrepo.SeedCatalog()),
		maxQty,
	)
}

func TestCartUsecase_AddMergesByVariant(t *testing.T) {
	ctx := context.Background()
	uc := newCart(10)

	_, err := uc.AddToCart(ctx, "u1", domain.CartItemRequest{ProductID: "42", Quantity: 2, SelectedSize: "L", SelectedColor: "#FFFFFF"})
	require.NoError(t, err)
	_, err = uc.AddToCart(ctx, "u1", domain.CartItemRequest{ProductID: "42", Quantity: 1, SelectedSize: "M", SelectedColor: "#FFFFFF"})
	require.NoError(t, err)
	lines, err := uc.AddToCart(ctx, "u1", domain.CartItemRequest{ProductID: "42", Quantity: 3, SelectedSize: "L", SelectedColor: "#FFFFFF"})
	require.NoError(t, err)

	require.Len(t, lines, 2)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, "L", lines[0].SelectedSize)
	assert.Equal(t, 1, lines[1].Quantity)

	other, err := uc.GetMyCart(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other, "carts are per user")
}

func TestCartUsecase_SalePriceAndColorCase(t *testing.T) {
	ctx := context.Background()
	uc := newCart(10)

	lines, err := uc.AddToCart(ctx, "u1", domain.CartItemRequest{ProductID: "5", Quantity: 1, SelectedSize: "M"})
	require.NoError(t, err)
	assert.Equal(t, 32.0, lines[0].UnitPrice)

	_, err = uc.AddToCart(ctx, "u1", domain.CartItemRequest{ProductID: "42", Quantity: 1, SelectedSize: "S", SelectedColor: "#ffffff"})
	assert.NoError(t, err)
}

func TestCartUsecase_MaximumAppliesToMergedTotal(t *testing.T) {
	ctx := context.Background()
	uc := newCart(5)

	_, err := uc.AddToCart(ctx, "u1", domain.CartItemRequest{ProductID: "7", Quantity: 4, SelectedColor: "red"})
	require.NoError(t, err)
	_, err = uc.AddToCart(ctx, "u1", domain.CartItemRequest{ProductID: "7", Quantity: 2, SelectedColor: "red"})
	require.ErrorIs(t, err, domain.ErrValidation)

	lines, err := uc.GetMyCart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, lines[0].Quantity, "rejected add leaves the line unchanged")
}

func TestCartUsecase_Validation(t *testing.T) {
	ctx := context.Background()
	uc := newCart(5)

	tests := []struct {
		name string
		req  domain.CartItemRequest
	}{
		{"missing product", domain.CartItemRequest{Quantity: 1}},
		{"unknown product", domain.CartItemRequest{ProductID: "404", Quantity: 1}},
		{"inactive product", domain.CartItemRequest{ProductID: "13", Quantity: 1}},
		{"size not offered", domain.CartItemRequest{ProductID: "5", Quantity: 1, SelectedSize: "XS"}},
		{"color not offered", domain.CartItemRequest{ProductID: "7", Quantity: 1, SelectedColor: "green"}},
		{"negative quantity", domain.CartItemRequest{ProductID: "7", Quantity: -1, SelectedColor: "red"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.AddToCart(ctx, "u1", tt.req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestCartUsecase_UpdateRemoveClear(t *testing.T) {
	ctx := context.Background()
	uc := newCart(10)
	key := domain.LineKey{ProductID: "7", SelectedColor: "blue"}

	_, err := uc.UpdateCartItemQuantity(ctx, "u1", domain.CartItemRequest{ProductID: "7", Quantity: 2, SelectedColor: "blue"})
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.RemoveFromCart(ctx, "u1", key)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.AddToCart(ctx, "u1", domain.CartItemRequest{ProductID: "7", Quantity: 1, SelectedColor: "blue"})
	require.NoError(t, err)
	lines, err := uc.UpdateCartItemQuantity(ctx, "u1", domain.CartItemRequest{ProductID: "7", Quantity: 7, SelectedColor: "blue"})
	require.NoError(t, err)
	assert.Equal(t, 7, lines[0].Quantity)

	lines, err = uc.RemoveFromCart(ctx, "u1", key)
	require.NoError(t, err)
	assert.Empty(t, lines)

	_, err = uc.AddToCart(ctx, "u1", domain.CartItemRequest{ProductID: "9", Quantity: 1, SelectedColor: "maroon"})
	require.NoError(t, err)
	lines, err = uc.ClearCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCartUsecase_ConcurrentAddsAreSerialized(t *testing.T) {
	ctx := context.Background()
	uc := newCart(1000)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.AddToCart(ctx, "u1", domain.CartItemRequest{ProductID: "7", Quantity: 1, SelectedColor: "red"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	lines, err := uc.GetMyCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 20, lines[0].Quantity)
}

func TestWishlistUsecase(t *testing.T) {
	ctx := context.Background()
	uc := NewWishlistUsecase(
		memrepo.NewWishlistRepository(infracache.NewMemoryCache(-1, 0)),
		memrepo.NewProductRepository(memrepo.SeedCatalog()),
	)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return fixed }

	require.NoError(t, uc.AddToWishlist(ctx, "u1", "9"))
	require.NoError(t, uc.AddToWishlist(ctx, "u1", "9"))
	require.ErrorIs(t, uc.AddToWishlist(ctx, "u1", "404"), domain.ErrValidation)
	require.ErrorIs(t, uc.AddToWishlist(ctx, "u1", ""), domain.ErrValidation)

	entries, err := uc.GetMyWishlist(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Jamdani Saree", entries[0].Name)
	assert.Equal(t, fixed, entries[0].AddedAt)

	in, err := uc.IsInWishlist(ctx, "u1", "9")
	require.NoError(t, err)
	assert.True(t, in)

	require.NoError(t, uc.RemoveFromWishlist(ctx, "u1", "9"))
	require.NoError(t, uc.RemoveFromWishlist(ctx, "u1", "9"))
	in, err = uc.IsInWishlist(ctx, "u1", "9")
	require.NoError(t, err)
	assert.False(t, in)
}

func TestAuthUsecase(t *testing.T) {
	ctx := context.Background()
	utils.SetSecret("usecase-test-secret")
	users := memrepo.NewUserRepository()
	require.NoError(t, users.Add(domain.User{ID: "u1", Email: "shopper@rokomferi.test"}, "secret"))
	uc := NewAuthUsecase(users, infracache.NewMemoryCache(time.Hour, 0), time.Hour)

	_, err := uc.Login(ctx, "shopper@rokomferi.test", "wrong")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = uc.Login(ctx, "nobody@rokomferi.test", "secret")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = uc.Login(ctx, "  ", "secret")
	require.ErrorIs(t, err, domain.ErrValidation)

	resp, err := uc.Login(ctx, " Shopper@Rokomferi.test ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", resp.User.ID)
	assert.False(t, uc.IsRevoked(resp.AccessToken))

	uc.Logout(ctx, resp.AccessToken)
	assert.True(t, uc.IsRevoked(resp.AccessToken))
	uc.Logout(ctx, "not-a-token")

	_, err = uc.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogUsecase(t *testing.T) {
	ctx := context.Background()
	uc := NewCatalogUsecase(memrepo.NewProductRepository(memrepo.SeedCatalog()), infracache.NewMemoryCache(time.Minute, 0), time.Minute)

	products, err := uc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 4)

	p, err := uc.GetProductByID(ctx, "42")
	require.NoError(t, err)
	again, err := uc.GetProductByID(ctx, "42")
	require.NoError(t, err)
	assert.Same(t, p, again, "second read comes from the cache")

	_, err = uc.GetProductByID(ctx, "404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
