package v1

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rokomferi-storefront/internal/domain"
	infracache "rokomferi-storefront/internal/infrastructure/cache"
	memrepo "rokomferi-storefront/internal/repository/memory"
	"rokomferi-storefront/internal/usecase"
	"rokomferi-storefront/pkg/utils"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	handler http.Handler
	token   string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	utils.SetSecret("router-test-secret")

	users := memrepo.NewUserRepository()
	require.NoError(t, users.Add(domain.User{ID: "u1", Email: "a@b.test", Role: "customer"}, "pw"))
	products := memrepo.NewProductRepository(memrepo.SeedCatalog())
	store := infracache.NewMemoryCache(-1, 0)

	authUC := usecase.NewAuthUsecase(users, infracache.NewMemoryCache(time.Hour, 0), time.Hour)
	handler := NewRouter(Deps{
		Auth:          authUC,
		Cart:          usecase.NewCartUsecase(memrepo.NewCartRepository(store), products, 5),
		Wishlist:      usecase.NewWishlistUsecase(memrepo.NewWishlistRepository(store), products),
		Catalog:       usecase.NewCatalogUsecase(products, infracache.NewMemoryCache(time.Minute, 0), time.Minute),
		AllowedOrigin: "http://localhost:3000",
	})

	token, err := utils.GenerateJWT("u1", "a@b.test", "customer", time.Hour)
	require.NoError(t, err)
	return &apiFixture{handler: handler, token: token}
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+f.token)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeLines(t *testing.T, rec *httptest.ResponseRecorder) []domain.CartLine {
	t.Helper()
	var resp domain.ListResponse[domain.CartLine]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp["error"]
}

func TestCart_AddMergesSameVariant(t *testing.T) {
	f := newAPIFixture(t)
	item := domain.CartItemRequest{ProductID: "42", Quantity: 2, SelectedSize: "L", SelectedColor: "#FFFFFF"}

	rec := f.do(t, http.MethodPost, "/api/v1/cart/items", item)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	item.Quantity = 1
	rec = f.do(t, http.MethodPost, "/api/v1/cart/items", item)
	require.Equal(t, http.StatusOK, rec.Code)

	lines := decodeLines(t, rec)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, 25.5, lines[0].UnitPrice)
	assert.Equal(t, "Linen Shirt", lines[0].Name)
}

func TestCart_ErrorStatuses(t *testing.T) {
	f := newAPIFixture(t)

	tests := []struct {
		name   string
		method string
		body   interface{}
		status int
	}{
		{"unknown product", http.MethodPost, domain.CartItemRequest{ProductID: "999", Quantity: 1}, http.StatusBadRequest},
		{"size not offered", http.MethodPost, domain.CartItemRequest{ProductID: "42", Quantity: 1, SelectedSize: "XXL", SelectedColor: "#000"}, http.StatusBadRequest},
		{"inactive product", http.MethodPost, domain.CartItemRequest{ProductID: "13", Quantity: 1}, http.StatusBadRequest},
		{"zero quantity", http.MethodPost, domain.CartItemRequest{ProductID: "7", Quantity: 0, SelectedColor: "red"}, http.StatusBadRequest},
		{"above maximum", http.MethodPost, domain.CartItemRequest{ProductID: "7", Quantity: 6, SelectedColor: "red"}, http.StatusBadRequest},
		{"update absent line", http.MethodPatch, domain.CartItemRequest{ProductID: "7", Quantity: 2, SelectedColor: "red"}, http.StatusNotFound},
		{"remove absent line", http.MethodDelete, domain.LineKey{ProductID: "7", SelectedColor: "red"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, tt.method, "/api/v1/cart/items", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, errorBody(t, rec))
		})
	}
}

func TestCart_RemoveAndClear(t *testing.T) {
	f := newAPIFixture(t)
	f.do(t, http.MethodPost, "/api/v1/cart/items", domain.CartItemRequest{ProductID: "7", Quantity: 1, SelectedColor: "red"})
	f.do(t, http.MethodPost, "/api/v1/cart/items", domain.CartItemRequest{ProductID: "7", Quantity: 1, SelectedColor: "blue"})

	rec := f.do(t, http.MethodDelete, "/api/v1/cart/items", domain.LineKey{ProductID: "7", SelectedColor: "red"})
	require.Equal(t, http.StatusOK, rec.Code)
	lines := decodeLines(t, rec)
	require.Len(t, lines, 1)
	assert.Equal(t, "blue", lines[0].SelectedColor)

	rec = f.do(t, http.MethodDelete, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestAuth_RequiredOnProtectedRoutes(t *testing.T) {
	f := newAPIFixture(t)

	for _, path := range []string{"/api/v1/cart", "/api/v1/wishlist", "/api/v1/auth/me"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestAuth_LoginMeLogout(t *testing.T) {
	f := newAPIFixture(t)

	f.token = ""
	rec := f.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "A@B.test", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login domain.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.AccessToken)
	f.token = login.AccessToken

	rec = f.do(t, http.MethodGet, "/api/v1/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me domain.MeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "u1", me.User.ID)

	rec = f.do(t, http.MethodPost, "/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "logged out tokens are revoked")
}

func TestAuth_BadCredentials(t *testing.T) {
	f := newAPIFixture(t)
	f.token = ""

	rec := f.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "a@b.test", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "a@b.test"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWishlist_AddListRemove(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/wishlist", map[string]interface{}{"productId": 5})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = f.do(t, http.MethodPost, "/api/v1/wishlist", map[string]interface{}{"productId": "5"})
	require.Equal(t, http.StatusOK, rec.Code, "adding twice is fine")

	rec = f.do(t, http.MethodGet, "/api/v1/wishlist", nil)
	var list domain.ListResponse[domain.WishlistEntry]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, domain.ProductID("5"), list.Data[0].ProductID)
	assert.Equal(t, 32.0, list.Data[0].Price)
	assert.False(t, list.Data[0].AddedAt.IsZero())

	rec = f.do(t, http.MethodDelete, "/api/v1/wishlist/5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodGet, "/api/v1/wishlist", nil)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/v1/wishlist", map[string]string{"productId": "999"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWishlist_CheckOneProduct(t *testing.T) {
	f := newAPIFixture(t)

	check := func(id string) domain.WishlistStatus {
		t.Helper()
		rec := f.do(t, http.MethodGet, "/api/v1/wishlist/"+id, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var status domain.WishlistStatus
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		return status
	}

	assert.Equal(t, domain.WishlistStatus{ProductID: "9", InWishlist: false}, check("9"))

	rec := f.do(t, http.MethodPost, "/api/v1/wishlist", map[string]string{"productId": "9"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, check("9").InWishlist)
	assert.False(t, check("5").InWishlist)

	f.token = ""
	rec = f.do(t, http.MethodGet, "/api/v1/wishlist/9", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCatalog_GetProduct(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/product/42", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var p domain.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "Linen Shirt", p.Name)

	rec = f.do(t, http.MethodGet, "/api/v1/product/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/products", nil)
	var list domain.ListResponse[domain.Product]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	for _, p := range list.Data {
		assert.True(t, p.IsActive)
	}
}

func TestCORS_Preflight(t *testing.T) {
	f := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
