// Package v1 serves the storefront REST API under /api/v1.
package v1

import (
	"errors"
	"net/http"

	"rokomferi-storefront/internal/delivery/http/middleware"
	"rokomferi-storefront/internal/domain"
	"rokomferi-storefront/internal/usecase"
	"rokomferi-storefront/pkg/logger"
	"rokomferi-storefront/pkg/utils"

	"github.com/NYTimes/gziphandler"
)

// Deps are the usecases and middleware settings the API is built from.
type Deps struct {
	Auth          *usecase.AuthUsecase
	Cart          *usecase.CartUsecase
	Wishlist      *usecase.WishlistUsecase
	Catalog       *usecase.CatalogUsecase
	AllowedOrigin string
	// RateLimiter is optional; nil disables per-client limits.
	RateLimiter *middleware.RateLimiter
}

// NewRouter registers every route and wraps them in CORS, request logging,
// rate limiting and gzip, outermost last.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.NewAuthMiddleware(d.Auth)
	protected := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}

	authHandler := NewAuthHandler(d.Auth)
	cartHandler := NewCartHandler(d.Cart)
	wishlistHandler := NewWishlistHandler(d.Wishlist)
	catalogHandler := NewCatalogHandler(d.Catalog)

	// Auth
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/auth/logout", authHandler.Logout)
	mux.Handle("GET /api/v1/auth/me", protected(authHandler.Me))

	// Catalog (Public)
	mux.HandleFunc("GET /api/v1/products", catalogHandler.ListProducts)
	mux.HandleFunc("GET /api/v1/product/{id}", catalogHandler.GetProductByID)

	// Cart (Protected)
	mux.Handle("GET /api/v1/cart", protected(cartHandler.GetCart))
	mux.Handle("DELETE /api/v1/cart", protected(cartHandler.ClearCart))
	mux.Handle("POST /api/v1/cart/items", protected(cartHandler.AddItem))
	mux.Handle("PATCH /api/v1/cart/items", protected(cartHandler.UpdateItem))
	mux.Handle("DELETE /api/v1/cart/items", protected(cartHandler.RemoveItem))

	// Wishlist (Protected)
	mux.Handle("GET /api/v1/wishlist", protected(wishlistHandler.GetMyWishlist))
	mux.Handle("GET /api/v1/wishlist/{productId}", protected(wishlistHandler.CheckWishlist))
	mux.Handle("POST /api/v1/wishlist", protected(wishlistHandler.AddToWishlist))
	mux.Handle("DELETE /api/v1/wishlist/{productId}", protected(wishlistHandler.RemoveFromWishlist))

	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler)

	var handler http.Handler = middleware.NewCORSMiddleware(d.AllowedOrigin)(mux)
	handler = middleware.RequestLogger(handler)
	if d.RateLimiter != nil {
		handler = d.RateLimiter.Middleware()(handler)
	}
	return gziphandler.GzipHandler(handler)
}

// writeUsecaseError maps domain failures to status codes. Unexpected
// errors are logged and hidden behind a generic message.
func writeUsecaseError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthenticated):
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		logger.WithContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		utils.WriteError(w, status, "Internal server error")
		return
	}
	utils.WriteError(w, status, domain.UserMessage(err))
}
