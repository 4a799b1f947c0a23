// Package sandbox assembles an in-memory storefront API: one seeded shopper,
// a fixed catalog, and carts and wishlists kept in process memory. It backs
// cmd/stubapi and the end-to-end tests of the sync layer.
package sandbox

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"rokomferi-storefront/config"
	"rokomferi-storefront/internal/delivery/http/middleware"
	v1 "rokomferi-storefront/internal/delivery/http/v1"
	"rokomferi-storefront/internal/domain"
	infracache "rokomferi-storefront/internal/infrastructure/cache"
	memrepo "rokomferi-storefront/internal/repository/memory"
	"rokomferi-storefront/internal/usecase"
	"rokomferi-storefront/pkg/utils"

	"golang.org/x/time/rate"
)

// StubUserID is the ID of the seeded shopper.
const StubUserID = "u-shopper"

type Server struct {
	handler     http.Handler
	rateLimiter *middleware.RateLimiter
}

// New wires the sandbox from cfg. Close releases its background work.
func New(cfg *config.Config) (*Server, error) {
	utils.SetSecret(cfg.JWTSecret)

	// Default expiration 30m, cleanup every 60m
	memCache := infracache.NewMemoryCache(30*time.Minute, 60*time.Minute)
	store := infracache.NewMemoryCache(-1, 0)

	users := memrepo.NewUserRepository()
	if err := users.Add(domain.User{
		ID:        StubUserID,
		Email:     cfg.StubUserEmail,
		Role:      "customer",
		FirstName: "Test",
		LastName:  "Shopper",
	}, cfg.StubUserPassword); err != nil {
		return nil, fmt.Errorf("seeding shopper: %w", err)
	}
	products := memrepo.NewProductRepository(memrepo.SeedCatalog())

	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		rate.Limit(50), // requests per second
		100,            // burst
		time.Minute,    // cleanup period
		3*time.Minute,  // client TTL
	)

	handler := v1.NewRouter(v1.Deps{
		Auth:          usecase.NewAuthUsecase(users, memCache, cfg.AccessTokenExpiry),
		Cart:          usecase.NewCartUsecase(memrepo.NewCartRepository(store), products, cfg.MaxCartQuantity),
		Wishlist:      usecase.NewWishlistUsecase(memrepo.NewWishlistRepository(store), products),
		Catalog:       usecase.NewCatalogUsecase(products, memCache, 5*time.Minute),
		AllowedOrigin: cfg.AllowedOrigin,
		RateLimiter:   rateLimiter,
	})

	return &Server{handler: handler, rateLimiter: rateLimiter}, nil
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close stops the rate limiter's cleanup loop.
func (s *Server) Close() {
	s.rateLimiter.Shutdown()
}
