// Package storefront wires the client side sync layer: the REST client, the
// auth gate and the cart and wishlist reconcilers subscribed to it.
package storefront

import (
	"context"
	"net/http"

	"rokomferi-storefront/config"
	"rokomferi-storefront/internal/domain"
	"rokomferi-storefront/internal/reconcile"
	"rokomferi-storefront/internal/remote"
	"rokomferi-storefront/internal/session"
	"rokomferi-storefront/pkg/logger"

	"github.com/rs/zerolog"
)

type Options struct {
	Config *config.Config
	// Persistent and Session override the token stores built from Config.
	Persistent session.TokenStore
	Session    session.TokenStore
	HTTPClient *http.Client
	// LoginRequired is the cart's redirect-to-login hook.
	LoginRequired func(ctx context.Context)
	Feedback      reconcile.Feedback
	Logger        *zerolog.Logger
}

type App struct {
	Client   *remote.Client
	Gate     *session.Gate
	Cart     *reconcile.Cart
	Wishlist *reconcile.Wishlist
}

func New(opts Options) *App {
	cfg := opts.Config
	log := opts.Logger
	if log == nil {
		log = logger.Get()
	}
	component := func(name string) *zerolog.Logger {
		l := log.With().Str("component", name).Logger()
		return &l
	}

	persistent := opts.Persistent
	if persistent == nil {
		persistent = session.NewFileStore(cfg.TokenFile)
	}
	sess := opts.Session
	if sess == nil {
		sess = session.NewMemoryStore(cfg.SessionTTL)
	}

	// The client reads tokens from the gate, which needs the client's auth
	// endpoints, so the token source is bound late.
	var gate *session.Gate
	client := remote.NewClient(remote.Options{
		BaseURL:    cfg.APIBaseURL,
		Timeout:    cfg.RequestTimeout,
		RateLimit:  cfg.RateLimitRPS,
		Burst:      cfg.RateLimitBurst,
		HTTPClient: opts.HTTPClient,
		Logger:     component("remote"),
	}, domain.TokenFunc(func() string { return gate.Token() }))
	gate = session.NewGate(client.Auth(), persistent, sess, component("session"))

	cart := reconcile.NewCart(client.Cart(), reconcile.CartOptions{
		MaxQuantity:   cfg.MaxCartQuantity,
		LoginRequired: opts.LoginRequired,
		Feedback:      opts.Feedback,
		Logger:        component("cart"),
	})
	wishlist := reconcile.NewWishlist(client.Wishlist(), reconcile.WishlistOptions{
		BackgroundTimeout: cfg.BackgroundTimeout,
		Feedback:          opts.Feedback,
		Logger:            component("wishlist"),
	})

	gate.Subscribe(cart)
	gate.Subscribe(wishlist)

	return &App{Client: client, Gate: gate, Cart: cart, Wishlist: wishlist}
}

// Start restores a persisted session. On success the reconcilers are
// already loaded.
func (a *App) Start(ctx context.Context) error {
	return a.Gate.Bootstrap(ctx)
}

// Close waits for background remote calls to finish.
func (a *App) Close() {
	a.Wishlist.Wait()
	a.Cart.Wait()
}
