// Package session is the auth gate of the storefront client: it owns the
// access token, decides whether the shopper is authenticated, and tells
// subscribed reconcilers about every change of that state.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"rokomferi-storefront/internal/domain"
	"rokomferi-storefront/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// Listener observes authentication transitions.
// It is called synchronously from the method that caused the transition,
// so it must not call back into Login, Logout or Bootstrap.
type Listener interface {
	OnAuthChange(ctx context.Context, authenticated bool)
}

// ListenerFunc adapts a function to a Listener.
type ListenerFunc func(ctx context.Context, authenticated bool)

func (f ListenerFunc) OnAuthChange(ctx context.Context, authenticated bool) {
	f(ctx, authenticated)
}

// Gate tracks the session token and the authenticated signal.
type Gate struct {
	auth       domain.AuthRemote
	persistent TokenStore
	session    TokenStore
	log        *zerolog.Logger
	now        func() time.Time

	// transition serializes Bootstrap, Login and Logout including the
	// listener fan-out, so listeners see transitions in order.
	transition sync.Mutex

	mu            sync.RWMutex
	token         string
	user          *domain.User
	authenticated bool

	lmu       sync.Mutex
	nextID    int
	listeners map[int]Listener
}

// NewGate wires a gate. persistent backs "remember me" logins, session
// everything else.
func NewGate(auth domain.AuthRemote, persistent, session TokenStore, log *zerolog.Logger) *Gate {
	if log == nil {
		log = logger.Component("session")
	}
	return &Gate{
		auth:       auth,
		persistent: persistent,
		session:    session,
		log:        log,
		now:        time.Now,
		listeners:  make(map[int]Listener),
	}
}

// Subscribe registers l and returns a function that removes it.
func (g *Gate) Subscribe(l Listener) (unsubscribe func()) {
	g.lmu.Lock()
	defer g.lmu.Unlock()

	id := g.nextID
	g.nextID++
	g.listeners[id] = l

	return func() {
		g.lmu.Lock()
		defer g.lmu.Unlock()
		delete(g.listeners, id)
	}
}

// Authenticated reports whether the gate is open.
func (g *Gate) Authenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.authenticated
}

// Token returns the bearer token while authenticated, "" otherwise.
// It satisfies domain.TokenSource.
func (g *Gate) Token() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.authenticated {
		return ""
	}
	return g.token
}

// User returns the signed-in user, nil when signed out.
func (g *Gate) User() *domain.User {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.user == nil {
		return nil
	}
	u := *g.user
	return &u
}

// Bootstrap restores a session from persisted storage.
// A token the server rejects, or one whose JWT expiry has passed, is
// cleared and the gate closes. A network failure keeps the token on disk
// and leaves the gate closed; the error is returned so callers can retry.
func (g *Gate) Bootstrap(ctx context.Context) error {
	g.transition.Lock()
	defer g.transition.Unlock()

	token := g.loadPersisted()
	if token == "" {
		g.demote(ctx)
		return nil
	}

	if g.expired(token) {
		g.log.Info().Msg("Persisted token expired, signing out")
		g.clearPersisted()
		g.demote(ctx)
		return nil
	}

	user, err := g.auth.Me(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			g.log.Info().Err(err).Msg("Persisted token rejected, signing out")
			g.clearPersisted()
			g.demote(ctx)
			return nil
		}
		g.log.Warn().Err(err).Msg("Session bootstrap failed, staying signed out")
		g.demote(ctx)
		return err
	}

	g.promote(ctx, token, user)
	return nil
}

// Login authenticates and persists the token. With creds.Remember the
// long-lived store is used and the session store cleared, otherwise the
// other way round. Listeners resync before Login returns.
func (g *Gate) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	g.transition.Lock()
	defer g.transition.Unlock()

	resp, err := g.auth.Login(ctx, creds)
	if err != nil {
		return "", err
	}

	keep, drop := g.session, g.persistent
	if creds.Remember {
		keep, drop = g.persistent, g.session
	}
	if err := drop.Clear(); err != nil {
		g.log.Warn().Err(err).Msg("Failed to clear previous token")
	}
	if err := keep.Save(resp.AccessToken); err != nil {
		// The session still works for this process.
		g.log.Warn().Err(err).Bool("remember", creds.Remember).Msg("Failed to persist token")
	}

	user := resp.User
	if user == nil {
		user = &domain.User{Email: creds.Email}
	}
	g.promote(ctx, resp.AccessToken, user)
	return resp.AccessToken, nil
}

// Logout invalidates the token server side on a best-effort basis, then
// clears every persisted token and the local state.
func (g *Gate) Logout(ctx context.Context) {
	g.transition.Lock()
	defer g.transition.Unlock()

	g.mu.RLock()
	token := g.token
	g.mu.RUnlock()

	if token != "" {
		if err := g.auth.Logout(ctx, token); err != nil {
			g.log.Debug().Err(err).Msg("Server logout failed, clearing locally anyway")
		}
	}

	g.clearPersisted()
	g.demote(ctx)
}

func (g *Gate) promote(ctx context.Context, token string, user *domain.User) {
	g.mu.Lock()
	g.token = token
	g.user = user
	g.authenticated = true
	g.mu.Unlock()

	g.log.Info().Str("user_id", user.ID).Msg("Signed in")
	// Re-notify on a fresh login even when already signed in, so
	// reconcilers resync against the new account.
	g.notify(ctx, true)
}

func (g *Gate) demote(ctx context.Context) {
	g.mu.Lock()
	was := g.authenticated
	g.token = ""
	g.user = nil
	g.authenticated = false
	g.mu.Unlock()

	if was {
		g.log.Info().Msg("Signed out")
		g.notify(ctx, false)
	}
}

func (g *Gate) notify(ctx context.Context, authenticated bool) {
	g.lmu.Lock()
	listeners := make([]Listener, 0, len(g.listeners))
	// Subscription order, so tests and logs are deterministic.
	for id := 0; id < g.nextID; id++ {
		if l, ok := g.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	g.lmu.Unlock()

	for _, l := range listeners {
		l.OnAuthChange(ctx, authenticated)
	}
}

// loadPersisted prefers the session store, then the long-lived one.
func (g *Gate) loadPersisted() string {
	for _, store := range []TokenStore{g.session, g.persistent} {
		token, err := store.Load()
		if err != nil {
			g.log.Warn().Err(err).Msg("Failed to read persisted token")
			continue
		}
		if token != "" {
			return token
		}
	}
	return ""
}

func (g *Gate) clearPersisted() {
	for _, store := range []TokenStore{g.session, g.persistent} {
		if err := store.Clear(); err != nil {
			g.log.Warn().Err(err).Msg("Failed to clear persisted token")
		}
	}
}

// expired reports whether token is a JWT whose exp claim has passed.
// Opaque tokens are left for the server to judge.
func (g *Gate) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(g.now())
}
