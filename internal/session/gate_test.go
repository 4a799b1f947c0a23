package session

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"rokomferi-storefront/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	mu         sync.Mutex
	loginResp  *domain.LoginResponse
	loginErr   error
	meUser     *domain.User
	meErr      error
	logoutErr  error
	meCalls    int
	logoutWith []string
}

func (f *fakeAuth) Login(ctx context.Context, creds domain.Credentials) (*domain.LoginResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginResp, f.loginErr
}

func (f *fakeAuth) Logout(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutWith = append(f.logoutWith, token)
	return f.logoutErr
}

func (f *fakeAuth) Me(ctx context.Context, token string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meCalls++
	return f.meUser, f.meErr
}

type recorder struct {
	mu     sync.Mutex
	events []bool
}

func (r *recorder) OnAuthChange(ctx context.Context, authenticated bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, authenticated)
}

func (r *recorder) get() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.events...)
}

func newTestGate(t *testing.T, auth *fakeAuth) (*Gate, *FileStore, *MemoryStore, *recorder) {
	t.Helper()
	persistent := NewFileStore(filepath.Join(t.TempDir(), "token.json"))
	sess := NewMemoryStore(time.Hour)
	nop := zerolog.Nop()
	g := NewGate(auth, persistent, sess, &nop)
	rec := &recorder{}
	g.Subscribe(rec)
	return g, persistent, sess, rec
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1", "exp": exp.Unix()}).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}

func TestBootstrap_NoTokenStaysClosed(t *testing.T) {
	auth := &fakeAuth{}
	g, _, _, rec := newTestGate(t, auth)

	require.NoError(t, g.Bootstrap(context.Background()))
	assert.False(t, g.Authenticated())
	assert.Empty(t, g.Token())
	assert.Equal(t, 0, auth.meCalls)
	assert.Empty(t, rec.get())
}

func TestBootstrap_ValidTokenOpensGate(t *testing.T) {
	auth := &fakeAuth{meUser: &domain.User{ID: "u1", Email: "a@b.test"}}
	g, persistent, _, rec := newTestGate(t, auth)
	token := signed(t, time.Now().Add(time.Hour))
	require.NoError(t, persistent.Save(token))

	require.NoError(t, g.Bootstrap(context.Background()))
	assert.True(t, g.Authenticated())
	assert.Equal(t, token, g.Token())
	assert.Equal(t, "u1", g.User().ID)
	assert.Equal(t, []bool{true}, rec.get())
}

func TestBootstrap_RejectedTokenIsCleared(t *testing.T) {
	auth := &fakeAuth{meErr: domain.ErrorFromStatus(401, "Unauthorized: Invalid token")}
	g, persistent, sess, rec := newTestGate(t, auth)
	require.NoError(t, sess.Save("opaque-token"))

	require.NoError(t, g.Bootstrap(context.Background()))
	assert.False(t, g.Authenticated())
	assert.Empty(t, rec.get(), "closed to closed is not a transition")

	for _, store := range []TokenStore{persistent, sess} {
		tok, err := store.Load()
		require.NoError(t, err)
		assert.Empty(t, tok)
	}
}

func TestBootstrap_ExpiredJWTSkipsNetwork(t *testing.T) {
	auth := &fakeAuth{meUser: &domain.User{ID: "u1"}}
	g, persistent, _, _ := newTestGate(t, auth)
	require.NoError(t, persistent.Save(signed(t, time.Now().Add(-time.Minute))))

	require.NoError(t, g.Bootstrap(context.Background()))
	assert.False(t, g.Authenticated())
	assert.Equal(t, 0, auth.meCalls)

	tok, _ := persistent.Load()
	assert.Empty(t, tok)
}

func TestBootstrap_NetworkFailureKeepsToken(t *testing.T) {
	auth := &fakeAuth{meErr: domain.NewNetworkError("GET /auth/me", context.DeadlineExceeded)}
	g, persistent, _, _ := newTestGate(t, auth)
	require.NoError(t, persistent.Save("opaque-token"))

	err := g.Bootstrap(context.Background())
	assert.ErrorIs(t, err, domain.ErrNetworkFailure)
	assert.False(t, g.Authenticated())

	tok, _ := persistent.Load()
	assert.Equal(t, "opaque-token", tok)
}

func TestBootstrap_PrefersSessionStore(t *testing.T) {
	auth := &fakeAuth{meUser: &domain.User{ID: "u1"}}
	g, persistent, sess, _ := newTestGate(t, auth)
	require.NoError(t, persistent.Save("long-lived"))
	require.NoError(t, sess.Save("session"))

	require.NoError(t, g.Bootstrap(context.Background()))
	assert.Equal(t, "session", g.Token())
}

func TestLogin_StoresAreMutuallyExclusive(t *testing.T) {
	auth := &fakeAuth{loginResp: &domain.LoginResponse{AccessToken: "tok-1", User: &domain.User{ID: "u1"}}}
	g, persistent, sess, rec := newTestGate(t, auth)

	tok, err := g.Login(context.Background(), domain.Credentials{Email: "a@b.test", Password: "pw", Remember: true})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
	p, _ := persistent.Load()
	s, _ := sess.Load()
	assert.Equal(t, "tok-1", p)
	assert.Empty(t, s)

	auth.loginResp = &domain.LoginResponse{AccessToken: "tok-2", User: &domain.User{ID: "u1"}}
	_, err = g.Login(context.Background(), domain.Credentials{Email: "a@b.test", Password: "pw"})
	require.NoError(t, err)
	p, _ = persistent.Load()
	s, _ = sess.Load()
	assert.Empty(t, p)
	assert.Equal(t, "tok-2", s)

	assert.Equal(t, "tok-2", g.Token())
	assert.Equal(t, []bool{true, true}, rec.get())
}

func TestLogin_FailureChangesNothing(t *testing.T) {
	auth := &fakeAuth{loginErr: domain.ErrorFromStatus(401, "bad credentials")}
	g, _, _, rec := newTestGate(t, auth)

	_, err := g.Login(context.Background(), domain.Credentials{Email: "a@b.test", Password: "nope"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.False(t, g.Authenticated())
	assert.Empty(t, rec.get())
}

func TestLogout_IgnoresServerFailureAndClears(t *testing.T) {
	auth := &fakeAuth{
		loginResp: &domain.LoginResponse{AccessToken: "tok-1", User: &domain.User{ID: "u1"}},
		logoutErr: domain.NewNetworkError("POST /auth/logout", context.DeadlineExceeded),
	}
	g, persistent, _, rec := newTestGate(t, auth)
	_, err := g.Login(context.Background(), domain.Credentials{Email: "a@b.test", Password: "pw", Remember: true})
	require.NoError(t, err)

	g.Logout(context.Background())

	assert.False(t, g.Authenticated())
	assert.Nil(t, g.User())
	assert.Empty(t, g.Token())
	assert.Equal(t, []string{"tok-1"}, auth.logoutWith)
	p, _ := persistent.Load()
	assert.Empty(t, p)
	assert.Equal(t, []bool{true, false}, rec.get())
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	auth := &fakeAuth{loginResp: &domain.LoginResponse{AccessToken: "tok", User: &domain.User{ID: "u1"}}}
	g, _, _, _ := newTestGate(t, auth)

	var calls int
	unsubscribe := g.Subscribe(ListenerFunc(func(ctx context.Context, authenticated bool) { calls++ }))
	_, _ = g.Login(context.Background(), domain.Credentials{Email: "a", Password: "b"})
	unsubscribe()
	g.Logout(context.Background())

	assert.Equal(t, 1, calls)
}

func TestListenersSeeOpenGate(t *testing.T) {
	auth := &fakeAuth{loginResp: &domain.LoginResponse{AccessToken: "tok", User: &domain.User{ID: "u1"}}}
	g, _, _, _ := newTestGate(t, auth)

	var seen string
	g.Subscribe(ListenerFunc(func(ctx context.Context, authenticated bool) { seen = g.Token() }))
	_, err := g.Login(context.Background(), domain.Credentials{Email: "a", Password: "b"})
	require.NoError(t, err)
	assert.Equal(t, "tok", seen)
}

func TestFileStore_RoundTripAndPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	store := NewFileStore(path)

	tok, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, store.Save("abc"))
	tok, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear(), "clearing twice is fine")
	tok, _ = store.Load()
	assert.Empty(t, tok)
}

func TestFileStore_CorruptFileReadsAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	tok, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestMemoryStore_Expires(t *testing.T) {
	store := NewMemoryStore(20 * time.Millisecond)
	require.NoError(t, store.Save("abc"))
	tok, _ := store.Load()
	assert.Equal(t, "abc", tok)

	time.Sleep(50 * time.Millisecond)
	tok, _ = store.Load()
	assert.Empty(t, tok)
}
