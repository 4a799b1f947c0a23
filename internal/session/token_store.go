package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	infracache "rokomferi-storefront/internal/infrastructure/cache"
	"rokomferi-storefront/pkg/cache"

	"github.com/goccy/go-json"
)

// TokenStore persists the access token between runs.
// Load returns "" with a nil error when nothing is stored.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// --- Long-lived store ---

type persistedToken struct {
	AccessToken string    `json:"accessToken"`
	SavedAt     time.Time `json:"savedAt"`
}

// FileStore keeps the token in a JSON file readable only by the owner.
// It backs "remember me" logins.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading token file: %w", err)
	}

	var pt persistedToken
	if err := json.Unmarshal(raw, &pt); err != nil {
		// A corrupt file is the same as no file; the next Save rewrites it.
		return "", nil
	}
	return pt.AccessToken, nil
}

func (s *FileStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(persistedToken{AccessToken: token, SavedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating token dir: %w", err)
	}

	// Write then rename so a crash never leaves a half-written token.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".token-*")
	if err != nil {
		return fmt.Errorf("creating temp token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("writing token: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("securing token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing token file: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}

// --- Session-scoped store ---

const sessionTokenKey = "access_token"

// MemoryStore keeps the token for the life of the process, bounded by a TTL.
type MemoryStore struct {
	cache cache.CacheService
	ttl   time.Duration
}

// NewMemoryStore creates a session store whose token expires after ttl.
// A non-positive ttl keeps it until Clear.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return NewMemoryStoreWithCache(infracache.NewMemoryCache(-1, 0), ttl)
}

// NewMemoryStoreWithCache builds a session store on an existing cache.
func NewMemoryStoreWithCache(c cache.CacheService, ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = -1
	}
	return &MemoryStore{cache: c, ttl: ttl}
}

func (s *MemoryStore) Load() (string, error) {
	v, ok := s.cache.Get(sessionTokenKey)
	if !ok {
		return "", nil
	}
	token, _ := v.(string)
	return token, nil
}

func (s *MemoryStore) Save(token string) error {
	s.cache.Set(sessionTokenKey, token, s.ttl)
	return nil
}

func (s *MemoryStore) Clear() error {
	s.cache.Delete(sessionTokenKey)
	return nil
}
