package memrepo

import (
	"context"
	"fmt"
	"strings"

	"rokomferi-storefront/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

type stubUser struct {
	user         domain.User
	passwordHash string
}

// Users holds the sandbox's known shoppers.
type Users struct {
	byEmail map[string]stubUser
	byID    map[string]stubUser
}

func NewUserRepository() *Users {
	return &Users{
		byEmail: make(map[string]stubUser),
		byID:    make(map[string]stubUser),
	}
}

// Add registers a shopper with a bcrypt hash of password. Emails match
// case-insensitively.
func (r *Users) Add(user domain.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password for %s: %w", user.Email, err)
	}
	u := stubUser{user: user, passwordHash: string(hash)}
	r.byEmail[strings.ToLower(user.Email)] = u
	r.byID[user.ID] = u
	return nil
}

// GetByEmail returns the user and its password hash, or nil, "", nil when
// the email is unknown.
func (r *Users) GetByEmail(ctx context.Context, email string) (*domain.User, string, error) {
	u, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, "", nil
	}
	user := u.user
	return &user, u.passwordHash, nil
}

func (r *Users) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	user := u.user
	return &user, nil
}
