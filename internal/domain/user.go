package domain

import (
	"context"
)

type ContextKey string

const UserContextKey ContextKey = "user"

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Credentials are what a shopper logs in with.
// Remember selects the long-lived token store over the session one.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"-"`
}

// LoginResponse is the body of POST /auth/login.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	User        *User  `json:"user"`
}

// MeResponse is the body of GET /auth/me.
type MeResponse struct {
	User *User `json:"user"`
}

// TokenSource hands out the current bearer token, "" when signed out.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to a TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// AuthRemote is the authentication surface of the storefront API.
type AuthRemote interface {
	Login(ctx context.Context, creds Credentials) (*LoginResponse, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, token string) (*User, error)
}

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, string, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
