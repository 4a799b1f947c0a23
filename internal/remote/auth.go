package remote

import (
	"context"
	"fmt"
	"net/http"

	"rokomferi-storefront/internal/domain"
)

// AuthClient implements domain.AuthRemote. Unlike the resource clients it
// takes tokens explicitly, since it runs while the session is changing.
type AuthClient struct {
	c *Client
}

var _ domain.AuthRemote = (*AuthClient)(nil)

// Login exchanges credentials for an access token.
func (ac *AuthClient) Login(ctx context.Context, creds domain.Credentials) (*domain.LoginResponse, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, domain.NewValidationError("credentials", "email and password are required")
	}

	var resp domain.LoginResponse
	if err := ac.c.callWithToken(ctx, http.MethodPost, pathLogin, "", &creds, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, domain.NewUnauthenticatedError("empty access token from login")
	}
	return &resp, nil
}

// Logout asks the server to invalidate token.
func (ac *AuthClient) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := ac.c.callWithToken(ctx, http.MethodPost, pathLogout, token, nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Me resolves the user behind token.
func (ac *AuthClient) Me(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.NewUnauthenticatedError("no active token")
	}

	var resp domain.MeResponse
	if err := ac.c.callWithToken(ctx, http.MethodGet, pathMe, token, nil, &resp); err != nil {
		return nil, fmt.Errorf("whoami: %w", err)
	}
	if resp.User == nil {
		return nil, domain.NewUnauthenticatedError("no user behind token")
	}
	return resp.User, nil
}
