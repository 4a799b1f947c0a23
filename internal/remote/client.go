// Package remote is the storefront REST client used by the sync layer.
// Every call needs a bearer token; without one it fails with
// domain.ErrUnauthenticated before touching the network.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rokomferi-storefront/internal/domain"
	"rokomferi-storefront/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	pathCart      = "/cart"
	pathCartItems = "/cart/items"
	pathWishlist  = "/wishlist"
	pathLogin     = "/auth/login"
	pathLogout    = "/auth/logout"
	pathMe        = "/auth/me"

	userAgent = "rokomferi-storefront/1.0"

	// maxErrorBody caps how much of an error response is read for its message.
	maxErrorBody = 4 << 10
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RateLimit  float64 // requests per second, <= 0 disables pacing
	Burst      int
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Client talks to the storefront API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	tokens     domain.TokenSource
	log        *zerolog.Logger
}

// NewClient creates a client that reads bearer tokens from tokens.
func NewClient(opts Options, tokens domain.TokenSource) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}

	log := opts.Logger
	if log == nil {
		log = logger.Component("remote")
	}

	return &Client{
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
		tokens:     tokens,
		log:        log,
	}
}

// Cart returns the cart resource bound to this client.
func (c *Client) Cart() *CartClient {
	return &CartClient{c: c}
}

// Wishlist returns the wishlist resource bound to this client.
func (c *Client) Wishlist() *WishlistClient {
	return &WishlistClient{c: c}
}

// Auth returns the authentication endpoints. They take explicit tokens.
func (c *Client) Auth() *AuthClient {
	return &AuthClient{c: c}
}

// bearer returns the current token or an Unauthenticated error.
func (c *Client) bearer() (string, error) {
	if c.tokens == nil {
		return "", domain.NewUnauthenticatedError("no session")
	}
	token := c.tokens.Token()
	if token == "" {
		return "", domain.NewUnauthenticatedError("no active token")
	}
	return token, nil
}

// call performs an authenticated request with the session token.
func (c *Client) call(ctx context.Context, method, path string, body, result interface{}) error {
	token, err := c.bearer()
	if err != nil {
		return err
	}
	return c.callWithToken(ctx, method, path, token, body, result)
}

// callWithToken paces, sends and decodes one request.
// result may be nil when the response body is not needed.
func (c *Client) callWithToken(ctx context.Context, method, path, token string, body, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.NewNetworkError(method+" "+path, err)
	}

	req, err := c.newRequest(ctx, method, path, token, body)
	if err != nil {
		return fmt.Errorf("creating %s %s request: %w", method, path, err)
	}

	start := time.Now()
	status, err := c.do(req, result)
	logger.RemoteCall(c.log, method, path, req.Header.Get("X-Request-ID"), status, time.Since(start), err)
	return err
}

// newRequest creates an HTTP request with Bearer token authentication.
func (c *Client) newRequest(ctx context.Context, method, path, token string, body interface{}) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.New().String()[:8])
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

// do executes the request and decodes the response.
// It returns the HTTP status, 0 when no response arrived.
func (c *Client) do(req *http.Request, result interface{}) (int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, domain.NewNetworkError(req.Method+" "+req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, domain.ErrorFromStatus(resp.StatusCode, errorMessage(body))
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		// A truncated or garbled body is as good as no answer.
		return resp.StatusCode, domain.NewNetworkError(req.Method+" "+req.URL.Path, fmt.Errorf("decoding response: %w", err))
	}
	return resp.StatusCode, nil
}

// errorMessage pulls a human readable message out of an error body.
// The API uses {"error": "..."} and {"message": "..."} interchangeably.
func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(body))
}
