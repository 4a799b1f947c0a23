package middleware

import (
	"context"
	"net/http"

	"rokomferi-storefront/internal/domain"
	"rokomferi-storefront/pkg/logger"
	"rokomferi-storefront/pkg/utils"
)

// RevocationChecker reports tokens that were logged out.
type RevocationChecker interface {
	IsRevoked(token string) bool
}

// NewAuthMiddleware rejects requests without a valid, unrevoked bearer
// token and puts the token's user into the request context.
func NewAuthMiddleware(revocation RevocationChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Get Token from Header or Cookie
			tokenString := utils.BearerToken(r)
			if tokenString == "" {
				http.Error(w, "Unauthorized: No token provided", http.StatusUnauthorized)
				return
			}

			// 2. Validate Token
			claims, err := utils.ParseClaims(tokenString)
			if err != nil {
				http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
				return
			}
			if revocation != nil && revocation.IsRevoked(tokenString) {
				http.Error(w, "Unauthorized: Token revoked", http.StatusUnauthorized)
				return
			}

			// 3. Set Context
			// The user comes from the token claims to avoid a lookup per request.
			user := &domain.User{
				ID:    claims.UserID,
				Email: claims.Email,
				Role:  claims.Role,
			}

			ctx := context.WithValue(r.Context(), domain.UserContextKey, user)
			userLogger := logger.WithUserID(*logger.WithContext(ctx), user.ID)
			ctx = logger.NewContext(ctx, &userLogger)
			traceUser(ctx, user.ID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user set by the auth middleware.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(domain.UserContextKey).(*domain.User)
	return user, ok && user != nil
}
