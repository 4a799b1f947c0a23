package usecase

import (
	"context"
	"strings"
	"time"

	"rokomferi-storefront/internal/domain"
	"rokomferi-storefront/pkg/cache"
	"rokomferi-storefront/pkg/logger"
	"rokomferi-storefront/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

const revokedKeyPrefix = "revoked:"

type AuthUsecase struct {
	userRepo          domain.UserRepository
	revoked           cache.CacheService
	accessTokenExpiry time.Duration
}

// NewAuthUsecase issues access tokens for known users. Logged out tokens
// are kept in revoked until they would have expired.
func NewAuthUsecase(userRepo domain.UserRepository, revoked cache.CacheService, atExpiry time.Duration) *AuthUsecase {
	return &AuthUsecase{
		userRepo:          userRepo,
		revoked:           revoked,
		accessTokenExpiry: atExpiry,
	}
}

func (u *AuthUsecase) Login(ctx context.Context, email, password string) (*domain.LoginResponse, error) {
	log := logger.WithContext(ctx)

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.NewValidationError("credentials", "email and password are required")
	}

	user, hash, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		log.Info().Str("email", email).Msg("Login rejected")
		return nil, domain.NewUnauthenticatedError("invalid email or password")
	}

	accessToken, err := utils.GenerateJWT(user.ID, user.Email, user.Role, u.accessTokenExpiry)
	if err != nil {
		return nil, err
	}

	log.Info().Str("user_id", user.ID).Msg("User authenticated successfully")
	return &domain.LoginResponse{AccessToken: accessToken, User: user}, nil
}

// Logout revokes token. Unknown or already invalid tokens are ignored.
func (u *AuthUsecase) Logout(ctx context.Context, token string) {
	claims, err := utils.ParseClaims(token)
	if err != nil {
		return
	}
	ttl := time.Until(claims.ExpiresAt)
	if claims.ExpiresAt.IsZero() {
		ttl = u.accessTokenExpiry
	}
	if ttl <= 0 {
		return
	}
	u.revoked.Set(revokedKeyPrefix+token, true, ttl)
	logger.WithContext(ctx).Info().Str("user_id", claims.UserID).Msg("Access token revoked")
}

// IsRevoked reports whether token was logged out.
func (u *AuthUsecase) IsRevoked(token string) bool {
	_, revoked := u.revoked.Get(revokedKeyPrefix + token)
	return revoked
}

func (u *AuthUsecase) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NewNotFoundError("user not found")
	}
	return user, nil
}
