package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlug(t *testing.T) {
	tests := map[string]string{
		"Men's T-Shirt!":     "mens-t-shirt",
		"  Jamdani   Saree ": "jamdani-saree",
		"Linen Shirt":        "linen-shirt",
		"---":                "",
	}
	for in, want := range tests {
		assert.Equal(t, want, GenerateSlug(in), in)
	}
}

func TestJWT_RoundTripAndUniqueness(t *testing.T) {
	SetSecret("utils-test-secret")

	a, err := GenerateJWT("u1", "a@b.test", "customer", time.Hour)
	require.NoError(t, err)
	b, err := GenerateJWT("u1", "a@b.test", "customer", time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "tokens carry a unique id")

	claims, err := ParseClaims(a)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)

	SetSecret("another-secret")
	_, err = ParseClaims(a)
	assert.Error(t, err, "signature no longer matches")
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, BearerToken(r))

	r.AddCookie(&http.Cookie{Name: "accessToken", Value: "from-cookie"})
	assert.Equal(t, "from-cookie", BearerToken(r))

	r.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", BearerToken(r), "header wins over cookie")
}
