package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	LogLevel string
	// Storefront API (client side)
	APIBaseURL        string
	RequestTimeout    time.Duration
	BackgroundTimeout time.Duration
	RateLimitRPS      float64
	RateLimitBurst    int
	// Token persistence
	TokenFile  string
	SessionTTL time.Duration
	// Business Rules
	MaxCartQuantity int
	// Sandbox API (server side)
	Port              string
	JWTSecret         string
	AllowedOrigin     string
	AccessTokenExpiry time.Duration
	StubUserEmail     string
	StubUserPassword  string
}

func LoadConfig() *Config {
	// 1. Check if a specific config file is requested via env var
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		}
	} else {
		// 2. Default fallback: .env is optional, system env vars win either way.
		_ = godotenv.Load()
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("CRITICAL: %v", err)
	}
	return cfg
}

// FromEnv builds a Config from the process environment without loading dotenv files.
func FromEnv() *Config {
	return &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		APIBaseURL:        getEnv("API_BASE_URL", "http://localhost:8080/api/v1"),
		RequestTimeout:    getDurationEnv("REQUEST_TIMEOUT", 10*time.Second),
		BackgroundTimeout: getDurationEnv("BACKGROUND_TIMEOUT", 15*time.Second),
		RateLimitRPS:      getFloatEnv("RATE_LIMIT_RPS", 20),
		RateLimitBurst:    getIntEnv("RATE_LIMIT_BURST", 40),

		TokenFile:  getEnv("TOKEN_FILE", defaultTokenFile()),
		SessionTTL: getDurationEnv("SESSION_TTL", 12*time.Hour),

		// Business rules: 1000 max cart quantity
		MaxCartQuantity: getIntEnv("MAX_CART_QUANTITY", 1000),

		Port:              getEnv("PORT", "8080"),
		JWTSecret:         getEnv("JWT_SECRET", "default_secret_CHANGE_ME"),
		AllowedOrigin:     getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		AccessTokenExpiry: getDurationEnv("ACCESS_TOKEN_EXPIRY", 24*time.Hour),
		StubUserEmail:     getEnv("STUB_USER_EMAIL", "shopper@rokomferi.test"),
		StubUserPassword:  getEnv("STUB_USER_PASSWORD", "rokomferi"),
	}
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL %q is not an absolute URL", c.APIBaseURL)
	}
	if c.MaxCartQuantity < 1 {
		return fmt.Errorf("MAX_CART_QUANTITY must be at least 1, got %d", c.MaxCartQuantity)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.JWTSecret == "default_secret_CHANGE_ME" && c.Env == "production" {
		log.Println("WARNING: Using default JWT secret. Setting up for failure in production.")
	}
	return nil
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "rokomferi", "token.json")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}
