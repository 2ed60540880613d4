package auth

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig contains runtime configuration values. It satisfies the
// Config interface consumed by the authentication core.
type AppConfig struct {
	Environment   string
	HTTPPort      string
	DatabaseDSN   string
	SigningKey    string
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration
	BcryptCost    int
	Issuer        string
	Audience      []string
	Debug         bool
}

var _ Config = (*AppConfig)(nil)

// LoadConfig reads configuration from environment variables with sane
// defaults. A .env file is honored when present.
func LoadConfig() (*AppConfig, error) {
	_ = godotenv.Load()

	signingKey := strings.TrimSpace(os.Getenv("AUTH_SIGNING_KEY"))
	if signingKey == "" {
		return nil, fmt.Errorf("AUTH_SIGNING_KEY is required")
	}

	cfg := &AppConfig{
		Environment:   getEnv("APP_ENV", "development"),
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:   getEnv("DATABASE_DSN", "file::memory:?cache=shared"),
		SigningKey:    signingKey,
		TokenTTL:      getDuration("AUTH_TOKEN_TTL", DefaultTokenTTL),
		ResetTokenTTL: getDuration("AUTH_RESET_TOKEN_TTL", DefaultResetTokenTTL),
		BcryptCost:    getInt("AUTH_BCRYPT_COST", DefaultBcryptCost),
		Issuer:        getEnv("AUTH_ISSUER", ""),
		Audience:      getList("AUTH_AUDIENCE", nil),
		Debug:         getBool("AUTH_DEBUG", false),
	}

	return cfg, nil
}

// GetSigningKey implements Config
func (c *AppConfig) GetSigningKey() string { return c.SigningKey }

// GetTokenTTL implements Config
func (c *AppConfig) GetTokenTTL() time.Duration { return c.TokenTTL }

// GetResetTokenTTL implements Config
func (c *AppConfig) GetResetTokenTTL() time.Duration { return c.ResetTokenTTL }

// GetBcryptCost implements Config
func (c *AppConfig) GetBcryptCost() int { return c.BcryptCost }

// GetIssuer implements Config
func (c *AppConfig) GetIssuer() string { return c.Issuer }

// GetAudience implements Config
func (c *AppConfig) GetAudience() []string { return c.Audience }

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(v) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func getList(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok {
		parts := strings.Split(v, ",")
		var cleaned []string
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) > 0 {
			return cleaned
		}
	}
	return def
}
