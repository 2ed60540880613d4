package auth

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Logger interface used across the auth components
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated account
type Identity interface {
	GetID() string
	GetEmail() string
	GetRole() string
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Register(ctx context.Context, msg RegisterUserMessage) (string, *User, error)
	Login(ctx context.Context, email, password string) (string, *User, error)
	CurrentIdentity(ctx context.Context, authorization string) (*User, error)
	Logout(ctx context.Context)
}

// TokenService handles bearer token issuance and validation
type TokenService interface {
	Generate(identity Identity) (string, error)
	Validate(tokenString string) (AuthClaims, error)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetTokenTTL() time.Duration
	GetResetTokenTTL() time.Duration
	GetBcryptCost() int
	GetIssuer() string
	GetAudience() []string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(format string) string {
	if strings.HasSuffix(format, "\n") {
		return format
	}
	return format + "\n"
}
