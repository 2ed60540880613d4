package auth

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// Auther orchestrates registration, login, and identity resolution on
// top of the credential store, the password hasher, and the token
// service.
type Auther struct {
	repo         RepositoryManager
	tokenService TokenService
	bcryptCost   int
	logger       Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(repo RepositoryManager, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenTTL(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		repo:         repo,
		tokenService: tokenService,
		bcryptCost:   opts.GetBcryptCost(),
		logger:       defLogger{},
	}
}

// WithLogger overrides the logger
func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenService overrides the token service
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Register creates an account and mints its first bearer token.
// Agents start unverified, verification happens out of band.
func (s *Auther) Register(ctx context.Context, msg RegisterUserMessage) (string, *User, error) {
	handler := &RegisterUserHandler{repo: s.repo, bcryptCost: s.bcryptCost}

	user, err := handler.Execute(ctx, msg)
	if err != nil {
		s.logger.Error("register user: %v", err)
		return "", nil, err
	}

	token, err := s.tokenService.Generate(user)
	if err != nil {
		s.logger.Error("register mint token: %v", err)
		return "", nil, err
	}

	return token, user, nil
}

// Login verifies credentials and mints a bearer token. Unknown email
// and wrong password fail identically so callers cannot enumerate
// accounts.
func (s *Auther) Login(ctx context.Context, email, password string) (string, *User, error) {
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return "", nil, ErrInvalidCredentials
		}
		s.logger.Error("login lookup: %v", err)
		return "", nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokenService.Generate(user)
	if err != nil {
		s.logger.Error("login mint token: %v", err)
		return "", nil, err
	}

	return token, user, nil
}

// ClaimsFromAuthorization extracts and validates a bearer token from
// an Authorization header value, tolerating an optional scheme prefix.
func (s *Auther) ClaimsFromAuthorization(authorization string) (AuthClaims, error) {
	raw := StripBearerPrefix(authorization)
	if raw == "" {
		return nil, ErrUnauthorized
	}

	return s.tokenService.Validate(raw)
}

// CurrentIdentity resolves the account behind an Authorization header.
// A missing or invalid token resolves to Anonymous (nil account, nil
// error), resolution failure is a state, not an error.
func (s *Auther) CurrentIdentity(ctx context.Context, authorization string) (*User, error) {
	claims, err := s.ClaimsFromAuthorization(authorization)
	if err != nil {
		return nil, nil
	}

	user, err := s.repo.Users().GetByID(ctx, claims.UserID())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		s.logger.Error("current identity lookup: %v", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve identity")
	}

	return user, nil
}

// Logout is a stateless no-op. Bearer tokens carry their own expiry
// and the server keeps no revocation list, so a token issued before
// logout stays valid until it expires. The real effect is the client
// discarding its copy.
func (s *Auther) Logout(ctx context.Context) {
	s.logger.Debug("logout requested, token discard is client side")
}

// StripBearerPrefix removes an optional "Bearer " scheme from an
// Authorization header value.
func StripBearerPrefix(authorization string) string {
	value := strings.TrimSpace(authorization)
	if len(value) > 7 && strings.EqualFold(value[:7], "Bearer ") {
		value = strings.TrimSpace(value[7:])
	}
	return value
}
