package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes surfaced for telemetry. The HTTP boundary collapses most
// of these into generic messages so callers cannot probe account or
// token state, the codes keep the distinction available in logs.
const (
	TextCodeInvalidCreds     = "INVALID_CREDENTIALS"
	TextCodeDuplicateEmail   = "DUPLICATE_EMAIL"
	TextCodeWeakPassword     = "WEAK_PASSWORD"
	TextCodeInvalidRole      = "INVALID_ROLE"
	TextCodeTokenExpired     = "TOKEN_EXPIRED"
	TextCodeTokenMalformed   = "TOKEN_MALFORMED"
	TextCodeResetNotFound    = "RESET_TOKEN_NOT_FOUND"
	TextCodeResetAlreadyUsed = "RESET_TOKEN_ALREADY_USED"
	TextCodeResetExpired     = "RESET_TOKEN_EXPIRED"
	TextCodeUnauthorized     = "UNAUTHORIZED"
	TextCodeForbidden        = "FORBIDDEN"
	TextCodeEmptyPassword    = "EMPTY_PASSWORD"
	TextCodeStoreUnavailable = "STORE_UNAVAILABLE"
)

// ErrInvalidCredentials covers both unknown email and wrong password,
// deliberately indistinguishable to prevent account enumeration.
var ErrInvalidCredentials = errors.New("invalid email or password", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrDuplicateEmail is returned when registering an email that exists
var ErrDuplicateEmail = errors.New("email already registered", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateEmail)

// ErrWeakPassword is returned for passwords shorter than the minimum
var ErrWeakPassword = errors.New("password must be at least 6 characters", errors.CategoryValidation).
	WithTextCode(TextCodeWeakPassword)

// ErrInvalidRole is returned for roles outside the self-register set
var ErrInvalidRole = errors.New("invalid role, must be tenant or agent", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidRole)

// ErrTokenExpired marks bearer tokens past their expiry
var ErrTokenExpired = errors.New("authentication token has expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed marks structurally broken or badly signed tokens
var ErrTokenMalformed = errors.New("invalid authentication token", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed)

// ErrResetTokenNotFound means no ledger row matches the secret
var ErrResetTokenNotFound = errors.New("invalid reset token", errors.CategoryNotFound).
	WithTextCode(TextCodeResetNotFound)

// ErrResetTokenUsed means the matched token was already consumed
var ErrResetTokenUsed = errors.New("this reset link has already been used", errors.CategoryConflict).
	WithTextCode(TextCodeResetAlreadyUsed)

// ErrResetTokenExpired means the matched token is past its expiry
var ErrResetTokenExpired = errors.New("this reset link has expired", errors.CategoryValidation).
	WithTextCode(TextCodeResetExpired)

// ErrUnauthorized is returned when a protected route has no valid identity
var ErrUnauthorized = errors.New("unauthorized, invalid or expired token", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthorized)

// ErrForbidden is returned when a valid identity lacks the required role
var ErrForbidden = errors.New("forbidden, insufficient permissions", errors.CategoryAuthz).
	WithTextCode(TextCodeForbidden)

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// ErrMismatchedHashAndPassword is the bcrypt mismatch normalized
var ErrMismatchedHashAndPassword = errors.New("hashed password mismatch", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// IsResetTokenInvalid groups the three reset token failure modes that
// the boundary collapses into a single generic response.
func IsResetTokenInvalid(err error) bool {
	return errors.Is(err, ErrResetTokenNotFound) ||
		errors.Is(err, ErrResetTokenUsed) ||
		errors.Is(err, ErrResetTokenExpired)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTokenExpired) || strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
