package auth_test

import (
	"testing"

	auth "github.com/hauslet/go-auth"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
)

func TestIsResetTokenInvalid(t *testing.T) {
	assert.True(t, auth.IsResetTokenInvalid(auth.ErrResetTokenNotFound))
	assert.True(t, auth.IsResetTokenInvalid(auth.ErrResetTokenUsed))
	assert.True(t, auth.IsResetTokenInvalid(auth.ErrResetTokenExpired))

	assert.False(t, auth.IsResetTokenInvalid(nil))
	assert.False(t, auth.IsResetTokenInvalid(auth.ErrInvalidCredentials))
}

func TestErrorCategories(t *testing.T) {
	cases := []struct {
		name     string
		err      *goerrors.Error
		category goerrors.Category
		textCode string
	}{
		{"invalid credentials", auth.ErrInvalidCredentials, goerrors.CategoryAuth, auth.TextCodeInvalidCreds},
		{"duplicate email", auth.ErrDuplicateEmail, goerrors.CategoryConflict, auth.TextCodeDuplicateEmail},
		{"weak password", auth.ErrWeakPassword, goerrors.CategoryValidation, auth.TextCodeWeakPassword},
		{"token expired", auth.ErrTokenExpired, goerrors.CategoryAuth, auth.TextCodeTokenExpired},
		{"reset not found", auth.ErrResetTokenNotFound, goerrors.CategoryNotFound, auth.TextCodeResetNotFound},
		{"reset used", auth.ErrResetTokenUsed, goerrors.CategoryConflict, auth.TextCodeResetAlreadyUsed},
		{"forbidden", auth.ErrForbidden, goerrors.CategoryAuthz, auth.TextCodeForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.category, tc.err.Category)
			assert.Equal(t, tc.textCode, tc.err.TextCode)
		})
	}
}

func TestIsTokenExpiredError(t *testing.T) {
	assert.True(t, auth.IsTokenExpiredError(auth.ErrTokenExpired))
	assert.False(t, auth.IsTokenExpiredError(nil))
	assert.False(t, auth.IsTokenExpiredError(auth.ErrTokenMalformed))
}
