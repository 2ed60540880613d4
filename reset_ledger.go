package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultResetTokenTTL keeps reset links short lived
const DefaultResetTokenTTL = time.Hour

// resetSecretBytes gives 256 bits of entropy, rendered as 64 hex chars
const resetSecretBytes = 32

// ResetLedger issues, validates, and consumes single use password
// reset tokens. Every mutation runs inside one datastore transaction,
// there is no in-process locking.
type ResetLedger struct {
	repo   RepositoryManager
	ttl    time.Duration
	logger Logger
	now    func() time.Time
}

// ResetLedgerOption customizes a ResetLedger
type ResetLedgerOption func(*ResetLedger)

// WithResetTTL overrides the token lifetime
func WithResetTTL(ttl time.Duration) ResetLedgerOption {
	return func(l *ResetLedger) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithResetClock overrides the clock, used by expiry tests
func WithResetClock(now func() time.Time) ResetLedgerOption {
	return func(l *ResetLedger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithResetLogger overrides the logger
func WithResetLogger(logger Logger) ResetLedgerOption {
	return func(l *ResetLedger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewResetLedger returns a ledger bound to the given repositories
func NewResetLedger(repo RepositoryManager, opts ...ResetLedgerOption) *ResetLedger {
	l := &ResetLedger{
		repo:   repo,
		ttl:    DefaultResetTokenTTL,
		logger: defLogger{},
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	return l
}

// Issue invalidates every unused token for the account and persists a
// fresh one, returning its secret. Invalidate-then-insert executes in
// a single transaction so concurrent calls cannot leave two active
// tokens behind.
func (l *ResetLedger) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	secret, err := newResetSecret()
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate reset secret")
	}

	now := l.now()
	token := &PasswordResetToken{
		ID:        uuid.New(),
		UserID:    userID,
		Secret:    secret,
		ExpiresAt: now.Add(l.ttl),
	}

	err = l.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := l.repo.PasswordResetTokens().InvalidateActiveTx(ctx, tx, userID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to invalidate prior reset tokens")
		}

		if _, err := l.repo.PasswordResetTokens().CreateTx(ctx, tx, token); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist reset token")
		}

		return nil
	})

	if err != nil {
		return "", err
	}

	return secret, nil
}

// Validate checks a secret without mutating the ledger. It reports
// NotFound, AlreadyUsed, or Expired through the dedicated errors;
// callers collapse those before they reach the end user.
func (l *ResetLedger) Validate(ctx context.Context, secret string) (uuid.UUID, error) {
	token, err := l.repo.PasswordResetTokens().GetBySecret(ctx, secret)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return uuid.Nil, ErrResetTokenNotFound
		}
		return uuid.Nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up reset token")
	}

	if err := l.check(token); err != nil {
		return uuid.Nil, err
	}

	return token.UserID, nil
}

// Consume performs the same checks as Validate and, when the token is
// good, marks it used and swaps the account's password hash in one
// transaction. Both writes commit together or neither does.
func (l *ResetLedger) Consume(ctx context.Context, secret, newPasswordHash string) (uuid.UUID, error) {
	var userID uuid.UUID

	err := l.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		token, err := l.repo.PasswordResetTokens().GetBySecretTx(ctx, tx, secret)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrResetTokenNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up reset token")
		}

		if err := l.check(token); err != nil {
			return err
		}

		if err := l.repo.Users().UpdatePasswordTx(ctx, tx, token.UserID, newPasswordHash); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update account password")
		}

		if err := l.repo.PasswordResetTokens().MarkUsedTx(ctx, tx, token.ID); err != nil {
			return err
		}

		userID = token.UserID
		return nil
	})

	if err != nil {
		return uuid.Nil, err
	}

	return userID, nil
}

func (l *ResetLedger) check(token *PasswordResetToken) error {
	if token.Used {
		return ErrResetTokenUsed
	}

	if token.IsExpired(l.now()) {
		return ErrResetTokenExpired
	}

	return nil
}

func newResetSecret() (string, error) {
	buf := make([]byte, resetSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
