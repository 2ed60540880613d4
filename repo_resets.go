package auth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PasswordResetTokens persists the reset-token ledger
type PasswordResetTokens interface {
	repository.Repository[*PasswordResetToken]

	GetBySecret(ctx context.Context, secret string) (*PasswordResetToken, error)
	GetBySecretTx(ctx context.Context, tx bun.IDB, secret string) (*PasswordResetToken, error)

	InvalidateActiveTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error
	MarkUsedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
	CountActive(ctx context.Context, userID uuid.UUID) (int, error)
}

type resetTokens struct {
	repository.Repository[*PasswordResetToken]
	db *bun.DB
}

var _ PasswordResetTokens = (*resetTokens)(nil)

// NewPasswordResetTokensRepository builds the ledger repository
func NewPasswordResetTokensRepository(db *bun.DB) PasswordResetTokens {
	repo := repository.NewRepository[*PasswordResetToken](db, repository.ModelHandlers[*PasswordResetToken]{
		NewRecord: func() *PasswordResetToken { return &PasswordResetToken{} },
		GetID: func(record *PasswordResetToken) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *PasswordResetToken, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
		GetIdentifier: func() string {
			return "token"
		},
	})

	return &resetTokens{
		Repository: repo,
		db:         db,
	}
}

func (r *resetTokens) GetBySecret(ctx context.Context, secret string) (*PasswordResetToken, error) {
	return r.GetBySecretTx(ctx, r.db, secret)
}

func (r *resetTokens) GetBySecretTx(ctx context.Context, tx bun.IDB, secret string) (*PasswordResetToken, error) {
	record := &PasswordResetToken{}

	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.token = ?", secret).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			// metadata deliberately omits the secret
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

// InvalidateActiveTx marks every unused token for the account as used.
// Runs inside the issuing transaction so two concurrent issuances
// serialize at the datastore and leave exactly the newest token active.
func (r *resetTokens) InvalidateActiveTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	_, err := tx.NewUpdate().
		Model((*PasswordResetToken)(nil)).
		Set("used = TRUE").
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.used = FALSE").
		Exec(ctx)
	return err
}

func (r *resetTokens) MarkUsedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	res, err := tx.NewUpdate().
		Model((*PasswordResetToken)(nil)).
		Set("used = TRUE").
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.used = FALSE").
		Exec(ctx)
	if err != nil {
		return err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrResetTokenUsed
	}

	return nil
}

func (r *resetTokens) CountActive(ctx context.Context, userID uuid.UUID) (int, error) {
	return r.db.NewSelect().
		Model((*PasswordResetToken)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.used = FALSE").
		Count(ctx)
}
