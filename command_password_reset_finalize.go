package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// FinalizePasswordResetMessage completes the reset flow
type FinalizePasswordResetMessage struct {
	Secret   string `json:"token"`
	Password string `json:"new_password"`
}

func (p FinalizePasswordResetMessage) Type() string { return "user.password_reset_finalize" }

// FinalizePasswordResetHandler hashes the replacement password and
// hands it to the ledger, which consumes the token and swaps the hash
// in one transaction.
type FinalizePasswordResetHandler struct {
	ledger     *ResetLedger
	bcryptCost int
	logger     Logger
}

// NewFinalizePasswordResetHandler creates a handler with sane defaults.
func NewFinalizePasswordResetHandler(ledger *ResetLedger) *FinalizePasswordResetHandler {
	return &FinalizePasswordResetHandler{
		ledger:     ledger,
		bcryptCost: DefaultBcryptCost,
		logger:     defLogger{},
	}
}

// WithBcryptCost overrides the hashing work factor
func (h *FinalizePasswordResetHandler) WithBcryptCost(cost int) *FinalizePasswordResetHandler {
	if cost > 0 {
		h.bcryptCost = cost
	}
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *FinalizePasswordResetHandler) WithLogger(logger Logger) *FinalizePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if len(event.Password) < MinPasswordLength {
		return ErrWeakPassword
	}

	passwordHash, err := HashPasswordCost(event.Password, h.bcryptCost)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash replacement password")
	}

	userID, err := h.ledger.Consume(ctx, event.Secret, passwordHash)
	if err != nil {
		return err
	}

	h.logger.Info("password reset finalized for account %s", userID)
	return nil
}
