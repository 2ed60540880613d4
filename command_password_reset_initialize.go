package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// ResetNotifier delivers the reset secret to the account owner,
// typically by email. The secret never appears in logs.
type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, email, fullName, secret string) error
}

type noopResetNotifier struct{}

func (noopResetNotifier) SendPasswordReset(ctx context.Context, email, fullName, secret string) error {
	return nil
}

// InitializePasswordResetMessage starts the forgot-password flow
type InitializePasswordResetMessage struct {
	Email      string `json:"email"`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset" }

// InitializePasswordResetResponse reports the outcome to the caller.
// Issued stays false for unknown emails, the HTTP boundary answers
// with the same generic message either way.
type InitializePasswordResetResponse struct {
	Issued  bool
	Success bool
}

// InitializePasswordResetHandler looks the account up first and only
// then asks the ledger to issue, skipping silently for unknown emails
// so the flow cannot be used to enumerate accounts.
type InitializePasswordResetHandler struct {
	repo     RepositoryManager
	ledger   *ResetLedger
	notifier ResetNotifier
	logger   Logger
}

// NewInitializePasswordResetHandler creates a handler with sane defaults
func NewInitializePasswordResetHandler(repo RepositoryManager, ledger *ResetLedger) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo:     repo,
		ledger:   ledger,
		notifier: noopResetNotifier{},
		logger:   defLogger{},
	}
}

// WithNotifier sets the delivery hook for reset secrets
func (h *InitializePasswordResetHandler) WithNotifier(n ResetNotifier) *InitializePasswordResetHandler {
	if n != nil {
		h.notifier = n
	}
	return h
}

// WithLogger overrides the logger used by the handler
func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	resp := &InitializePasswordResetResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			// unknown email: same outward behavior, no token row
			resp.Success = true
			h.respond(event, resp)
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	secret, err := h.ledger.Issue(ctx, user.ID)
	if err != nil {
		return err
	}

	if err := h.notifier.SendPasswordReset(ctx, user.Email, user.FullName, secret); err != nil {
		// delivery failure is logged, not surfaced: the token row is
		// already committed and the generic response stays the same
		h.logger.Warn("reset notification delivery failed: %v", err)
	}

	resp.Issued = true
	resp.Success = true
	h.respond(event, resp)

	return nil
}

func (h *InitializePasswordResetHandler) respond(event InitializePasswordResetMessage, resp *InitializePasswordResetResponse) {
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}
}
