package auth

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/nyaruka/phonenumbers"
)

// genericResetMessage is returned by the forgot-password flow whether
// or not the email exists, preventing account enumeration
const genericResetMessage = "If an account exists with this email, you will receive password reset instructions."

// invalidResetMessage collapses not-found, already-used, and expired
// reset tokens into one outward message
const invalidResetMessage = "Invalid or expired reset token"

// AuthControllerRoutes holds the route paths
type AuthControllerRoutes struct {
	Register           string
	Login              string
	Logout             string
	Profile            string
	ForgotPassword     string
	ValidateResetToken string
	ResetPassword      string
}

// AuthController exposes the authentication core as a JSON REST API
type AuthController struct {
	Debug    bool
	Logger   Logger
	Repo     RepositoryManager
	Auther   *Auther
	Ledger   *ResetLedger
	Guard    *Guard
	Notifier ResetNotifier
	Routes   *AuthControllerRoutes
}

// AuthControllerOption configures the controller
type AuthControllerOption func(*AuthController) *AuthController

// WithControllerLogger sets the logger
func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = logger
		return c
	}
}

// WithControllerDebug enables verbose payload dumps
func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

// WithRepositoryManager sets the repository manager
func WithRepositoryManager(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

// WithAuthenticator sets the authenticator
func WithAuthenticator(auther *Auther) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

// WithResetLedger sets the reset-token ledger
func WithResetLedger(ledger *ResetLedger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Ledger = ledger
		return c
	}
}

// WithResetNotifier sets the reset delivery hook
func WithResetNotifier(n ResetNotifier) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Notifier = n
		return c
	}
}

// NewAuthController builds a controller, panicking on missing
// collaborators the same way a bad wiring should fail at startup
func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:   defLogger{},
		Notifier: noopResetNotifier{},
		Routes: &AuthControllerRoutes{
			Register:           "/auth/register",
			Login:              "/auth/login",
			Logout:             "/auth/logout",
			Profile:            "/auth/profile",
			ForgotPassword:     "/auth/forgot-password",
			ValidateResetToken: "/auth/validate-reset-token",
			ResetPassword:      "/auth/reset-password",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Ledger == nil {
		c.Ledger = NewResetLedger(c.Repo)
	}

	if c.Guard == nil {
		c.Guard = NewGuard(c.Auther.TokenService())
	}

	return c
}

// RegisterAuthRoutes mounts the auth endpoints on a fiber router
func RegisterAuthRoutes(app fiber.Router, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Register, controller.RegisterPost)
	app.Post(controller.Routes.Login, controller.LoginPost)
	app.Post(controller.Routes.Logout, controller.LogoutPost)
	app.Get(controller.Routes.Profile, controller.Guard.Protected(), controller.ProfileGet)
	app.Post(controller.Routes.ForgotPassword, controller.ForgotPasswordPost)
	app.Get(controller.Routes.ValidateResetToken, controller.ValidateResetTokenGet)
	app.Post(controller.Routes.ResetPassword, controller.ResetPasswordPost)

	return controller
}

// RegisterPayload is the registration request body
type RegisterPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone_number"`
	Role     string `json:"role"`
}

// Validate will run validation rules
func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(MinPasswordLength, 100)),
		validation.Field(&r.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Phone, validation.By(ValidatePhoneNumber)),
		validation.Field(&r.Role, validation.In(string(RoleTenant), string(RoleAgent))),
	)
}

func (a *AuthController) RegisterPost(c *fiber.Ctx) error {
	payload := new(RegisterPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register parse payload: %v", err)
		return badRequest(c, "Failed to parse request body")
	}

	if payload.Role == "" {
		payload.Role = string(RoleTenant)
	}

	if err := payload.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	if a.Debug {
		a.Logger.Debug("register payload: %s", print.MaybePrettyJSON(RegisterPayload{
			Email:    payload.Email,
			FullName: payload.FullName,
			Phone:    payload.Phone,
			Role:     payload.Role,
		}))
	}

	token, user, err := a.Auther.Register(c.Context(), RegisterUserMessage{
		Email:    payload.Email,
		Password: payload.Password,
		FullName: payload.FullName,
		Phone:    payload.Phone,
		Role:     payload.Role,
	})
	if err != nil {
		return a.errorResponse(c, err, "Registration failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful",
		"token":   token,
		"user":    user,
	})
}

// LoginPayload is the login request body
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload: %v", err)
		return badRequest(c, "Failed to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	token, user, err := a.Auther.Login(c.Context(), payload.Email, payload.Password)
	if err != nil {
		return a.errorResponse(c, err, "Login failed")
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

func (a *AuthController) LogoutPost(c *fiber.Ctx) error {
	a.Auther.Logout(c.Context())
	return c.JSON(fiber.Map{
		"message": "Logout successful",
	})
}

func (a *AuthController) ProfileGet(c *fiber.Ctx) error {
	claims, ok := ClaimsFromCtx(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	user, err := a.Repo.Users().GetByID(c.Context(), claims.UserID())
	if err != nil {
		a.Logger.Error("profile lookup: %v", err)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	return c.JSON(fiber.Map{
		"user": user,
	})
}

// ForgotPasswordPayload is the forgot-password request body
type ForgotPasswordPayload struct {
	Email string `json:"email"`
}

// Validate will run validation rules
func (r ForgotPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) ForgotPasswordPost(c *fiber.Ctx) error {
	payload := new(ForgotPasswordPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("forgot password parse payload: %v", err)
		return badRequest(c, "Failed to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return badRequest(c, "Valid email is required")
	}

	handler := NewInitializePasswordResetHandler(a.Repo, a.Ledger).
		WithNotifier(a.Notifier).
		WithLogger(a.Logger)

	if err := handler.Execute(c.Context(), InitializePasswordResetMessage{
		Email: payload.Email,
	}); err != nil {
		a.Logger.Error("forgot password: %v", err)
		return a.errorResponse(c, err, "Failed to process request")
	}

	return c.JSON(fiber.Map{
		"message": genericResetMessage,
	})
}

func (a *AuthController) ValidateResetTokenGet(c *fiber.Ctx) error {
	secret := c.Query("token")
	if secret == "" {
		return badRequest(c, "Token is required")
	}

	if _, err := a.Ledger.Validate(c.Context(), secret); err != nil {
		if IsResetTokenInvalid(err) {
			// detail stays in logs via the error text code
			a.Logger.Info("reset token rejected: %s", textCode(err))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"valid": false,
				"error": invalidResetMessage,
			})
		}
		return a.errorResponse(c, err, "Failed to validate token")
	}

	return c.JSON(fiber.Map{
		"valid":   true,
		"message": "Token is valid",
	})
}

// ResetPasswordPayload is the reset-password request body
type ResetPasswordPayload struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// Validate will run validation rules
func (r ResetPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(MinPasswordLength, 100)),
	)
}

func (a *AuthController) ResetPasswordPost(c *fiber.Ctx) error {
	payload := new(ResetPasswordPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("reset password parse payload: %v", err)
		return badRequest(c, "Failed to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	handler := NewFinalizePasswordResetHandler(a.Ledger).
		WithBcryptCost(a.Auther.bcryptCost).
		WithLogger(a.Logger)

	if err := handler.Execute(c.Context(), FinalizePasswordResetMessage{
		Secret:   payload.Token,
		Password: payload.NewPassword,
	}); err != nil {
		if IsResetTokenInvalid(err) {
			a.Logger.Info("reset token rejected: %s", textCode(err))
			return badRequest(c, invalidResetMessage)
		}
		return a.errorResponse(c, err, "Failed to reset password")
	}

	return c.JSON(fiber.Map{
		"message": "Password reset successful",
	})
}

// errorResponse maps a core error onto an HTTP status and a safe
// outward message. Error kinds keep their detail for telemetry, the
// body never exposes account or token state beyond the category.
func (a *AuthController) errorResponse(c *fiber.Ctx, err error, fallback string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		a.Logger.Error("datastore timeout: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Service temporarily unavailable",
		})
	}

	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		a.Logger.Error("unexpected error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fallback,
		})
	}

	status := statusForCategory(richErr.Category)
	message := richErr.Message
	if status >= fiber.StatusInternalServerError {
		a.Logger.Error("internal error [%s]: %v", richErr.TextCode, err)
		message = fallback
	}

	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func statusForCategory(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return fiber.StatusBadRequest
	case goerrors.CategoryAuth:
		return fiber.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return fiber.StatusForbidden
	case goerrors.CategoryConflict:
		return fiber.StatusConflict
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	case goerrors.CategoryRateLimit:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
	})
}

func textCode(err error) string {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode
	}
	return ""
}

// ValidatePhoneNumber accepts empty values and otherwise requires a
// parseable, valid phone number
func ValidatePhoneNumber(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	num, err := phonenumbers.Parse(s, "US")
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return fmt.Errorf("must be a valid phone number")
	}

	return nil
}
