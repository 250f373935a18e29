package handler

import (
	"log/slog"
	"net/http"

	"accounts/internal/delivery/http/response"
	"accounts/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// AccountHandlerParams holds dependencies for AccountHandler, injected by Fx.
type AccountHandlerParams struct {
	fx.In

	AccountUC usecase.AccountUsecase
	Logger    *slog.Logger
}

// AccountHandler serves the unauthenticated, token-gated account flows.
type AccountHandler struct {
	accountUC usecase.AccountUsecase
	logger    *slog.Logger
}

// NewAccountHandler is the constructor for AccountHandler
func NewAccountHandler(params AccountHandlerParams) *AccountHandler {
	return &AccountHandler{
		accountUC: params.AccountUC,
		logger:    params.Logger,
	}
}

// RegisterRequest represents the request body for registering an account
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,max=128"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
}

// ConfirmPasswordResetRequest represents the request body for completing a password reset
type ConfirmPasswordResetRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// Register handles account registration
func (h *AccountHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	output, err := h.accountUC.Register(c.Request().Context(), &usecase.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	// The stored account belongs to whoever registered the address first.
	if output.Resent {
		return response.Success(c, http.StatusOK, nil, "Verification email sent")
	}

	return response.Success(c, http.StatusCreated, newAccountResponse(output.Account), "Account registered, check your email to verify it")
}

// VerifyEmail consumes a verify_email token
func (h *AccountHandler) VerifyEmail(c echo.Context) error {
	var req TokenRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid verification input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	account, err := h.accountUC.VerifyEmail(c.Request().Context(), req.Token)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newAccountResponse(account), "Email verified")
}

// ResendVerification always answers the same way, whether or not the address is known
func (h *AccountHandler) ResendVerification(c echo.Context) error {
	var req EmailRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid email input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.accountUC.ResendVerification(c.Request().Context(), req.Email); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusAccepted, nil, "If the address needs verification, an email has been sent")
}

// RequestPasswordReset always answers the same way, whether or not the address is known
func (h *AccountHandler) RequestPasswordReset(c echo.Context) error {
	var req EmailRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid email input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.accountUC.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusAccepted, nil, "If an account exists for the address, a reset email has been sent")
}

// ConfirmPasswordReset consumes a reset_password token and sets the new password
func (h *AccountHandler) ConfirmPasswordReset(c echo.Context) error {
	var req ConfirmPasswordResetRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid password reset input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.accountUC.ConfirmPasswordReset(c.Request().Context(), &usecase.ConfirmPasswordResetInput{
		Token:       req.Token,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Password has been reset")
}

// ConfirmEmailChange consumes a change_email token and commits the new address
func (h *AccountHandler) ConfirmEmailChange(c echo.Context) error {
	var req TokenRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid email change input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	account, err := h.accountUC.ConfirmEmailChange(c.Request().Context(), req.Token)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newAccountResponse(account), "Email address changed")
}

// CancelEmailChange aborts a pending email change from the link sent to the old address
func (h *AccountHandler) CancelEmailChange(c echo.Context) error {
	var req TokenRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid email change input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.accountUC.CancelEmailChange(c.Request().Context(), req.Token); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Email change cancelled")
}
