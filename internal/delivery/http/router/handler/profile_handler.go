package handler

import (
	"log/slog"
	"net/http"

	deliverycontext "accounts/internal/delivery/context"
	"accounts/internal/delivery/http/response"
	"accounts/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// ProfileHandlerParams holds dependencies for ProfileHandler, injected by Fx.
type ProfileHandlerParams struct {
	fx.In

	ProfileUC usecase.ProfileUsecase
	AccountUC usecase.AccountUsecase
	Logger    *slog.Logger
}

// ProfileHandler serves the /accounts/me routes of the authenticated caller.
type ProfileHandler struct {
	profileUC usecase.ProfileUsecase
	accountUC usecase.AccountUsecase
	logger    *slog.Logger
}

// NewProfileHandler is the constructor for ProfileHandler
func NewProfileHandler(params ProfileHandlerParams) *ProfileHandler {
	return &ProfileHandler{
		profileUC: params.ProfileUC,
		accountUC: params.AccountUC,
		logger:    params.Logger,
	}
}

// UpdateProfileRequest represents the request body for a profile update. Omitted fields are kept.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=32"`
}

// ChangePasswordRequest represents the request body for a password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// RequestEmailChangeRequest represents the request body for starting an email change
type RequestEmailChangeRequest struct {
	NewEmail string `json:"new_email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
}

// DeleteAccountRequest represents the request body for deleting the account
type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

// DeactivateAccountRequest represents the request body for deactivating the account
type DeactivateAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

// GetProfile returns the caller's account
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	accountID, ok := deliverycontext.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHORIZED", "Invalid account ID in token")
	}

	account, err := h.profileUC.GetProfile(c.Request().Context(), accountID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newAccountResponse(account), "")
}

// UpdateProfile changes the caller's names and phone number
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	accountID, ok := deliverycontext.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHORIZED", "Invalid account ID in token")
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid profile input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	account, err := h.profileUC.UpdateProfile(c.Request().Context(), accountID, &usecase.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newAccountResponse(account), "Profile updated")
}

// ChangePassword replaces the caller's password after checking the old one
func (h *ProfileHandler) ChangePassword(c echo.Context) error {
	accountID, ok := deliverycontext.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHORIZED", "Invalid account ID in token")
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid password change input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.accountUC.ChangePassword(c.Request().Context(), &usecase.ChangePasswordInput{
		AccountID:   accountID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Password changed")
}

// RequestEmailChange starts an email change and mails both addresses
func (h *ProfileHandler) RequestEmailChange(c echo.Context) error {
	accountID, ok := deliverycontext.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHORIZED", "Invalid account ID in token")
	}

	var req RequestEmailChangeRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid email change input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.accountUC.RequestEmailChange(c.Request().Context(), &usecase.RequestEmailChangeInput{
		AccountID: accountID,
		NewEmail:  req.NewEmail,
		Password:  req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusAccepted, nil, "Check the new address to confirm the change")
}

// DeleteAccount removes the caller's account after checking the password
func (h *ProfileHandler) DeleteAccount(c echo.Context) error {
	accountID, ok := deliverycontext.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHORIZED", "Invalid account ID in token")
	}

	var req DeleteAccountRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid delete input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.accountUC.DeleteAccount(c.Request().Context(), &usecase.DeleteAccountInput{
		AccountID: accountID,
		Password:  req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// DeactivateAccount disables sign-in for the caller's account after checking the password
func (h *ProfileHandler) DeactivateAccount(c echo.Context) error {
	accountID, ok := deliverycontext.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHORIZED", "Invalid account ID in token")
	}

	var req DeactivateAccountRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid deactivate input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.accountUC.DeactivateAccount(c.Request().Context(), &usecase.DeactivateAccountInput{
		AccountID: accountID,
		Password:  req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}
