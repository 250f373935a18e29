package impl

import (
	"context"
	"log/slog"

	"accounts/config"
	deliverycontext "accounts/internal/delivery/context"
	"accounts/internal/domain/entity"
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/domain/repository"
	"accounts/internal/domain/service"
	"accounts/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// accountService implements the AccountUsecase interface.
type accountService struct {
	txManager         repository.TransactionManager
	tokens            usecase.TokenLifecycle
	hasher            service.PasswordHasher
	policy            service.PasswordPolicy
	notifier          service.Notifier
	phones            service.PhoneNormalizer
	clock             service.Clock
	enforceOnRegister bool
	logger            *slog.Logger
}

// AccountServiceParams holds dependencies for AccountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Tokens    usecase.TokenLifecycle
	Hasher    service.PasswordHasher
	Policy    service.PasswordPolicy
	Notifier  service.Notifier
	Phones    service.PhoneNormalizer
	Clock     service.Clock
	Config    *config.Config
	Logger    *slog.Logger
}

// NewAccountService is the constructor for accountService.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	enforceOnRegister := false
	if params.Config != nil && params.Config.PasswordStrength != nil {
		enforceOnRegister = params.Config.PasswordStrength.EnforceOnRegister
	}

	return &accountService{
		txManager:         params.TxManager,
		tokens:            params.Tokens,
		hasher:            params.Hasher,
		policy:            params.Policy,
		notifier:          params.Notifier,
		phones:            params.Phones,
		clock:             params.Clock,
		enforceOnRegister: enforceOnRegister,
		logger:            params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates an unverified account and sends its first verification token.
// An address that belongs to an unverified account gets a fresh verification instead.
func (srv *accountService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	email := entity.NormalizeEmail(input.Email)

	phone, err := srv.normalizePhone(input.Phone)
	if err != nil {
		return nil, err
	}

	if srv.enforceOnRegister {
		candidate := &entity.Account{Email: email, FirstName: input.FirstName, LastName: input.LastName}
		if violations := srv.policy.Check(input.Password, candidate); len(violations) > 0 {
			return nil, errors.WithStack(domainerrors.NewPasswordPolicyError(violations))
		}
	}

	output := &usecase.RegisterOutput{}
	var token *entity.Token

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		existing, err := accountRepo.FindByEmail(ctx, email)
		switch {
		case err == nil:
			if existing.IsEmailVerified {
				return errors.WithStack(domainerrors.ErrAlreadyRegisteredVerified)
			}
			output.Account = existing
			output.Resent = true
		case errors.Is(err, repository.ErrAccountNotFound):
			account, err := srv.createAccount(ctx, accountRepo, email, phone, input)
			if err != nil {
				return err
			}
			output.Account = account
		default:
			return errors.Wrap(err, "failed to look up account by email")
		}

		token, err = srv.tokens.Issue(ctx, repoFactory.TokenRepo(), output.Account.ID, entity.TokenKindVerifyEmail, nil)

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute registration transaction")
	}

	srv.notify(ctx, service.TemplateVerifyEmail, output.Account.Email, token.Value, output.Account)

	if output.Resent {
		srv.log(ctx).Info("Verification email resent", slog.Any("account_id", output.Account.ID))
	} else {
		srv.log(ctx).Info("Account registered", slog.Any("account_id", output.Account.ID))
	}

	return output, nil
}

func (srv *accountService) createAccount(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	email, phone string,
	input *usecase.RegisterInput,
) (*entity.Account, error) {
	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	account := entity.NewAccount(email, hash, input.FirstName, input.LastName, phone, srv.clock.Now())
	if err := accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, errors.WithStack(domainerrors.ErrEmailInUse)
		}

		return nil, errors.Wrap(err, "failed to create account")
	}

	return account, nil
}

// ResendVerification issues another verification token for an unverified account.
// Unknown and verified addresses succeed silently. Earlier tokens stay valid.
func (srv *accountService) ResendVerification(ctx context.Context, email string) error {
	email = entity.NormalizeEmail(email)

	var (
		account *entity.Account
		token   *entity.Token
	)
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.AccountRepo().FindByEmail(ctx, email)
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "failed to look up account by email")
		}
		if found.IsEmailVerified {
			return nil
		}

		account = found
		token, err = srv.tokens.Issue(ctx, repoFactory.TokenRepo(), found.ID, entity.TokenKindVerifyEmail, nil)

		return err
	})
	if err != nil {
		srv.log(ctx).Error("Failed to resend verification", slog.Any("error", err))

		return nil
	}

	if token == nil {
		srv.log(ctx).Info("Verification resend skipped")

		return nil
	}

	srv.notify(ctx, service.TemplateVerifyEmail, account.Email, token.Value, account)
	srv.log(ctx).Info("Verification email resent", slog.Any("account_id", account.ID))

	return nil
}

// VerifyEmail redeems a verify_email token and marks the owner verified.
func (srv *accountService) VerifyEmail(ctx context.Context, value string) (*entity.Account, error) {
	var account *entity.Account

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		_, err := srv.tokens.Redeem(ctx, repoFactory.TokenRepo(), value, entity.TokenKindVerifyEmail,
			srv.lockOwnerInto(ctx, repoFactory.AccountRepo(), &account))
		if err != nil {
			return err
		}

		account.MarkEmailVerified(srv.clock.Now())

		return errors.Wrap(repoFactory.AccountRepo().Update(ctx, account), "failed to update account")
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to verify email")
	}

	srv.log(ctx).Info("Email verified", slog.Any("account_id", account.ID))

	return account, nil
}

// RequestPasswordReset sends a reset token when the address is registered.
// The outcome is the same for every address.
func (srv *accountService) RequestPasswordReset(ctx context.Context, email string) error {
	email = entity.NormalizeEmail(email)

	var (
		account *entity.Account
		token   *entity.Token
	)
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.AccountRepo().FindByEmail(ctx, email)
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "failed to look up account by email")
		}

		account = found
		token, err = srv.tokens.Issue(ctx, repoFactory.TokenRepo(), found.ID, entity.TokenKindResetPassword, nil)

		return err
	})
	if err != nil {
		srv.log(ctx).Error("Password reset request failed", slog.Any("error", err))

		return nil
	}

	if token == nil {
		srv.log(ctx).Info("Password reset requested for unknown address")

		return nil
	}

	srv.notify(ctx, service.TemplateResetPassword, account.Email, token.Value, account)
	srv.log(ctx).Info("Password reset requested", slog.Any("account_id", account.ID))

	return nil
}

// ConfirmPasswordReset checks the new password, redeems the reset token and replaces
// the hash. Every session of the account is revoked.
func (srv *accountService) ConfirmPasswordReset(ctx context.Context, input *usecase.ConfirmPasswordResetInput) error {
	if violations := srv.policy.Check(input.NewPassword, nil); len(violations) > 0 {
		return errors.WithStack(domainerrors.NewPasswordPolicyError(violations))
	}

	hash, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		return errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	var account *entity.Account
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		_, err := srv.tokens.Redeem(ctx, repoFactory.TokenRepo(), input.Token, entity.TokenKindResetPassword,
			srv.lockOwnerInto(ctx, repoFactory.AccountRepo(), &account))
		if err != nil {
			return err
		}

		account.ReplacePasswordHash(hash, srv.clock.Now())
		if err := repoFactory.AccountRepo().Update(ctx, account); err != nil {
			return errors.Wrap(err, "failed to update account")
		}

		return errors.Wrap(repoFactory.RefreshTokenRepo().DeleteByAccountID(ctx, account.ID), "failed to revoke sessions")
	})
	if err != nil {
		return errors.Wrap(err, "failed to confirm password reset")
	}

	srv.log(ctx).Info("Password reset", slog.Any("account_id", account.ID))

	return nil
}

// ChangePassword replaces the password of an authenticated account.
func (srv *accountService) ChangePassword(ctx context.Context, input *usecase.ChangePasswordInput) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		account, err := srv.lockAccount(ctx, accountRepo, input.AccountID)
		if err != nil {
			return err
		}

		if !srv.hasher.Check(input.OldPassword, account.PasswordHash) {
			return errors.WithStack(domainerrors.ErrWrongPassword)
		}

		if violations := srv.policy.Check(input.NewPassword, account); len(violations) > 0 {
			return errors.WithStack(domainerrors.NewPasswordPolicyError(violations))
		}

		hash, err := srv.hasher.Hash(input.NewPassword)
		if err != nil {
			return errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
		}

		account.ReplacePasswordHash(hash, srv.clock.Now())

		return errors.Wrap(accountRepo.Update(ctx, account), "failed to update account")
	})
	if err != nil {
		return errors.Wrap(err, "failed to change password")
	}

	srv.log(ctx).Info("Password changed", slog.Any("account_id", input.AccountID))

	return nil
}

func (srv *accountService) lockAccount(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	accountID uuid.UUID,
) (*entity.Account, error) {
	account, err := accountRepo.FindByIDForUpdate(ctx, accountID)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, errors.WithStack(domainerrors.ErrAccountNotFound)
	}

	return account, errors.Wrap(err, "failed to load account")
}

// RequestEmailChange supersedes earlier change tokens, records the pending address and
// sends one token to both addresses: a confirmation link to the new one and a
// cancellation link to the current one.
func (srv *accountService) RequestEmailChange(ctx context.Context, input *usecase.RequestEmailChangeInput) error {
	newEmail := entity.NormalizeEmail(input.NewEmail)

	var (
		account *entity.Account
		token   *entity.Token
	)
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()
		tokenRepo := repoFactory.TokenRepo()

		found, err := srv.lockAccount(ctx, accountRepo, input.AccountID)
		if err != nil {
			return err
		}

		if !srv.hasher.Check(input.Password, found.PasswordHash) {
			return errors.WithStack(domainerrors.ErrWrongPassword)
		}

		if newEmail == found.Email {
			return errors.WithStack(domainerrors.ErrNoOpChange)
		}

		taken, err := accountRepo.ExistsByEmail(ctx, newEmail)
		if err != nil {
			return errors.Wrap(err, "failed to check email availability")
		}
		if taken {
			return errors.WithStack(domainerrors.ErrEmailInUse)
		}

		if _, err := srv.tokens.Supersede(ctx, tokenRepo, found.ID, entity.TokenKindChangeEmail); err != nil {
			return err
		}

		if err := found.BeginEmailChange(newEmail, srv.clock.Now()); err != nil {
			return errors.WithStack(err)
		}
		if err := accountRepo.Update(ctx, found); err != nil {
			return errors.Wrap(err, "failed to record pending email")
		}

		account = found
		token, err = srv.tokens.Issue(ctx, tokenRepo, found.ID, entity.TokenKindChangeEmail, &newEmail)

		return err
	})
	if err != nil {
		return errors.Wrap(err, "failed to request email change")
	}

	srv.notifyWith(ctx, service.TemplateChangeEmailConfirm, newEmail, token.Value, account, map[string]string{
		"old_email": account.Email,
	})
	srv.notifyWith(ctx, service.TemplateChangeEmailCancel, account.Email, token.Value, account, map[string]string{
		"new_email": newEmail,
	})

	srv.log(ctx).Info("Email change requested", slog.Any("account_id", account.ID))

	return nil
}

// ConfirmEmailChange redeems a change_email token and swaps the primary address.
func (srv *accountService) ConfirmEmailChange(ctx context.Context, value string) (*entity.Account, error) {
	var account *entity.Account

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		token, err := srv.tokens.Redeem(ctx, repoFactory.TokenRepo(), value, entity.TokenKindChangeEmail,
			srv.lockOwnerInto(ctx, accountRepo, &account))
		if err != nil {
			return err
		}
		if token.NewEmail == nil {
			return errors.Errorf("change_email token %s carries no address", token.ID)
		}

		taken, err := accountRepo.ExistsByEmail(ctx, *token.NewEmail)
		if err != nil {
			return errors.Wrap(err, "failed to check email availability")
		}
		if taken {
			return errors.WithStack(domainerrors.ErrEmailInUse)
		}

		account.CommitEmailChange(*token.NewEmail, srv.clock.Now())
		if err := accountRepo.Update(ctx, account); err != nil {
			if errors.Is(err, repository.ErrEmailTaken) {
				return errors.WithStack(domainerrors.ErrEmailInUse)
			}

			return errors.Wrap(err, "failed to update account")
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to confirm email change")
	}

	srv.log(ctx).Info("Email change confirmed", slog.Any("account_id", account.ID))

	return account, nil
}

// CancelEmailChange accepts any change_email token, used or expired, to identify the
// account. It supersedes the outstanding change tokens and clears the pending address.
func (srv *accountService) CancelEmailChange(ctx context.Context, value string) error {
	var account *entity.Account

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		tokenRepo := repoFactory.TokenRepo()

		token, err := srv.tokens.Lookup(ctx, tokenRepo, value, entity.TokenKindChangeEmail)
		if err != nil {
			return err
		}

		account, err = srv.lockOwner(ctx, repoFactory.AccountRepo(), token)
		if err != nil {
			return err
		}

		if _, err := srv.tokens.Supersede(ctx, tokenRepo, account.ID, entity.TokenKindChangeEmail); err != nil {
			return err
		}

		account.ClearPendingEmail(srv.clock.Now())

		return errors.Wrap(repoFactory.AccountRepo().Update(ctx, account), "failed to update account")
	})
	if err != nil {
		return errors.Wrap(err, "failed to cancel email change")
	}

	srv.log(ctx).Info("Email change cancelled", slog.Any("account_id", account.ID))

	return nil
}

// DeleteAccount removes the account after checking its password. Tokens and sessions go with it.
func (srv *accountService) DeleteAccount(ctx context.Context, input *usecase.DeleteAccountInput) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		account, err := srv.lockAccount(ctx, accountRepo, input.AccountID)
		if err != nil {
			return err
		}

		if !srv.hasher.Check(input.Password, account.PasswordHash) {
			return errors.WithStack(domainerrors.ErrWrongPassword)
		}

		if err := repoFactory.TokenRepo().DeleteByAccountID(ctx, account.ID); err != nil {
			return errors.Wrap(err, "failed to delete tokens")
		}
		if err := repoFactory.RefreshTokenRepo().DeleteByAccountID(ctx, account.ID); err != nil {
			return errors.Wrap(err, "failed to delete sessions")
		}

		return errors.Wrap(accountRepo.Delete(ctx, account.ID), "failed to delete account")
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete account")
	}

	srv.log(ctx).Info("Account deleted", slog.Any("account_id", input.AccountID))

	return nil
}

// DeactivateAccount disables sign-in after checking the password. Sessions are revoked,
// outstanding reset and email change links stop working and any pending address is dropped.
func (srv *accountService) DeactivateAccount(ctx context.Context, input *usecase.DeactivateAccountInput) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()
		tokenRepo := repoFactory.TokenRepo()

		account, err := srv.lockAccount(ctx, accountRepo, input.AccountID)
		if err != nil {
			return err
		}

		if !srv.hasher.Check(input.Password, account.PasswordHash) {
			return errors.WithStack(domainerrors.ErrWrongPassword)
		}

		for _, kind := range []entity.TokenKind{entity.TokenKindResetPassword, entity.TokenKindChangeEmail} {
			if _, err := srv.tokens.Supersede(ctx, tokenRepo, account.ID, kind); err != nil {
				return err
			}
		}

		now := srv.clock.Now()
		account.ClearPendingEmail(now)
		account.Deactivate(now)
		if err := accountRepo.Update(ctx, account); err != nil {
			return errors.Wrap(err, "failed to update account")
		}

		return errors.Wrap(repoFactory.RefreshTokenRepo().DeleteByAccountID(ctx, account.ID), "failed to revoke sessions")
	})
	if err != nil {
		return errors.Wrap(err, "failed to deactivate account")
	}

	srv.log(ctx).Info("Account deactivated", slog.Any("account_id", input.AccountID))

	return nil
}

// lockOwner loads the account a token belongs to and locks its row.
// A vanished owner is reported like an unknown token.
func (srv *accountService) lockOwner(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	token *entity.Token,
) (*entity.Account, error) {
	account, err := accountRepo.FindByIDForUpdate(ctx, token.AccountID)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, errors.WithStack(domainerrors.NewTokenError(domainerrors.TokenNotFound))
	}

	return account, errors.Wrap(err, "failed to load token owner")
}

// lockOwnerInto returns a Redeem hook that locks the token owner and stores it in dst.
func (srv *accountService) lockOwnerInto(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	dst **entity.Account,
) func(token *entity.Token) error {
	return func(token *entity.Token) error {
		account, err := srv.lockOwner(ctx, accountRepo, token)
		if err != nil {
			return err
		}
		*dst = account

		return nil
	}
}

func (srv *accountService) normalizePhone(phone string) (string, error) {
	if phone == "" {
		return "", nil
	}

	normalized, err := srv.phones.Normalize(phone)
	if err != nil {
		return "", errors.Wrap(domainerrors.ErrInvalidPhone, err.Error())
	}

	return normalized, nil
}

func (srv *accountService) notify(
	ctx context.Context,
	template service.NotificationTemplate,
	recipient, value string,
	account *entity.Account,
) {
	srv.notifyWith(ctx, template, recipient, value, account, nil)
}

// notifyWith hands a message to the notifier after the state change has committed.
// Delivery failures are logged; the caller can always ask for another message.
func (srv *accountService) notifyWith(
	ctx context.Context,
	template service.NotificationTemplate,
	recipient, value string,
	account *entity.Account,
	extra map[string]string,
) {
	notificationContext := map[string]string{
		"first_name": account.FirstName,
		"name":       account.DisplayName(),
	}
	for k, v := range extra {
		notificationContext[k] = v
	}

	err := srv.notifier.Notify(ctx, &service.Notification{
		Template:  template,
		Recipient: recipient,
		Token:     value,
		Context:   notificationContext,
	})
	if err != nil {
		srv.log(ctx).Error("Failed to send notification",
			slog.String("template", string(template)),
			slog.Any("account_id", account.ID),
			slog.Any("error", err),
		)
	}
}
