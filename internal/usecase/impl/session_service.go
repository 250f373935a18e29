package impl

import (
	"context"
	"log/slog"

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

// sessionService implements the SessionUsecase interface on top of the session issuer.
type sessionService struct {
	txManager repository.TransactionManager
	issuer    service.SessionIssuer
	hasher    service.PasswordHasher
	clock     service.Clock
	logger    *slog.Logger
}

// SessionServiceParams holds dependencies for SessionService, injected by Fx.
type SessionServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Issuer    service.SessionIssuer
	Hasher    service.PasswordHasher
	Clock     service.Clock
	Logger    *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	return &sessionService{
		txManager: params.TxManager,
		issuer:    params.Issuer,
		hasher:    params.Hasher,
		clock:     params.Clock,
		logger:    params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Login checks the credentials and opens a session.
func (srv *sessionService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.SessionOutput, error) {
	email := entity.NormalizeEmail(input.Email)

	var output *usecase.SessionOutput
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		account, err := repoFactory.AccountRepo().FindByEmail(ctx, email)
		if errors.Is(err, repository.ErrAccountNotFound) {
			srv.hasher.CheckUnknown(input.Password)

			return errors.WithStack(domainerrors.ErrInvalidCredentials)
		}
		if err != nil {
			return errors.Wrap(err, "failed to find account")
		}

		if !srv.hasher.Check(input.Password, account.PasswordHash) {
			return errors.WithStack(domainerrors.ErrInvalidCredentials)
		}
		if !account.IsActive {
			return errors.WithStack(domainerrors.ErrAccountInactive)
		}

		output, err = srv.openSession(ctx, repoFactory.RefreshTokenRepo(), account)

		return err
	})
	if err != nil {
		srv.log(ctx).Warn("Login failed", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to log in")
	}

	srv.log(ctx).Info("Login successful", slog.Any("account_id", output.Account.ID))

	return output, nil
}

// Refresh rotates a refresh credential: the presented one is revoked and a new pair issued.
func (srv *sessionService) Refresh(ctx context.Context, refreshToken string) (*usecase.SessionOutput, error) {
	claims, err := srv.issuer.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrRefreshTokenInvalid, err.Error())
	}

	var output *usecase.SessionOutput
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		refreshRepo := repoFactory.RefreshTokenRepo()
		hash := srv.issuer.HashToken(refreshToken)

		session, err := refreshRepo.FindByHash(ctx, hash)
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return errors.WithStack(domainerrors.ErrRefreshTokenInvalid)
		}
		if err != nil {
			return errors.Wrap(err, "failed to find session")
		}
		if session.AccountID != claims.AccountID || session.IsExpiredAt(srv.clock.Now()) {
			return errors.WithStack(domainerrors.ErrRefreshTokenInvalid)
		}

		if err := refreshRepo.DeleteByHash(ctx, hash); err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				return errors.WithStack(domainerrors.ErrRefreshTokenInvalid)
			}

			return errors.Wrap(err, "failed to revoke session")
		}

		account, err := repoFactory.AccountRepo().FindByID(ctx, session.AccountID)
		if errors.Is(err, repository.ErrAccountNotFound) {
			return errors.WithStack(domainerrors.ErrRefreshTokenInvalid)
		}
		if err != nil {
			return errors.Wrap(err, "failed to find account")
		}
		if !account.IsActive {
			return errors.WithStack(domainerrors.ErrAccountInactive)
		}

		output, err = srv.openSession(ctx, refreshRepo, account)

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to refresh session")
	}

	return output, nil
}

// Logout revokes a single refresh credential owned by the caller.
func (srv *sessionService) Logout(ctx context.Context, accountID uuid.UUID, refreshToken string) error {
	claims, err := srv.issuer.ValidateRefreshToken(refreshToken)
	if err != nil {
		return errors.Wrap(domainerrors.ErrRefreshTokenInvalid, err.Error())
	}
	if claims.AccountID != accountID {
		return errors.WithStack(domainerrors.ErrRefreshTokenInvalid)
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		err := repoFactory.RefreshTokenRepo().DeleteByHash(ctx, srv.issuer.HashToken(refreshToken))
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return errors.WithStack(domainerrors.ErrRefreshTokenInvalid)
		}

		return errors.Wrap(err, "failed to revoke session")
	})
	if err != nil {
		return errors.Wrap(err, "failed to log out")
	}

	srv.log(ctx).Info("Logout successful", slog.Any("account_id", claims.AccountID))

	return nil
}

// LogoutAll revokes every session of the account.
func (srv *sessionService) LogoutAll(ctx context.Context, accountID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return errors.Wrap(repoFactory.RefreshTokenRepo().DeleteByAccountID(ctx, accountID), "failed to revoke sessions")
	})
	if err != nil {
		return errors.Wrap(err, "failed to log out everywhere")
	}

	srv.log(ctx).Info("All sessions revoked", slog.Any("account_id", accountID))

	return nil
}

func (srv *sessionService) openSession(
	ctx context.Context,
	refreshRepo repository.RefreshTokenRepository,
	account *entity.Account,
) (*usecase.SessionOutput, error) {
	accessToken, refreshToken, err := srv.issuer.GenerateTokens(account.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate session tokens")
	}

	now := srv.clock.Now()
	session := &entity.RefreshToken{
		ID:        uuid.New(),
		AccountID: account.ID,
		TokenHash: srv.issuer.HashToken(refreshToken),
		ExpiresAt: now.Add(srv.issuer.GetRefreshTokenDuration()),
		CreatedAt: now,
	}
	if err := refreshRepo.Create(ctx, session); err != nil {
		return nil, errors.Wrap(err, "failed to store session")
	}

	return &usecase.SessionOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Account:      account,
	}, nil
}
