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

type profileService struct {
	txManager repository.TransactionManager
	phones    service.PhoneNormalizer
	clock     service.Clock
	logger    *slog.Logger
}

// ProfileServiceParams holds dependencies for ProfileService, injected by Fx.
type ProfileServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Phones    service.PhoneNormalizer
	Clock     service.Clock
	Logger    *slog.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(params ProfileServiceParams) usecase.ProfileUsecase {
	return &profileService{
		txManager: params.TxManager,
		phones:    params.Phones,
		clock:     params.Clock,
		logger:    params.Logger,
	}
}

func (srv *profileService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetProfile retrieves the account of the caller.
func (srv *profileService) GetProfile(ctx context.Context, accountID uuid.UUID) (*entity.Account, error) {
	var account *entity.Account

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.AccountRepo().FindByID(ctx, accountID)
		if errors.Is(err, repository.ErrAccountNotFound) {
			return errors.WithStack(domainerrors.ErrAccountNotFound)
		}
		if err != nil {
			return errors.Wrap(err, "failed to find account")
		}
		account = found

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get profile")
	}

	return account, nil
}

// UpdateProfile changes the name and phone fields. An empty phone clears it.
func (srv *profileService) UpdateProfile(ctx context.Context, accountID uuid.UUID, input *usecase.UpdateProfileInput) (*entity.Account, error) {
	phone := input.Phone
	if phone != nil && *phone != "" {
		normalized, err := srv.phones.Normalize(*phone)
		if err != nil {
			return nil, errors.Wrap(domainerrors.ErrInvalidPhone, err.Error())
		}
		phone = &normalized
	}

	var account *entity.Account
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		found, err := accountRepo.FindByID(ctx, accountID)
		if errors.Is(err, repository.ErrAccountNotFound) {
			return errors.WithStack(domainerrors.ErrAccountNotFound)
		}
		if err != nil {
			return errors.Wrap(err, "failed to find account")
		}

		found.UpdateProfile(input.FirstName, input.LastName, phone, srv.clock.Now())
		if err := accountRepo.Update(ctx, found); err != nil {
			return errors.Wrap(err, "failed to update account")
		}
		account = found

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update profile")
	}

	srv.log(ctx).Info("Profile updated", slog.Any("account_id", accountID))

	return account, nil
}
