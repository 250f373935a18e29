package postgres

import (
	"context"

	"accounts/internal/domain/entity"
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/domain/repository"
	"accounts/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// accountColumns are written on every update; created_at is never rewritten.
var accountColumns = []string{
	"email", "pending_email", "password_hash", "first_name", "last_name",
	"phone", "is_email_verified", "is_active", "updated_at",
}

// accountRepository implements repository.AccountRepository using GORM.
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository is the constructor for accountRepository.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

// FindByID retrieves a single account by its unique ID.
func (repo *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	return repo.first(repo.db.WithContext(ctx).Where("id = ?", id), "failed to find account by id")
}

// FindByIDForUpdate retrieves an account with SELECT ... FOR UPDATE.
func (repo *accountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	query := repo.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ?", id)

	return repo.first(query, "failed to lock account")
}

// FindByEmail retrieves a single account by its normalized email address.
func (repo *accountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	query := repo.db.WithContext(ctx).Where("email = ?", entity.NormalizeEmail(email))

	return repo.first(query, "failed to find account by email")
}

// ExistsByEmail reports whether any account holds the address.
func (repo *accountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&model.AccountModel{}).
		Where("email = ?", entity.NormalizeEmail(email)).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check account email")
	}

	return count > 0, nil
}

// Create persists a new account.
func (repo *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	accountM := fromAccountDomain(account)

	if err := repo.db.WithContext(ctx).Create(accountM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return errors.WithStack(repository.ErrEmailTaken)
		}
		if isNotNullConstraintViolation(err) || isCheckConstraintViolation(err) {
			return domainerrors.ErrAccountCreationFailed.WrapMessage("missing required account information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create account")
	}

	account.CreatedAt = accountM.CreatedAt
	account.UpdatedAt = accountM.UpdatedAt

	return nil
}

// Update writes every mutable field of the account.
func (repo *accountRepository) Update(ctx context.Context, account *entity.Account) error {
	accountM := fromAccountDomain(account)

	result := repo.db.WithContext(ctx).
		Model(&model.AccountModel{}).
		Where("id = ?", account.ID).
		Select(accountColumns).
		Updates(accountM)
	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return errors.WithStack(repository.ErrEmailTaken)
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update account")
	}
	if result.RowsAffected == 0 {
		return errors.WithStack(repository.ErrAccountNotFound)
	}

	return nil
}

// Delete removes the account. Tokens and refresh sessions cascade in the schema.
func (repo *accountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.AccountModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete account")
	}
	if result.RowsAffected == 0 {
		return errors.WithStack(repository.ErrAccountNotFound)
	}

	return nil
}

func (repo *accountRepository) first(query *gorm.DB, msg string) (*entity.Account, error) {
	var accountM model.AccountModel
	if err := query.First(&accountM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithStack(repository.ErrAccountNotFound)
		}

		return nil, errors.Wrap(err, msg)
	}

	return toAccountDomain(&accountM), nil
}

func toAccountDomain(m *model.AccountModel) *entity.Account {
	return &entity.Account{
		ID:              m.ID,
		Email:           m.Email,
		PendingEmail:    m.PendingEmail,
		PasswordHash:    m.PasswordHash,
		FirstName:       m.FirstName,
		LastName:        m.LastName,
		Phone:           m.Phone,
		IsEmailVerified: m.IsEmailVerified,
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func fromAccountDomain(a *entity.Account) *model.AccountModel {
	return &model.AccountModel{
		ID:              a.ID,
		Email:           a.Email,
		PendingEmail:    a.PendingEmail,
		PasswordHash:    a.PasswordHash,
		FirstName:       a.FirstName,
		LastName:        a.LastName,
		Phone:           a.Phone,
		IsEmailVerified: a.IsEmailVerified,
		IsActive:        a.IsActive,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}
