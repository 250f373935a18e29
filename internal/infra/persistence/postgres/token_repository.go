package postgres

import (
	"context"
	"time"

	"accounts/internal/domain/entity"
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/domain/repository"
	"accounts/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// tokenRepository implements repository.TokenRepository using GORM.
type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository is the constructor for tokenRepository.
func NewTokenRepository(db *gorm.DB) repository.TokenRepository {
	return &tokenRepository{db: db}
}

// Create persists a new token.
func (repo *tokenRepository) Create(ctx context.Context, token *entity.Token) error {
	tokenM := fromTokenDomain(token)

	if err := repo.db.WithContext(ctx).Create(tokenM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return errors.WithStack(repository.ErrTokenValueConflict)
		}
		if isForeignKeyConstraintViolation(err) {
			return errors.WithStack(repository.ErrAccountNotFound)
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create token")
	}

	return nil
}

// FindByValue retrieves a token by value, scoped to a kind.
func (repo *tokenRepository) FindByValue(ctx context.Context, value string, kind entity.TokenKind) (*entity.Token, error) {
	var tokenM model.AccountTokenModel
	err := repo.db.WithContext(ctx).
		Where("value = ? AND kind = ?", value, kind.String()).
		First(&tokenM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithStack(repository.ErrTokenNotFound)
		}

		return nil, errors.Wrap(err, "failed to find token")
	}

	return toTokenDomain(&tokenM), nil
}

// MarkUsed is a single conditional UPDATE, so two concurrent consumers of one row
// cannot both see it affect a row.
func (repo *tokenRepository) MarkUsed(ctx context.Context, id uuid.UUID, now time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.AccountTokenModel{}).
		Where("id = ? AND is_used = ? AND expires_at > ?", id, false, now).
		Update("is_used", true)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to consume token")
	}
	if result.RowsAffected == 0 {
		return errors.WithStack(repository.ErrTokenNotConsumable)
	}

	return nil
}

// MarkAllUsed marks every unused token of kind for the account as used.
func (repo *tokenRepository) MarkAllUsed(ctx context.Context, accountID uuid.UUID, kind entity.TokenKind) (int64, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.AccountTokenModel{}).
		Where("account_id = ? AND kind = ? AND is_used = ?", accountID, kind.String(), false).
		Update("is_used", true)
	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to supersede tokens")
	}

	return result.RowsAffected, nil
}

// DeleteByAccountID removes every token owned by the account.
func (repo *tokenRepository) DeleteByAccountID(ctx context.Context, accountID uuid.UUID) error {
	err := repo.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Delete(&model.AccountTokenModel{}).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete tokens")
	}

	return nil
}

// DeleteExpired removes tokens that expired before the cutoff.
func (repo *tokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&model.AccountTokenModel{})
	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to purge tokens")
	}

	return result.RowsAffected, nil
}

func toTokenDomain(m *model.AccountTokenModel) *entity.Token {
	return &entity.Token{
		ID:        m.ID,
		AccountID: m.AccountID,
		Value:     m.Value,
		Kind:      entity.TokenKind(m.Kind),
		NewEmail:  m.NewEmail,
		CreatedAt: m.CreatedAt,
		ExpiresAt: m.ExpiresAt,
		IsUsed:    m.IsUsed,
	}
}

func fromTokenDomain(t *entity.Token) *model.AccountTokenModel {
	return &model.AccountTokenModel{
		ID:        t.ID,
		AccountID: t.AccountID,
		Value:     t.Value,
		Kind:      t.Kind.String(),
		NewEmail:  t.NewEmail,
		CreatedAt: t.CreatedAt,
		ExpiresAt: t.ExpiresAt,
		IsUsed:    t.IsUsed,
	}
}
