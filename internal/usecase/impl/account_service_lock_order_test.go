package impl

import (
	"context"
	"testing"
	"time"

	"accounts/internal/domain/entity"
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/infra/auth"
	"accounts/internal/infra/clock"
	"accounts/internal/infra/metrics"
	"accounts/internal/infra/persistence/postgres"
	"accounts/internal/infra/phone"
	"accounts/internal/usecase"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	tokenColumns   = []string{"id", "account_id", "value", "kind", "new_email", "created_at", "expires_at", "is_used"}
	accountColumns = []string{
		"id", "email", "pending_email", "password_hash", "first_name", "last_name",
		"phone", "is_email_verified", "is_active", "created_at", "updated_at",
	}
)

// newSQLAccountService runs the account service on the gorm repositories over sqlmock.
// sqlmock matches expectations in order, so each test pins the statement sequence.
func newSQLAccountService(t *testing.T) (usecase.AccountUsecase, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(pgdriver.New(pgdriver.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)

	cfg := newTestConfig()
	manual := clock.NewManual(testStart)
	log := newDiscardLogger()

	tokens := NewTokenLifecycle(TokenLifecycleParams{
		Generator: auth.NewTokenGenerator(),
		Clock:     manual,
		Metrics:   metrics.Noop{},
		Config:    cfg,
		Logger:    log,
	})

	svc := NewAccountService(AccountServiceParams{
		TxManager: postgres.NewTransactionManager(db),
		Tokens:    tokens,
		Hasher:    auth.NewBcryptHasher(cfg),
		Policy:    auth.NewPasswordPolicy(cfg),
		Notifier:  &mockNotifier{},
		Phones:    phone.NewNormalizer(cfg),
		Clock:     manual,
		Config:    cfg,
		Logger:    log,
	})

	return svc, mock
}

func tokenRow(accountID uuid.UUID, kind entity.TokenKind, newEmail *string, expiresAt time.Time, used bool) *sqlmock.Rows {
	return sqlmock.NewRows(tokenColumns).
		AddRow(uuid.New().String(), accountID.String(), "tok", kind.String(), newEmail, testStart.Add(-time.Minute), expiresAt, used)
}

func accountRow(accountID uuid.UUID, email string) *sqlmock.Rows {
	return sqlmock.NewRows(accountColumns).
		AddRow(accountID.String(), email, nil, "hash", "Ann", "Lee", "", false, true, testStart, testStart)
}

func TestVerifyEmail_LocksAccountBeforeTouchingToken(t *testing.T) {
	svc, mock := newSQLAccountService(t)
	accountID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "account_tokens" WHERE .*value = \$1 AND kind = \$2`).
		WillReturnRows(tokenRow(accountID, entity.TokenKindVerifyEmail, nil, testStart.Add(time.Hour), false))
	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE .*id = \$1.* FOR UPDATE`).
		WillReturnRows(accountRow(accountID, "a@x.com"))
	mock.ExpectExec(`UPDATE "account_tokens" SET "is_used"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "accounts" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	account, err := svc.VerifyEmail(context.Background(), "tok")

	require.NoError(t, err)
	assert.True(t, account.IsEmailVerified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmEmailChange_LocksAccountBeforeTouchingToken(t *testing.T) {
	svc, mock := newSQLAccountService(t)
	accountID := uuid.New()
	newEmail := "new@x.com"

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "account_tokens" WHERE .*value = \$1 AND kind = \$2`).
		WillReturnRows(tokenRow(accountID, entity.TokenKindChangeEmail, &newEmail, testStart.Add(time.Hour), false))
	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE .*id = \$1.* FOR UPDATE`).
		WillReturnRows(accountRow(accountID, "old@x.com"))
	mock.ExpectExec(`UPDATE "account_tokens" SET "is_used"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "accounts" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`UPDATE "accounts" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	account, err := svc.ConfirmEmailChange(context.Background(), "tok")

	require.NoError(t, err)
	assert.Equal(t, newEmail, account.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmPasswordReset_ExpiredTokenNeverWritten(t *testing.T) {
	svc, mock := newSQLAccountService(t)
	accountID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "account_tokens" WHERE .*value = \$1 AND kind = \$2`).
		WillReturnRows(tokenRow(accountID, entity.TokenKindResetPassword, nil, testStart, false))
	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE .*id = \$1.* FOR UPDATE`).
		WillReturnRows(accountRow(accountID, "a@x.com"))
	mock.ExpectRollback()

	err := svc.ConfirmPasswordReset(context.Background(), &usecase.ConfirmPasswordResetInput{
		Token:       "tok",
		NewPassword: "Str0ng-Enough!pw",
	})

	assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}
