package postgres

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"accounts/config"
	deliverycontext "accounts/internal/delivery/context"
	"accounts/internal/domain/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newLoggedMockDB(t *testing.T, base *slog.Logger) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := &config.Config{}
	cfg.Env.Debug = true

	db, err := gorm.Open(pgdriver.New(pgdriver.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 newGormSlogLogger(base, cfg),
	})
	require.NoError(t, err)

	return db, mock
}

func TestGormSlogLogger_RedactsTokenValues(t *testing.T) {
	var buf bytes.Buffer
	db, mock := newLoggedMockDB(t, slog.New(slog.NewTextHandler(&buf, nil)))
	value := strings.Repeat("t", 43)

	mock.ExpectQuery(`SELECT \* FROM "account_tokens"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, _ = NewTokenRepository(db).FindByValue(context.Background(), value, entity.TokenKindResetPassword)

	logged := buf.String()
	assert.Contains(t, logged, "GORM query")
	assert.Contains(t, logged, redactedParam)
	assert.Contains(t, logged, "reset_password")
	assert.NotContains(t, logged, value)
}

func TestGormSlogLogger_UsesRequestLogger(t *testing.T) {
	var base, scoped bytes.Buffer
	db, mock := newLoggedMockDB(t, slog.New(slog.NewTextHandler(&base, nil)))
	reqLogger := slog.New(slog.NewTextHandler(&scoped, nil)).With(slog.String("request_id", "req-1"))
	ctx := deliverycontext.WithLogger(context.Background(), reqLogger)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "accounts"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, err := NewAccountRepository(db).ExistsByEmail(ctx, "a@x.com")

	require.NoError(t, err)
	assert.Contains(t, scoped.String(), "request_id=req-1")
	assert.Contains(t, scoped.String(), "a@x.com")
	assert.Empty(t, base.String())
}

func TestRedactParams_KeepsShortValues(t *testing.T) {
	secret := strings.Repeat("h", 60)

	got := redactParams([]any{"a@x.com", secret, 42, true})

	assert.Equal(t, []any{"a@x.com", redactedParam, 42, true}, got)
}
