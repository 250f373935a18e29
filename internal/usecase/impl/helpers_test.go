package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"accounts/config"
	"accounts/internal/domain/entity"
	"accounts/internal/domain/repository"
	"accounts/internal/domain/service"
	"accounts/internal/infra/auth"
	"accounts/internal/infra/clock"
	"accounts/internal/infra/metrics"
	"accounts/internal/infra/persistence/memory"
	"accounts/internal/infra/phone"
	"accounts/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testStart = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{
		Auth: &config.AuthConfig{
			BcryptCost:         bcrypt.MinCost,
			TokenIssueAttempts: 3,
		},
		PasswordStrength: &config.PasswordStrengthConfig{
			MinLength:     8,
			MaxLength:     128,
			RejectCommon:  true,
			RejectNumeric: true,
			MaxSimilarity: 0.7,
		},
		Phone: config.PhoneConfig{DefaultRegion: "US"},
	}
	cfg.SecretKey.Access = "test-access-secret"
	cfg.SecretKey.Refresh = "test-refresh-secret"

	return cfg
}

// mockNotifier records every notification handed to it.
type mockNotifier struct {
	mock.Mock

	mu   sync.Mutex
	sent []*service.Notification
}

func (m *mockNotifier) Notify(ctx context.Context, notification *service.Notification) error {
	m.mu.Lock()
	m.sent = append(m.sent, notification)
	m.mu.Unlock()

	args := m.Called(ctx, notification)

	return args.Error(0)
}

func (m *mockNotifier) last(t *testing.T) *service.Notification {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no notification was sent")

	return m.sent[len(m.sent)-1]
}

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sent)
}

// scriptedGenerator returns the queued values first, then defers to next.
type scriptedGenerator struct {
	mu     sync.Mutex
	values []string
	next   service.TokenGenerator
}

func (g *scriptedGenerator) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.values) > 0 {
		value := g.values[0]
		g.values = g.values[1:]

		return value, nil
	}

	return g.next.Generate()
}

type harness struct {
	cfg       *config.Config
	store     *memory.Store
	txManager repository.TransactionManager
	clock     *clock.Manual
	notifier  *mockNotifier
	hasher    service.PasswordHasher
	generator *scriptedGenerator
	tokens    usecase.TokenLifecycle
	accounts  usecase.AccountUsecase
	profiles  usecase.ProfileUsecase
	sessions  usecase.SessionUsecase
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := newTestConfig()
	store := memory.NewStore()
	txManager := memory.NewTransactionManager(store)
	manual := clock.NewManual(testStart)
	logger := newDiscardLogger()
	hasher := auth.NewBcryptHasher(cfg)
	phones := phone.NewNormalizer(cfg)

	notifier := &mockNotifier{}
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil).Maybe()

	generator := &scriptedGenerator{next: auth.NewTokenGenerator()}

	issuer, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	tokens := NewTokenLifecycle(TokenLifecycleParams{
		Generator: generator,
		Clock:     manual,
		Metrics:   metrics.Noop{},
		Config:    cfg,
		Logger:    logger,
	})

	return &harness{
		cfg:       cfg,
		store:     store,
		txManager: txManager,
		clock:     manual,
		notifier:  notifier,
		hasher:    hasher,
		generator: generator,
		tokens:    tokens,
		accounts: NewAccountService(AccountServiceParams{
			TxManager: txManager,
			Tokens:    tokens,
			Hasher:    hasher,
			Policy:    auth.NewPasswordPolicy(cfg),
			Notifier:  notifier,
			Phones:    phones,
			Clock:     manual,
			Config:    cfg,
			Logger:    logger,
		}),
		profiles: NewProfileService(ProfileServiceParams{
			TxManager: txManager,
			Phones:    phones,
			Clock:     manual,
			Logger:    logger,
		}),
		sessions: NewSessionService(SessionServiceParams{
			TxManager: txManager,
			Issuer:    issuer,
			Hasher:    hasher,
			Clock:     manual,
			Logger:    logger,
		}),
	}
}

// issuer builds a session issuer sharing the harness secrets.
func (h *harness) issuer(t *testing.T) service.SessionIssuer {
	t.Helper()

	issuer, err := auth.NewJWTService(h.cfg)
	require.NoError(t, err)

	return issuer
}

// register creates an account and returns it with the verification token it was sent.
func (h *harness) register(t *testing.T, email, password string) (*entity.Account, string) {
	t.Helper()

	out, err := h.accounts.Register(context.Background(), &usecase.RegisterInput{
		Email:     email,
		Password:  password,
		FirstName: "Ann",
		LastName:  "Lee",
	})
	require.NoError(t, err)

	return out.Account, h.notifier.last(t).Token
}

// registerVerified creates an account and completes its email verification.
func (h *harness) registerVerified(t *testing.T, email, password string) *entity.Account {
	t.Helper()

	_, token := h.register(t, email, password)
	account, err := h.accounts.VerifyEmail(context.Background(), token)
	require.NoError(t, err)

	return account
}

func (h *harness) reload(t *testing.T, id uuid.UUID) *entity.Account {
	t.Helper()

	account, err := h.store.AccountRepo().FindByID(context.Background(), id)
	require.NoError(t, err)

	return account
}

// rebuildAccounts constructs the account service again so config changes take effect.
func (h *harness) rebuildAccounts() {
	h.accounts = NewAccountService(AccountServiceParams{
		TxManager: h.txManager,
		Tokens:    h.tokens,
		Hasher:    h.hasher,
		Policy:    auth.NewPasswordPolicy(h.cfg),
		Notifier:  h.notifier,
		Phones:    phone.NewNormalizer(h.cfg),
		Clock:     h.clock,
		Config:    h.cfg,
		Logger:    newDiscardLogger(),
	})
}
