// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

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

const defaultTokenIssueAttempts = 3

// tokenLifecycle implements the TokenLifecycle interface.
type tokenLifecycle struct {
	generator     service.TokenGenerator
	clock         service.Clock
	metrics       service.TokenMetrics
	ttls          map[entity.TokenKind]time.Duration
	issueAttempts int
	logger        *slog.Logger
}

// TokenLifecycleParams holds dependencies for the token engine, injected by Fx.
type TokenLifecycleParams struct {
	fx.In

	Generator service.TokenGenerator
	Clock     service.Clock
	Metrics   service.TokenMetrics
	Config    *config.Config
	Logger    *slog.Logger
}

// NewTokenLifecycle is the constructor for the token engine.
func NewTokenLifecycle(params TokenLifecycleParams) usecase.TokenLifecycle {
	engine := &tokenLifecycle{
		generator:     params.Generator,
		clock:         params.Clock,
		metrics:       params.Metrics,
		ttls:          make(map[entity.TokenKind]time.Duration),
		issueAttempts: defaultTokenIssueAttempts,
		logger:        params.Logger,
	}

	if params.Config != nil && params.Config.Auth != nil {
		auth := params.Config.Auth
		engine.ttls[entity.TokenKindVerifyEmail] = auth.VerifyEmailTokenTTL
		engine.ttls[entity.TokenKindChangeEmail] = auth.ChangeEmailTokenTTL
		engine.ttls[entity.TokenKindResetPassword] = auth.ResetPasswordTokenTTL
		if auth.TokenIssueAttempts > 0 {
			engine.issueAttempts = auth.TokenIssueAttempts
		}
	}

	return engine
}

func (eng *tokenLifecycle) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, eng.logger)
}

// Issue generates a new value and stores the token, retrying when the value collides.
func (eng *tokenLifecycle) Issue(
	ctx context.Context,
	store repository.TokenRepository,
	accountID uuid.UUID,
	kind entity.TokenKind,
	newEmail *string,
) (*entity.Token, error) {
	for attempt := 1; attempt <= eng.issueAttempts; attempt++ {
		value, err := eng.generator.Generate()
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate token value")
		}

		token, err := entity.NewToken(accountID, kind, value, newEmail, eng.clock.Now(), eng.ttls[kind])
		if err != nil {
			return nil, errors.Wrap(err, "failed to build token")
		}

		err = store.Create(ctx, token)
		if errors.Is(err, repository.ErrTokenValueConflict) {
			eng.log(ctx).Warn("Token value collision, retrying",
				slog.String("kind", kind.String()),
				slog.Int("attempt", attempt),
			)

			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to store token")
		}

		eng.metrics.TokenIssued(kind)

		return token, nil
	}

	return nil, errors.Wrapf(domainerrors.ErrTokenIssueFailed, "no unique %s token value after %d attempts", kind, eng.issueAttempts)
}

// Validate re-evaluates the validity predicate against the current time.
func (eng *tokenLifecycle) Validate(
	ctx context.Context,
	store repository.TokenRepository,
	value string,
	kind entity.TokenKind,
) (*entity.Token, error) {
	token, err := eng.Lookup(ctx, store, value, kind)
	if err != nil {
		return nil, err
	}

	if err := eng.check(ctx, token); err != nil {
		return nil, err
	}

	return token, nil
}

func (eng *tokenLifecycle) check(ctx context.Context, token *entity.Token) error {
	now := eng.clock.Now()
	switch {
	case token.IsExpiredAt(now):
		return eng.reject(ctx, token.Kind, domainerrors.TokenExpired)
	case token.IsUsed:
		return eng.reject(ctx, token.Kind, domainerrors.TokenAlreadyUsed)
	}

	return nil
}

// Consume flips is_used with a conditional update, so only one concurrent caller wins.
func (eng *tokenLifecycle) Consume(ctx context.Context, store repository.TokenRepository, token *entity.Token) error {
	now := eng.clock.Now()

	err := store.MarkUsed(ctx, token.ID, now)
	if errors.Is(err, repository.ErrTokenNotConsumable) {
		if token.IsExpiredAt(now) {
			return eng.reject(ctx, token.Kind, domainerrors.TokenExpired)
		}

		return eng.reject(ctx, token.Kind, domainerrors.TokenAlreadyUsed)
	}
	if err != nil {
		return errors.Wrap(err, "failed to mark token used")
	}

	token.IsUsed = true
	eng.metrics.TokenConsumed(token.Kind)

	return nil
}

// Redeem looks the token up, lets the caller lock what it needs, then validates and consumes it.
// The lookup is a plain read, so no token row is locked before beforeConsume runs.
func (eng *tokenLifecycle) Redeem(
	ctx context.Context,
	store repository.TokenRepository,
	value string,
	kind entity.TokenKind,
	beforeConsume func(token *entity.Token) error,
) (*entity.Token, error) {
	token, err := eng.Lookup(ctx, store, value, kind)
	if err != nil {
		return nil, err
	}

	if beforeConsume != nil {
		if err := beforeConsume(token); err != nil {
			return nil, err
		}
	}

	if err := eng.check(ctx, token); err != nil {
		return nil, err
	}

	if err := eng.Consume(ctx, store, token); err != nil {
		return nil, err
	}

	return token, nil
}

// Lookup returns the token for value and kind without checking validity.
func (eng *tokenLifecycle) Lookup(
	ctx context.Context,
	store repository.TokenRepository,
	value string,
	kind entity.TokenKind,
) (*entity.Token, error) {
	if value == "" {
		return nil, eng.reject(ctx, kind, domainerrors.TokenNotFound)
	}

	token, err := store.FindByValue(ctx, value, kind)
	if errors.Is(err, repository.ErrTokenNotFound) {
		return nil, eng.reject(ctx, kind, domainerrors.TokenNotFound)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find token")
	}

	return token, nil
}

// Supersede invalidates every outstanding token of kind for the account.
func (eng *tokenLifecycle) Supersede(
	ctx context.Context,
	store repository.TokenRepository,
	accountID uuid.UUID,
	kind entity.TokenKind,
) (int64, error) {
	count, err := store.MarkAllUsed(ctx, accountID, kind)
	if err != nil {
		return 0, errors.Wrap(err, "failed to supersede tokens")
	}

	if count > 0 {
		eng.metrics.TokensSuperseded(kind, count)
		eng.log(ctx).Debug("Superseded outstanding tokens",
			slog.String("kind", kind.String()),
			slog.Any("account_id", accountID),
			slog.Int64("count", count),
		)
	}

	return count, nil
}

func (eng *tokenLifecycle) reject(ctx context.Context, kind entity.TokenKind, reason domainerrors.TokenFailureReason) error {
	eng.metrics.TokenRejected(kind, string(reason))
	eng.log(ctx).Info("Token rejected",
		slog.String("kind", kind.String()),
		slog.String("reason", string(reason)),
	)

	return errors.WithStack(domainerrors.NewTokenError(reason))
}
