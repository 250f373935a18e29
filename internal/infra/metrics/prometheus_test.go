package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"accounts/internal/domain/entity"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenMetrics_Counts(t *testing.T) {
	reg := NewRegistry()
	svc, err := NewTokenMetrics(reg)
	require.NoError(t, err)
	m := svc.(*tokenMetrics)

	m.TokenIssued(entity.TokenKindVerifyEmail)
	m.TokenIssued(entity.TokenKindVerifyEmail)
	m.TokenConsumed(entity.TokenKindVerifyEmail)
	m.TokenRejected(entity.TokenKindResetPassword, "expired")
	m.TokensSuperseded(entity.TokenKindChangeEmail, 3)
	m.TokensSuperseded(entity.TokenKindChangeEmail, 0)

	assert.InDelta(t, 2, testutil.ToFloat64(m.issued.WithLabelValues("verify_email")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.consumed.WithLabelValues("verify_email")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.rejected.WithLabelValues("reset_password", "expired")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.superseded.WithLabelValues("change_email")), 0)
}

func TestNewTokenMetrics_DuplicateRegistrationFails(t *testing.T) {
	reg := NewRegistry()
	_, err := NewTokenMetrics(reg)
	require.NoError(t, err)

	_, err = NewTokenMetrics(reg)
	assert.Error(t, err)
}

func TestHandler_ExposesHTTPMetrics(t *testing.T) {
	reg := NewRegistry()
	httpMetrics, err := NewHTTPMetrics(reg)
	require.NoError(t, err)

	httpMetrics.ObserveRequest(http.MethodPost, "/api/v1/accounts/register", http.StatusCreated, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `accounts_http_requests_total{method="POST",route="/api/v1/accounts/register",status="201"} 1`)
}
