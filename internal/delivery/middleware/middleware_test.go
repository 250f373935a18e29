package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"accounts/config"
	deliverycontext "accounts/internal/delivery/context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoggedEcho(buf *bytes.Buffer, handler echo.HandlerFunc) *echo.Echo {
	logger := slog.New(slog.NewTextHandler(buf, nil))
	cfg := &config.Config{}
	cfg.Env.Debug = true

	e := echo.New()
	e.Use(NewRequestIDMiddleware(logger).Process)
	e.Use(NewLoggerMiddleware(logger, cfg).Handle)
	e.GET("/api/v1/accounts/me", handler)

	return e
}

func TestRequestIDMiddleware_ScopesLoggerToRequest(t *testing.T) {
	var buf bytes.Buffer
	e := newLoggedEcho(&buf, func(c echo.Context) error {
		deliverycontext.GetLogger(c.Request().Context()).Info("inside handler")

		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/me", nil)
	req.Header.Set(deliverycontext.HeaderXRequestID, "req-42")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get(deliverycontext.HeaderXRequestID))
	assert.Contains(t, buf.String(), `msg="inside handler" request_id=req-42 method=GET path=/api/v1/accounts/me`)
}

func TestLoggerMiddleware_NamesAuthenticatedAccount(t *testing.T) {
	var buf bytes.Buffer
	accountID := uuid.New()
	e := newLoggedEcho(&buf, func(c echo.Context) error {
		deliverycontext.SetAccountID(c, accountID)
		deliverycontext.GetLogger(c.Request().Context()).Info("profile read")

		return c.NoContent(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/me?token=secret-value", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	logged := buf.String()
	assert.Contains(t, logged, "profile read")
	assert.Contains(t, logged, "account_id="+accountID.String())
	assert.Contains(t, logged, "route=/api/v1/accounts/me")
	assert.NotContains(t, logged, "secret-value")
}

func TestRequestIDMiddleware_ReplacesMalformedID(t *testing.T) {
	var buf bytes.Buffer
	e := newLoggedEcho(&buf, func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	for _, forged := range []string{"a b", "line\nrequest_id=admin", strings.Repeat("x", maxRequestIDLength+1)} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/me", nil)
		req.Header.Set(deliverycontext.HeaderXRequestID, forged)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		got := rec.Header().Get(deliverycontext.HeaderXRequestID)
		assert.NotEqual(t, forged, got)
		_, err := uuid.Parse(got)
		assert.NoError(t, err)
	}
}

func TestLoggerMiddleware_LogsRejectionsOutsideDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	e := echo.New()
	e.Use(NewRequestIDMiddleware(logger).Process)
	e.Use(NewLoggerMiddleware(logger, &config.Config{}).Handle)
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/denied", func(echo.Context) error { return echo.ErrUnauthorized })

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Empty(t, buf.String())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/denied", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	logged := buf.String()
	assert.Contains(t, logged, "level=WARN")
	assert.Contains(t, logged, "status=401")
	assert.Contains(t, logged, "outcome=rejected")
	assert.Contains(t, logged, "route=/denied")
}
