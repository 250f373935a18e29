package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"master": map[string]any{
				"userName": "user",
			},
		},
		"auth": map[string]any{
			"verifyEmailTokenTTL": "24h",
		},
		"mail": map[string]any{
			"ses": map[string]any{
				"accessKeyId": "",
			},
		},
		"secretKey": map[string]any{
			"access": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "POSTGRES_MASTER_USERNAME", want: "postgres.master.userName"},
		{envKey: "AUTH_VERIFYEMAILTOKENTTL", want: "auth.verifyEmailTokenTTL"},
		{envKey: "MAIL_SES_ACCESSKEYID", want: "mail.ses.accessKeyId"},
		{envKey: "SECRETKEY_ACCESS", want: "secretKey.access"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestLoadWithEnv_OverlaysEnvironment(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
env:
  env: test
  serviceName: accounts
storage:
  driver: memory
auth:
  bcryptCost: 10
  verifyEmailTokenTTL: 24h
frontend:
  baseUrl: http://localhost:3000
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), content, 0o600))
	t.Chdir(dir)
	t.Setenv("AUTH_BCRYPTCOST", "4")
	t.Setenv("AUTH_VERIFYEMAILTOKENTTL", "2h")

	cfg, err := LoadWithEnv[Config]("test")
	require.NoError(t, err)

	assert.Equal(t, "accounts", cfg.Env.ServiceName)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "http://localhost:3000", cfg.Frontend.BaseURL)
	require.NotNil(t, cfg.Auth)
	assert.Equal(t, 4, cfg.Auth.BcryptCost)
	assert.Equal(t, 2*time.Hour, cfg.Auth.VerifyEmailTokenTTL)
}

func TestLoadWithEnv_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadWithEnv[Config]("absent")

	assert.Error(t, err)
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}

	applyDefaults(cfg)

	assert.Equal(t, defaultStorageDriver, cfg.Storage.Driver)
	assert.Equal(t, defaultAccessTokenTTL, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, defaultRefreshTokenTTL, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, defaultTokenIssueAttempts, cfg.Auth.TokenIssueAttempts)
	assert.Equal(t, 8, cfg.PasswordStrength.MinLength)
	assert.False(t, cfg.PasswordStrength.EnforceOnRegister)
	assert.Equal(t, defaultMailProvider, cfg.Mail.Provider)
	assert.Equal(t, defaultMailQueueSize, cfg.Mail.QueueSize)
	assert.NotNil(t, cfg.PubSub)
	assert.Equal(t, defaultPhoneRegion, cfg.Phone.DefaultRegion)
}
