package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func missingFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(missingFile(t))
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, "development", cfg.Server.Environment)
	require.Equal(t, "portfolio-cms", cfg.JWT.Issuer)
	require.Equal(t, 30*24*time.Hour, cfg.SessionTTL())
	require.Equal(t, 5, cfg.Reset.MaxRequestsPerHour)
	require.True(t, cfg.Reset.RevealUnknownEmail)
	require.Equal(t, MailProviderLog, cfg.Mail.Provider)
	require.Equal(t, 10*time.Second, cfg.MailTimeout())
	require.Equal(t, 0.2, cfg.RateLimit.AuthRPS)
	require.Equal(t, []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}, cfg.CORS.AllowedMethods)
	require.True(t, cfg.Database.AutoMigrate)
	require.Empty(t, cfg.Server.TrustedProxies)
}

func TestLoadTrustedProxies(t *testing.T) {
	t.Setenv("SERVER_TRUSTED_PROXIES", "10.0.0.1, 192.168.0.0/16")
	cfg, err := LoadFrom(missingFile(t))
	require.NoError(t, err)
	require.Equal(t, []string{"10.0.0.1", "192.168.0.0/16"}, cfg.Server.TrustedProxies)
}

func TestLoadProductionHidesUnknownEmail(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	cfg, err := LoadFrom(missingFile(t))
	require.NoError(t, err)
	require.True(t, cfg.IsProduction())
	require.False(t, cfg.Reset.RevealUnknownEmail)
}

func TestLoadRevealOverride(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("RESET_REVEAL_UNKNOWN_EMAIL", "true")
	cfg, err := LoadFrom(missingFile(t))
	require.NoError(t, err)
	require.True(t, cfg.Reset.RevealUnknownEmail)
}

func TestLoadDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "DB_HOST=db.internal\nDB_NAME=cms\nJWT_SECRET=s3cret\nAPP_BASE_URL=https://cms.example.com/\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("DB_NAME", "cms_override")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	require.Equal(t, "db.internal", cfg.Database.Host)
	require.Equal(t, "cms_override", cfg.Database.DBName)
	require.Equal(t, "https://cms.example.com", cfg.App.BaseURL)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg, err := LoadFrom(missingFile(t))
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "DB_HOST is required")
	require.Contains(t, err.Error(), "JWT_SECRET is required")

	cfg.Database.Host = "localhost"
	cfg.Database.DBName = "cms"
	cfg.JWT.Secret = "secret"
	cfg.Mail.Provider = MailProviderResend
	err = cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "RESEND_API_KEY")
	require.Contains(t, err.Error(), "MAIL_FROM")
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "h", Port: "5432", User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	require.Equal(t, "host=h port=5432 user=u password=p dbname=d sslmode=disable", db.DSN())
}
