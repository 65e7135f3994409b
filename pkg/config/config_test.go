package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "hunter2")
	t.Setenv("ADMIN_SESSION_SECRET", "0123456789abcdef0123456789abcdef")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "log", cfg.Mail.Provider)
	assert.Equal(t, "support@pinkbasket.store", cfg.Mail.SupportAddress)
	assert.Equal(t, "pink_basket", cfg.Media.Folder)
	assert.Equal(t, 12*time.Hour, cfg.Admin.SessionTTL)
	assert.Equal(t, "LSL", cfg.Store.Currency)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("ADMIN_SESSION_TTL", "30m")
	t.Setenv("ADMIN_COOKIE_SECURE", "false")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 7, cfg.DB.MaxOpenConns)
	assert.Equal(t, 30*time.Minute, cfg.Admin.SessionTTL)
	assert.False(t, cfg.Admin.CookieSecure)
	assert.True(t, cfg.IsProduction())
}

func TestLoadRejectsWeakSessionSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_SESSION_SECRET", "short")

	_, err := Load()
	assert.ErrorContains(t, err, "ADMIN_SESSION_SECRET")
}

func TestLoadRequiresResendKey(t *testing.T) {
	setRequired(t)
	t.Setenv("MAIL_PROVIDER", "resend")
	t.Setenv("RESEND_API_KEY", "")

	_, err := Load()
	assert.ErrorContains(t, err, "RESEND_API_KEY")
}

func TestGetDSN(t *testing.T) {
	db := DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "shop", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=shop sslmode=disable", db.GetDSN())
}
