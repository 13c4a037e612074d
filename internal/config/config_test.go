package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir 切到无 config.yaml 的目录，并清掉会覆盖默认值的环境变量
func inTempDir(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })
	for _, key := range []string{"SERVER_PORT", "DB_OP_TIMEOUT", "PAYMENT_TERM_DAYS", "REDIS_HOST"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	inTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Database.OpTimeout)
	assert.Equal(t, 30, cfg.Finance.PaymentTermDays)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowOrigins)
	assert.Equal(t, 24*time.Hour, cfg.Redis.IdempotencyTTL)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	inTempDir(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_OP_TIMEOUT", "2s")
	t.Setenv("PAYMENT_TERM_DAYS", "45")
	t.Setenv("REDIS_HOST", "cache")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 2*time.Second, cfg.Database.OpTimeout)
	assert.Equal(t, 45, cfg.Finance.PaymentTermDays)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
	assert.Contains(t, cfg.Database.DSN(), "host=db.internal port=5432")
}

func TestLoad_RejectsInvalid(t *testing.T) {
	inTempDir(t)

	t.Setenv("DB_OP_TIMEOUT", "0s")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DB_OP_TIMEOUT", "1s")
	t.Setenv("PAYMENT_TERM_DAYS", "-1")
	_, err = Load()
	assert.Error(t, err)
}
