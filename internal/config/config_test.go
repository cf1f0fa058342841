package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8188), cfg.HTTP.Port)
	assert.Equal(t, "127.0.0.1", cfg.HTTP.Host)
	assert.Equal(t, DefaultDataDir, cfg.Store.DataDir)
	assert.Equal(t, "auto", cfg.Store.Backend)
	assert.Equal(t, DefaultAppName, cfg.Sync.AppFolder)
	assert.Equal(t, "*/5 * * * *", cfg.Sync.Schedule)
	assert.True(t, cfg.Sync.SchedulerEnabled)
	assert.True(t, cfg.Audit.Enabled)
	assert.Equal(t, filepath.Join(DefaultDataDir, "audit"), cfg.Audit.Dir)
	assert.Equal(t, 30, cfg.Audit.RetentionDays)
	assert.Equal(t, DefaultAppName, cfg.Global.AppName)
	assert.Equal(t, 2, cfg.Global.ShutdownTimeoutInSeconds)
}

func TestNewConfig_Env(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATA_DIR", "/tmp/words")
	t.Setenv("STORE_BACKEND", "file")
	t.Setenv("SYNC_SCHEDULE", "0 * * * *")
	t.Setenv("SYNC_SCHEDULER_ENABLED", "false")
	t.Setenv("AUDIT_DIR", "/var/log/words")

	cfg := NewConfig()

	assert.Equal(t, int32(9000), cfg.HTTP.Port)
	assert.Equal(t, "/tmp/words", cfg.Store.DataDir)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, "0 * * * *", cfg.Sync.Schedule)
	assert.False(t, cfg.Sync.SchedulerEnabled)
	assert.Equal(t, "/var/log/words", cfg.Audit.Dir)
}

func TestNewConfig_AuditDirFollowsDataDir(t *testing.T) {
	t.Setenv("DATA_DIR", "/srv/wordbook")

	cfg := NewConfig()
	assert.Equal(t, filepath.Join("/srv/wordbook", "audit"), cfg.Audit.Dir)
}
