package config

import (
	"path/filepath"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Store
		Sync
		Audit
		Obsidian
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Store struct {
		DataDir string
		Backend string // auto, sqlite or file
	}
	Sync struct {
		AppFolder        string // Subfolder created inside the sync folder
		Schedule         string // Cron format: "*/5 * * * *" = every five minutes
		SchedulerEnabled bool
	}
	Audit struct {
		Enabled       bool
		Dir           string
		RetentionDays int // Days to keep audit events (default: 30)
	}
	Obsidian struct {
		ExportDir  string // Vault directory for markdown exports
		ExportPath string // Folder inside the vault
	}
	Global struct {
		AppName                  string
		ShutdownTimeoutInSeconds int
	}
)

// getAuditDir defaults the journal to a folder inside the data directory.
func getAuditDir(v *viper.Viper, dataDir string) string {
	if dir := v.GetString("AUDIT_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(dataDir, "audit")
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("app_name", DefaultAppName)
	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("store_backend", "auto")
	v.SetDefault("sync_app_folder", DefaultAppName)
	v.SetDefault("sync_schedule", "*/5 * * * *")
	v.SetDefault("sync_scheduler_enabled", true)
	v.SetDefault("audit_enabled", true)
	v.SetDefault("audit_dir", "")
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("obsidian_export_dir", "")
	v.SetDefault("obsidian_export_path", "Vocabulary")

	dataDir := v.GetString("DATA_DIR")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Store: Store{
			DataDir: dataDir,
			Backend: v.GetString("STORE_BACKEND"),
		},
		Sync: Sync{
			AppFolder:        v.GetString("SYNC_APP_FOLDER"),
			Schedule:         v.GetString("SYNC_SCHEDULE"),
			SchedulerEnabled: v.GetBool("SYNC_SCHEDULER_ENABLED"),
		},
		Audit: Audit{
			Enabled:       v.GetBool("AUDIT_ENABLED"),
			Dir:           getAuditDir(v, dataDir),
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Obsidian: Obsidian{
			ExportDir:  v.GetString("OBSIDIAN_EXPORT_DIR"),
			ExportPath: v.GetString("OBSIDIAN_EXPORT_PATH"),
		},
		Global: Global{
			AppName:                  v.GetString("APP_NAME"),
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
