package config

const (
	// DefaultDataDir holds the local store, sync settings and audit journal
	DefaultDataDir = "./data"

	// DefaultAppName names backups, exports and the sync subfolder
	DefaultAppName = "Wordbook"
)
