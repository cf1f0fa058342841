package entities

import "time"

// SyncConfig is the persisted state of folder-based sync.
// SyncFolderPath is kept after sync is disabled so the UI can offer it again.
type SyncConfig struct {
	Enabled        bool       `json:"enabled"`
	SyncFolderPath *string    `json:"syncFolderPath"`
	LastSyncTime   *time.Time `json:"lastSyncTime"`
}

// FolderPath returns the configured folder or an empty string.
func (c SyncConfig) FolderPath() string {
	if c.SyncFolderPath == nil {
		return ""
	}
	return *c.SyncFolderPath
}
