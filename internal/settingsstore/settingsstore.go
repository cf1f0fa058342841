// Package settingsstore persists process-wide settings in the local data
// directory, independent of where the word store currently lives.
package settingsstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/storage"
)

// SyncConfigFile is the sync settings file inside the local data directory.
const SyncConfigFile = "cloud-sync-config.json"

type SettingsStore struct {
	mu   sync.Mutex
	path string
}

func New(dataDir string) *SettingsStore {
	return &SettingsStore{path: filepath.Join(dataDir, SyncConfigFile)}
}

// Path returns the settings file location.
func (s *SettingsStore) Path() string {
	return s.path
}

// LoadSyncConfig returns the saved sync settings, or disabled defaults when
// nothing was saved yet.
func (s *SettingsStore) LoadSyncConfig() (entities.SyncConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cfg entities.SyncConfig
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read sync config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return entities.SyncConfig{}, fmt.Errorf("failed to parse sync config %s: %w", s.path, err)
	}
	return cfg, nil
}

// SaveSyncConfig replaces the saved sync settings.
func (s *SettingsStore) SaveSyncConfig(cfg entities.SyncConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sync config: %w", err)
	}
	if err := storage.WriteFile(s.path, data); err != nil {
		return fmt.Errorf("failed to save sync config: %w", err)
	}
	return nil
}
