// Package cloudsync roots the favorites store in a user-chosen folder (for
// example one mirrored by a cloud drive client) so several devices share
// one collection.
//
// There is no locking between devices. Enable merges the current collection
// into the shared folder, ForceSync re-reads the shared folder to pick up
// changes written elsewhere, and Disable returns to the local data
// directory without touching the shared copy.
package cloudsync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/favorites"
	"github.com/mrlokans/wordbook/internal/storage"
	"github.com/mrlokans/wordbook/internal/wordstore"
	"github.com/mrlokans/wordbook/internal/wordstore/filestore"
)

// DefaultAppFolder is the subfolder created inside the sync folder.
const DefaultAppFolder = "Wordbook"

var (
	// ErrFolderNotFound indicates the sync folder does not exist or is not a directory.
	ErrFolderNotFound = errors.New("cloudsync: sync folder not found")
	// ErrSyncNotEnabled indicates an operation that needs sync to be on.
	ErrSyncNotEnabled = errors.New("cloudsync: sync is not enabled")
)

// ConfigStore loads and saves the sync settings.
type ConfigStore interface {
	LoadSyncConfig() (entities.SyncConfig, error)
	SaveSyncConfig(cfg entities.SyncConfig) error
}

type Options struct {
	// LocalDir and LocalMode describe the store used while sync is off.
	LocalDir  string
	LocalMode favorites.Mode
	// AppFolder defaults to DefaultAppFolder.
	AppFolder string
	AppName   string
	Now       func() time.Time
}

// Status is what the UI shows for sync.
type Status struct {
	entities.SyncConfig
	ActiveDir  string         `json:"activeDir"`
	StorePath  string         `json:"storePath"`
	Backend    wordstore.Kind `json:"backend"`
	LastStatus string         `json:"lastStatus,omitempty"` // "success", "failed", ""
	LastError  string         `json:"lastError,omitempty"`
	Warning    string         `json:"warning,omitempty"`
}

// EnableResult reports the migration performed by Enable.
type EnableResult struct {
	SharedDir string                `json:"sharedDir"`
	Migrated  favorites.MergeResult `json:"migrated"`
}

// SyncResult reports a ForceSync.
type SyncResult struct {
	Before int       `json:"before"`
	After  int       `json:"after"`
	At     time.Time `json:"at"`
}

type Coordinator struct {
	mu         sync.Mutex
	store      *favorites.Store
	configs    ConfigStore
	cfg        entities.SyncConfig
	opts       Options
	lastStatus string
	lastError  string
	warning    string
	// fallback is set when the saved config says enabled but the shared
	// folder could not be used at startup.
	fallback bool
}

// New loads the saved sync settings and, when sync was left on, roots the
// store in the shared folder. A shared folder that has disappeared leaves
// the store local for this run and is reported through Status.
func New(ctx context.Context, store *favorites.Store, configs ConfigStore, opts Options) (*Coordinator, error) {
	if opts.AppFolder == "" {
		opts.AppFolder = DefaultAppFolder
	}
	if opts.LocalMode == "" {
		opts.LocalMode = favorites.ModeAuto
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.LocalDir == "" {
		opts.LocalDir = store.BaseDir()
	}

	cfg, err := configs.LoadSyncConfig()
	if err != nil {
		return nil, err
	}
	c := &Coordinator{store: store, configs: configs, cfg: cfg, opts: opts}

	if cfg.Enabled {
		folder := cfg.FolderPath()
		if !storage.IsDir(folder) {
			c.warning = fmt.Sprintf("sync folder %s is not available, using local data", folder)
			c.cfg.Enabled = false
			c.fallback = true
			log.Printf("Cloud sync: %s", c.warning)
			return c, nil
		}
		shared := c.sharedDir(folder)
		if err := store.Reopen(ctx, shared, favorites.ModeFile); err != nil {
			c.warning = fmt.Sprintf("failed to open sync folder %s: %v", shared, err)
			c.cfg.Enabled = false
			c.fallback = true
			log.Printf("Cloud sync: %s", c.warning)
			return c, nil
		}
		log.Printf("Cloud sync: using shared folder %s", shared)
	}
	return c, nil
}

// Enable points the store at folder/<AppFolder>. The current collection is
// merged into the shared copy first, so words already there are kept and
// enabling twice adds nothing.
func (c *Coordinator) Enable(ctx context.Context, folder string) (*EnableResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	folder = strings.TrimSpace(folder)
	if folder == "" || !storage.IsDir(folder) {
		return nil, fmt.Errorf("%w: %q", ErrFolderNotFound, folder)
	}
	folder, err := filepath.Abs(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sync folder: %w", err)
	}

	shared := c.sharedDir(folder)
	if err := os.MkdirAll(shared, 0755); err != nil {
		return nil, c.fail(fmt.Errorf("failed to create %s: %w", shared, err))
	}

	records, err := c.store.Records(ctx)
	if err != nil {
		return nil, c.fail(err)
	}
	migrated, err := c.migrate(ctx, shared, records)
	if err != nil {
		return nil, c.fail(err)
	}

	previousDir, previousMode := c.store.BaseDir(), c.store.Mode()
	if err := c.store.Reopen(ctx, shared, favorites.ModeFile); err != nil {
		return nil, c.fail(err)
	}

	now := entities.Timestamp(c.opts.Now())
	next := entities.SyncConfig{Enabled: true, SyncFolderPath: &folder, LastSyncTime: &now}
	if err := c.configs.SaveSyncConfig(next); err != nil {
		c.restore(ctx, previousDir, previousMode)
		return nil, c.fail(err)
	}

	c.cfg = next
	c.warning = ""
	c.fallback = false
	c.succeed()
	log.Printf("Cloud sync: enabled at %s (%d added, %d updated, %d already present)",
		shared, migrated.Added, migrated.Updated, migrated.Skipped)
	return &EnableResult{SharedDir: shared, Migrated: migrated}, nil
}

// Disable returns the store to the local data directory. The shared folder
// is left as it is and its path is remembered. After a startup fallback the
// store is already local and only the saved config is switched off.
func (c *Coordinator) Disable(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.cfg.Enabled {
		if !c.fallback {
			return ErrSyncNotEnabled
		}
		if err := c.configs.SaveSyncConfig(c.cfg); err != nil {
			return c.fail(err)
		}
		c.fallback = false
		c.warning = ""
		c.succeed()
		log.Printf("Cloud sync: disabled, saved folder %s no longer used", c.cfg.FolderPath())
		return nil
	}

	previousDir, previousMode := c.store.BaseDir(), c.store.Mode()
	if err := c.store.Reopen(ctx, c.opts.LocalDir, c.opts.LocalMode); err != nil {
		return c.fail(err)
	}

	next := c.cfg
	next.Enabled = false
	if err := c.configs.SaveSyncConfig(next); err != nil {
		c.restore(ctx, previousDir, previousMode)
		return c.fail(err)
	}

	c.cfg = next
	c.succeed()
	log.Printf("Cloud sync: disabled, using %s", c.opts.LocalDir)
	return nil
}

// ForceSync re-reads the shared folder so changes made by other devices
// become visible.
func (c *Coordinator) ForceSync(ctx context.Context) (*SyncResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.cfg.Enabled {
		return nil, ErrSyncNotEnabled
	}
	if !storage.IsDir(c.cfg.FolderPath()) {
		return nil, c.fail(fmt.Errorf("%w: %s", ErrFolderNotFound, c.cfg.FolderPath()))
	}

	before, err := c.store.Count(ctx)
	if err != nil {
		return nil, c.fail(err)
	}
	if err := c.store.Reload(ctx); err != nil {
		return nil, c.fail(err)
	}
	after, err := c.store.Count(ctx)
	if err != nil {
		return nil, c.fail(err)
	}

	now := entities.Timestamp(c.opts.Now())
	next := c.cfg
	next.LastSyncTime = &now
	if err := c.configs.SaveSyncConfig(next); err != nil {
		return nil, c.fail(err)
	}

	c.cfg = next
	c.succeed()
	log.Printf("Cloud sync: reloaded %s (%d -> %d words)", c.store.Path(), before, after)
	return &SyncResult{Before: before, After: after, At: now}, nil
}

// Enabled reports whether the store is rooted in the sync folder.
func (c *Coordinator) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Enabled
}

func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	cfg := c.cfg
	if cfg.SyncFolderPath != nil {
		folder := *cfg.SyncFolderPath
		cfg.SyncFolderPath = &folder
	}
	if cfg.LastSyncTime != nil {
		at := *cfg.LastSyncTime
		cfg.LastSyncTime = &at
	}
	return Status{
		SyncConfig: cfg,
		ActiveDir:  c.store.BaseDir(),
		StorePath:  c.store.Path(),
		Backend:    c.store.Kind(),
		LastStatus: c.lastStatus,
		LastError:  c.lastError,
		Warning:    c.warning,
	}
}

func (c *Coordinator) sharedDir(folder string) string {
	return filepath.Join(folder, c.opts.AppFolder)
}

// migrate merges records into the flat-file store at shared.
func (c *Coordinator) migrate(ctx context.Context, shared string, records []entities.WordRecord) (favorites.MergeResult, error) {
	target, err := filestore.Open(shared, filestore.Options{AppName: c.opts.AppName, Now: c.opts.Now})
	if err != nil {
		return favorites.MergeResult{}, err
	}
	defer target.Close()

	result, err := favorites.MergeInto(ctx, target, records)
	if err != nil {
		return result, err
	}
	if result.Failed > 0 {
		return result, fmt.Errorf("failed to copy %d words to %s: %s", result.Failed, shared, strings.Join(result.Errors, "; "))
	}
	return result, nil
}

func (c *Coordinator) restore(ctx context.Context, dir string, mode favorites.Mode) {
	if err := c.store.Reopen(ctx, dir, mode); err != nil {
		log.Printf("Cloud sync: failed to return to %s: %v", dir, err)
	}
}

func (c *Coordinator) fail(err error) error {
	c.lastStatus = "failed"
	c.lastError = err.Error()
	log.Printf("Cloud sync: %v", err)
	return err
}

func (c *Coordinator) succeed() {
	c.lastStatus = "success"
	c.lastError = ""
}
