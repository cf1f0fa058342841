package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/mrlokans/wordbook/internal/cloudsync"
	"github.com/mrlokans/wordbook/internal/config"
	"github.com/mrlokans/wordbook/internal/favorites"
	"github.com/mrlokans/wordbook/internal/settingsstore"
)

// storeFlags are shared by every command that reads or writes the collection.
type storeFlags struct {
	DataDir   string
	Backend   string
	AppName   string
	AppFolder string
}

func (f *storeFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.DataDir, "data", config.DefaultDataDir, "Local data directory")
	fs.StringVar(&f.Backend, "backend", "auto", "Store backend: auto, sqlite or file")
	fs.StringVar(&f.AppName, "app", config.DefaultAppName, "Application name written into backups")
	fs.StringVar(&f.AppFolder, "app-folder", cloudsync.DefaultAppFolder, "Subfolder used inside the sync folder")
}

// collection is an open store routed through the saved sync settings, so
// commands act on the same copy the server would.
type collection struct {
	store *favorites.Store
	sync  *cloudsync.Coordinator
}

func (f *storeFlags) open(ctx context.Context) (*collection, error) {
	mode, err := favorites.ParseMode(f.Backend)
	if err != nil {
		return nil, err
	}
	store, err := favorites.Open(ctx, f.DataDir, mode, favorites.Options{AppName: f.AppName})
	if err != nil {
		return nil, fmt.Errorf("failed to open favorites store: %w", err)
	}
	coordinator, err := cloudsync.New(ctx, store, settingsstore.New(f.DataDir), cloudsync.Options{
		LocalDir:  f.DataDir,
		LocalMode: mode,
		AppFolder: f.AppFolder,
		AppName:   f.AppName,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to load sync settings: %w", err)
	}
	return &collection{store: store, sync: coordinator}, nil
}

func (c *collection) Close() error {
	return c.store.Close()
}
