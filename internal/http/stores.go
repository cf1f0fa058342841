package http

import (
	"context"

	"github.com/mrlokans/wordbook/internal/cloudsync"
	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/favorites"
	"github.com/mrlokans/wordbook/internal/wordstore"
)

// Each controller depends only on the methods it uses; *favorites.Store,
// *cloudsync.Coordinator and *audit.Service satisfy them in production.

// FavoritesStore is the word collection.
type FavoritesStore interface {
	Add(ctx context.Context, rec *entities.WordRecord) error
	Remove(ctx context.Context, word string) error
	Get(ctx context.Context, word string) (*entities.WordRecord, error)
	Contains(ctx context.Context, word string) (bool, error)
	List(ctx context.Context) (*favorites.ListResult, error)
	Records(ctx context.Context) ([]entities.WordRecord, error)
	Count(ctx context.Context) (int, error)
	Path() string
	Kind() wordstore.Kind
	BaseDir() string
}

// RestoreStore is written to by a restore.
type RestoreStore interface {
	Records(ctx context.Context) ([]entities.WordRecord, error)
	MergeIn(ctx context.Context, records []entities.WordRecord) (favorites.MergeResult, error)
	RemoveAll(ctx context.Context) (int, error)
}

// SyncService switches the store between local and shared folders.
type SyncService interface {
	Enable(ctx context.Context, folder string) (*cloudsync.EnableResult, error)
	Disable(ctx context.Context) error
	ForceSync(ctx context.Context) (*cloudsync.SyncResult, error)
	Status() cloudsync.Status
}

// AuditLogger records user-visible operations. A nil AuditLogger disables
// the journal.
type AuditLogger interface {
	LogBackup(target string, words, images int, err error)
	LogRestore(mode, source string, added, updated, skipped, failed int, err error)
	LogExport(format string, words int, err error)
	LogDelete(word string)
	LogSync(action, description string, err error)
	SaveSnapshot(data any) (string, error)
}
