package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/wordbook/internal/archive"
	"github.com/mrlokans/wordbook/internal/audit"
	"github.com/mrlokans/wordbook/internal/cloudsync"
	"github.com/mrlokans/wordbook/internal/database/favourites"
	"github.com/mrlokans/wordbook/internal/exporters"
	"github.com/mrlokans/wordbook/internal/favorites"
	"github.com/mrlokans/wordbook/internal/http"
	"github.com/mrlokans/wordbook/internal/scheduler"
	"github.com/mrlokans/wordbook/internal/settingsstore"
	"github.com/mrlokans/wordbook/internal/wordstore"
	"github.com/mrlokans/wordbook/internal/wordstore/filestore"
)

// =============================================================================
// Storage Backends
// =============================================================================

var _ wordstore.Backend = (*favourites.Repository)(nil)
var _ wordstore.Backend = (*filestore.Store)(nil)

// =============================================================================
// Favorites Store
// =============================================================================

var _ http.FavoritesStore = (*favorites.Store)(nil)
var _ http.RestoreStore = (*favorites.Store)(nil)
var _ archive.Target = (*favorites.Store)(nil)

// =============================================================================
// Sync
// =============================================================================

var _ http.SyncService = (*cloudsync.Coordinator)(nil)
var _ scheduler.Syncer = (*cloudsync.Coordinator)(nil)
var _ cloudsync.ConfigStore = (*settingsstore.SettingsStore)(nil)

// =============================================================================
// Audit Journal
// =============================================================================

var _ http.AuditLogger = (*audit.Service)(nil)
var _ scheduler.SyncLogger = (*audit.Service)(nil)

// =============================================================================
// Exporters
// =============================================================================

var _ exporters.WordExporter = (*exporters.TextExporter)(nil)
var _ exporters.WordExporter = (*exporters.AnkiExporter)(nil)
var _ exporters.WordExporter = (*exporters.MarkdownExporter)(nil)
