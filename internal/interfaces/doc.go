// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Storage
//
//   - wordstore.Backend: one favorites backend (sqlite via gorm in
//     internal/database/favourites, flat JSON manifest in
//     internal/wordstore/filestore)
//   - archive.Target: what a restore writes through (internal/archive/restore.go)
//
// ## HTTP
//
//   - FavoritesStore, RestoreStore: the favorites collection (internal/http/stores.go)
//   - SyncService: folder sync controls (internal/http/stores.go)
//   - AuditLogger: restore/backup/export/sync journal (internal/http/stores.go)
//
// ## Sync
//
//   - cloudsync.ConfigStore: persisted sync settings (internal/cloudsync/coordinator.go)
//   - scheduler.Syncer, scheduler.SyncLogger: periodic sync (internal/scheduler/sync.go)
//
// ## Export
//
//   - exporters.WordExporter: study formats (internal/exporters/generic.go)
//
// # Adding a New Export Format
//
//  1. Implement WordExporter in internal/exporters/
//
//     type CSVExporter struct{}
//
//     func (e *CSVExporter) Export(w io.Writer, records []entities.WordRecord) (ExportResult, error)
//     func (e *CSVExporter) Extension() string
//     func (e *CSVExporter) ContentType() string
//
//  2. Add a Format constant and a case in exporters.New. The HTTP route
//     GET /api/export/:format and the export command pick it up from there.
//
// # Adding a New Storage Backend
//
//  1. Implement wordstore.Backend. Canonicalize words with
//     wordstore.CanonicalKey, return the wordstore sentinels wrapped in
//     *wordstore.Error, and keep screenshots in an assets.Store.
//
//  2. Add a favorites.Mode and open it in favorites.openBackend.
//
//  3. Add a compile-time check to checks.go.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
