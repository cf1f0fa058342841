package http

import (
	"time"

	"github.com/mrlokans/wordbook/internal/audit"
	"github.com/mrlokans/wordbook/internal/scheduler"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Store FavoritesStore
	// Restore defaults to Store when it implements RestoreStore.
	Restore RestoreStore
	Sync    SyncService

	// Optional
	Scheduler    *scheduler.SyncScheduler
	AuditService *audit.Service

	// Application info
	AppName string
	Version string

	// Now is used for file names and export dates.
	Now func() time.Time
}
