package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mrlokans/wordbook/internal/audit"
	"github.com/mrlokans/wordbook/internal/cloudsync"
	"github.com/mrlokans/wordbook/internal/config"
	"github.com/mrlokans/wordbook/internal/favorites"
	http_controllers "github.com/mrlokans/wordbook/internal/http"
	"github.com/mrlokans/wordbook/internal/scheduler"
	"github.com/mrlokans/wordbook/internal/settingsstore"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) default sends syscall.SIGTERM, kill -2 is syscall.SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	// Runs after the server stops accepting requests so no write races the
	// final sync.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting %s v%s", cfg.Global.AppName, version)
	ctx := context.Background()

	mode, err := favorites.ParseMode(cfg.Store.Backend)
	if err != nil {
		log.Fatalf("Invalid store backend: %v", err)
	}

	store, err := favorites.Open(ctx, cfg.Store.DataDir, mode, favorites.Options{AppName: cfg.Global.AppName})
	if err != nil {
		log.Fatalf("Failed to open favorites store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Error closing favorites store: %v", err)
		}
	}()

	settings := settingsstore.New(cfg.Store.DataDir)
	coordinator, err := cloudsync.New(ctx, store, settings, cloudsync.Options{
		LocalDir:  cfg.Store.DataDir,
		LocalMode: mode,
		AppFolder: cfg.Sync.AppFolder,
		AppName:   cfg.Global.AppName,
	})
	if err != nil {
		log.Fatalf("Failed to load sync settings: %v", err)
	}
	log.Printf("Favorites store: %s (%s)", store.Path(), store.Kind())

	var auditService *audit.Service
	if cfg.Audit.Enabled {
		auditService = audit.NewService(cfg.Audit.Dir)
		if cfg.Audit.RetentionDays > 0 {
			retention := time.Duration(cfg.Audit.RetentionDays) * 24 * time.Hour
			if removed, err := auditService.DeleteOldEvents(retention); err != nil {
				log.Printf("WARNING: Failed to clean up audit events: %v", err)
			} else if removed > 0 {
				log.Printf("Audit: removed %d events older than %d days", removed, cfg.Audit.RetentionDays)
			}
		}
	}

	var syncLogger scheduler.SyncLogger
	if auditService != nil {
		syncLogger = auditService
	}

	var syncScheduler *scheduler.SyncScheduler
	var schedulerCancel context.CancelFunc
	if cfg.Sync.SchedulerEnabled {
		syncScheduler = scheduler.NewSyncScheduler(coordinator, cfg.Sync.Schedule, syncLogger)
		var schedulerCtx context.Context
		schedulerCtx, schedulerCancel = context.WithCancel(ctx)
		if err := syncScheduler.Start(schedulerCtx); err != nil {
			log.Printf("WARNING: Failed to start sync scheduler: %v", err)
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Store:        store,
		Restore:      store,
		Sync:         coordinator,
		Scheduler:    syncScheduler,
		AuditService: auditService,
		AppName:      cfg.Global.AppName,
		Version:      version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if syncScheduler != nil {
			syncScheduler.Stop()
			schedulerCancel()
		}
		if _, err := coordinator.ForceSync(ctx); err != nil && !errors.Is(err, cloudsync.ErrSyncNotEnabled) {
			log.Printf("Final sync failed: %v", err)
		}
		if auditService != nil {
			auditService.Wait()
		}
	}

	Serve(router, cfg, onShutdown)
}
