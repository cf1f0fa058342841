package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	var auditLog AuditLogger
	if cfg.AuditService != nil {
		auditLog = cfg.AuditService
	}

	restore := cfg.Restore
	if restore == nil {
		if rs, ok := cfg.Store.(RestoreStore); ok {
			restore = rs
		}
	}

	health := NewHealthController(cfg.Store, cfg.Sync, cfg.Version)
	favoritesController := NewFavoritesController(cfg.Store, auditLog)
	exportController := NewExportController(cfg.Store, auditLog, cfg.AppName, cfg.Now)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Favorites endpoints
	router.GET("/api/favorites", favoritesController.ListFavorites)
	router.POST("/api/favorites", favoritesController.AddFavorite)
	router.GET("/api/favorites/count", favoritesController.GetFavoriteCount)
	router.GET("/api/favorites/path", favoritesController.GetStorePath)
	router.GET("/api/favorites/:word", favoritesController.GetFavorite)
	router.DELETE("/api/favorites/:word", favoritesController.RemoveFavorite)
	router.GET("/api/favorites/:word/exists", favoritesController.FavoriteExists)

	// Backup and restore endpoints
	if restore != nil {
		backupController := NewBackupController(cfg.Store, restore, auditLog, cfg.AppName, cfg.Now)
		router.GET("/api/backup", backupController.Backup)
		router.POST("/api/restore", backupController.Restore)
	}

	// Export endpoints
	router.GET("/api/export/:format", exportController.Export)

	// Sync endpoints
	if cfg.Sync != nil {
		syncController := NewSyncController(cfg.Sync, cfg.Scheduler, auditLog)
		router.GET("/api/sync", syncController.GetStatus)
		router.POST("/api/sync/enable", syncController.Enable)
		router.POST("/api/sync/disable", syncController.Disable)
		router.POST("/api/sync/now", syncController.SyncNow)
	}

	// Audit endpoints
	if cfg.AuditService != nil {
		auditController := NewAuditController(cfg.AuditService)
		router.GET("/api/audit", auditController.GetAuditEvents)
	}

	return router
}
