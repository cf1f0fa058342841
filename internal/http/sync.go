package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordbook/internal/cloudsync"
	"github.com/mrlokans/wordbook/internal/scheduler"
)

type SyncController struct {
	sync      SyncService
	scheduler *scheduler.SyncScheduler
	auditLog  AuditLogger
}

func NewSyncController(sync SyncService, sched *scheduler.SyncScheduler, auditLog AuditLogger) *SyncController {
	return &SyncController{sync: sync, scheduler: sched, auditLog: auditLog}
}

type EnableSyncRequest struct {
	Folder string `json:"folder"`
}

type SyncStatusResponse struct {
	cloudsync.Status
	SchedulerRunning bool       `json:"schedulerRunning"`
	Schedule         string     `json:"schedule,omitempty"`
	NextRun          *time.Time `json:"nextRun,omitempty"`
}

// GetStatus returns the sync configuration and where the store lives.
// GET /api/sync
func (sc *SyncController) GetStatus(c *gin.Context) {
	resp := SyncStatusResponse{Status: sc.sync.Status()}
	if sc.scheduler != nil {
		resp.SchedulerRunning = sc.scheduler.IsRunning()
		resp.Schedule = sc.scheduler.Schedule()
		resp.NextRun = sc.scheduler.GetNextRunTime()
	}
	c.JSON(http.StatusOK, resp)
}

// Enable roots the store in the given folder.
// POST /api/sync/enable
func (sc *SyncController) Enable(c *gin.Context) {
	var req EnableSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Folder) == "" {
		respondBadRequest(c, "folder is required")
		return
	}

	result, err := sc.sync.Enable(c.Request.Context(), req.Folder)
	if err != nil {
		sc.logAudit("sync_enable", "Failed to enable sync at "+req.Folder, err)
		respondStoreError(c, err, "enable sync")
		return
	}
	sc.logAudit("sync_enable", fmt.Sprintf("Enabled sync at %s (%d words copied)", result.SharedDir, result.Migrated.Written()), nil)

	respondSuccess(c, "sync enabled", gin.H{
		"result": result,
		"status": sc.sync.Status(),
	})
}

// Disable returns the store to the local data directory.
// POST /api/sync/disable
func (sc *SyncController) Disable(c *gin.Context) {
	if err := sc.sync.Disable(c.Request.Context()); err != nil {
		respondStoreError(c, err, "disable sync")
		return
	}
	sc.logAudit("sync_disable", "Disabled sync", nil)
	respondSuccess(c, "sync disabled", sc.sync.Status())
}

// SyncNow re-reads the shared folder.
// POST /api/sync/now
func (sc *SyncController) SyncNow(c *gin.Context) {
	result, err := sc.sync.ForceSync(c.Request.Context())
	if err != nil {
		sc.logAudit("sync_run", "Manual sync failed", err)
		respondStoreError(c, err, "sync now")
		return
	}
	sc.logAudit("sync_run", fmt.Sprintf("Manual sync, %d -> %d words", result.Before, result.After), nil)
	respondSuccess(c, "sync completed", result)
}

func (sc *SyncController) logAudit(action, description string, err error) {
	if sc.auditLog == nil {
		return
	}
	sc.auditLog.LogSync(action, description, err)
}
