package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordbook/internal/storage"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	store   FavoritesStore
	sync    SyncService
	version string
}

func NewHealthController(store FavoritesStore, sync SyncService, version string) *HealthController {
	return &HealthController{
		store:   store,
		sync:    sync,
		version: version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.store != nil {
		if _, err := h.store.Count(c.Request.Context()); err != nil {
			checks["store"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["store"] = "ok (" + string(h.store.Kind()) + ")"
		}
	} else {
		checks["store"] = "not configured"
		status = "unhealthy"
	}

	if h.sync != nil {
		st := h.sync.Status()
		switch {
		case st.Warning != "":
			checks["sync"] = "warning: " + st.Warning
		case !st.Enabled:
			checks["sync"] = "disabled"
		case !storage.IsDir(st.FolderPath()):
			checks["sync"] = "error: sync folder unavailable"
			status = "degraded"
		default:
			checks["sync"] = "ok"
		}
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
