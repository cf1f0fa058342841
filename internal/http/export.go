package http

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordbook/internal/exporters"
)

type ExportController struct {
	store    FavoritesStore
	auditLog AuditLogger
	appName  string
	now      func() time.Time
}

func NewExportController(store FavoritesStore, auditLog AuditLogger, appName string, now func() time.Time) *ExportController {
	if now == nil {
		now = time.Now
	}
	return &ExportController{store: store, auditLog: auditLog, appName: appName, now: now}
}

// Export renders the collection in the format named by the path.
// GET /api/export/:format
func (ec *ExportController) Export(c *gin.Context) {
	format := exporters.Format(c.Param("format"))
	deck := c.DefaultQuery("deck", exporters.DeckName(ec.appName, ec.now()))

	exporter, err := exporters.New(format, deck)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if md, ok := exporter.(*exporters.MarkdownExporter); ok {
		md.Now = ec.now
	}

	records, err := ec.store.Records(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "export")
		return
	}
	if len(records) == 0 {
		respondError(c, http.StatusBadRequest, "the collection is empty, nothing to export", CodeInvalidInput)
		return
	}

	var buf bytes.Buffer
	result, err := exporter.Export(&buf, records)
	if ec.auditLog != nil {
		ec.auditLog.LogExport(string(format), result.WordsProcessed, err)
	}
	if err != nil {
		respondInternalError(c, err, "export")
		return
	}

	attachment(c, exporters.FileName(exporter, deck), exporter.ContentType())
	c.Data(http.StatusOK, exporter.ContentType(), buf.Bytes())
}
