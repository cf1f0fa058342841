package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordbook/internal/archive"
)

// maxRestoreSize bounds uploaded backups.
const maxRestoreSize = 512 << 20

type BackupController struct {
	store    FavoritesStore
	restore  RestoreStore
	auditLog AuditLogger
	appName  string
	now      func() time.Time
}

func NewBackupController(store FavoritesStore, restore RestoreStore, auditLog AuditLogger, appName string, now func() time.Time) *BackupController {
	if now == nil {
		now = time.Now
	}
	return &BackupController{store: store, restore: restore, auditLog: auditLog, appName: appName, now: now}
}

// Backup streams the collection as a zip bundle.
// GET /api/backup
func (bc *BackupController) Backup(c *gin.Context) {
	ctx := c.Request.Context()
	records, err := bc.store.Records(ctx)
	if err != nil {
		respondStoreError(c, err, "backup")
		return
	}

	fileName := archive.FileName(bc.appName, bc.now())
	var buf bytes.Buffer
	result, err := archive.Pack(ctx, records, &buf, archive.Options{AppName: bc.appName, Now: bc.now})
	if err != nil {
		bc.logBackup(fileName, nil, err)
		respondInternalError(c, err, "backup")
		return
	}
	bc.logBackup(fileName, result, nil)

	attachment(c, fileName, "application/zip")
	c.Header("X-Word-Count", fmt.Sprint(result.Words))
	c.Header("X-Image-Count", fmt.Sprint(result.Images))
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}

// Restore reads an uploaded bundle (zip or JSON) from the "file" form field.
// POST /api/restore?mode=merge|overwrite
func (bc *BackupController) Restore(c *gin.Context) {
	ctx := c.Request.Context()

	mode, err := archive.ParseMode(c.Query("mode"))
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "backup file is required")
		return
	}
	if fileHeader.Size > maxRestoreSize {
		respondBadRequest(c, "backup file is too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondInternalError(c, err, "open uploaded backup")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxRestoreSize+1))
	if err != nil {
		respondInternalError(c, err, "read uploaded backup")
		return
	}

	records, doc, err := archive.Unpack(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		bc.logRestore(mode, fileHeader.Filename, nil, err)
		respondStoreError(c, err, "unpack backup")
		return
	}

	if mode == archive.ModeOverwrite && bc.auditLog != nil {
		if _, err := archive.Snapshot(ctx, bc.restore, bc.auditLog, bc.appName, bc.now()); err != nil {
			bc.logRestore(mode, fileHeader.Filename, nil, err)
			respondInternalError(c, err, "snapshot before overwrite")
			return
		}
	}

	result, err := archive.Restore(ctx, bc.restore, records, mode)
	bc.logRestore(mode, fileHeader.Filename, result, err)
	if err != nil {
		respondStoreError(c, err, "restore")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  fmt.Sprintf("restored %d words", result.Written()),
		"result":   result,
		"metadata": doc.Metadata,
	})
}

func (bc *BackupController) logBackup(target string, result *archive.PackResult, err error) {
	if bc.auditLog == nil {
		return
	}
	var words, images int
	if result != nil {
		words, images = result.Words, result.Images
	}
	bc.auditLog.LogBackup(target, words, images, err)
}

func (bc *BackupController) logRestore(mode archive.Mode, source string, result *archive.RestoreResult, err error) {
	if bc.auditLog == nil {
		return
	}
	var r archive.RestoreResult
	if result != nil {
		r = *result
	}
	bc.auditLog.LogRestore(string(mode), source, r.Added, r.Updated, r.Skipped, r.Failed, err)
}
