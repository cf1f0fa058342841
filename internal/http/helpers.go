package http

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordbook/internal/cloudsync"
	"github.com/mrlokans/wordbook/internal/manifest"
	"github.com/mrlokans/wordbook/internal/wordstore"
)

// DuplicateNotice is shown when a word is favorited twice.
const DuplicateNotice = "already in your collection"

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidInput       = "invalid_input"
	CodeDuplicate          = "duplicate"
	CodeNotFound           = "not_found"
	CodeFolderNotFound     = "folder_not_found"
	CodeSyncNotEnabled     = "sync_not_enabled"
	CodeInvalidFormat      = "invalid_format"
	CodeUnsupportedVersion = "unsupported_version"
	CodeIO                 = "io_failure"
)

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: CodeInvalidInput})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found", Code: CodeNotFound})
}

// respondInternalError logs the error and sends a 500 response carrying the
// reason, which the UI shows in its failure notice.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: CodeIO})
}

// respondError sends an error response with the given status code.
func respondError(c *gin.Context, status int, message, code string) {
	c.JSON(status, ErrorResponse{Error: message, Code: code})
}

// respondStoreError maps store, archive and sync errors onto HTTP statuses.
func respondStoreError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, wordstore.ErrDuplicateKey):
		respondError(c, http.StatusConflict, DuplicateNotice, CodeDuplicate)
	case errors.Is(err, wordstore.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, err.Error(), CodeInvalidInput)
	case errors.Is(err, wordstore.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error(), CodeNotFound)
	case errors.Is(err, cloudsync.ErrFolderNotFound):
		respondError(c, http.StatusBadRequest, err.Error(), CodeFolderNotFound)
	case errors.Is(err, cloudsync.ErrSyncNotEnabled):
		respondError(c, http.StatusConflict, err.Error(), CodeSyncNotEnabled)
	case errors.Is(err, manifest.ErrInvalidFormat):
		respondError(c, http.StatusBadRequest, err.Error(), CodeInvalidFormat)
	case errors.Is(err, manifest.ErrUnsupportedVersion):
		respondError(c, http.StatusBadRequest, err.Error(), CodeUnsupportedVersion)
	default:
		respondInternalError(c, err, context)
	}
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message, Data: data})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// --- Parameter Parsing ---

// parseWordParam extracts a non-blank word from URL parameters.
// Returns the word or responds with a 400 error and returns "", false.
func parseWordParam(c *gin.Context, paramName string) (string, bool) {
	word := strings.TrimSpace(c.Param(paramName))
	if word == "" {
		respondBadRequest(c, paramName+" is required")
		return "", false
	}
	return word, true
}

// attachment sets the headers of a file download.
func attachment(c *gin.Context, fileName, contentType string) {
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", `attachment; filename="`+strings.ReplaceAll(fileName, `"`, "")+`"`)
}
