package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/wordstore"
)

// FavoriteRequest is the body of POST /api/favorites. The UI sends the word
// together with whatever the lookup produced and a screenshot of the frame.
type FavoriteRequest struct {
	Word                string `json:"word"`
	Pronunciation       string `json:"pronunciation"`
	Translation         string `json:"translation"`
	AIExplanation       string `json:"aiExplanation"`
	ExampleSentence     string `json:"exampleSentence"`
	SentenceTranslation string `json:"sentenceTranslation"`
	Screenshot          string `json:"screenshot"`
}

func (r FavoriteRequest) record() *entities.WordRecord {
	return &entities.WordRecord{
		Word:                r.Word,
		Pronunciation:       r.Pronunciation,
		Translation:         r.Translation,
		AIExplanation:       r.AIExplanation,
		ExampleSentence:     r.ExampleSentence,
		SentenceTranslation: r.SentenceTranslation,
		Screenshot:          r.Screenshot,
	}
}

// parseFavoriteRequest accepts either a full object or, as older clients
// send, a bare JSON string holding only the word.
func parseFavoriteRequest(body []byte) (FavoriteRequest, error) {
	var req FavoriteRequest
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, `"`) {
		err := json.Unmarshal([]byte(trimmed), &req.Word)
		return req, err
	}
	err := json.Unmarshal([]byte(trimmed), &req)
	return req, err
}

type FavoritesController struct {
	store    FavoritesStore
	auditLog AuditLogger
}

func NewFavoritesController(store FavoritesStore, auditLog AuditLogger) *FavoritesController {
	return &FavoritesController{store: store, auditLog: auditLog}
}

// ListFavorites returns every word and its details.
// GET /api/favorites
func (fc *FavoritesController) ListFavorites(c *gin.Context) {
	list, err := fc.store.List(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "list favorites")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"words":       list.Words,
		"wordDetails": list.Records,
		"total":       len(list.Records),
	})
}

// AddFavorite stores a new word.
// POST /api/favorites
func (fc *FavoritesController) AddFavorite(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		respondBadRequest(c, "failed to read request body")
		return
	}
	req, err := parseFavoriteRequest(body)
	if err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	rec := req.record()
	if err := fc.store.Add(c.Request.Context(), rec); err != nil {
		respondStoreError(c, err, "add favorite")
		return
	}
	respondCreated(c, gin.H{"message": "favorite added", "word": rec})
}

// GetFavorite returns one word.
// GET /api/favorites/:word
func (fc *FavoritesController) GetFavorite(c *gin.Context) {
	word, ok := parseWordParam(c, "word")
	if !ok {
		return
	}
	rec, err := fc.store.Get(c.Request.Context(), word)
	if err != nil {
		respondStoreError(c, err, "get favorite")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// RemoveFavorite deletes a word and its screenshot.
// DELETE /api/favorites/:word
func (fc *FavoritesController) RemoveFavorite(c *gin.Context) {
	word, ok := parseWordParam(c, "word")
	if !ok {
		return
	}
	if err := fc.store.Remove(c.Request.Context(), word); err != nil {
		respondStoreError(c, err, "remove favorite")
		return
	}
	if fc.auditLog != nil {
		fc.auditLog.LogDelete(wordstore.Canonical(word))
	}
	respondSuccess(c, "favorite removed", nil)
}

// FavoriteExists reports whether a word is in the collection.
// GET /api/favorites/:word/exists
func (fc *FavoritesController) FavoriteExists(c *gin.Context) {
	word, ok := parseWordParam(c, "word")
	if !ok {
		return
	}
	exists, err := fc.store.Contains(c.Request.Context(), word)
	if err != nil {
		respondStoreError(c, err, "check favorite")
		return
	}
	c.JSON(http.StatusOK, gin.H{"word": word, "exists": exists})
}

// GetFavoriteCount returns the number of words.
// GET /api/favorites/count
func (fc *FavoritesController) GetFavoriteCount(c *gin.Context) {
	count, err := fc.store.Count(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "count favorites")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// GetStorePath shows where the collection is stored.
// GET /api/favorites/path
func (fc *FavoritesController) GetStorePath(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"path":    fc.store.Path(),
		"baseDir": fc.store.BaseDir(),
		"backend": fc.store.Kind(),
	})
}
