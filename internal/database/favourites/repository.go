// Package favourites provides database operations for favorite words.
//
// This package implements the wordstore.Backend interface on top of the
// favorite_words table. Screenshots are stored inline as data URIs.
//
// # Interface Implementation
//
//	var _ wordstore.Backend = (*Repository)(nil)
//
// # Usage
//
//	repo, err := favourites.Open(dataDir)
//	err = repo.Add(ctx, &entities.WordRecord{Word: "cat", Translation: "gato"})
//	words, err := repo.List(ctx)
package favourites

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/wordbook/internal/assets"
	"github.com/mrlokans/wordbook/internal/database"
	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/wordstore"
)

// Repository handles all favorite word database operations.
type Repository struct {
	database *database.Database
	db       *gorm.DB
	now      func() time.Time
	closed   bool
}

var _ wordstore.Backend = (*Repository)(nil)

// NewRepository creates a repository over an open database.
func NewRepository(db *database.Database) *Repository {
	return &Repository{database: db, db: db.DB, now: time.Now}
}

// Open creates baseDir and its images folder and opens
// baseDir/favorite_words.db.
func Open(baseDir string, level logger.LogLevel) (*Repository, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, wordstore.ImagesDir), 0755); err != nil {
		return nil, wordstore.IOError("open", "", fmt.Errorf("failed to create data dir: %w", err))
	}
	db, err := database.Open(filepath.Join(baseDir, wordstore.DatabaseFile), database.Options{LogLevel: level})
	if err != nil {
		return nil, wordstore.IOError("open", "", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, wordstore.IOError("open", "", err)
	}
	return NewRepository(db), nil
}

// WithClock overrides the time source, for tests.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}

func (r *Repository) Path() string         { return r.database.Path }
func (r *Repository) Kind() wordstore.Kind { return wordstore.KindSQLite }

// Add inserts a new favorite word. The unique index on word rejects
// duplicates atomically.
func (r *Repository) Add(ctx context.Context, rec *entities.WordRecord) error {
	if err := r.check(ctx); err != nil {
		return err
	}
	key, err := wordstore.CanonicalKey("add", rec.Word)
	if err != nil {
		return err
	}
	if err := validateScreenshot("add", key, rec.Screenshot); err != nil {
		return err
	}

	now := entities.Timestamp(r.now())
	row := *rec
	row.ID = 0
	row.Word = key
	row.ScreenshotFile = ""
	row.CreatedAt = now
	row.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueConstraintErr(err) {
			return &wordstore.Error{Op: "add", Word: key, Err: wordstore.ErrDuplicateKey}
		}
		return wordstore.IOError("add", key, err)
	}

	rec.Word = key
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return nil
}

// Put inserts or replaces a word keeping the record's timestamps.
func (r *Repository) Put(ctx context.Context, rec entities.WordRecord) error {
	if err := r.check(ctx); err != nil {
		return err
	}
	key, err := wordstore.CanonicalKey("put", rec.Word)
	if err != nil {
		return err
	}
	if err := validateScreenshot("put", key, rec.Screenshot); err != nil {
		return err
	}

	row := rec
	row.ID = 0
	row.Word = key
	row.ScreenshotFile = ""
	if row.CreatedAt.IsZero() {
		row.CreatedAt = r.now()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	row.CreatedAt = entities.Timestamp(row.CreatedAt)
	row.UpdatedAt = entities.Timestamp(row.UpdatedAt)

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing entities.WordRecord
		err := tx.Where("word = ?", key).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&row).Error
		}
		if err != nil {
			return err
		}
		row.ID = existing.ID
		return tx.Save(&row).Error
	})
	if err != nil {
		return wordstore.IOError("put", key, err)
	}
	return nil
}

// Remove deletes a word. Its screenshot lives in the same row.
func (r *Repository) Remove(ctx context.Context, word string) error {
	if err := r.check(ctx); err != nil {
		return err
	}
	key, err := wordstore.CanonicalKey("remove", word)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Where("word = ?", key).Delete(&entities.WordRecord{})
	if result.Error != nil {
		return wordstore.IOError("remove", key, result.Error)
	}
	if result.RowsAffected == 0 {
		return &wordstore.Error{Op: "remove", Word: key, Err: wordstore.ErrNotFound}
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, word string) (*entities.WordRecord, error) {
	if err := r.check(ctx); err != nil {
		return nil, err
	}
	key, err := wordstore.CanonicalKey("get", word)
	if err != nil {
		return nil, err
	}

	var rec entities.WordRecord
	err = r.db.WithContext(ctx).Where("word = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &wordstore.Error{Op: "get", Word: key, Err: wordstore.ErrNotFound}
	}
	if err != nil {
		return nil, wordstore.IOError("get", key, err)
	}
	return normalize(rec), nil
}

func (r *Repository) Contains(ctx context.Context, word string) (bool, error) {
	if err := r.check(ctx); err != nil {
		return false, err
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.WordRecord{}).
		Where("word = ?", wordstore.Canonical(word)).
		Count(&count).Error
	if err != nil {
		return false, wordstore.IOError("contains", word, err)
	}
	return count > 0, nil
}

// List returns all favorite words, newest first.
func (r *Repository) List(ctx context.Context) ([]entities.WordRecord, error) {
	if err := r.check(ctx); err != nil {
		return nil, err
	}
	var rows []entities.WordRecord
	err := r.db.WithContext(ctx).Order("created_at DESC, word ASC").Find(&rows).Error
	if err != nil {
		return nil, wordstore.IOError("list", "", err)
	}
	for i := range rows {
		rows[i] = *normalize(rows[i])
	}
	return rows, nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	if err := r.check(ctx); err != nil {
		return 0, err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.WordRecord{}).Count(&count).Error; err != nil {
		return 0, wordstore.IOError("count", "", err)
	}
	return int(count), nil
}

// Reload is a no-op: every read goes to the database.
func (r *Repository) Reload(ctx context.Context) error {
	return r.check(ctx)
}

func (r *Repository) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.database.Close()
}

func (r *Repository) check(ctx context.Context) error {
	if r.closed {
		return wordstore.ErrClosed
	}
	return ctx.Err()
}

func normalize(rec entities.WordRecord) *entities.WordRecord {
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return &rec
}

func validateScreenshot(op, word, screenshot string) error {
	if screenshot == "" {
		return nil
	}
	if _, _, err := assets.DecodeDataURI(screenshot); err != nil {
		return &wordstore.Error{Op: op, Word: word, Err: fmt.Errorf("%w: %v", wordstore.ErrInvalidInput, err)}
	}
	return nil
}

func isUniqueConstraintErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
