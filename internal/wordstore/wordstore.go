// Package wordstore defines the contract shared by the favorite word
// backends, the canonical key rules, and the record merge policy.
//
// Two backends implement Backend:
//
//	filestore.Store    // wordbook.json + images/ (flat file)
//	favourites.Store   // favorite_words.db (gorm over sqlite)
//
// Callers normally go through favorites.Store, which picks a backend and
// serializes access to it.
package wordstore

import (
	"context"
	"strings"

	"github.com/mrlokans/wordbook/internal/entities"
)

// Kind names a backend implementation.
type Kind string

const (
	KindSQLite Kind = "sqlite"
	KindFile   Kind = "file"
)

const (
	// ImagesDir is the asset subdirectory created under every base directory.
	ImagesDir = "images"
	// ManifestFile is the flat-file backend's document.
	ManifestFile = "wordbook.json"
	// DatabaseFile is the structured backend's database.
	DatabaseFile = "favorite_words.db"
)

// Backend is a persistent collection of favorite words rooted at one
// base directory. Implementations are not safe for concurrent use.
type Backend interface {
	// Add inserts a new record. The word is canonicalized in place and both
	// timestamps are set to now.
	Add(ctx context.Context, rec *entities.WordRecord) error
	// Put inserts or replaces the record with the same canonical word,
	// keeping the timestamps carried by rec.
	Put(ctx context.Context, rec entities.WordRecord) error
	// Remove deletes the record and its screenshot asset.
	Remove(ctx context.Context, word string) error
	Get(ctx context.Context, word string) (*entities.WordRecord, error)
	Contains(ctx context.Context, word string) (bool, error)
	// List returns every record, newest first, with screenshots inline.
	List(ctx context.Context) ([]entities.WordRecord, error)
	Count(ctx context.Context) (int, error)
	// Reload re-reads persisted state written by another process.
	Reload(ctx context.Context) error
	// Path returns the manifest or database file backing the store.
	Path() string
	Kind() Kind
	Close() error
}

// Canonical returns the uniqueness key for a word.
func Canonical(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// CanonicalKey canonicalizes word and rejects empty keys.
func CanonicalKey(op, word string) (string, error) {
	key := Canonical(word)
	if key == "" {
		return "", &Error{Op: op, Err: ErrInvalidInput}
	}
	return key, nil
}

// Words returns the canonical words of records in their given order.
func Words(records []entities.WordRecord) []string {
	words := make([]string, 0, len(records))
	for _, r := range records {
		words = append(words, r.Word)
	}
	return words
}
