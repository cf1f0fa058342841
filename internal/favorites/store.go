// Package favorites is the entry point for reading and writing favorite
// words. It selects a backend for a base directory, serializes every call
// through one lock, and can re-root itself at another directory when sync
// is switched on or off.
package favorites

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm/logger"

	"github.com/mrlokans/wordbook/internal/database/favourites"
	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/wordstore"
	"github.com/mrlokans/wordbook/internal/wordstore/filestore"
)

// Mode selects the backend.
type Mode string

const (
	// ModeAuto prefers sqlite and falls back to the flat file when the
	// database cannot be opened.
	ModeAuto   Mode = "auto"
	ModeSQLite Mode = "sqlite"
	ModeFile   Mode = "file"
)

// ParseMode validates a mode name. An empty name means ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeSQLite, ModeFile:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown store backend %q (want auto, sqlite or file)", s)
}

type Options struct {
	AppName  string
	LogLevel logger.LogLevel
	Now      func() time.Time
}

// ListResult carries the records and their words for callers that only
// need the words.
type ListResult struct {
	Words   []string              `json:"words"`
	Records []entities.WordRecord `json:"wordDetails"`
}

// Store is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	backend wordstore.Backend
	baseDir string
	mode    Mode
	opts    Options
	// homeDir is the directory the store was opened with. Only there is an
	// unreadable manifest set aside on open.
	homeDir string
}

// Open opens a store rooted at baseDir.
func Open(ctx context.Context, baseDir string, mode Mode, opts Options) (*Store, error) {
	backend, err := openBackend(ctx, baseDir, mode, opts, true)
	if err != nil {
		return nil, err
	}
	return &Store{backend: backend, baseDir: baseDir, mode: mode, opts: opts, homeDir: baseDir}, nil
}

// New wraps an already open backend.
func New(backend wordstore.Backend, baseDir string) *Store {
	return &Store{backend: backend, baseDir: baseDir, mode: Mode(backend.Kind()), homeDir: baseDir}
}

func openBackend(ctx context.Context, baseDir string, mode Mode, opts Options, recoverCorrupt bool) (wordstore.Backend, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	level := opts.LogLevel
	if level == 0 {
		level = logger.Warn
	}

	switch mode {
	case ModeSQLite:
		repo, err := favourites.Open(baseDir, level)
		if err != nil {
			return nil, err
		}
		if opts.Now != nil {
			repo.WithClock(opts.Now)
		}
		return repo, nil
	case ModeFile:
		return filestore.Open(baseDir, filestore.Options{AppName: opts.AppName, Now: opts.Now, RecoverCorrupt: recoverCorrupt})
	case ModeAuto, "":
		repo, err := favourites.Open(baseDir, level)
		if err == nil {
			if opts.Now != nil {
				repo.WithClock(opts.Now)
			}
			return repo, nil
		}
		log.Printf("Favorites: sqlite unavailable in %s (%v), using file storage", baseDir, err)
		return filestore.Open(baseDir, filestore.Options{AppName: opts.AppName, Now: opts.Now, RecoverCorrupt: recoverCorrupt})
	}
	return nil, fmt.Errorf("unknown store backend %q", mode)
}

// Reopen closes the current backend and opens baseDir with mode. On failure
// the current backend stays open and in use.
func (s *Store) Reopen(ctx context.Context, baseDir string, mode Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	backend, err := openBackend(ctx, baseDir, mode, s.opts, baseDir == s.homeDir)
	if err != nil {
		return err
	}
	if err := s.backend.Close(); err != nil {
		log.Printf("Favorites: failed to close store at %s: %v", s.baseDir, err)
	}

	log.Printf("Favorites: now using %s store at %s", backend.Kind(), backend.Path())
	s.backend = backend
	s.baseDir = baseDir
	s.mode = mode
	return nil
}

// BaseDir returns the directory the store is rooted at.
func (s *Store) BaseDir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseDir
}

// Path returns the manifest or database file in use.
func (s *Store) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Path()
}

// Kind returns the backend in use.
func (s *Store) Kind() wordstore.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Kind()
}

// Mode returns the mode the store was last opened with.
func (s *Store) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Store) Add(ctx context.Context, rec *entities.WordRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Add(ctx, rec)
}

func (s *Store) Put(ctx context.Context, rec entities.WordRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Put(ctx, rec)
}

func (s *Store) Remove(ctx context.Context, word string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Remove(ctx, word)
}

// RemoveAll deletes every record and returns how many were removed.
func (s *Store) RemoveAll(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.backend.List(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, rec := range records {
		if err := s.backend.Remove(ctx, rec.Word); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (s *Store) Get(ctx context.Context, word string) (*entities.WordRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Get(ctx, word)
}

func (s *Store) Contains(ctx context.Context, word string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Contains(ctx, word)
}

// List returns records newest first plus the sorted word list.
func (s *Store) List(ctx context.Context) (*ListResult, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	words := wordstore.Words(records)
	sort.Strings(words)
	return &ListResult{Words: words, Records: records}, nil
}

// Records returns every record, newest first.
func (s *Store) Records(ctx context.Context) ([]entities.WordRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.List(ctx)
}

func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Count(ctx)
}

func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Reload(ctx)
}

// MergeResult counts what a merge did with each incoming record.
type MergeResult struct {
	Added   int      `json:"added"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// Written returns the number of records that were stored.
func (r MergeResult) Written() int {
	return r.Added + r.Updated
}

// MergeIn folds records into the store with the merge policy.
func (s *Store) MergeIn(ctx context.Context, records []entities.WordRecord) (MergeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return MergeInto(ctx, s.backend, records)
}

// MergeInto folds records into backend. Records equal to what the backend
// already holds are skipped, so repeating a merge writes nothing. A record
// that fails to store is counted and the merge continues; the returned
// error is reserved for failures that stop the whole merge.
func MergeInto(ctx context.Context, backend wordstore.Backend, records []entities.WordRecord) (MergeResult, error) {
	var result MergeResult

	existing, err := backend.List(ctx)
	if err != nil {
		return result, err
	}
	byWord := make(map[string]entities.WordRecord, len(existing))
	for _, rec := range existing {
		byWord[rec.Word] = rec
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		key := wordstore.Canonical(rec.Word)
		if key == "" {
			result.Failed++
			result.Errors = append(result.Errors, "record without a word")
			continue
		}
		rec.Word = key

		next := rec
		current, ok := byWord[key]
		if ok {
			next = wordstore.MergeOne(current, rec)
			if !wordstore.Changed(current, next) {
				result.Skipped++
				continue
			}
		}

		if err := backend.Put(ctx, next); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", key, err))
			continue
		}
		byWord[key] = next
		if ok {
			result.Updated++
		} else {
			result.Added++
		}
	}
	return result, nil
}

// Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Close()
}
