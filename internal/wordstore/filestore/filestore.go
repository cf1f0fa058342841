// Package filestore keeps favorite words in a single JSON manifest with
// screenshots written as sibling files under images/.
//
// The whole manifest is held in memory and rewritten atomically after every
// mutation. A failed write restores the in-memory state to what it was
// before the call.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/wordbook/internal/assets"
	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/manifest"
	"github.com/mrlokans/wordbook/internal/storage"
	"github.com/mrlokans/wordbook/internal/utils"
	"github.com/mrlokans/wordbook/internal/wordstore"
)

type Options struct {
	// AppName is written into the manifest metadata.
	AppName string
	// Now overrides the clock, for tests.
	Now func() time.Time
	// RecoverCorrupt lets Open set an unparseable manifest aside and start
	// empty. Manifests from a newer format version are never set aside.
	RecoverCorrupt bool
}

// Store is the flat-file wordstore.Backend.
type Store struct {
	path    string
	appName string
	now     func() time.Time
	assets  *assets.Store
	records map[string]entities.WordRecord
	closed  bool
}

var _ wordstore.Backend = (*Store)(nil)

// Open loads baseDir/wordbook.json, creating baseDir, its images folder and
// an empty manifest when they do not exist.
func Open(baseDir string, opts Options) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, wordstore.IOError("open", "", fmt.Errorf("failed to create data dir: %w", err))
	}
	assetStore, err := assets.New(baseDir)
	if err != nil {
		return nil, wordstore.IOError("open", "", err)
	}

	s := &Store{
		path:    filepath.Join(baseDir, wordstore.ManifestFile),
		appName: opts.AppName,
		now:     opts.Now,
		assets:  assetStore,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if err := s.load(opts.RecoverCorrupt); err != nil {
		return nil, err
	}

	log.Printf("File store: loaded %d words from %s", len(s.records), s.path)
	return s, nil
}

func (s *Store) Path() string         { return s.path }
func (s *Store) Kind() wordstore.Kind { return wordstore.KindFile }

func (s *Store) Add(ctx context.Context, rec *entities.WordRecord) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	key, err := wordstore.CanonicalKey("add", rec.Word)
	if err != nil {
		return err
	}
	if _, ok := s.records[key]; ok {
		return &wordstore.Error{Op: "add", Word: key, Err: wordstore.ErrDuplicateKey}
	}

	now := entities.Timestamp(s.now())
	stored := *rec
	stored.ID = 0
	stored.Word = key
	stored.ScreenshotFile = ""
	stored.CreatedAt = now
	stored.UpdatedAt = now

	created, err := s.attach("add", &stored, "")
	if err != nil {
		return err
	}

	s.records[key] = stored
	if err := s.flush(); err != nil {
		delete(s.records, key)
		if created {
			s.assets.Remove(stored.ScreenshotFile)
		}
		return wordstore.IOError("add", key, err)
	}

	rec.Word = key
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return nil
}

func (s *Store) Put(ctx context.Context, rec entities.WordRecord) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	key, err := wordstore.CanonicalKey("put", rec.Word)
	if err != nil {
		return err
	}

	previous, existed := s.records[key]
	stored := rec
	stored.ID = 0
	stored.Word = key
	stored.ScreenshotFile = ""
	s.stamp(&stored)

	created, err := s.attach("put", &stored, previous.ScreenshotFile)
	if err != nil {
		return err
	}

	s.records[key] = stored
	if err := s.flush(); err != nil {
		if existed {
			s.records[key] = previous
		} else {
			delete(s.records, key)
		}
		if created {
			s.assets.Remove(stored.ScreenshotFile)
		}
		return wordstore.IOError("put", key, err)
	}

	if existed && previous.ScreenshotFile != "" && previous.ScreenshotFile != stored.ScreenshotFile {
		s.release(key, previous.ScreenshotFile)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, word string) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	key, err := wordstore.CanonicalKey("remove", word)
	if err != nil {
		return err
	}
	rec, ok := s.records[key]
	if !ok {
		return &wordstore.Error{Op: "remove", Word: key, Err: wordstore.ErrNotFound}
	}

	delete(s.records, key)
	if err := s.flush(); err != nil {
		s.records[key] = rec
		return wordstore.IOError("remove", key, err)
	}

	s.release(key, rec.ScreenshotFile)
	return nil
}

func (s *Store) Get(ctx context.Context, word string) (*entities.WordRecord, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	key, err := wordstore.CanonicalKey("get", word)
	if err != nil {
		return nil, err
	}
	rec, ok := s.records[key]
	if !ok {
		return nil, &wordstore.Error{Op: "get", Word: key, Err: wordstore.ErrNotFound}
	}
	hydrated := s.hydrate(rec)
	return &hydrated, nil
}

func (s *Store) Contains(ctx context.Context, word string) (bool, error) {
	if err := s.check(ctx); err != nil {
		return false, err
	}
	_, ok := s.records[wordstore.Canonical(word)]
	return ok, nil
}

func (s *Store) List(ctx context.Context) ([]entities.WordRecord, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	list := s.sorted()
	for i := range list {
		list[i] = s.hydrate(list[i])
	}
	return list, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	if err := s.check(ctx); err != nil {
		return 0, err
	}
	return len(s.records), nil
}

// Reload replaces the in-memory state with what is on disk. A manifest that
// cannot be parsed is reported and both the file and the in-memory state are
// left as they were.
func (s *Store) Reload(ctx context.Context) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	return s.load(false)
}

func (s *Store) Close() error {
	s.closed = true
	return nil
}

func (s *Store) check(ctx context.Context) error {
	if s.closed {
		return wordstore.ErrClosed
	}
	return ctx.Err()
}

func (s *Store) stamp(rec *entities.WordRecord) {
	now := s.now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	}
	rec.CreatedAt = entities.Timestamp(rec.CreatedAt)
	rec.UpdatedAt = entities.Timestamp(rec.UpdatedAt)
}

// attach moves an inline screenshot into an image file and leaves only the
// reference on rec. current is the file the word already owns, if any.
// It reports whether a new file was created.
func (s *Store) attach(op string, rec *entities.WordRecord, current string) (bool, error) {
	if rec.Screenshot == "" {
		return false, nil
	}
	uri := rec.Screenshot
	rec.Screenshot = ""

	var (
		ref     string
		created bool
		err     error
	)
	slot, taken := s.assets.Lookup(rec.Word)
	switch {
	case current != "" && !s.usedByOther(current, rec.Word):
		// the old file stays until the manifest no longer points at it
		ref, err = s.assets.SaveNew(rec.Word, uri)
		created = true
	case taken && s.usedByOther(slot, rec.Word):
		// another word sanitizes to the same file name
		ref, err = s.assets.SaveNew(rec.Word, uri)
		created = true
	default:
		ref, err = s.assets.Save(rec.Word, uri)
		created = !taken
	}
	if err != nil {
		if errors.Is(err, assets.ErrInvalidImage) {
			return false, &wordstore.Error{Op: op, Word: rec.Word, Err: fmt.Errorf("%w: %v", wordstore.ErrInvalidInput, err)}
		}
		return false, wordstore.IOError(op, rec.Word, err)
	}
	rec.ScreenshotFile = ref
	return created, nil
}

// release deletes the image files of a word that no other record uses.
func (s *Store) release(word, ref string) {
	if ref != "" && !s.usedByOther(ref, word) {
		if err := s.assets.Remove(ref); err != nil {
			log.Printf("File store: failed to remove screenshot of %q: %v", word, err)
		}
	}
	slug := utils.AssetSlug(word)
	for other := range s.records {
		if utils.AssetSlug(other) == slug {
			return
		}
	}
	if err := s.assets.Delete(word); err != nil {
		log.Printf("File store: failed to delete screenshots of %q: %v", word, err)
	}
}

// usedByOther reports whether a record other than word references ref.
func (s *Store) usedByOther(ref, word string) bool {
	for other, rec := range s.records {
		if other != word && rec.ScreenshotFile == ref {
			return true
		}
	}
	return false
}

func (s *Store) hydrate(rec entities.WordRecord) entities.WordRecord {
	if rec.ScreenshotFile != "" {
		rec.Screenshot = s.assets.Load(rec.ScreenshotFile)
	}
	return rec
}

func (s *Store) sorted() []entities.WordRecord {
	list := make([]entities.WordRecord, 0, len(s.records))
	for _, rec := range s.records {
		list = append(list, rec)
	}
	wordstore.SortNewestFirst(list)
	return list
}

func (s *Store) load(setAside bool) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.records = make(map[string]entities.WordRecord)
			// write immediately to surface permission problems
			if err := s.flush(); err != nil {
				return wordstore.IOError("open", "", err)
			}
			return nil
		}
		return wordstore.IOError("load", "", err)
	}

	doc, err := manifest.Parse(data)
	if err != nil {
		if !setAside || errors.Is(err, manifest.ErrUnsupportedVersion) {
			return wordstore.IOError("load", "", fmt.Errorf("failed to read %s: %w", s.path, err))
		}
		backup := fmt.Sprintf("%s.corrupt-%s", s.path, uuid.NewString())
		log.Printf("File store: %s is unreadable (%v), moving it to %s", s.path, err, backup)
		if err := os.Rename(s.path, backup); err != nil {
			return wordstore.IOError("load", "", fmt.Errorf("failed to set aside corrupt manifest: %w", err))
		}
		s.records = make(map[string]entities.WordRecord)
		if err := s.flush(); err != nil {
			return wordstore.IOError("load", "", err)
		}
		return nil
	}

	now := s.now()
	records := make(map[string]entities.WordRecord, len(doc.Words))
	migrated := 0
	for _, entry := range doc.Words {
		rec := entry.Record(now)
		if existing, ok := records[rec.Word]; ok {
			rec = wordstore.MergeOne(existing, rec)
		}
		if entry.Screenshot != "" && rec.ScreenshotFile == "" {
			// inline screenshot from an older manifest
			ref, err := s.assets.Save(rec.Word, entry.Screenshot)
			if err != nil {
				log.Printf("File store: dropping unreadable screenshot of %q: %v", rec.Word, err)
			} else {
				rec.ScreenshotFile = ref
				migrated++
			}
		}
		records[rec.Word] = rec
	}
	s.records = records

	if migrated > 0 || doc.Legacy {
		log.Printf("File store: upgrading %s (%d screenshots moved to files)", s.path, migrated)
		if err := s.flush(); err != nil {
			return wordstore.IOError("load", "", err)
		}
	}
	return nil
}

func (s *Store) flush() error {
	list := s.sorted()
	entries := make([]manifest.Entry, 0, len(list))
	for _, rec := range list {
		entries = append(entries, manifest.FromRecord(rec, rec.ScreenshotFile))
	}

	data, err := manifest.Encode(manifest.New(s.appName, manifest.FormatUnified, entries, s.now()))
	if err != nil {
		return err
	}
	if err := storage.WriteFile(s.path, data); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
