package archive

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/favorites"
	"github.com/mrlokans/wordbook/internal/manifest"
)

// Mode selects how a restore treats words already in the store.
type Mode string

const (
	// ModeMerge keeps existing words and applies the merge policy to
	// words present on both sides.
	ModeMerge Mode = "merge"
	// ModeOverwrite removes every existing word first.
	ModeOverwrite Mode = "overwrite"
)

// ParseMode validates a restore mode name. An empty name means ModeMerge.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeMerge:
		return ModeMerge, nil
	case ModeOverwrite:
		return ModeOverwrite, nil
	}
	return "", fmt.Errorf("unknown restore mode %q (want merge or overwrite)", s)
}

// Target is the part of the favorites store a restore writes through.
type Target interface {
	MergeIn(ctx context.Context, records []entities.WordRecord) (favorites.MergeResult, error)
	RemoveAll(ctx context.Context) (int, error)
}

var _ Target = (*favorites.Store)(nil)

// Source lists the words an overwrite is about to replace.
type Source interface {
	Records(ctx context.Context) ([]entities.WordRecord, error)
}

// SnapshotSaver keeps a copy of a document, such as *audit.Service.
type SnapshotSaver interface {
	SaveSnapshot(data any) (string, error)
}

// Snapshot saves the current collection, screenshots inline, as a unified
// manifest. An empty collection saves nothing and returns "".
func Snapshot(ctx context.Context, store Source, saver SnapshotSaver, appName string, now time.Time) (string, error) {
	current, err := store.Records(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read words for snapshot: %w", err)
	}
	if len(current) == 0 {
		return "", nil
	}
	entries := make([]manifest.Entry, 0, len(current))
	for _, rec := range current {
		entry := manifest.FromRecord(rec, "")
		entry.Screenshot = rec.Screenshot
		entries = append(entries, entry)
	}
	name, err := saver.SaveSnapshot(manifest.New(appName, manifest.FormatUnified, entries, now))
	if err != nil {
		return "", fmt.Errorf("failed to save snapshot: %w", err)
	}
	log.Printf("Restore: saved %d words to snapshot %s", len(entries), name)
	return name, nil
}

type RestoreResult struct {
	favorites.MergeResult
	Mode    Mode `json:"mode"`
	Removed int  `json:"removed"`
}

// Restore writes unpacked records into store.
func Restore(ctx context.Context, store Target, records []entities.WordRecord, mode Mode) (*RestoreResult, error) {
	result := &RestoreResult{Mode: mode}

	switch mode {
	case ModeMerge:
	case ModeOverwrite:
		removed, err := store.RemoveAll(ctx)
		result.Removed = removed
		if err != nil {
			return result, fmt.Errorf("failed to clear existing words: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown restore mode %q", mode)
	}

	merged, err := store.MergeIn(ctx, records)
	result.MergeResult = merged
	if err != nil {
		return result, fmt.Errorf("failed to restore words: %w", err)
	}

	log.Printf("Restore (%s): %d added, %d updated, %d skipped, %d failed, %d removed",
		mode, merged.Added, merged.Updated, merged.Skipped, merged.Failed, result.Removed)
	return result, nil
}
