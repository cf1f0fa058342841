package wordstore

import (
	"sort"

	"github.com/mrlokans/wordbook/internal/entities"
)

// MergeOne reconciles two versions of the same canonical word.
//
// The strictly newer UpdatedAt wins wholesale. On a tie the existing record
// is kept, but it takes incoming's screenshot when it has none of its own.
// CreatedAt is always the earlier of the two.
func MergeOne(existing, incoming entities.WordRecord) entities.WordRecord {
	merged := existing
	switch {
	case incoming.UpdatedAt.After(existing.UpdatedAt):
		merged = incoming
	case incoming.UpdatedAt.Equal(existing.UpdatedAt):
		if !existing.HasScreenshot() && incoming.HasScreenshot() {
			merged.Screenshot = incoming.Screenshot
		}
	}
	merged.Word = Canonical(existing.Word)
	if incoming.CreatedAt.Before(existing.CreatedAt) {
		merged.CreatedAt = incoming.CreatedAt
	} else {
		merged.CreatedAt = existing.CreatedAt
	}
	return merged
}

// Merge folds incoming into existing keyed by canonical word and returns
// the union ordered newest first. Records with an empty word are dropped.
func Merge(existing, incoming []entities.WordRecord) []entities.WordRecord {
	byWord := make(map[string]entities.WordRecord, len(existing)+len(incoming))
	for _, set := range [][]entities.WordRecord{existing, incoming} {
		for _, rec := range set {
			key := Canonical(rec.Word)
			if key == "" {
				continue
			}
			rec.Word = key
			if current, ok := byWord[key]; ok {
				byWord[key] = MergeOne(current, rec)
				continue
			}
			byWord[key] = rec
		}
	}

	merged := make([]entities.WordRecord, 0, len(byWord))
	for _, rec := range byWord {
		merged = append(merged, rec)
	}
	SortNewestFirst(merged)
	return merged
}

// Changed reports whether merging incoming into existing alters existing.
func Changed(existing, merged entities.WordRecord) bool {
	return !existing.UpdatedAt.Equal(merged.UpdatedAt) ||
		!existing.CreatedAt.Equal(merged.CreatedAt) ||
		existing.Screenshot != merged.Screenshot ||
		existing.Translation != merged.Translation ||
		existing.Pronunciation != merged.Pronunciation ||
		existing.AIExplanation != merged.AIExplanation ||
		existing.ExampleSentence != merged.ExampleSentence ||
		existing.SentenceTranslation != merged.SentenceTranslation
}

// SortNewestFirst orders records by CreatedAt descending, then by word.
func SortNewestFirst(records []entities.WordRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].Word < records[j].Word
	})
}
