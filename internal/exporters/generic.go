// Package exporters renders the favorites collection into formats meant for
// studying elsewhere: a plain word list, an Anki import file and Obsidian
// markdown notes.
package exporters

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/utils"
)

type Format string

const (
	FormatText     Format = "txt"
	FormatAnki     Format = "anki"
	FormatMarkdown Format = "markdown"
)

// WordExporter writes records to w.
type WordExporter interface {
	Export(w io.Writer, records []entities.WordRecord) (ExportResult, error)
	Extension() string
	ContentType() string
}

type ExportResult struct {
	WordsProcessed int `json:"words_processed"`
	ImagesIncluded int `json:"images_included"`
}

// New returns the exporter for format. deckName titles Anki decks and
// markdown notes.
func New(format Format, deckName string) (WordExporter, error) {
	switch format {
	case FormatText:
		return &TextExporter{}, nil
	case FormatAnki:
		return &AnkiExporter{DeckName: deckName, Tags: []string{"wordbook"}}, nil
	case FormatMarkdown:
		return &MarkdownExporter{Title: deckName, Now: time.Now}, nil
	}
	return nil, fmt.Errorf("unknown export format %q (want txt, anki or markdown)", format)
}

// DeckName is the default title for an export made at now.
func DeckName(appName string, now time.Time) string {
	if appName == "" {
		appName = "Wordbook"
	}
	return fmt.Sprintf("%s_%s", appName, now.Format("2006-01-02"))
}

// FileName suggests a download name for an export.
func FileName(e WordExporter, deckName string) string {
	return utils.SanitizeFilename(deckName) + e.Extension()
}

// sortedByWord returns a copy ordered alphabetically, case-insensitively.
func sortedByWord(records []entities.WordRecord) []entities.WordRecord {
	out := append([]entities.WordRecord(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Word) < strings.ToLower(out[j].Word)
	})
	return out
}
