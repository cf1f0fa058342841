package exporters

import (
	"io"
	"strings"

	"github.com/mrlokans/wordbook/internal/entities"
)

// TextExporter writes one word per line in alphabetical order.
type TextExporter struct{}

func (e *TextExporter) Extension() string   { return ".txt" }
func (e *TextExporter) ContentType() string { return "text/plain; charset=utf-8" }

func (e *TextExporter) Export(w io.Writer, records []entities.WordRecord) (ExportResult, error) {
	sorted := sortedByWord(records)
	words := make([]string, 0, len(sorted))
	for _, rec := range sorted {
		words = append(words, rec.Word)
	}
	if _, err := io.WriteString(w, strings.Join(words, "\n")); err != nil {
		return ExportResult{}, err
	}
	return ExportResult{WordsProcessed: len(words)}, nil
}
