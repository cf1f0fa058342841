package exporters

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/mrlokans/wordbook/internal/entities"
)

// AnkiExporter writes a tab-separated file that Anki's "Import File" dialog
// reads as one Basic note per word. Screenshots are embedded as data URIs
// so the file is self-contained.
type AnkiExporter struct {
	DeckName string
	Tags     []string
}

func (e *AnkiExporter) Extension() string   { return ".txt" }
func (e *AnkiExporter) ContentType() string { return "text/tab-separated-values; charset=utf-8" }

func (e *AnkiExporter) Export(w io.Writer, records []entities.WordRecord) (ExportResult, error) {
	var result ExportResult
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "#separator:tab\n")
	fmt.Fprintf(bw, "#html:true\n")
	fmt.Fprintf(bw, "#notetype:Basic\n")
	if e.DeckName != "" {
		fmt.Fprintf(bw, "#deck:%s\n", field(e.DeckName))
	}
	fmt.Fprintf(bw, "#tags column:3\n")

	tags := strings.Join(e.Tags, " ")
	for _, rec := range sortedByWord(records) {
		fmt.Fprintf(bw, "%s\t%s\t%s\n", field(AnkiFront(rec)), field(AnkiBack(rec)), tags)
		result.WordsProcessed++
		if rec.HasScreenshot() {
			result.ImagesIncluded++
		}
	}

	if err := bw.Flush(); err != nil {
		return ExportResult{}, err
	}
	return result, nil
}

// AnkiFront renders the question side: word, pronunciation and screenshot.
func AnkiFront(rec entities.WordRecord) string {
	var b strings.Builder
	b.WriteString(`<div style="text-align: center;">`)
	fmt.Fprintf(&b, `<h2>%s</h2>`, html.EscapeString(rec.Word))
	if rec.Pronunciation != "" {
		fmt.Fprintf(&b, `<div class="pronunciation">%s</div>`, html.EscapeString(rec.Pronunciation))
	}
	if rec.HasScreenshot() {
		fmt.Fprintf(&b, `<img src="%s" style="max-width: 300px; max-height: 200px;">`, html.EscapeString(rec.Screenshot))
	}
	b.WriteString(`</div>`)
	return b.String()
}

// AnkiBack renders the answer side with every captured detail.
func AnkiBack(rec entities.WordRecord) string {
	var b strings.Builder
	b.WriteString(AnkiFront(rec))
	section := func(title, body string) {
		if body == "" {
			return
		}
		fmt.Fprintf(&b, `<div class="section"><h3>%s</h3><p>%s</p></div>`, title, html.EscapeString(body))
	}
	section("Translation", rec.Translation)
	section("In context", rec.AIExplanation)
	if rec.ExampleSentence != "" {
		fmt.Fprintf(&b, `<div class="section"><h3>Example</h3><p><i>%s</i></p>`, html.EscapeString(rec.ExampleSentence))
		if rec.SentenceTranslation != "" {
			fmt.Fprintf(&b, `<p>%s</p>`, html.EscapeString(rec.SentenceTranslation))
		}
		b.WriteString(`</div>`)
	}
	return b.String()
}

// field keeps a value on one line of the import file.
func field(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\r\n", "<br>")
	return strings.ReplaceAll(s, "\n", "<br>")
}
