package exporters

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/mrlokans/wordbook/internal/assets"
	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/storage"
	"github.com/mrlokans/wordbook/internal/utils"
)

const attachmentsDir = "attachments"

// MarkdownExporter renders the collection as a single Obsidian note.
type MarkdownExporter struct {
	Title string
	Now   func() time.Time
	// ImageLinks maps a word to an image path written next to the note.
	// Words without a link get no image.
	ImageLinks map[string]string
}

func NewMarkdownExporter(title string) *MarkdownExporter {
	return &MarkdownExporter{Title: title, Now: time.Now}
}

func (e *MarkdownExporter) Extension() string   { return ".md" }
func (e *MarkdownExporter) ContentType() string { return "text/markdown; charset=utf-8" }

func (e *MarkdownExporter) Export(w io.Writer, records []entities.WordRecord) (ExportResult, error) {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	content, result := GenerateMarkdown(e.Title, records, e.ImageLinks, now())
	if _, err := io.WriteString(w, content); err != nil {
		return ExportResult{}, err
	}
	return result, nil
}

// GenerateMarkdown renders records under a frontmatter header.
func GenerateMarkdown(title string, records []entities.WordRecord, imageLinks map[string]string, now time.Time) (string, ExportResult) {
	var builder strings.Builder
	var result ExportResult

	fmt.Fprintf(&builder, "---\n")
	fmt.Fprintf(&builder, "content_type: vocabulary\n")
	fmt.Fprintf(&builder, "created_at: %s\n", now.Format("2006-01-02"))
	fmt.Fprintf(&builder, "title: \"%s\"\n", strings.ReplaceAll(title, "\"", "\\\""))
	fmt.Fprintf(&builder, "word_count: %d\n", len(records))
	fmt.Fprintf(&builder, "tags: [vocabulary, wordbook]\n")
	fmt.Fprintf(&builder, "---\n\n")
	fmt.Fprintf(&builder, "# %s\n\n", title)

	for _, rec := range sortedByWord(records) {
		fmt.Fprintf(&builder, "## %s\n\n", rec.Word)
		if rec.Pronunciation != "" {
			fmt.Fprintf(&builder, "*%s*\n\n", rec.Pronunciation)
		}
		if link, ok := imageLinks[rec.Word]; ok {
			fmt.Fprintf(&builder, "![[%s]]\n\n", link)
			result.ImagesIncluded++
		}
		if rec.Translation != "" {
			fmt.Fprintf(&builder, "**Translation:** %s\n\n", rec.Translation)
		}
		if rec.AIExplanation != "" {
			fmt.Fprintf(&builder, "**In context:** %s\n\n", rec.AIExplanation)
		}
		if rec.ExampleSentence != "" {
			fmt.Fprintf(&builder, "> %s\n", strings.ReplaceAll(rec.ExampleSentence, "\n", "\n> "))
			if rec.SentenceTranslation != "" {
				fmt.Fprintf(&builder, "> \n> %s\n", strings.ReplaceAll(rec.SentenceTranslation, "\n", "\n> "))
			}
			fmt.Fprintf(&builder, "\n")
		}
		if !rec.CreatedAt.IsZero() {
			fmt.Fprintf(&builder, "Added %s\n\n", rec.CreatedAt.Format("2006-01-02 15:04"))
		}
		result.WordsProcessed++
	}

	return builder.String(), result
}

// VaultExporter writes the note and its screenshots into an Obsidian vault.
type VaultExporter struct {
	VaultDir   string
	ExportPath string
	Title      string
	Now        func() time.Time
}

func NewVaultExporter(vaultDir, exportPath, title string) *VaultExporter {
	return &VaultExporter{VaultDir: vaultDir, ExportPath: exportPath, Title: title, Now: time.Now}
}

func (e *VaultExporter) ensureDirs() (string, error) {
	if !storage.IsDir(e.VaultDir) {
		return "", fmt.Errorf("vault directory %s does not exist", e.VaultDir)
	}
	exportDir := filepath.Join(e.VaultDir, e.ExportPath)
	if err := os.MkdirAll(filepath.Join(exportDir, attachmentsDir), 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	return exportDir, nil
}

// Export writes <vault>/<exportPath>/<title>.md and returns its path.
func (e *VaultExporter) Export(records []entities.WordRecord) (string, ExportResult, error) {
	exportDir, err := e.ensureDirs()
	if err != nil {
		return "", ExportResult{}, err
	}

	links := make(map[string]string)
	for _, rec := range records {
		if !rec.HasScreenshot() {
			continue
		}
		data, _, err := assets.DecodeDataURI(rec.Screenshot)
		if err != nil {
			continue
		}
		name := utils.AssetSlug(rec.Word) + ".jpg"
		if err := storage.WriteFile(filepath.Join(exportDir, attachmentsDir, name), data); err != nil {
			return "", ExportResult{}, fmt.Errorf("failed to write attachment for %s: %w", rec.Word, err)
		}
		links[rec.Word] = path.Join(attachmentsDir, name)
	}

	md := &MarkdownExporter{Title: e.Title, Now: e.Now, ImageLinks: links}
	var buf bytes.Buffer
	result, err := md.Export(&buf, records)
	if err != nil {
		return "", ExportResult{}, err
	}

	outputPath := filepath.Join(exportDir, utils.SanitizeFilename(e.Title)+md.Extension())
	if err := storage.WriteFile(outputPath, buf.Bytes()); err != nil {
		return "", ExportResult{}, fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	return outputPath, result, nil
}
