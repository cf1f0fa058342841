// Package manifest reads and writes the wordbook.json document shared by the
// flat-file store and backup bundles.
//
// Current documents are an object with metadata and words. Older installs
// wrote a bare array of word objects, which still decodes as major version 1.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/wordstore"
)

const (
	// CurrentVersion is written into every new document.
	CurrentVersion = "2.0.0"
	// LegacyVersion is assumed for documents without metadata.
	LegacyVersion = "1.0.0"

	FormatUnified = "unified"
	FormatZip     = "zip"
)

var (
	// ErrInvalidFormat indicates a document that is not a manifest.
	ErrInvalidFormat = errors.New("manifest: invalid format")
	// ErrUnsupportedVersion indicates a major version outside SupportedMajors.
	ErrUnsupportedVersion = errors.New("manifest: unsupported version")
)

// SupportedMajors lists the manifest major versions this build reads.
var SupportedMajors = map[uint64]bool{
	1: true,
	2: true,
}

type Metadata struct {
	Version        string `json:"version"`
	AppName        string `json:"appName,omitempty"`
	ExportDate     Time   `json:"exportDate"`
	TotalWords     int    `json:"totalWords"`
	TotalImages    int    `json:"totalImages"`
	Format         string `json:"format,omitempty"`
	HasScreenshots bool   `json:"hasScreenshots,omitempty"`
}

// Entry is one word as persisted. Screenshot carries inline image data for
// documents written before images moved to files.
type Entry struct {
	Word                string  `json:"word"`
	Pronunciation       string  `json:"pronunciation"`
	Translation         string  `json:"translation"`
	AIExplanation       string  `json:"aiExplanation"`
	ExampleSentence     string  `json:"exampleSentence"`
	SentenceTranslation string  `json:"sentenceTranslation"`
	Screenshot          string  `json:"screenshot,omitempty"`
	ScreenshotFile      *string `json:"screenshotFile"`
	CreatedAt           Time    `json:"createdAt"`
	UpdatedAt           Time    `json:"updatedAt"`
}

type Document struct {
	Metadata *Metadata `json:"metadata"`
	Words    []Entry   `json:"words"`

	// Legacy is set when the document was a bare array.
	Legacy bool `json:"-"`
}

// New builds a current-version document.
func New(appName, format string, words []Entry, now time.Time) *Document {
	images := 0
	for _, w := range words {
		if w.ScreenshotFile != nil || w.Screenshot != "" {
			images++
		}
	}
	return &Document{
		Metadata: &Metadata{
			Version:        CurrentVersion,
			AppName:        appName,
			ExportDate:     Time(entities.Timestamp(now)),
			TotalWords:     len(words),
			TotalImages:    images,
			Format:         format,
			HasScreenshots: images > 0,
		},
		Words: words,
	}
}

// Decode parses a manifest without validating it.
func Decode(data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidFormat)
	}

	if trimmed[0] == '[' {
		var words []Entry
		if err := json.Unmarshal(trimmed, &words); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		return &Document{Words: words, Legacy: true}, nil
	}

	var raw struct {
		Metadata *Metadata       `json:"metadata"`
		Words    json.RawMessage `json:"words"`
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if len(raw.Words) == 0 || raw.Words[0] != '[' {
		return nil, fmt.Errorf("%w: words is not a list", ErrInvalidFormat)
	}

	doc := &Document{Metadata: raw.Metadata}
	if err := json.Unmarshal(raw.Words, &doc.Words); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return doc, nil
}

// Parse decodes and validates a manifest.
func Parse(data []byte) (*Document, error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Encode renders doc as indented JSON.
func Encode(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return data, nil
}

// Validate checks structure and version. Nothing is written before a
// document passes.
func Validate(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: no document", ErrInvalidFormat)
	}
	if !doc.Legacy {
		if doc.Metadata == nil {
			return fmt.Errorf("%w: metadata missing", ErrInvalidFormat)
		}
		if strings.TrimSpace(doc.Metadata.Version) == "" {
			return fmt.Errorf("%w: version missing", ErrInvalidFormat)
		}
	}
	if _, err := doc.Major(); err != nil {
		return err
	}
	if doc.Words == nil {
		return fmt.Errorf("%w: words is not a list", ErrInvalidFormat)
	}
	for i, w := range doc.Words {
		if wordstore.Canonical(w.Word) == "" {
			return fmt.Errorf("%w: entry %d has no word", ErrInvalidFormat, i)
		}
	}
	return nil
}

// Version returns the declared version, or LegacyVersion for bare arrays.
func (d *Document) Version() string {
	if d.Legacy || d.Metadata == nil {
		return LegacyVersion
	}
	return d.Metadata.Version
}

// Major returns the declared major version if it is supported.
func (d *Document) Major() (uint64, error) {
	v, err := semver.NewVersion(d.Version())
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedVersion, d.Version())
	}
	if !SupportedMajors[v.Major()] {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedVersion, v.Original())
	}
	return v.Major(), nil
}

// FromRecord converts a stored record. ref is the screenshot file reference
// or empty when the record has no image file.
func FromRecord(rec entities.WordRecord, ref string) Entry {
	e := Entry{
		Word:                rec.Word,
		Pronunciation:       rec.Pronunciation,
		Translation:         rec.Translation,
		AIExplanation:       rec.AIExplanation,
		ExampleSentence:     rec.ExampleSentence,
		SentenceTranslation: rec.SentenceTranslation,
		CreatedAt:           Time(entities.Timestamp(rec.CreatedAt)),
		UpdatedAt:           Time(entities.Timestamp(rec.UpdatedAt)),
	}
	if ref != "" {
		e.ScreenshotFile = &ref
	}
	return e
}

// Record converts an entry back into a record with a canonical word.
// The screenshot is left to the caller, which owns the image files. Missing
// timestamps default to now, and a missing UpdatedAt to CreatedAt.
func (e Entry) Record(now time.Time) entities.WordRecord {
	created := time.Time(e.CreatedAt)
	if created.IsZero() {
		created = now
	}
	updated := time.Time(e.UpdatedAt)
	if updated.IsZero() {
		updated = created
	}
	return entities.WordRecord{
		Word:                wordstore.Canonical(e.Word),
		Pronunciation:       e.Pronunciation,
		Translation:         e.Translation,
		AIExplanation:       e.AIExplanation,
		ExampleSentence:     e.ExampleSentence,
		SentenceTranslation: e.SentenceTranslation,
		ScreenshotFile:      e.Ref(),
		CreatedAt:           entities.Timestamp(created),
		UpdatedAt:           entities.Timestamp(updated),
	}
}

// Ref returns the screenshot file reference or an empty string.
func (e Entry) Ref() string {
	if e.ScreenshotFile == nil {
		return ""
	}
	return *e.ScreenshotFile
}
