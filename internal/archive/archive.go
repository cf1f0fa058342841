// Package archive packs the favorites collection into a portable zip bundle
// and reads bundles back for restore.
//
// A bundle contains:
//
//	wordbook.json   manifest (metadata + words, screenshots by reference)
//	images/         screenshot_<n>_<word>.jpg
//	README.txt
//
// Unpack also accepts a bare JSON manifest, the format of older backups,
// whose words may carry inline screenshots.
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/mrlokans/wordbook/internal/assets"
	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/manifest"
	"github.com/mrlokans/wordbook/internal/storage"
	"github.com/mrlokans/wordbook/internal/utils"
)

const (
	ManifestName = "wordbook.json"
	ReadmeName   = "README.txt"

	// maxImageSize caps a single decompressed screenshot.
	maxImageSize = 32 << 20
	// maxManifestSize caps the decompressed manifest.
	maxManifestSize = 64 << 20
)

var zipMagic = []byte("PK\x03\x04")

type Options struct {
	AppName string
	Now     func() time.Time
}

// PackResult summarizes a written bundle.
type PackResult struct {
	Words  int `json:"totalWords"`
	Images int `json:"totalImages"`
}

// Pack writes records as a zip bundle to w.
func Pack(ctx context.Context, records []entities.WordRecord, w io.Writer, opts Options) (*PackResult, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	zw := zip.NewWriter(w)
	entries := make([]manifest.Entry, 0, len(records))
	images := 0

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ref := ""
		if rec.Screenshot != "" {
			data, _, err := assets.DecodeDataURI(rec.Screenshot)
			if err != nil {
				return nil, fmt.Errorf("failed to decode screenshot of %q: %w", rec.Word, err)
			}
			ref = path.Join(assets.Dir, fmt.Sprintf("screenshot_%d_%s.jpg", images, utils.AssetSlug(rec.Word)))
			if err := writeEntry(zw, ref, data, now()); err != nil {
				return nil, err
			}
			images++
		}
		entries = append(entries, manifest.FromRecord(rec, ref))
	}

	doc := manifest.New(opts.AppName, manifest.FormatZip, entries, now())
	data, err := manifest.Encode(doc)
	if err != nil {
		return nil, err
	}
	if err := writeEntry(zw, ManifestName, data, now()); err != nil {
		return nil, err
	}
	if err := writeEntry(zw, ReadmeName, []byte(readme(opts.AppName, doc)), now()); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish archive: %w", err)
	}

	return &PackResult{Words: len(entries), Images: images}, nil
}

// PackFile writes the bundle atomically to path.
func PackFile(ctx context.Context, records []entities.WordRecord, filePath string, opts Options) (*PackResult, error) {
	writer, err := storage.NewAtomicWriter(filePath)
	if err != nil {
		return nil, err
	}
	result, err := Pack(ctx, records, writer, opts)
	if err != nil {
		writer.Abort()
		return nil, err
	}
	if err := writer.Commit(); err != nil {
		return nil, fmt.Errorf("failed to write archive: %w", err)
	}
	return result, nil
}

// FileName returns the default name for a bundle created at now.
func FileName(appName string, now time.Time) string {
	if appName == "" {
		appName = "wordbook"
	}
	return fmt.Sprintf("%s_backup_%s.zip", utils.AssetSlug(appName), now.UTC().Format("20060102_150405"))
}

func writeEntry(zw *zip.Writer, name string, data []byte, modified time.Time) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func readme(appName string, doc *manifest.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s word collection backup\n\n", appName)
	fmt.Fprintf(&b, "Exported: %s\n", doc.Metadata.ExportDate.Time().Format(time.RFC3339))
	fmt.Fprintf(&b, "Words: %d\n", doc.Metadata.TotalWords)
	fmt.Fprintf(&b, "Screenshots: %d\n\n", doc.Metadata.TotalImages)
	b.WriteString("Contents:\n")
	b.WriteString("  wordbook.json  word list with translations and context\n")
	b.WriteString("  images/        screenshots referenced by wordbook.json\n\n")
	b.WriteString("Restore this file from the backup menu. Do not rename files in images/.\n")
	return b.String()
}

// Unpack reads a zip bundle or a JSON manifest. Screenshots referenced by
// the manifest but absent from the bundle come back empty.
func Unpack(r io.ReaderAt, size int64) ([]entities.WordRecord, *manifest.Document, error) {
	head := make([]byte, len(zipMagic))
	n, err := r.ReadAt(head, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("failed to read archive: %w", err)
	}

	if n == len(zipMagic) && bytes.Equal(head, zipMagic) {
		return unpackZip(r, size)
	}

	data, err := io.ReadAll(io.LimitReader(io.NewSectionReader(r, 0, size), maxManifestSize))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read archive: %w", err)
	}
	return unpackJSON(data)
}

// UnpackFile opens and unpacks the bundle at filePath.
func UnpackFile(filePath string) ([]entities.WordRecord, *manifest.Document, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat archive: %w", err)
	}
	return Unpack(f, info.Size())
}

// Validate checks a bundle without restoring anything.
func Validate(r io.ReaderAt, size int64) (*manifest.Document, error) {
	_, doc, err := Unpack(r, size)
	return doc, err
}

func unpackJSON(data []byte) ([]entities.WordRecord, *manifest.Document, error) {
	doc, err := manifest.Parse(data)
	if err != nil {
		return nil, nil, err
	}
	now := time.Now()
	records := make([]entities.WordRecord, 0, len(doc.Words))
	for _, entry := range doc.Words {
		rec := entry.Record(now)
		rec.ScreenshotFile = ""
		rec.Screenshot = inlineScreenshot(entry.Screenshot)
		records = append(records, rec)
	}
	return records, doc, nil
}

func unpackZip(r io.ReaderAt, size int64) ([]entities.WordRecord, *manifest.Document, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", manifest.ErrInvalidFormat, err)
	}

	files := make(map[string]*zip.File, len(zr.File))
	var manifestFile *zip.File
	for _, f := range zr.File {
		name := path.Clean(strings.TrimPrefix(f.Name, "/"))
		files[name] = f
		if path.Base(name) != ManifestName {
			continue
		}
		// prefer the manifest closest to the root
		if manifestFile == nil || strings.Count(name, "/") < strings.Count(path.Clean(manifestFile.Name), "/") {
			manifestFile = f
		}
	}
	if manifestFile == nil {
		return nil, nil, fmt.Errorf("%w: %s not found in archive", manifest.ErrInvalidFormat, ManifestName)
	}

	data, err := readZipFile(manifestFile, maxManifestSize)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", manifest.ErrInvalidFormat, err)
	}
	doc, err := manifest.Parse(data)
	if err != nil {
		return nil, nil, err
	}

	root := path.Dir(path.Clean(manifestFile.Name))
	now := time.Now()
	records := make([]entities.WordRecord, 0, len(doc.Words))
	for _, entry := range doc.Words {
		rec := entry.Record(now)
		rec.ScreenshotFile = ""
		rec.Screenshot = inlineScreenshot(entry.Screenshot)
		if ref := entry.Ref(); ref != "" {
			if f, ok := files[path.Join(root, ref)]; ok {
				if img, err := readZipFile(f, maxImageSize); err == nil {
					rec.Screenshot = assets.EncodeDataURI(img)
				}
			}
		}
		records = append(records, rec)
	}
	return records, doc, nil
}

func readZipFile(f *zip.File, limit int64) ([]byte, error) {
	if f.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("%s is too large", f.Name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, limit))
}

func inlineScreenshot(uri string) string {
	if _, _, err := assets.DecodeDataURI(uri); err != nil {
		return ""
	}
	return uri
}
