// Package assets stores screenshot images as files under a base
// directory's images/ folder, named after the word they belong to.
package assets

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/mrlokans/wordbook/internal/storage"
	"github.com/mrlokans/wordbook/internal/utils"
)

// Dir is the asset folder name, relative to the store's base directory.
const Dir = "images"

const defaultMediaType = "image/jpeg"

var (
	// ErrInvalidImage indicates a screenshot that is not a base64 data URI.
	ErrInvalidImage = errors.New("assets: invalid image data")

	slotPattern = regexp.MustCompile(`^screenshot_(\d+)_(.+)\.jpg$`)
)

// Store manages the image files of one base directory.
type Store struct {
	dir string
}

// New creates the images/ folder under baseDir if needed.
func New(baseDir string) (*Store, error) {
	dir := filepath.Join(baseDir, Dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create images dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the absolute images folder.
func (s *Store) Dir() string {
	return s.dir
}

type slot struct {
	index int
	slug  string
	name  string
}

// Save writes the image for word and returns its path relative to the base
// directory. An existing file for the same word is overwritten in place;
// otherwise the next free index is used.
func (s *Store) Save(word, dataURI string) (string, error) {
	data, _, err := DecodeDataURI(dataURI)
	if err != nil {
		return "", err
	}

	slots, err := s.slots()
	if err != nil {
		return "", err
	}
	slug := utils.AssetSlug(word)
	for _, sl := range slots {
		if sl.slug == slug {
			return s.write(sl.name, data)
		}
	}
	return s.write(slotName(nextIndex(slots), slug), data)
}

// SaveNew always allocates a fresh file, even when word already has one.
func (s *Store) SaveNew(word, dataURI string) (string, error) {
	data, _, err := DecodeDataURI(dataURI)
	if err != nil {
		return "", err
	}
	slots, err := s.slots()
	if err != nil {
		return "", err
	}
	return s.write(slotName(nextIndex(slots), utils.AssetSlug(word)), data)
}

// Lookup returns the relative path of the first file named after word.
func (s *Store) Lookup(word string) (string, bool) {
	slots, err := s.slots()
	if err != nil {
		return "", false
	}
	slug := utils.AssetSlug(word)
	for _, sl := range slots {
		if sl.slug == slug {
			return path.Join(Dir, sl.name), true
		}
	}
	return "", false
}

// Load returns the image at rel as a data URI. A missing or unreadable file
// yields an empty string.
func (s *Store) Load(rel string) string {
	full, ok := s.resolve(rel)
	if !ok {
		return ""
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("Assets: failed to read %s: %v", rel, err)
		}
		return ""
	}
	return EncodeDataURI(data)
}

// Delete removes every file named after word. Missing files are not an error.
func (s *Store) Delete(word string) error {
	slots, err := s.slots()
	if err != nil {
		return err
	}
	slug := utils.AssetSlug(word)
	for _, sl := range slots {
		if sl.slug != slug {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, sl.name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete asset %s: %w", sl.name, err)
		}
	}
	return nil
}

// Remove deletes the single file at rel. Missing files are not an error.
func (s *Store) Remove(rel string) error {
	full, ok := s.resolve(rel)
	if !ok {
		return nil
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove asset %s: %w", rel, err)
	}
	return nil
}

// Files lists every screenshot file as paths relative to the base directory.
func (s *Store) Files() ([]string, error) {
	slots, err := s.slots()
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(slots))
	for _, sl := range slots {
		files = append(files, path.Join(Dir, sl.name))
	}
	return files, nil
}

func (s *Store) write(name string, data []byte) (string, error) {
	if err := storage.WriteFile(filepath.Join(s.dir, name), data); err != nil {
		return "", fmt.Errorf("failed to write asset %s: %w", name, err)
	}
	return path.Join(Dir, name), nil
}

// resolve maps a manifest reference onto a file inside the images folder.
func (s *Store) resolve(rel string) (string, bool) {
	if rel == "" {
		return "", false
	}
	name := path.Base(filepath.ToSlash(rel))
	if name == "." || name == "/" || name == ".." {
		return "", false
	}
	return filepath.Join(s.dir, name), true
}

func (s *Store) slots() ([]slot, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	var slots []slot
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := slotPattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slots = append(slots, slot{index: idx, slug: m[2], name: e.Name()})
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].index < slots[j].index })
	return slots, nil
}

func nextIndex(slots []slot) int {
	next := 0
	for _, sl := range slots {
		if sl.index >= next {
			next = sl.index + 1
		}
	}
	return next
}

func slotName(index int, slug string) string {
	return fmt.Sprintf("screenshot_%d_%s.jpg", index, slug)
}

// DecodeDataURI extracts the bytes and media type of a base64 data URI.
func DecodeDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", ErrInvalidImage
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, "", ErrInvalidImage
	}
	mediaType := strings.TrimSuffix(meta, ";base64")
	if !strings.HasPrefix(mediaType, "image/") {
		return nil, "", ErrInvalidImage
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return data, mediaType, nil
}

// EncodeDataURI renders image bytes as a base64 data URI, sniffing the
// media type and defaulting to JPEG.
func EncodeDataURI(data []byte) string {
	mediaType := http.DetectContentType(data)
	if !strings.HasPrefix(mediaType, "image/") {
		mediaType = defaultMediaType
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
