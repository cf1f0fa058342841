package assets

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jpegURI(payload string) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte(payload))
}

func setupStore(t *testing.T) (*Store, string) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	return s, dir
}

func TestNew_CreatesImagesDir(t *testing.T) {
	s, dir := setupStore(t)
	info, err := os.Stat(filepath.Join(dir, "images"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, filepath.Join(dir, "images"), s.Dir())
}

func TestSave_NamesAndIndexes(t *testing.T) {
	s, dir := setupStore(t)

	first, err := s.Save("give up", jpegURI("one"))
	require.NoError(t, err)
	assert.Equal(t, "images/screenshot_0_give_up.jpg", first)

	second, err := s.Save("cat", jpegURI("two"))
	require.NoError(t, err)
	assert.Equal(t, "images/screenshot_1_cat.jpg", second)

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(second)))
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestSave_ReusesExistingSlot(t *testing.T) {
	s, dir := setupStore(t)

	first, err := s.Save("cat", jpegURI("old"))
	require.NoError(t, err)
	again, err := s.Save("cat", jpegURI("new"))
	require.NoError(t, err)

	assert.Equal(t, first, again)
	files, err := s.Files()
	require.NoError(t, err)
	assert.Len(t, files, 1)

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(again)))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestSaveNew_AllocatesFreshSlot(t *testing.T) {
	s, _ := setupStore(t)

	first, err := s.Save("a-b", jpegURI("one"))
	require.NoError(t, err)
	second, err := s.SaveNew("a b", jpegURI("two"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, "images/screenshot_1_a_b.jpg", second)
}

func TestSave_RejectsInvalidData(t *testing.T) {
	s, _ := setupStore(t)

	for _, uri := range []string{"", "not a uri", "data:text/plain;base64,aGk=", "data:image/jpeg;base64,%%%"} {
		_, err := s.Save("cat", uri)
		assert.True(t, errors.Is(err, ErrInvalidImage), uri)
	}
}

func TestLoad_RoundTripsBytes(t *testing.T) {
	s, _ := setupStore(t)

	rel, err := s.Save("cat", jpegURI("pixels"))
	require.NoError(t, err)

	data, _, err := DecodeDataURI(s.Load(rel))
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	s, _ := setupStore(t)
	assert.Equal(t, "", s.Load("images/missing.jpg"))
	assert.Equal(t, "", s.Load(""))
}

func TestLoad_StaysInsideImagesDir(t *testing.T) {
	s, dir := setupStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret.jpg"), []byte("x"), 0644))
	assert.Equal(t, "", s.Load("../secret.jpg"))
}

func TestDelete_RemovesWordFiles(t *testing.T) {
	s, dir := setupStore(t)

	rel, err := s.Save("cat", jpegURI("x"))
	require.NoError(t, err)
	other, err := s.Save("dog", jpegURI("y"))
	require.NoError(t, err)

	require.NoError(t, s.Delete("cat"))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(rel)))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(other)))
	assert.NoError(t, err)

	assert.NoError(t, s.Delete("cat"), "deleting an absent asset is not an error")
}

func TestRemoveAndLookup(t *testing.T) {
	s, _ := setupStore(t)

	rel, err := s.Save("cat", jpegURI("x"))
	require.NoError(t, err)

	found, ok := s.Lookup("cat")
	require.True(t, ok)
	assert.Equal(t, rel, found)

	require.NoError(t, s.Remove(rel))
	_, ok = s.Lookup("cat")
	assert.False(t, ok)
	assert.NoError(t, s.Remove(rel))
}

func TestSave_IndexContinuesAfterGaps(t *testing.T) {
	s, _ := setupStore(t)

	_, err := s.Save("a", jpegURI("1"))
	require.NoError(t, err)
	b, err := s.Save("b", jpegURI("2"))
	require.NoError(t, err)
	require.NoError(t, s.Delete("a"))

	c, err := s.Save("c", jpegURI("3"))
	require.NoError(t, err)
	assert.Equal(t, "images/screenshot_1_b.jpg", b)
	assert.Equal(t, "images/screenshot_2_c.jpg", c)
}

func TestEncodeDataURI_SniffsPNG(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	uri := EncodeDataURI(png)
	data, mediaType, err := DecodeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mediaType)
	assert.Equal(t, png, data)
}
