package filestore

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/manifest"
	"github.com/mrlokans/wordbook/internal/wordstore"
)

func imageURI(payload string) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte(payload))
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func setupStore(t *testing.T) (*Store, string) {
	dir := filepath.Join(t.TempDir(), "data")
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s, err := Open(dir, Options{AppName: "Wordbook", Now: c.now})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, dir
}

func TestOpen_CreatesLayout(t *testing.T) {
	s, dir := setupStore(t)

	assert.FileExists(t, filepath.Join(dir, "wordbook.json"))
	assert.DirExists(t, filepath.Join(dir, "images"))
	assert.Equal(t, filepath.Join(dir, "wordbook.json"), s.Path())
	assert.Equal(t, wordstore.KindFile, s.Kind())
}

func TestScenario_AddDuplicateRemove(t *testing.T) {
	ctx := context.Background()
	s, _ := setupStore(t)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	rec := &entities.WordRecord{Word: "Cat", Translation: "猫"}
	require.NoError(t, s.Add(ctx, rec))
	assert.Equal(t, "cat", rec.Word)
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)

	count, _ = s.Count(ctx)
	assert.Equal(t, 1, count)
	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cat", list[0].Word)

	err = s.Add(ctx, &entities.WordRecord{Word: "cat"})
	assert.True(t, errors.Is(err, wordstore.ErrDuplicateKey))

	require.NoError(t, s.Remove(ctx, "CAT"))
	count, _ = s.Count(ctx)
	assert.Equal(t, 0, count)
}

func TestAdd_CaseVariantsAreDuplicates(t *testing.T) {
	ctx := context.Background()
	s, _ := setupStore(t)

	for _, pair := range [][2]string{{"Hello", "hello"}, {" World", "WORLD "}, {"ÉTÉ", "été"}} {
		require.NoError(t, s.Add(ctx, &entities.WordRecord{Word: pair[0]}))
		err := s.Add(ctx, &entities.WordRecord{Word: pair[1]})
		assert.True(t, errors.Is(err, wordstore.ErrDuplicateKey), pair[1])
	}

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestAdd_RejectsEmptyWord(t *testing.T) {
	s, _ := setupStore(t)
	err := s.Add(context.Background(), &entities.WordRecord{Word: "  "})
	assert.True(t, errors.Is(err, wordstore.ErrInvalidInput))
}

func TestAdd_RejectsMalformedScreenshot(t *testing.T) {
	ctx := context.Background()
	s, _ := setupStore(t)

	err := s.Add(ctx, &entities.WordRecord{Word: "cat", Screenshot: "data:image/jpeg;base64,***"})
	assert.True(t, errors.Is(err, wordstore.ErrInvalidInput))

	ok, _ := s.Contains(ctx, "cat")
	assert.False(t, ok)
}

func TestAdd_StoresScreenshotAsFile(t *testing.T) {
	ctx := context.Background()
	s, dir := setupStore(t)

	require.NoError(t, s.Add(ctx, &entities.WordRecord{Word: "Cat", Screenshot: imageURI("pixels")}))

	data, err := os.ReadFile(filepath.Join(dir, "images", "screenshot_0_cat.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"screenshotFile": "images/screenshot_0_cat.jpg"`)
	assert.NotContains(t, string(raw), "base64")

	got, err := s.Get(ctx, "CAT")
	require.NoError(t, err)
	assert.Equal(t, imageURI("pixels"), got.Screenshot)
}

func TestRemove_CascadesScreenshot(t *testing.T) {
	ctx := context.Background()
	s, dir := setupStore(t)

	require.NoError(t, s.Add(ctx, &entities.WordRecord{Word: "cat", Screenshot: imageURI("x")}))
	path := filepath.Join(dir, "images", "screenshot_0_cat.jpg")
	require.FileExists(t, path)

	require.NoError(t, s.Remove(ctx, "cat"))
	assert.NoFileExists(t, path)
}

func TestRemove_TwiceReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	s, _ := setupStore(t)

	require.NoError(t, s.Add(ctx, &entities.WordRecord{Word: "cat"}))
	require.NoError(t, s.Add(ctx, &entities.WordRecord{Word: "dog"}))
	require.NoError(t, s.Remove(ctx, "cat"))

	err := s.Remove(ctx, "cat")
	assert.True(t, errors.Is(err, wordstore.ErrNotFound))

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dog"}, wordstore.Words(list))
}

func TestScreenshot_CollidingNamesKeepSeparateFiles(t *testing.T) {
	ctx := context.Background()
	s, dir := setupStore(t)

	require.NoError(t, s.Add(ctx, &entities.WordRecord{Word: "a-b", Screenshot: imageURI("dash")}))
	require.NoError(t, s.Add(ctx, &entities.WordRecord{Word: "a b", Screenshot: imageURI("space")}))

	dash, err := s.Get(ctx, "a-b")
	require.NoError(t, err)
	space, err := s.Get(ctx, "a b")
	require.NoError(t, err)
	assert.Equal(t, imageURI("dash"), dash.Screenshot)
	assert.Equal(t, imageURI("space"), space.Screenshot)

	require.NoError(t, s.Remove(ctx, "a-b"))
	space, err = s.Get(ctx, "a b")
	require.NoError(t, err)
	assert.Equal(t, imageURI("space"), space.Screenshot)
	assert.FileExists(t, filepath.Join(dir, "images", "screenshot_1_a_b.jpg"))
}

func TestList_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s, _ := setupStore(t)

	for _, w := range []string{"one", "two", "three"} {
		require.NoError(t, s.Add(ctx, &entities.WordRecord{Word: w}))
	}

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"three", "two", "one"}, wordstore.Words(list))
}

func TestPut_KeepsTimestampsAndReplaces(t *testing.T) {
	ctx := context.Background()
	s, _ := setupStore(t)

	created := time.Date(2020, 2, 2, 2, 2, 2, 0, time.UTC)
	require.NoError(t, s.Put(ctx, entities.WordRecord{Word: "Cat", Translation: "gato", CreatedAt: created, UpdatedAt: created}))
	require.NoError(t, s.Put(ctx, entities.WordRecord{Word: "cat", Translation: "chat", CreatedAt: created, UpdatedAt: created.Add(time.Hour), Screenshot: imageURI("y")}))

	got, err := s.Get(ctx, "cat")
	require.NoError(t, err)
	assert.Equal(t, "chat", got.Translation)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, created.Add(time.Hour), got.UpdatedAt)
	assert.Equal(t, imageURI("y"), got.Screenshot)

	count, _ := s.Count(ctx)
	assert.Equal(t, 1, count)
}

func TestPut_DroppingScreenshotRemovesFile(t *testing.T) {
	ctx := context.Background()
	s, dir := setupStore(t)

	require.NoError(t, s.Add(ctx, &entities.WordRecord{Word: "cat", Screenshot: imageURI("x")}))
	got, err := s.Get(ctx, "cat")
	require.NoError(t, err)

	got.Screenshot = ""
	got.UpdatedAt = got.UpdatedAt.Add(time.Minute)
	require.NoError(t, s.Put(ctx, *got))
	assert.NoFileExists(t, filepath.Join(dir, "images", "screenshot_0_cat.jpg"))
}

func TestReopen_PersistsRecords(t *testing.T) {
	ctx := context.Background()
	s, dir := setupStore(t)

	require.NoError(t, s.Add(ctx, &entities.WordRecord{Word: "cat", Translation: "gato", Screenshot: imageURI("x")}))
	before, err := s.Get(ctx, "cat")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(dir, Options{})
	require.NoError(t, err)
	defer reopened.Close()

	after, err := reopened.Get(ctx, "cat")
	require.NoError(t, err)
	assert.Equal(t, before.Translation, after.Translation)
	assert.Equal(t, before.Screenshot, after.Screenshot)
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt))
}

func TestReload_PicksUpExternalWrites(t *testing.T) {
	ctx := context.Background()
	s, dir := setupStore(t)

	other, err := Open(dir, Options{})
	require.NoError(t, err)
	defer other.Close()
	require.NoError(t, other.Add(ctx, &entities.WordRecord{Word: "remote"}))

	ok, _ := s.Contains(ctx, "remote")
	assert.False(t, ok)

	require.NoError(t, s.Reload(ctx))
	ok, _ = s.Contains(ctx, "remote")
	assert.True(t, ok)
}

func TestOpen_LegacyArrayWithInlineScreenshot(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	legacy := `[{"word": "Cat", "translation": "gato", "screenshot": "` + imageURI("old") + `",
	            "createdAt": "2023-01-01T00:00:00.000Z"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wordbook.json"), []byte(legacy), 0644))

	s, err := Open(dir, Options{})
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "cat")
	require.NoError(t, err)
	assert.Equal(t, imageURI("old"), got.Screenshot)
	assert.FileExists(t, filepath.Join(dir, "images", "screenshot_0_cat.jpg"))

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"version": "2.0.0"`)
}

func TestOpen_CorruptManifestIsSetAside(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wordbook.json"), []byte("{not json"), 0644))

	s, err := Open(dir, Options{RecoverCorrupt: true})
	require.NoError(t, err)
	defer s.Close()

	count, _ := s.Count(context.Background())
	assert.Equal(t, 0, count)

	matches, err := filepath.Glob(filepath.Join(dir, "wordbook.json.corrupt-*"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestOpen_CorruptManifestSetAsideTwiceKeepsBoth(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "wordbook.json")
	fixed := func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	for i := 0; i < 2; i++ {
		require.NoError(t, os.WriteFile(manifestPath, []byte("{not json"), 0644))
		s, err := Open(dir, Options{RecoverCorrupt: true, Now: fixed})
		require.NoError(t, err)
		require.NoError(t, s.Close())
	}

	matches, err := filepath.Glob(filepath.Join(dir, "wordbook.json.corrupt-*"))
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

const futureManifest = `{"metadata": {"version": "3.0.0", "exportDate": "2024-05-10T08:30:00.000Z"}, "words": []}`

func TestOpen_UnreadableManifestFailsWithoutRecovery(t *testing.T) {
	tests := []struct {
		name    string
		content string
		recover bool
		wantErr error
	}{
		{name: "truncated", content: `{"metadata": {"version": "2.0.0"`, wantErr: wordstore.ErrIO},
		{name: "newer version", content: futureManifest, wantErr: manifest.ErrUnsupportedVersion},
		{name: "newer version with recovery", content: futureManifest, recover: true, wantErr: manifest.ErrUnsupportedVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			manifestPath := filepath.Join(dir, "wordbook.json")
			require.NoError(t, os.WriteFile(manifestPath, []byte(tt.content), 0644))

			_, err := Open(dir, Options{RecoverCorrupt: tt.recover})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
			assert.True(t, errors.Is(err, wordstore.ErrIO))

			raw, err := os.ReadFile(manifestPath)
			require.NoError(t, err)
			assert.Equal(t, tt.content, string(raw))
			matches, _ := filepath.Glob(manifestPath + ".corrupt-*")
			assert.Empty(t, matches)
		})
	}
}

func TestReload_UnreadableManifestKeepsState(t *testing.T) {
	ctx := context.Background()
	s, dir := setupStore(t)
	require.NoError(t, s.Add(ctx, &entities.WordRecord{Word: "one"}))
	require.NoError(t, s.Add(ctx, &entities.WordRecord{Word: "two"}))

	manifestPath := filepath.Join(dir, "wordbook.json")
	for _, content := range []string{futureManifest, `{"metadata": {"vers`} {
		require.NoError(t, os.WriteFile(manifestPath, []byte(content), 0644))

		err := s.Reload(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, wordstore.ErrIO))

		count, _ := s.Count(ctx)
		assert.Equal(t, 2, count)
		raw, err := os.ReadFile(manifestPath)
		require.NoError(t, err)
		assert.Equal(t, content, string(raw))
	}
}

func TestAdd_FailedFlushRollsBack(t *testing.T) {
	ctx := context.Background()
	s, dir := setupStore(t)
	require.NoError(t, s.Add(ctx, &entities.WordRecord{Word: "kept"}))

	// a non-empty directory in place of the manifest makes the rename fail
	manifestPath := filepath.Join(dir, "wordbook.json")
	require.NoError(t, os.Remove(manifestPath))
	require.NoError(t, os.MkdirAll(filepath.Join(manifestPath, "block"), 0755))

	err := s.Add(ctx, &entities.WordRecord{Word: "lost"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, wordstore.ErrIO))

	ok, _ := s.Contains(ctx, "lost")
	assert.False(t, ok)
	count, _ := s.Count(ctx)
	assert.Equal(t, 1, count)

	err = s.Remove(ctx, "kept")
	assert.True(t, errors.Is(err, wordstore.ErrIO))
	ok, _ = s.Contains(ctx, "kept")
	assert.True(t, ok)
}

func TestPut_FailedFlushKeepsOldScreenshot(t *testing.T) {
	ctx := context.Background()
	s, dir := setupStore(t)
	require.NoError(t, s.Add(ctx, &entities.WordRecord{Word: "cat", Screenshot: imageURI("old-bytes")}))
	before, err := s.Get(ctx, "cat")
	require.NoError(t, err)

	manifestPath := filepath.Join(dir, "wordbook.json")
	require.NoError(t, os.Remove(manifestPath))
	require.NoError(t, os.MkdirAll(filepath.Join(manifestPath, "block"), 0755))

	update := *before
	update.Screenshot = imageURI("new-bytes")
	update.UpdatedAt = before.UpdatedAt.Add(time.Hour)
	err = s.Put(ctx, update)
	require.Error(t, err)
	assert.True(t, errors.Is(err, wordstore.ErrIO))

	got, err := s.Get(ctx, "cat")
	require.NoError(t, err)
	assert.Equal(t, before.UpdatedAt, got.UpdatedAt)
	assert.Equal(t, imageURI("old-bytes"), got.Screenshot)

	files, err := os.ReadDir(filepath.Join(dir, "images"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestPut_ReplacedScreenshotMovesToNewFile(t *testing.T) {
	ctx := context.Background()
	s, dir := setupStore(t)
	require.NoError(t, s.Add(ctx, &entities.WordRecord{Word: "cat", Screenshot: imageURI("old-bytes")}))
	got, err := s.Get(ctx, "cat")
	require.NoError(t, err)

	got.Screenshot = imageURI("new-bytes")
	got.UpdatedAt = got.UpdatedAt.Add(time.Hour)
	require.NoError(t, s.Put(ctx, *got))

	assert.NoFileExists(t, filepath.Join(dir, "images", "screenshot_0_cat.jpg"))
	data, err := os.ReadFile(filepath.Join(dir, "images", "screenshot_1_cat.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "new-bytes", string(data))

	got, err = s.Get(ctx, "cat")
	require.NoError(t, err)
	assert.Equal(t, imageURI("new-bytes"), got.Screenshot)
}

func TestClose_Idempotent(t *testing.T) {
	s, _ := setupStore(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.Count(context.Background())
	assert.True(t, errors.Is(err, wordstore.ErrClosed))
}
