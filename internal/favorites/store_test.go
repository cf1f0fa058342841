package favorites

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/wordstore"
	"github.com/mrlokans/wordbook/internal/wordstore/filestore"
)

func openStore(t *testing.T, mode Mode) (*Store, string) {
	dir := filepath.Join(t.TempDir(), "local")
	s, err := Open(context.Background(), dir, mode, Options{AppName: "Wordbook", LogLevel: logger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, dir
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeAuto, false},
		{"auto", ModeAuto, false},
		{"sqlite", ModeSQLite, false},
		{"file", ModeFile, false},
		{"postgres", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpen_Backends(t *testing.T) {
	tests := []struct {
		mode Mode
		kind wordstore.Kind
		file string
	}{
		{ModeAuto, wordstore.KindSQLite, "favorite_words.db"},
		{ModeSQLite, wordstore.KindSQLite, "favorite_words.db"},
		{ModeFile, wordstore.KindFile, "wordbook.json"},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			s, dir := openStore(t, tt.mode)
			assert.Equal(t, tt.kind, s.Kind())
			assert.Equal(t, filepath.Join(dir, tt.file), s.Path())
			assert.Equal(t, dir, s.BaseDir())
			assert.DirExists(t, filepath.Join(dir, "images"))
		})
	}
}

func TestStore_UniformContract(t *testing.T) {
	for _, mode := range []Mode{ModeSQLite, ModeFile} {
		t.Run(string(mode), func(t *testing.T) {
			ctx := context.Background()
			s, _ := openStore(t, mode)

			require.NoError(t, s.Add(ctx, &entities.WordRecord{Word: "Zebra"}))
			require.NoError(t, s.Add(ctx, &entities.WordRecord{Word: "apple", Translation: "manzana"}))

			err := s.Add(ctx, &entities.WordRecord{Word: "ZEBRA"})
			assert.True(t, errors.Is(err, wordstore.ErrDuplicateKey))

			result, err := s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"apple", "zebra"}, result.Words)
			assert.Equal(t, []string{"apple", "zebra"}, wordstore.Words(result.Records))

			ok, err := s.Contains(ctx, " Apple ")
			require.NoError(t, err)
			assert.True(t, ok)

			removed, err := s.RemoveAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, removed)

			count, err := s.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, count)
		})
	}
}

func TestStore_ConcurrentAddsAreSerialized(t *testing.T) {
	ctx := context.Background()
	s, dir := openStore(t, ModeFile)

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Add(ctx, &entities.WordRecord{Word: fmt.Sprintf("word%d", i)}))
		}(i)
	}
	wg.Wait()

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, count)

	// every add made it to disk
	reopened, err := filestore.Open(dir, filestore.Options{})
	require.NoError(t, err)
	defer reopened.Close()
	diskCount, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, diskCount)
}

func TestReopen_SwitchesBaseDir(t *testing.T) {
	ctx := context.Background()
	s, local := openStore(t, ModeFile)
	require.NoError(t, s.Add(ctx, &entities.WordRecord{Word: "local"}))

	shared := filepath.Join(t.TempDir(), "shared")
	require.NoError(t, s.Reopen(ctx, shared, ModeFile))
	assert.Equal(t, shared, s.BaseDir())

	count, _ := s.Count(ctx)
	assert.Equal(t, 0, count)
	require.NoError(t, s.Add(ctx, &entities.WordRecord{Word: "shared"}))

	require.NoError(t, s.Reopen(ctx, local, ModeFile))
	ok, _ := s.Contains(ctx, "local")
	assert.True(t, ok)
	ok, _ = s.Contains(ctx, "shared")
	assert.False(t, ok)
}

func TestReopen_FailureKeepsCurrentBackend(t *testing.T) {
	ctx := context.Background()
	s, local := openStore(t, ModeFile)

	err := s.Reopen(ctx, local, Mode("bogus"))
	require.Error(t, err)
	assert.Equal(t, local, s.BaseDir())
	assert.NoError(t, s.Add(ctx, &entities.WordRecord{Word: "still works"}))
}

func TestMergeIn_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t, ModeFile)

	t0 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Put(ctx, entities.WordRecord{Word: "cat", Translation: "old", CreatedAt: t0, UpdatedAt: t0}))

	incoming := []entities.WordRecord{
		{Word: "Cat", Translation: "new", CreatedAt: t0.Add(time.Hour), UpdatedAt: t0.Add(time.Hour)},
		{Word: "dog", CreatedAt: t0, UpdatedAt: t0},
	}

	result, err := s.MergeIn(ctx, incoming)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 1, result.Updated)

	result, err = s.MergeIn(ctx, incoming)
	require.NoError(t, err)
	assert.Equal(t, MergeResult{Skipped: 2}, result)

	cat, err := s.Get(ctx, "cat")
	require.NoError(t, err)
	assert.Equal(t, "new", cat.Translation)
	assert.True(t, cat.CreatedAt.Equal(t0), "createdAt keeps the earliest value")
}

func TestMergeIn_CountsInvalidRecords(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t, ModeFile)

	result, err := s.MergeIn(ctx, []entities.WordRecord{
		{Word: "ok"},
		{Word: "  "},
		{Word: "bad image", Screenshot: "data:image/jpeg;base64,###"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 2, result.Failed)
	assert.Len(t, result.Errors, 2)
	assert.Equal(t, 1, result.Written())
}
