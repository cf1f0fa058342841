package wordstore

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/wordbook/internal/entities"
)

const imageURI = "data:image/jpeg;base64,/9j/4AAQ"

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func record(word string, created, updated time.Time) entities.WordRecord {
	return entities.WordRecord{Word: word, CreatedAt: created, UpdatedAt: updated}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Cat", "cat"},
		{"  CAT \t", "cat"},
		{"Straße", "straße"},
		{"   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonical(tt.in))
		})
	}
}

func TestCanonicalKey_RejectsEmpty(t *testing.T) {
	_, err := CanonicalKey("add", "  ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	key, err := CanonicalKey("add", " Hello ")
	require.NoError(t, err)
	assert.Equal(t, "hello", key)
}

func TestIOError_MatchesSentinelAndCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := IOError("add", "cat", cause)

	assert.True(t, errors.Is(err, ErrIO))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), `add "cat"`)

	var werr *Error
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, "add", werr.Op)
}

func TestMergeOne_NewerWinsInEitherOrder(t *testing.T) {
	a := record("cat", base, base)
	a.Translation = "old"
	b := record("Cat", base.Add(-time.Hour), base.Add(time.Hour))
	b.Translation = "new"

	for name, got := range map[string]entities.WordRecord{
		"a then b": MergeOne(a, b),
		"b then a": MergeOne(b, a),
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, "new", got.Translation)
			assert.Equal(t, "cat", got.Word)
			assert.True(t, got.UpdatedAt.Equal(b.UpdatedAt))
			assert.True(t, got.CreatedAt.Equal(base.Add(-time.Hour)))
		})
	}
}

func TestMergeOne_TieBackfillsScreenshot(t *testing.T) {
	a := record("cat", base, base)
	a.Translation = "kept"
	b := record("cat", base, base)
	b.Translation = "ignored"
	b.Screenshot = imageURI

	got := MergeOne(a, b)
	assert.Equal(t, "kept", got.Translation)
	assert.Equal(t, imageURI, got.Screenshot)
}

func TestMergeOne_TieKeepsExistingScreenshot(t *testing.T) {
	a := record("cat", base, base)
	a.Screenshot = imageURI
	b := record("cat", base, base)
	b.Screenshot = "data:image/jpeg;base64,other"

	assert.Equal(t, imageURI, MergeOne(a, b).Screenshot)
}

func TestMerge_UnionOrderedNewestFirst(t *testing.T) {
	local := []entities.WordRecord{
		record("dog", base, base),
		record("cat", base.Add(time.Minute), base.Add(time.Minute)),
	}
	remote := []entities.WordRecord{
		record("CAT", base.Add(time.Minute), base.Add(time.Minute)),
		record("bird", base.Add(2*time.Minute), base.Add(2*time.Minute)),
		record("  ", base, base),
	}

	merged := Merge(local, remote)
	assert.Equal(t, []string{"bird", "cat", "dog"}, Words(merged))
}

func TestChanged(t *testing.T) {
	a := record("cat", base, base)
	assert.False(t, Changed(a, MergeOne(a, a)))

	b := record("cat", base, base.Add(time.Second))
	b.Translation = "gato"
	assert.True(t, Changed(a, MergeOne(a, b)))
}
