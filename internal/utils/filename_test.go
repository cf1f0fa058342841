package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "removes invalid characters",
			input:    `file<>:"/\|?*name`,
			expected: "filename",
		},
		{
			name:     "replaces newlines and tabs with spaces",
			input:    "file\nname\twith\rspaces",
			expected: "file name with spaces",
		},
		{
			name:     "removes hashtags",
			input:    "#vocab #words",
			expected: "vocab words",
		},
		{
			name:     "replaces square brackets",
			input:    "deck [spanish]",
			expected: "deck (spanish)",
		},
		{
			name:     "empty becomes Untitled",
			input:    "  ###  ",
			expected: "Untitled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestSanitizeFilename_LongNameKeepsValidUTF8(t *testing.T) {
	got := SanitizeFilename(strings.Repeat("é", 150))
	assert.LessOrEqual(t, len(got), 200)
	assert.True(t, utf8.ValidString(got))
}

func TestAssetSlug(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain word", "example", "example"},
		{"spaces and punctuation", "give up!", "give_up_"},
		{"path separators", "../etc/passwd", "___etc_passwd"},
		{"keeps letters from other scripts", "猫", "猫"},
		{"digits", "route66", "route66"},
		{"empty", "", "_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AssetSlug(tt.input))
		})
	}
}
