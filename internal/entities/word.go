package entities

import (
	"strings"
	"time"
)

// WordRecord is one favorited word together with its study context.
// Word is always stored in canonical form (trimmed, lowercased).
type WordRecord struct {
	ID                  uint      `gorm:"primaryKey" json:"-"`
	Word                string    `gorm:"uniqueIndex;size:255;not null" json:"word"`
	Pronunciation       string    `gorm:"type:text" json:"pronunciation"`
	Translation         string    `gorm:"type:text" json:"translation"`
	AIExplanation       string    `gorm:"column:ai_explanation;type:text" json:"aiExplanation"`
	ExampleSentence     string    `gorm:"type:text" json:"exampleSentence"`
	SentenceTranslation string    `gorm:"type:text" json:"sentenceTranslation"`
	Screenshot          string    `gorm:"type:text" json:"screenshot"`
	ScreenshotFile      string    `gorm:"-" json:"-"`
	CreatedAt           time.Time `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

func (WordRecord) TableName() string {
	return "favorite_words"
}

// HasScreenshot reports whether the record carries an inline image.
func (w WordRecord) HasScreenshot() bool {
	return strings.HasPrefix(w.Screenshot, ScreenshotPrefix)
}

// ScreenshotPrefix is the data URI prefix every stored screenshot starts with.
const ScreenshotPrefix = "data:image/"

// Timestamp normalizes t to the precision persisted in manifests.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
