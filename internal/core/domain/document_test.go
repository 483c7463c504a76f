package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestDocument_Fields tests Document structure fields
func TestDocument_Fields(t *testing.T) {
	now := time.Now()

	doc := Document{
		ID:         7,
		Name:       "report.pdf",
		UploadedAt: now,
		Content:    "quarterly sales",
		Protected:  true,
	}

	assert.Equal(t, int64(7), doc.ID)
	assert.Equal(t, "report.pdf", doc.Name)
	assert.Equal(t, now, doc.UploadedAt)
	assert.Equal(t, "quarterly sales", doc.Content)
	assert.True(t, doc.Protected)
}

// TestDocument_FormatUploadDate tests the persisted timestamp layout
func TestDocument_FormatUploadDate(t *testing.T) {
	doc := Document{UploadedAt: time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)}
	assert.Equal(t, "2024-03-09 14:05:07", doc.FormatUploadDate())

	parsed, err := time.Parse(UploadDateLayout, doc.FormatUploadDate())
	assert.NoError(t, err)
	assert.True(t, parsed.Equal(doc.UploadedAt))
}

// TestChunk_Fields tests Chunk structure fields
func TestChunk_Fields(t *testing.T) {
	chunk := Chunk{
		ID:         "chunk-1",
		DocumentID: 3,
		Content:    "some text",
		Position:   2,
		Embedding:  []float32{0.1, 0.2},
	}

	assert.Equal(t, "chunk-1", chunk.ID)
	assert.Equal(t, int64(3), chunk.DocumentID)
	assert.Equal(t, 2, chunk.Position)
	assert.Len(t, chunk.Embedding, 2)
}
