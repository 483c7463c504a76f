package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

// TestViewType_String tests all ViewType string representations
func TestViewType_String(t *testing.T) {
	tests := []struct {
		name     string
		view     ViewType
		expected string
	}{
		{"ViewMenu", ViewMenu, "menu"},
		{"ViewAsk", ViewAsk, "ask"},
		{"ViewDocuments", ViewDocuments, "documents"},
		{"ViewDocContent", ViewDocContent, "doc_content"},
		{"ViewHelp", ViewHelp, "help"},
		{"UnknownView", ViewType(99), "unknown"},
		{"NegativeView", ViewType(-1), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.view.String())
		})
	}
}

func TestViewType_MenuIsZero(t *testing.T) {
	var v ViewType

	assert.Equal(t, ViewMenu, v)
}

// TestAnswerReady tests that fallback answers carry their cause
func TestAnswerReady(t *testing.T) {
	t.Run("answered", func(t *testing.T) {
		msg := AnswerReady{
			Question: "q",
			Answer: domain.Answer{
				Text: "a",
				Hits: []domain.RetrievalHit{{Ordinal: 3}},
			},
		}

		assert.False(t, msg.Answer.Fallback)
		assert.NoError(t, msg.Answer.Err)
		assert.Len(t, msg.Answer.Hits, 1)
	})

	t.Run("fallback", func(t *testing.T) {
		msg := AnswerReady{
			Question: "q",
			Answer: domain.Answer{
				Text:     domain.FallbackAnswer,
				Fallback: true,
				Err:      domain.ErrCompletionService,
			},
		}

		assert.True(t, msg.Answer.Fallback)
		assert.ErrorIs(t, msg.Answer.Err, domain.ErrCompletionService)
	})
}

// TestErrorOccurred tests the ErrorOccurred message type
func TestErrorOccurred(t *testing.T) {
	t.Run("with wrapped error", func(t *testing.T) {
		baseErr := errors.New("base error")
		wrappedErr := errors.Join(baseErr, errors.New("additional context"))
		msg := ErrorOccurred{Err: wrappedErr}

		assert.ErrorIs(t, msg.Err, baseErr)
	})

	t.Run("with nil error", func(t *testing.T) {
		msg := ErrorOccurred{Err: nil}
		assert.Nil(t, msg.Err)
	})
}

func TestDocumentDeleted(t *testing.T) {
	msg := DocumentDeleted{ID: 7, Err: domain.ErrProtectedDocument}

	assert.Equal(t, int64(7), msg.ID)
	assert.ErrorIs(t, msg.Err, domain.ErrProtectedDocument)
}

func TestIndexRebuilt(t *testing.T) {
	msg := IndexRebuilt{Stats: &domain.RebuildStats{Documents: 2, Vectors: 9}}

	assert.NoError(t, msg.Err)
	assert.Equal(t, 9, msg.Stats.Vectors)
}
