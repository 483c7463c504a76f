package driving

import (
	"context"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

// AnswerService answers questions from retrieved document context.
type AnswerService interface {
	// Ask retrieves context for query and asks the completion service.
	// It never returns an error: failures yield domain.FallbackAnswer with
	// Answer.Fallback set and Answer.Err holding the cause.
	Ask(ctx context.Context, query string) domain.Answer

	// Retrieve returns the k nearest hits for query, resolved to documents.
	// A k of zero uses the configured default.
	Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievalHit, error)
}
