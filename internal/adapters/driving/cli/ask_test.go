package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask [question]", askCmd.Use)
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("ask")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestAskCmd_PrintsAnswer(t *testing.T) {
	cleanup, ts := setupTestServicesWithMocks()
	defer cleanup()

	out, err := execute("ask", "what", "is", "the", "return", "window?")

	require.NoError(t, err)
	assert.Equal(t, "what is the return window?", ts.answer.lastQuestion)
	assert.Contains(t, out, "Returns are accepted within thirty days.")
	assert.NotContains(t, out, "Sources:")
}

func TestAskCmd_Sources(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("ask", "--sources", "return window?")

	require.NoError(t, err)
	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "1. returns.txt (id 2, chunk 0, distance 0.1234)")
	assert.Contains(t, out, "Returns are accepted within thirty days.")
}

func TestAskCmd_Fallback(t *testing.T) {
	cleanup, ts := setupTestServicesWithMocks()
	defer cleanup()
	ts.answer.answer = domain.Answer{Text: domain.FallbackAnswer, Fallback: true, Err: domain.ErrCompletionService}

	out, err := execute("ask", "anything")

	require.NoError(t, err, "a fallback answer is still an answer")
	assert.Contains(t, out, domain.FallbackAnswer)
}

func TestAskCmd_NoService(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	answerService = nil

	_, err := execute("ask", "hello")

	assert.EqualError(t, err, "answer service not configured")
}

func TestSearchCmd_PrintsHits(t *testing.T) {
	cleanup, ts := setupTestServicesWithMocks()
	defer cleanup()
	ts.answer.hits = ts.answer.answer.Hits

	out, err := execute("search", "return", "policy", "-n", "3")

	require.NoError(t, err)
	assert.Equal(t, "return policy", ts.answer.lastQuestion)
	assert.Equal(t, 3, ts.answer.lastK)
	assert.Contains(t, out, `Found 1 results for "return policy":`)
	assert.Contains(t, out, "returns.txt")
}

func TestSearchCmd_DefaultLimit(t *testing.T) {
	cleanup, ts := setupTestServicesWithMocks()
	defer cleanup()

	_, err := execute("search", "x")

	require.NoError(t, err)
	assert.Equal(t, 0, ts.answer.lastK)
}

func TestSearchCmd_NoResults(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("search", "nothing")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_JSON(t *testing.T) {
	cleanup, ts := setupTestServicesWithMocks()
	defer cleanup()
	ts.answer.hits = ts.answer.answer.Hits

	out, err := execute("search", "--json", "returns")

	require.NoError(t, err)
	var hits []hitJSON
	require.NoError(t, json.Unmarshal([]byte(out), &hits))
	require.Len(t, hits, 1)
	assert.Equal(t, int64(2), hits[0].DocumentID)
	assert.Equal(t, "chunk-2-0", hits[0].ChunkID)
	assert.Equal(t, "returns.txt", hits[0].Name)
	assert.InDelta(t, 0.1234, hits[0].Distance, 1e-9)
	assert.Contains(t, hits[0].Content, "\n", "JSON keeps the raw chunk")
}

func TestSearchCmd_Error(t *testing.T) {
	cleanup, ts := setupTestServicesWithMocks()
	defer cleanup()
	ts.answer.retrieveErr = domain.ErrEmbeddingFailure

	_, err := execute("search", "x")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailure)
	assert.True(t, strings.HasPrefix(err.Error(), "search failed"))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world", 8, "hello..."},
		{"multibyte", "ééééééé", 5, "éé..."},
		{"tiny limit", "hello", 2, "he"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.input, tt.maxLen))
		})
	}
}

func TestOneLine(t *testing.T) {
	assert.Equal(t, "a b c", oneLine("  a\n\tb   c \n"))
}
