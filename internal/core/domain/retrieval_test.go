package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttributionMode_IsValid(t *testing.T) {
	assert.True(t, AttributionTagged.IsValid())
	assert.True(t, AttributionPositional.IsValid())
	assert.False(t, AttributionMode("").IsValid())
	assert.False(t, AttributionMode("ordinal").IsValid())
}

func TestFallbackAnswer(t *testing.T) {
	assert.Equal(t, "An error occurred while processing your query.", FallbackAnswer)
}
