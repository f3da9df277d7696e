package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewCategorySuggesterWithoutKey(t *testing.T) {
	assert.Nil(t, NewCategorySuggester("", "gpt-4o-mini", zap.NewNop()))
}

func TestBuildPrompt(t *testing.T) {
	s := NewCategorySuggester("test-key", "gpt-4o-mini", zap.NewNop())

	prompt := s.buildPrompt("Team lunch", "Quarterly planning", "Corner Cafe\nTotal 45.00")
	assert.Contains(t, prompt, "Team lunch")
	assert.Contains(t, prompt, "Quarterly planning")
	assert.Contains(t, prompt, "Corner Cafe")
	for _, category := range ExpenseCategories {
		assert.Contains(t, prompt, category)
	}

	prompt = s.buildPrompt("Flight", "", "")
	assert.NotContains(t, prompt, "Description:")
	assert.NotContains(t, prompt, "Receipt text:")
	assert.True(t, strings.HasSuffix(prompt, "\"reasoning\": string}"))
}
