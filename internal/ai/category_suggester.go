package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// CategorySuggestion is the model's guess at how to classify an expense
type CategorySuggestion struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// CategorySuggester asks an OpenAI model to classify an expense from its
// name, description and receipt text. It is optional: when no API key is
// configured the constructor returns nil and callers skip the feature.
type CategorySuggester struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// ExpenseCategories is the fixed set the model is asked to choose from
var ExpenseCategories = []string{
	"Travel", "Meals", "Office Supplies", "Software", "Hardware",
	"Marketing", "Professional Services", "Utilities", "Other",
}

// NewCategorySuggester creates a suggester, or nil when apiKey is empty
func NewCategorySuggester(apiKey, model string, logger *zap.Logger) *CategorySuggester {
	if apiKey == "" {
		return nil
	}
	return &CategorySuggester{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

// Suggest classifies one expense into one of ExpenseCategories
func (s *CategorySuggester) Suggest(ctx context.Context, name, description, receiptText string) (*CategorySuggestion, error) {
	prompt := s.buildPrompt(name, description, receiptText)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a bookkeeping assistant. Classify business expenses into a fixed category set. Always respond with valid JSON only, no markdown.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		s.logger.Error("OpenAI API call failed", zap.Error(err))
		return nil, fmt.Errorf("OpenAI API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var suggestion CategorySuggestion
	if err := json.Unmarshal([]byte(content), &suggestion); err != nil {
		s.logger.Error("Failed to parse OpenAI response",
			zap.Error(err),
			zap.String("content", content))
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	s.logger.Info("Expense category suggested",
		zap.String("category", suggestion.Category),
		zap.Float64("confidence", suggestion.Confidence))
	return &suggestion, nil
}

func (s *CategorySuggester) buildPrompt(name, description, receiptText string) string {
	var b strings.Builder
	b.WriteString("Classify this business expense into exactly one category.\n\n")
	fmt.Fprintf(&b, "Categories: %s\n\n", strings.Join(ExpenseCategories, ", "))
	fmt.Fprintf(&b, "Expense name: %s\n", name)
	if description != "" {
		fmt.Fprintf(&b, "Description: %s\n", description)
	}
	if receiptText != "" {
		fmt.Fprintf(&b, "Receipt text:\n%s\n", receiptText)
	}
	b.WriteString("\nRespond with JSON: {\"category\": string, \"confidence\": number between 0 and 1, \"reasoning\": string}")
	return b.String()
}
