package llm

import (
	"context"
	"time"
)

// Client defines the interface for LLM providers. Extract sends prompt with
// the extraction system prompt and returns the raw text of the reply.
type Client interface {
	Extract(ctx context.Context, prompt string) (string, error)
}

// Config holds configuration for the LLM client and extractor.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxRetries  int
	RetryDelay  time.Duration
	Timeout     time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
}

const systemPrompt = "You extract expenses from short free-form sentences. You MUST respond with ONLY a valid JSON object. Do not include any explanatory text, markdown formatting, or commentary before or after the JSON. Start your response directly with { and end with }."
