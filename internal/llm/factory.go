package llm

import (
	"fmt"
	"strings"

	"github.com/Veraticus/spent/internal/common"
)

// Providers accepted by NewClient. "offline" is an alias for the heuristic
// client, which needs no network or key.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderHeuristic = "heuristic"
	ProviderOffline   = "offline"
)

// NewClient returns the client for cfg.Provider.
func NewClient(cfg Config) (Client, error) {
	switch provider := strings.ToLower(strings.TrimSpace(cfg.Provider)); provider {
	case ProviderOpenAI:
		return newOpenAIClient(cfg)
	case ProviderAnthropic:
		return newAnthropicClient(cfg)
	case ProviderHeuristic, ProviderOffline:
		return NewHeuristicClient(nil), nil
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider %q", common.ErrInvalidConfig, provider)
	}
}
