package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt_RoundTrip(t *testing.T) {
	today := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	prompt := buildPrompt("  coffee\n$5  ", today)

	assert.Contains(t, prompt, "Today: 2024-02-29\n")
	assert.Contains(t, prompt, "Input: coffee $5\n")
	for _, c := range []string{"food", "groceries", "other"} {
		assert.Contains(t, prompt, c)
	}

	text, gotToday := parsePrompt(prompt)
	assert.Equal(t, "coffee $5", text)
	assert.True(t, today.Equal(gotToday))
}

func TestParsePrompt_Unstructured(t *testing.T) {
	text, today := parsePrompt("  lunch 12 ")
	assert.Equal(t, "lunch 12", text)
	assert.True(t, today.IsZero())
}
