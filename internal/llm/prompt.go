package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/spent/internal/model"
)

const (
	promptTodayPrefix = "Today: "
	promptInputPrefix = "Input: "
)

// buildPrompt asks for the extraction contract. The input and today's date go
// on their own labelled lines so offline providers can recover them.
func buildPrompt(text string, today time.Time) string {
	categories := make([]string, 0, 10)
	for _, c := range model.AllCategories() {
		categories = append(categories, string(c))
	}

	var sb strings.Builder
	sb.WriteString("Extract a single expense from the user's sentence.\n\n")
	sb.WriteString("Respond with a JSON object with exactly these keys:\n")
	sb.WriteString(`- "isValidExpense": boolean, false for greetings, questions or gibberish` + "\n")
	sb.WriteString(`- "confidence": one of "high", "medium", "low"` + "\n")
	sb.WriteString(`- "amount": positive number, or null when no amount is stated` + "\n")
	sb.WriteString(`- "description": short description of what was bought, or null` + "\n")
	fmt.Fprintf(&sb, "- \"category\": one of %s; use \"other\" when unsure\n", strings.Join(categories, ", "))
	sb.WriteString(`- "date": YYYY-MM-DD; today unless the sentence implies another day ("yesterday", "last friday")` + "\n")
	sb.WriteString(`- "missingFields": array containing any of "amount", "description", "category" you could not determine` + "\n")
	sb.WriteString(`- "reasoning": one short sentence explaining your answer` + "\n\n")
	sb.WriteString(promptTodayPrefix + model.FormatDate(today) + "\n")
	sb.WriteString(promptInputPrefix + strings.ReplaceAll(strings.TrimSpace(text), "\n", " ") + "\n")
	return sb.String()
}

// parsePrompt recovers the input text and date from a prompt built by
// buildPrompt. Anything else is treated as the input itself.
func parsePrompt(prompt string) (string, time.Time) {
	var (
		text  string
		today time.Time
		found bool
	)
	for _, line := range strings.Split(prompt, "\n") {
		switch {
		case strings.HasPrefix(line, promptTodayPrefix):
			if d, err := model.ParseDate(strings.TrimPrefix(line, promptTodayPrefix)); err == nil {
				today = d
			}
		case strings.HasPrefix(line, promptInputPrefix):
			text = strings.TrimPrefix(line, promptInputPrefix)
			found = true
		}
	}
	if !found {
		text = prompt
	}
	return strings.TrimSpace(text), today
}
