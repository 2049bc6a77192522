package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spent/internal/model"
)

var (
	// Matches $12, 12$, $12.50, 12,50, "12 dollars", "12 bucks".
	amountRegex = regexp.MustCompile(`(?i)(\$\s*)?(\d+(?:[.,]\d{1,2})?)(\s*(?:\$|dollars?|bucks|usd))?`)
	fillerRegex = regexp.MustCompile(`(?i)^(?:for|on|at|spent|paid)\s+|\s+(?:for|on|at)$`)
	spaceRegex  = regexp.MustCompile(`\s+`)
)

// categoryKeywords maps lowercase keywords to categories. Order matters: the
// first category with a matching keyword wins.
var categoryKeywords = []struct {
	category model.Category
	keywords []string
}{
	{model.CategoryGroceries, []string{"grocery", "groceries", "supermarket", "trader joe", "whole foods", "safeway", "kroger", "aldi", "costco"}},
	{model.CategoryFood, []string{"lunch", "dinner", "breakfast", "brunch", "coffee", "cafe", "restaurant", "pizza", "burger", "chipotle", "starbucks", "sushi", "taco", "snack", "drinks", "bar"}},
	{model.CategoryTransport, []string{"uber", "lyft", "taxi", "cab", "bus", "train", "metro", "subway", "gas", "fuel", "parking", "toll"}},
	{model.CategoryTravel, []string{"flight", "hotel", "airbnb", "airline", "vacation", "trip"}},
	{model.CategoryEntertainment, []string{"movie", "cinema", "concert", "netflix", "spotify", "game", "tickets", "show"}},
	{model.CategoryBills, []string{"rent", "electric", "electricity", "water bill", "internet", "phone bill", "utilities", "insurance", "subscription"}},
	{model.CategoryHealth, []string{"pharmacy", "doctor", "dentist", "medicine", "gym", "hospital", "prescription"}},
	{model.CategoryEducation, []string{"book", "course", "tuition", "class", "udemy", "school"}},
	{model.CategoryShopping, []string{"amazon", "clothes", "shoes", "shirt", "target", "walmart", "store", "mall"}},
}

// GuessCategory picks a category from keywords in text, defaulting to other.
func GuessCategory(text string) model.Category {
	lower := strings.ToLower(text)
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if containsWord(lower, kw) {
				return entry.category
			}
		}
	}
	return model.CategoryOther
}

func containsWord(text, word string) bool {
	idx := strings.Index(text, word)
	for idx >= 0 {
		before := idx == 0 || !isLetter(text[idx-1])
		end := idx + len(word)
		after := end == len(text) || !isLetter(text[end])
		if before && after {
			return true
		}
		next := strings.Index(text[idx+1:], word)
		if next < 0 {
			return false
		}
		idx += next + 1
	}
	return false
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// HeuristicClient is an offline Client that extracts expenses with regular
// expressions and a keyword table. It answers in the same JSON contract as
// the hosted providers.
type HeuristicClient struct {
	now func() time.Time
}

// NewHeuristicClient creates an offline client. A nil now uses time.Now.
func NewHeuristicClient(now func() time.Time) *HeuristicClient {
	if now == nil {
		now = time.Now
	}
	return &HeuristicClient{now: now}
}

// Extract parses the input embedded in prompt.
func (h *HeuristicClient) Extract(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, today := parsePrompt(prompt)
	if today.IsZero() {
		today = model.Day(h.now())
	}

	out, err := json.Marshal(h.extract(text, today))
	if err != nil {
		return "", fmt.Errorf("failed to marshal heuristic result: %w", err)
	}
	return string(out), nil
}

func (h *HeuristicClient) extract(text string, today time.Time) map[string]any {
	result := map[string]any{
		"isValidExpense": true,
		"confidence":     string(model.ConfidenceHigh),
		"amount":         nil,
		"description":    nil,
		"category":       string(model.CategoryOther),
		"date":           model.FormatDate(today),
		"missingFields":  []string{},
		"reasoning":      "",
	}

	amount, explicit, rest := findAmount(text)
	description := cleanDescription(rest)
	category := GuessCategory(text)
	result["category"] = string(category)

	lower := strings.ToLower(text)
	if containsWord(lower, "yesterday") {
		result["date"] = model.FormatDate(today.AddDate(0, 0, -1))
	}

	var missing []string
	if amount == nil {
		missing = append(missing, string(model.FieldAmount))
	} else {
		result["amount"] = amount.String()
	}
	if description == "" {
		missing = append(missing, string(model.FieldDescription))
	} else {
		result["description"] = description
	}
	if category == model.CategoryOther {
		missing = append(missing, string(model.FieldCategory))
	}
	if missing != nil {
		result["missingFields"] = missing
	}

	switch {
	case amount == nil && category == model.CategoryOther:
		result["isValidExpense"] = false
		result["confidence"] = string(model.ConfidenceLow)
		result["reasoning"] = "I didn't find an amount or anything that looks like a purchase"
	case amount == nil:
		result["confidence"] = string(model.ConfidenceLow)
		result["reasoning"] = "Looks like a purchase but no amount was given"
	case !explicit || category == model.CategoryOther:
		result["confidence"] = string(model.ConfidenceMedium)
		result["reasoning"] = "Found an amount but the details are uncertain"
	default:
		result["reasoning"] = fmt.Sprintf("Found an amount and a %s keyword", category)
	}
	return result
}

// findAmount returns the best amount match, whether it carried a currency
// marker, and the text with that match removed. Marked amounts win over bare
// numbers; among equals the last one wins.
func findAmount(text string) (*decimal.Decimal, bool, string) {
	matches := amountRegex.FindAllStringSubmatchIndex(text, -1)
	best := -1
	bestExplicit := false
	for i, m := range matches {
		explicit := m[2] != -1 || m[6] != -1
		if explicit || !bestExplicit {
			best = i
			bestExplicit = explicit
		}
	}
	if best == -1 {
		return nil, false, text
	}

	m := matches[best]
	raw := strings.Replace(text[m[4]:m[5]], ",", ".", 1)
	amount, err := decimal.NewFromString(raw)
	if err != nil || !amount.IsPositive() {
		return nil, false, text
	}
	rest := text[:m[0]] + " " + text[m[1]:]
	return &amount, bestExplicit, rest
}

func cleanDescription(s string) string {
	s = spaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
	for {
		cleaned := strings.TrimSpace(fillerRegex.ReplaceAllString(s, ""))
		if cleaned == s {
			break
		}
		s = cleaned
	}
	s = strings.Trim(s, " -,.")
	return s
}
