// Package policy decides what happens to an extraction result without calling
// any external service.
package policy

import (
	"strings"

	"github.com/Veraticus/spent/internal/model"
)

// Outcome is the verdict of the decision policy.
type Outcome int

// Decision outcomes.
const (
	Reject Outcome = iota
	NeedsConfirmation
	AutoSave
)

func (o Outcome) String() string {
	switch o {
	case Reject:
		return "reject"
	case NeedsConfirmation:
		return "needs_confirmation"
	case AutoSave:
		return "auto_save"
	default:
		return "unknown"
	}
}

// User-facing guidance for rejected input.
const (
	NotAnExpenseHint = "Try something like: '$15 lunch at chipotle' or 'coffee $5 this morning'"
	MissingAmountMsg = "I couldn't find an amount. Please include how much you spent (e.g., '$15' or '15 dollars')"

	defaultReasoning = "That doesn't look like an expense"
)

// Decision is the result of Decide.
type Decision struct {
	// Expense is set only for AutoSave.
	Expense *model.ValidatedExpense
	Message string
	// RequiredFields lists flagged fields in focus order. Set for NeedsConfirmation.
	RequiredFields []model.Field
	Result         model.ExtractionResult
	Outcome        Outcome
}

// Decide maps an extraction result to a decision. The first matching rule wins:
// not an expense, then no amount, then low/medium confidence or any flagged
// field, then auto-save.
func Decide(result model.ExtractionResult) Decision {
	if !result.IsValidExpense {
		return Decision{
			Outcome: Reject,
			Result:  result,
			Message: notAnExpenseMessage(result.Reasoning),
		}
	}

	if !hasAmount(result) {
		return Decision{
			Outcome: Reject,
			Result:  result,
			Message: MissingAmountMsg,
		}
	}

	required := requiredFields(result)
	if result.Confidence != model.ConfidenceHigh || len(required) > 0 || result.Date.IsZero() {
		return Decision{
			Outcome:        NeedsConfirmation,
			Result:         result,
			RequiredFields: required,
		}
	}

	expense := model.ValidatedExpense{
		Amount:      *result.Amount,
		Description: strings.TrimSpace(*result.Description),
		Category:    model.ParseCategory(string(result.Category)),
		Date:        model.Day(result.Date),
	}
	return Decision{
		Outcome: AutoSave,
		Result:  result,
		Expense: &expense,
	}
}

func notAnExpenseMessage(reasoning string) string {
	reasoning = strings.TrimSpace(reasoning)
	reasoning = strings.TrimSuffix(reasoning, ".")
	if reasoning == "" {
		reasoning = defaultReasoning
	}
	return reasoning + ". " + NotAnExpenseHint
}

func hasAmount(r model.ExtractionResult) bool {
	if r.HasMissing(model.FieldAmount) || r.Amount == nil {
		return false
	}
	return r.Amount.IsPositive()
}

// requiredFields returns the oracle-flagged fields plus any field that would
// make an auto-saved record invalid, ordered amount, description, category.
func requiredFields(r model.ExtractionResult) []model.Field {
	var out []model.Field
	for _, f := range model.FieldOrder {
		flagged := r.HasMissing(f)
		if f == model.FieldDescription && (r.Description == nil || strings.TrimSpace(*r.Description) == "") {
			flagged = true
		}
		if flagged {
			out = append(out, f)
		}
	}
	return out
}
