package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spent/internal/model"
)

// FormField names an input of the confirmation form.
type FormField string

// Confirmation form inputs, in display order.
const (
	FormAmount      FormField = "amount"
	FormDescription FormField = "description"
	FormCategory    FormField = "category"
	FormDate        FormField = "date"
)

var formOrder = []FormField{FormAmount, FormDescription, FormCategory, FormDate}

// FormFields returns the form inputs in display order.
func FormFields() []FormField {
	out := make([]FormField, len(formOrder))
	copy(out, formOrder)
	return out
}

// FieldErrors maps invalid form inputs to a message. It is nil when the form is valid.
type FieldErrors map[FormField]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, f := range fe.Fields() {
		parts = append(parts, fmt.Sprintf("%s: %s", f, fe[f]))
	}
	return "invalid expense: " + strings.Join(parts, "; ")
}

// Fields returns the invalid inputs in display order.
func (fe FieldErrors) Fields() []FormField {
	out := make([]FormField, 0, len(fe))
	for _, f := range formOrder {
		if _, ok := fe[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Draft is the editable content of the confirmation form. Values are kept as
// typed so a half-edited form survives validation failures.
type Draft struct {
	Amount      string
	Description string
	Category    string
	Date        string
	RawInput    string
	// ExpenseID is set when the draft edits an existing record.
	ExpenseID string
	// Required lists the fields flagged by the extractor, in focus order.
	Required []model.Field
}

// DraftFromResult pre-fills a draft with whatever the extractor recovered.
func DraftFromResult(r model.ExtractionResult, required []model.Field, rawInput string, today time.Time) Draft {
	d := Draft{
		Category: string(model.ParseCategory(string(r.Category))),
		RawInput: rawInput,
		Required: append([]model.Field(nil), required...),
	}
	if r.Amount != nil && r.Amount.IsPositive() {
		d.Amount = r.Amount.String()
	}
	if r.Description != nil {
		d.Description = strings.TrimSpace(*r.Description)
	}
	date := r.Date
	if date.IsZero() {
		date = today
	}
	d.Date = model.FormatDate(date)
	return d
}

// DraftFromExpense pre-fills a draft for editing a stored record.
func DraftFromExpense(e model.Expense) Draft {
	d := draftFromFields(e.Fields(), e.RawInput)
	d.ExpenseID = e.ID
	return d
}

func draftFromFields(v model.ValidatedExpense, rawInput string) Draft {
	return Draft{
		Amount:      v.Amount.String(),
		Description: v.Description,
		Category:    string(v.Category),
		Date:        model.FormatDate(v.Date),
		RawInput:    rawInput,
	}
}

// Value returns the raw input for f.
func (d Draft) Value(f FormField) string {
	switch f {
	case FormAmount:
		return d.Amount
	case FormDescription:
		return d.Description
	case FormCategory:
		return d.Category
	case FormDate:
		return d.Date
	}
	return ""
}

// Set replaces the raw input for f.
func (d *Draft) Set(f FormField, value string) {
	switch f {
	case FormAmount:
		d.Amount = value
	case FormDescription:
		d.Description = value
	case FormCategory:
		d.Category = value
	case FormDate:
		d.Date = value
	}
}

// IsRequired reports whether the extractor flagged f.
func (d Draft) IsRequired(f FormField) bool {
	for _, r := range d.Required {
		if string(r) == string(f) {
			return true
		}
	}
	return false
}

// Validate converts the draft into a ValidatedExpense. Errors are reported per field.
func (d Draft) Validate() (model.ValidatedExpense, FieldErrors) {
	var (
		v    model.ValidatedExpense
		errs = FieldErrors{}
	)

	amount, err := ParseAmount(d.Amount)
	switch {
	case err != nil:
		errs[FormAmount] = "enter an amount like 15 or 4.50"
	case !amount.IsPositive():
		errs[FormAmount] = "amount must be greater than zero"
	default:
		v.Amount = amount
	}

	v.Description = strings.TrimSpace(d.Description)
	if v.Description == "" {
		errs[FormDescription] = "description is required"
	}

	v.Category = model.ParseCategory(d.Category)

	date, err := model.ParseDate(d.Date)
	if err != nil {
		errs[FormDate] = "use YYYY-MM-DD"
	} else {
		v.Date = date
	}

	if len(errs) > 0 {
		return model.ValidatedExpense{}, errs
	}
	return v, nil
}

// CanSave reports whether the draft would pass validation.
func (d Draft) CanSave() bool {
	_, errs := d.Validate()
	return errs == nil
}

// FocusField returns the input that should receive focus: the first flagged
// field that is still invalid (amount before description), otherwise the
// first invalid input. It is empty when the draft is valid.
func (d Draft) FocusField() FormField {
	_, errs := d.Validate()
	if errs == nil {
		return ""
	}
	for _, f := range []FormField{FormAmount, FormDescription} {
		if _, bad := errs[f]; bad && d.IsRequired(f) {
			return f
		}
	}
	for _, f := range formOrder {
		if _, bad := errs[f]; bad {
			return f
		}
	}
	return ""
}

// ParseAmount parses a user-typed amount, accepting a leading currency symbol
// and thousands separators.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errors.New("amount is empty")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// clone returns a deep copy of d.
func (d Draft) clone() Draft {
	d.Required = append([]model.Field(nil), d.Required...)
	return d
}
