package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Confidence is the oracle's self-assessment of an extraction.
type Confidence string

// Confidence levels.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ParseConfidence normalizes an untrusted confidence label. Unknown labels are low.
func ParseConfidence(s string) Confidence {
	switch c := Confidence(strings.ToLower(strings.TrimSpace(s))); c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return c
	default:
		return ConfidenceLow
	}
}

// Field names an extractable expense field.
type Field string

// Extractable fields, in focus order.
const (
	FieldAmount      Field = "amount"
	FieldDescription Field = "description"
	FieldCategory    Field = "category"
)

// FieldOrder is the order in which required fields receive focus.
var FieldOrder = []Field{FieldAmount, FieldDescription, FieldCategory}

// ParseField returns the field named by s.
func ParseField(s string) (Field, bool) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range FieldOrder {
		if f == known {
			return f, true
		}
	}
	return "", false
}

// ExtractionResult is the structured guess returned by the extraction oracle.
// Category is always a valid category; every other field may be empty.
type ExtractionResult struct {
	Date           time.Time
	Amount         *decimal.Decimal // nil when absent
	Description    *string          // nil when absent
	Confidence     Confidence
	Category       Category
	Reasoning      string
	MissingFields  []Field
	IsValidExpense bool
}

// HasMissing reports whether the oracle flagged f as unrecoverable.
func (r ExtractionResult) HasMissing(f Field) bool {
	for _, m := range r.MissingFields {
		if m == f {
			return true
		}
	}
	return false
}
