package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spent/internal/model"
)

// sanitizeExtraction normalizes an untrusted extraction document so that a
// malformed or missing field degrades to a low-confidence value instead of
// failing the whole request. It returns the normalized JSON and the names of
// fields that had to be repaired.
func sanitizeExtraction(doc []byte, today time.Time) ([]byte, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	var in map[string]any
	if err := dec.Decode(&in); err != nil {
		return nil, nil, fmt.Errorf("decode extraction: %w", err)
	}

	var repaired []string
	out := make(map[string]any, 8)

	valid, ok := asBool(in["isValidExpense"])
	if !ok {
		repaired = append(repaired, "isValidExpense")
	}
	out["isValidExpense"] = valid

	confRaw, _ := in["confidence"].(string)
	conf := model.ParseConfidence(confRaw)
	if string(conf) != strings.ToLower(strings.TrimSpace(confRaw)) {
		repaired = append(repaired, "confidence")
	}
	out["confidence"] = string(conf)

	amount, ok := asAmount(in["amount"])
	if !ok {
		repaired = append(repaired, "amount")
	}
	if amount != nil {
		out["amount"] = amount.String()
	} else {
		out["amount"] = nil
	}

	var description any
	if s, isString := in["description"].(string); isString && strings.TrimSpace(s) != "" {
		description = strings.TrimSpace(s)
	} else if in["description"] != nil {
		repaired = append(repaired, "description")
	}
	out["description"] = description

	catRaw, _ := in["category"].(string)
	cat := model.ParseCategory(catRaw)
	if string(cat) != strings.ToLower(strings.TrimSpace(catRaw)) {
		repaired = append(repaired, "category")
	}
	out["category"] = string(cat)

	date := model.FormatDate(today)
	if s, isString := in["date"].(string); isString {
		if d, err := model.ParseDate(s); err == nil {
			date = model.FormatDate(d)
		} else {
			repaired = append(repaired, "date")
		}
	} else {
		repaired = append(repaired, "date")
	}
	out["date"] = date

	out["missingFields"] = missingFields(in["missingFields"], amount == nil, description == nil)

	reasoning, _ := in["reasoning"].(string)
	out["reasoning"] = strings.TrimSpace(reasoning)

	normalized, err := json.Marshal(out)
	if err != nil {
		return nil, nil, fmt.Errorf("encode extraction: %w", err)
	}
	return normalized, repaired, nil
}

func asBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes":
			return true, false
		}
	}
	return false, false
}

// asAmount parses a positive amount. It reports false when a value was
// present but unusable.
func asAmount(v any) (*decimal.Decimal, bool) {
	var s string
	switch t := v.(type) {
	case nil:
		return nil, true
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" || strings.EqualFold(s, "null") {
			return nil, true
		}
	default:
		return nil, false
	}

	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !d.IsPositive() {
		return nil, false
	}
	return &d, true
}

// missingFields keeps the recognised flags, in focus order, and adds amount or
// description when those fields are absent.
func missingFields(v any, noAmount, noDescription bool) []string {
	flagged := make(map[model.Field]bool)
	if list, ok := v.([]any); ok {
		for _, item := range list {
			if s, isString := item.(string); isString {
				if f, known := model.ParseField(s); known {
					flagged[f] = true
				}
			}
		}
	}
	if noAmount {
		flagged[model.FieldAmount] = true
	}
	if noDescription {
		flagged[model.FieldDescription] = true
	}

	out := make([]string, 0, len(flagged))
	for _, f := range model.FieldOrder {
		if flagged[f] {
			out = append(out, string(f))
		}
	}
	return out
}
