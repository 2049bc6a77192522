package llm

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spent/internal/model"
)

func TestGuessCategory(t *testing.T) {
	tests := []struct {
		text string
		want model.Category
	}{
		{"coffee at the corner", model.CategoryFood},
		{"Trader Joe's run", model.CategoryGroceries},
		{"uber home", model.CategoryTransport},
		{"Netflix", model.CategoryEntertainment},
		{"barber", model.CategoryOther},
		{"rent for march", model.CategoryBills},
		{"something odd", model.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, GuessCategory(tt.text))
		})
	}
}

func TestFindAmount(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		want         string
		wantExplicit bool
		wantNone     bool
	}{
		{name: "dollar prefix", text: "coffee $4.50", want: "4.5", wantExplicit: true},
		{name: "dollars suffix", text: "taxi 23 dollars", want: "23", wantExplicit: true},
		{name: "bare number", text: "lunch 12", want: "12"},
		{name: "comma decimal", text: "pizza 9,99", want: "9.99"},
		{name: "marked beats bare", text: "2 tickets $30", want: "30", wantExplicit: true},
		{name: "last bare wins", text: "3 coffees 12", want: "12"},
		{name: "no number", text: "groceries", wantNone: true},
		{name: "zero", text: "free sample 0", wantNone: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, explicit, _ := findAmount(tt.text)
			if tt.wantNone {
				assert.Nil(t, amount)
				return
			}
			require.NotNil(t, amount)
			assert.Equal(t, tt.want, amount.String())
			assert.Equal(t, tt.wantExplicit, explicit)
		})
	}
}

func TestCleanDescription(t *testing.T) {
	assert.Equal(t, "coffee", cleanDescription("  coffee   "))
	assert.Equal(t, "groceries", cleanDescription("spent  on groceries"))
	assert.Equal(t, "lunch", cleanDescription("lunch for "))
	assert.Equal(t, "", cleanDescription(" - "))
}

func TestHeuristicClient_Extract(t *testing.T) {
	today := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	client := NewHeuristicClient(func() time.Time { return today })

	tests := []struct {
		name            string
		input           string
		wantAmount      any
		wantDescription any
		wantCategory    string
		wantConfidence  string
		wantDate        string
		wantMissing     []any
		wantValid       bool
	}{
		{
			name:            "complete",
			input:           "coffee $5",
			wantValid:       true,
			wantConfidence:  "high",
			wantAmount:      "5",
			wantDescription: "coffee",
			wantCategory:    "food",
			wantDate:        "2024-03-15",
			wantMissing:     []any{},
		},
		{
			name:            "bare amount is medium",
			input:           "lunch 12.50",
			wantValid:       true,
			wantConfidence:  "medium",
			wantAmount:      "12.5",
			wantDescription: "lunch",
			wantCategory:    "food",
			wantDate:        "2024-03-15",
			wantMissing:     []any{},
		},
		{
			name:            "no amount",
			input:           "groceries",
			wantValid:       true,
			wantConfidence:  "low",
			wantAmount:      nil,
			wantDescription: "groceries",
			wantCategory:    "groceries",
			wantDate:        "2024-03-15",
			wantMissing:     []any{"amount"},
		},
		{
			name:            "chatter",
			input:           "hello there",
			wantValid:       false,
			wantConfidence:  "low",
			wantAmount:      nil,
			wantDescription: "hello there",
			wantCategory:    "other",
			wantDate:        "2024-03-15",
			wantMissing:     []any{"amount", "category"},
		},
		{
			name:            "yesterday",
			input:           "uber yesterday $23",
			wantValid:       true,
			wantConfidence:  "high",
			wantAmount:      "23",
			wantDescription: "uber yesterday",
			wantCategory:    "transport",
			wantDate:        "2024-03-14",
			wantMissing:     []any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := client.Extract(context.Background(), buildPrompt(tt.input, today))
			require.NoError(t, err)

			var got map[string]any
			require.NoError(t, json.Unmarshal([]byte(raw), &got))
			assert.Equal(t, tt.wantValid, got["isValidExpense"])
			assert.Equal(t, tt.wantConfidence, got["confidence"])
			assert.Equal(t, tt.wantAmount, got["amount"])
			assert.Equal(t, tt.wantDescription, got["description"])
			assert.Equal(t, tt.wantCategory, got["category"])
			assert.Equal(t, tt.wantDate, got["date"])
			assert.Equal(t, tt.wantMissing, got["missingFields"])
		})
	}
}

func TestHeuristicClient_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHeuristicClient(nil).Extract(ctx, "coffee $5")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHeuristicClient_RawPrompt(t *testing.T) {
	today := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	raw, err := NewHeuristicClient(func() time.Time { return today }).Extract(context.Background(), "pizza $8")
	require.NoError(t, err)
	assert.Contains(t, raw, `"date":"2024-03-15"`)
	assert.Contains(t, raw, `"category":"food"`)
}
