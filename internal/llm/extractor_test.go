package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spent/internal/clock"
	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/model"
)

type fakeClient struct {
	err       error
	responses []string
	prompts   []string
	mu        sync.Mutex
}

func (f *fakeClient) Extract(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func newTestExtractor(client Client, now time.Time) *Extractor {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewExtractor(client, Config{MaxRetries: 2, RetryDelay: time.Millisecond}, clock.NewManual(now), logger)
}

func TestExtractor_Extract(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)
	client := &fakeClient{responses: []string{"```json\n" +
		`{"isValidExpense":true,"confidence":"high","amount":4.5,"description":"coffee",` +
		`"category":"food","date":"2024-03-15","missingFields":[],"reasoning":"Clear purchase."}` +
		"\n```"}}

	result, err := newTestExtractor(client, now).Extract(context.Background(), "coffee $4.50")
	require.NoError(t, err)

	assert.True(t, result.IsValidExpense)
	assert.Equal(t, model.ConfidenceHigh, result.Confidence)
	require.NotNil(t, result.Amount)
	assert.Equal(t, "4.5", result.Amount.String())
	require.NotNil(t, result.Description)
	assert.Equal(t, "coffee", *result.Description)
	assert.Equal(t, model.CategoryFood, result.Category)
	assert.Equal(t, "2024-03-15", model.FormatDate(result.Date))
	assert.Empty(t, result.MissingFields)
	assert.Equal(t, "Clear purchase.", result.Reasoning)

	require.Equal(t, 1, client.calls())
	assert.Contains(t, client.prompts[0], "Input: coffee $4.50")
	assert.Contains(t, client.prompts[0], "Today: 2024-03-15")
}

func TestExtractor_RepairsFields(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	client := &fakeClient{responses: []string{
		`Here is the JSON: {"isValidExpense":true,"confidence":"certain","amount":"abc","category":"Snacks"}`,
	}}

	result, err := newTestExtractor(client, now).Extract(context.Background(), "chips")
	require.NoError(t, err)

	assert.Equal(t, model.ConfidenceLow, result.Confidence)
	assert.Nil(t, result.Amount)
	assert.Nil(t, result.Description)
	assert.Equal(t, model.CategoryOther, result.Category)
	assert.Equal(t, []model.Field{model.FieldAmount, model.FieldDescription}, result.MissingFields)
	assert.True(t, result.Date.Equal(now))
}

func TestExtractor_RetriesMissingJSON(t *testing.T) {
	client := &fakeClient{responses: []string{
		"I'm not sure what you mean",
		`{"isValidExpense":false,"confidence":"low","amount":null,"description":null,"category":"other","date":"2024-03-15","missingFields":["amount"],"reasoning":"Just a greeting"}`,
	}}

	result, err := newTestExtractor(client, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)).
		Extract(context.Background(), "hi")
	require.NoError(t, err)
	assert.False(t, result.IsValidExpense)
	assert.Equal(t, "Just a greeting", result.Reasoning)
	assert.Equal(t, 2, client.calls())
}

func TestExtractor_Errors(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		client    *fakeClient
		name      string
		wantCalls int
	}{
		{
			name:      "never returns JSON",
			client:    &fakeClient{responses: []string{"no idea"}},
			wantCalls: 2,
		},
		{
			name:      "permanent transport error",
			client:    &fakeClient{err: common.Permanent(errors.New("401 unauthorized"))},
			wantCalls: 1,
		},
		{
			name:      "transient transport error",
			client:    &fakeClient{err: &common.RetryableError{Err: errors.New("connection reset"), Retryable: true}},
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestExtractor(tt.client, now).Extract(context.Background(), "coffee")
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrOracle)
			assert.Equal(t, tt.wantCalls, tt.client.calls())
		})
	}
}

func TestExtractor_WithHeuristicClient(t *testing.T) {
	now := time.Date(2024, 3, 15, 22, 45, 0, 0, time.UTC)

	result, err := newTestExtractor(NewHeuristicClient(nil), now).Extract(context.Background(), "pizza yesterday $18.25")
	require.NoError(t, err)

	assert.True(t, result.IsValidExpense)
	assert.Equal(t, model.ConfidenceHigh, result.Confidence)
	require.NotNil(t, result.Amount)
	assert.Equal(t, "18.25", result.Amount.String())
	assert.Equal(t, model.CategoryFood, result.Category)
	assert.Equal(t, "2024-03-14", model.FormatDate(result.Date))
}
