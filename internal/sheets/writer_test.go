package sheets

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/spent/internal/analytics"
	"github.com/Veraticus/spent/internal/model"
)

func testStats(t *testing.T) (analytics.Statistics, *analytics.BudgetProjection) {
	t.Helper()
	mk := func(amount, date string, cat model.Category) model.Expense {
		d, err := model.ParseDate(date)
		require.NoError(t, err)
		return model.Expense{ID: date + amount, Amount: decimal.RequireFromString(amount), Description: "thing", Category: cat, Date: d}
	}
	agg := analytics.NewAggregator(func() time.Time { return time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC) })
	stats := agg.Aggregate([]model.Expense{
		mk("20", "2024-02-01", model.CategoryFood),
		mk("5.5", "2024-02-03", model.CategoryTransport),
	}, model.MonthRange(2024, time.February))
	budget, err := agg.Budget(stats, decimal.NewFromInt(290))
	require.NoError(t, err)
	return stats, budget
}

func TestBuildReport(t *testing.T) {
	stats, budget := testStats(t)

	r := buildReport(stats, budget)
	assert.Equal(t, []any{"Spending Report", "Feb 1, 2024 - Feb 29, 2024"}, r.values[0])
	assert.Equal(t, []any{"Total Spent", "25.50"}, r.values[3])

	var titles []string
	for _, idx := range r.sections {
		titles = append(titles, r.values[idx][0].(string))
	}
	assert.Equal(t, []string{"Summary", "Category Breakdown", "Budget", "Spending Over Time", "Expenses"}, titles)

	assert.Contains(t, r.values, []any{"food", 1, "20.00", "78.4%"})
	assert.Contains(t, r.values, []any{"Projected Total", "73.95"})
	assert.Equal(t, []any{"2024-02-03", "thing", "5.50", "transport"}, r.values[len(r.values)-1])
}

func TestBuildReport_NoBudgetNoData(t *testing.T) {
	stats := analytics.NewAggregator(nil).Aggregate(nil, model.CustomRange(
		time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))

	r := buildReport(stats, nil)
	assert.Equal(t, []any{"Spending Report", "no data"}, r.values[0])
	for _, idx := range r.sections {
		assert.NotEqual(t, "Budget", r.values[idx][0])
	}
}

type apiCall struct {
	method string
	path   string
	body   map[string]any
}

func TestWriter_WriteStats(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []apiCall
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		calls = append(calls, apiCall{method: r.Method, path: r.URL.Path, body: body})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1","sheets":[{"properties":{"sheetId":7,"title":"Statistics"}}]}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	srv, err := sheets.NewService(context.Background(),
		option.WithHTTPClient(server.Client()),
		option.WithEndpoint(server.URL+"/"))
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.SpreadsheetID = "sheet-1"
	cfg.RetryDelay = time.Millisecond
	w := newWriter(srv, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	stats, budget := testStats(t)
	id, err := w.WriteStats(context.Background(), stats, budget)
	require.NoError(t, err)
	assert.Equal(t, "sheet-1", id)

	mu.Lock()
	defer mu.Unlock()

	var methods []string
	var update *apiCall
	var batch *apiCall
	for i := range calls {
		methods = append(methods, calls[i].method)
		switch {
		case calls[i].method == http.MethodPut:
			update = &calls[i]
		case strings.HasSuffix(calls[i].path, ":batchUpdate"):
			batch = &calls[i]
		}
	}
	assert.Equal(t, []string{"GET", "POST", "PUT", "GET", "POST"}, methods)

	require.NotNil(t, update)
	values, ok := update.body["values"].([]any)
	require.True(t, ok)
	assert.Len(t, values, len(buildReport(stats, budget).values))

	require.NotNil(t, batch)
	requests, ok := batch.body["requests"].([]any)
	require.True(t, ok)
	assert.Len(t, requests, 3+5)
}

func TestSaveAndLoadToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens", "sheets.json")
	require.NoError(t, saveToken(path, &oauth2.Token{RefreshToken: "refresh-me", TokenType: "Bearer"}))

	token, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "refresh-me", token.RefreshToken)

	_, err = LoadToken(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestAuthorize_RequiresCredentials(t *testing.T) {
	_, err := Authorize(context.Background(), OAuth2Config{}, io.Discard)
	assert.Error(t, err)
}
