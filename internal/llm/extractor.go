package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spent/internal/clock"
	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/model"
	"github.com/Veraticus/spent/internal/service"
)

// Extractor implements engine.Extractor on top of an LLM Client. It never
// caches: every call reaches the provider.
type Extractor struct {
	client      Client
	clock       clock.Clock
	logger      *slog.Logger
	rateLimiter *rateLimiter
	retryOpts   service.RetryOptions
}

// NewExtractor creates an extractor around client.
func NewExtractor(client Client, cfg Config, clk clock.Clock, logger *slog.Logger) *Extractor {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	return &Extractor{
		client:      client,
		clock:       clk,
		logger:      logger,
		retryOpts:   retryOpts,
		rateLimiter: newRateLimiter(cfg.RateLimit),
	}
}

// wireResult is the normalized JSON contract.
type wireResult struct {
	Amount         *string  `json:"amount"`
	Description    *string  `json:"description"`
	Confidence     string   `json:"confidence"`
	Category       string   `json:"category"`
	Date           string   `json:"date"`
	Reasoning      string   `json:"reasoning"`
	MissingFields  []string `json:"missingFields"`
	IsValidExpense bool     `json:"isValidExpense"`
}

// Extract asks the provider to structure text. Transport failures and replies
// without a JSON object are reported as common.ErrOracle; individual bad
// fields are repaired instead.
func (e *Extractor) Extract(ctx context.Context, text string) (model.ExtractionResult, error) {
	rid := uuid.NewString()
	start := e.clock.Now()
	today := model.Day(start)

	e.logger.Info("llm.extract.start", "req_id", rid, "text_len", len(text))

	if err := e.rateLimiter.wait(ctx); err != nil {
		return model.ExtractionResult{}, fmt.Errorf("%w: rate limit error: %w", common.ErrOracle, err)
	}

	prompt := buildPrompt(text, today)

	var doc string
	err := common.WithRetry(ctx, func() error {
		content, err := e.client.Extract(ctx, prompt)
		if err != nil {
			e.logger.Warn("llm.extract.attempt_failed", "req_id", rid, "error", err)
			return err
		}
		obj, err := extractJSONObject(content)
		if err != nil {
			e.logger.Warn("llm.extract.no_json", "req_id", rid, "content_len", len(content))
			return &common.RetryableError{Err: err, Retryable: true}
		}
		doc = obj
		return nil
	}, e.retryOpts)
	if err != nil {
		e.logger.Error("llm.extract.error", "req_id", rid, "error", err,
			"elapsed_ms", e.clock.Now().Sub(start).Milliseconds())
		return model.ExtractionResult{}, fmt.Errorf("%w: %w", common.ErrOracle, err)
	}

	result, err := e.parse(rid, doc, today)
	if err != nil {
		e.logger.Error("llm.extract.decode_error", "req_id", rid, "error", err,
			"elapsed_ms", e.clock.Now().Sub(start).Milliseconds())
		return model.ExtractionResult{}, fmt.Errorf("%w: %w", common.ErrOracle, err)
	}

	e.logger.Info("llm.extract.ok",
		"req_id", rid,
		"valid", result.IsValidExpense,
		"confidence", result.Confidence,
		"category", result.Category,
		"missing", len(result.MissingFields),
		"elapsed_ms", e.clock.Now().Sub(start).Milliseconds())
	return result, nil
}

func (e *Extractor) parse(rid, doc string, today time.Time) (model.ExtractionResult, error) {
	normalized, repaired, err := sanitizeExtraction([]byte(doc), today)
	if err != nil {
		return model.ExtractionResult{}, err
	}
	if len(repaired) > 0 {
		e.logger.Warn("llm.extract.lenient_sanitize_applied", "req_id", rid, "repaired", repaired)
	}
	if err := validateDocument(normalized); err != nil {
		return model.ExtractionResult{}, err
	}

	var w wireResult
	if err := json.Unmarshal(normalized, &w); err != nil {
		return model.ExtractionResult{}, fmt.Errorf("decode normalized extraction: %w", err)
	}
	return w.toModel()
}

func (w wireResult) toModel() (model.ExtractionResult, error) {
	r := model.ExtractionResult{
		IsValidExpense: w.IsValidExpense,
		Confidence:     model.ParseConfidence(w.Confidence),
		Category:       model.ParseCategory(w.Category),
		Reasoning:      w.Reasoning,
		Description:    w.Description,
	}
	if w.Amount != nil {
		d, err := decimal.NewFromString(*w.Amount)
		if err != nil {
			return model.ExtractionResult{}, fmt.Errorf("invalid normalized amount: %w", err)
		}
		r.Amount = &d
	}
	date, err := model.ParseDate(w.Date)
	if err != nil {
		return model.ExtractionResult{}, err
	}
	r.Date = date
	for _, s := range w.MissingFields {
		if f, ok := model.ParseField(s); ok {
			r.MissingFields = append(r.MissingFields, f)
		}
	}
	return r, nil
}
