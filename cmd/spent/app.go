package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/spent/internal/clock"
	"github.com/Veraticus/spent/internal/config"
	"github.com/Veraticus/spent/internal/engine"
	"github.com/Veraticus/spent/internal/events"
	"github.com/Veraticus/spent/internal/ledger"
	"github.com/Veraticus/spent/internal/llm"
	"github.com/Veraticus/spent/internal/service"
	"github.com/Veraticus/spent/internal/storage"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// app holds the collaborators shared by every command.
type app struct {
	cfg       *config.Config
	store     *storage.SQLiteStorage
	publisher service.EventPublisher
	ledger    *ledger.Service
	clock     clock.Clock
}

// newApp loads configuration, opens and migrates the database and connects
// the event publisher.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	clk := clock.Real()
	publisher := newPublisher(cfg)

	return &app{
		cfg:       cfg,
		store:     store,
		publisher: publisher,
		ledger:    ledger.New(store, publisher, clk, slog.Default()),
		clock:     clk,
	}, nil
}

// newPublisher connects to AMQP when configured. A broker that cannot be
// reached downgrades to discarding events so capture keeps working.
func newPublisher(cfg *config.Config) service.EventPublisher {
	if cfg.AMQP.URL == "" {
		return events.Nop{}
	}
	p, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, slog.Default())
	if err != nil {
		slog.Warn("Event publishing disabled", "error", err)
		return events.Nop{}
	}
	return p
}

func (a *app) Close() {
	if err := a.publisher.Close(); err != nil {
		slog.Warn("Failed to close event publisher", "error", err)
	}
	if err := a.store.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

func (a *app) engineConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.NoticeDuration = a.cfg.Workflow.NoticeDuration
	cfg.DeleteArmTimeout = a.cfg.Workflow.DeleteTimeout
	return cfg
}

// newWorkflow builds the capture workflow around the configured extractor.
func (a *app) newWorkflow() (*engine.Workflow, error) {
	if err := a.cfg.LLMReady(); err != nil {
		return nil, err
	}

	llmCfg := llm.Config{
		Provider:   a.cfg.LLM.Provider,
		APIKey:     a.cfg.LLM.APIKey,
		Model:      a.cfg.LLM.Model,
		BaseURL:    a.cfg.LLM.BaseURL,
		MaxRetries: a.cfg.LLM.MaxRetries,
		RateLimit:  a.cfg.LLM.RateLimit,
		Timeout:    a.cfg.LLM.Timeout,
	}
	client, err := llm.NewClient(llmCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	extractor := llm.NewExtractor(client, llmCfg, a.clock, slog.Default())
	return engine.New(extractor, a.ledger, a.clock, a.cfg.UserID, a.engineConfig()), nil
}
