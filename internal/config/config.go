// Package config loads application configuration from viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/spent/internal/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// AppName names the config directory, env prefix and data directory.
const AppName = "spent"

// Config is the resolved application configuration.
type Config struct {
	Budget   BudgetConfig
	AMQP     AMQPConfig
	Logging  LoggingConfig
	Database DatabaseConfig
	UserID   string
	LLM      LLMConfig
	Workflow WorkflowConfig
}

// DatabaseConfig locates the sqlite database.
type DatabaseConfig struct {
	Path string
}

// LLMConfig selects and tunes the extraction provider.
type LLMConfig struct {
	Provider   string
	APIKey     string
	Model      string
	BaseURL    string
	RateLimit  int
	MaxRetries int
	Timeout    time.Duration
}

// WorkflowConfig holds the confirmation workflow timings.
type WorkflowConfig struct {
	NoticeDuration time.Duration
	DeleteTimeout  time.Duration
}

// BudgetConfig holds the optional monthly budget. Zero means unset.
type BudgetConfig struct {
	Monthly decimal.Decimal
}

// AMQPConfig configures event publishing. An empty URL disables it.
type AMQPConfig struct {
	URL      string
	Exchange string
}

// LoggingConfig configures the default slog handler.
type LoggingConfig struct {
	Level  string
	Format string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "~/.local/share/"+AppName+"/"+AppName+".db")
	v.SetDefault("user.id", "local")
	v.SetDefault("llm.provider", "anthropic")
	v.SetDefault("llm.rate_limit", 30)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.timeout", "30s")
	v.SetDefault("workflow.notice_duration", "12s")
	v.SetDefault("workflow.delete_timeout", "3s")
	v.SetDefault("amqp.exchange", AppName)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads the configuration from v. Defaults must already be registered
// with SetDefaults. The result is not validated.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{Path: ExpandPath(v.GetString("database.path"))},
		UserID:   strings.TrimSpace(v.GetString("user.id")),
		LLM: LLMConfig{
			Provider:   strings.ToLower(strings.TrimSpace(v.GetString("llm.provider"))),
			APIKey:     v.GetString("llm.api_key"),
			Model:      v.GetString("llm.model"),
			BaseURL:    v.GetString("llm.base_url"),
			RateLimit:  v.GetInt("llm.rate_limit"),
			MaxRetries: v.GetInt("llm.max_retries"),
			Timeout:    v.GetDuration("llm.timeout"),
		},
		Workflow: WorkflowConfig{
			NoticeDuration: v.GetDuration("workflow.notice_duration"),
			DeleteTimeout:  v.GetDuration("workflow.delete_timeout"),
		},
		AMQP: AMQPConfig{
			URL:      v.GetString("amqp.url"),
			Exchange: v.GetString("amqp.exchange"),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(v.GetString("logging.level")),
			Format: strings.ToLower(v.GetString("logging.format")),
		},
	}

	if raw := strings.TrimSpace(v.GetString("budget.monthly")); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: budget.monthly %q: %w", common.ErrInvalidConfig, raw, err)
		}
		cfg.Budget.Monthly = amount
	}

	return cfg, nil
}

// HasBudget reports whether a monthly budget is configured.
func (c *Config) HasBudget() bool {
	return c.Budget.Monthly.IsPositive()
}

// LLMReady reports whether the configured provider can be called. Only
// commands that extract expenses need it.
func (c *Config) LLMReady() error {
	switch c.LLM.Provider {
	case "anthropic", "openai":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("%w: llm.api_key is required for provider %q (or set llm.provider to heuristic)",
				common.ErrMissingConfig, c.LLM.Provider)
		}
	}
	return nil
}

// Validate checks the whole configuration and reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Database.Path == "" {
		problems = append(problems, "database.path cannot be empty")
	}
	if c.UserID == "" {
		problems = append(problems, "user.id cannot be empty")
	}

	switch c.LLM.Provider {
	case "anthropic", "openai", "heuristic", "offline":
	default:
		problems = append(problems, fmt.Sprintf("invalid llm.provider %q: must be one of anthropic, openai, heuristic", c.LLM.Provider))
	}
	if c.LLM.BaseURL != "" {
		if u, err := url.Parse(c.LLM.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			problems = append(problems, fmt.Sprintf("invalid llm.base_url %q", c.LLM.BaseURL))
		}
	}
	if c.LLM.RateLimit < 0 {
		problems = append(problems, fmt.Sprintf("invalid llm.rate_limit %d: cannot be negative", c.LLM.RateLimit))
	}
	if c.LLM.MaxRetries < 0 {
		problems = append(problems, fmt.Sprintf("invalid llm.max_retries %d: cannot be negative", c.LLM.MaxRetries))
	}

	if c.Workflow.NoticeDuration <= 0 {
		problems = append(problems, fmt.Sprintf("invalid workflow.notice_duration %v: must be positive", c.Workflow.NoticeDuration))
	}
	if c.Workflow.DeleteTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("invalid workflow.delete_timeout %v: must be positive", c.Workflow.DeleteTimeout))
	}

	if c.Budget.Monthly.IsNegative() {
		problems = append(problems, "budget.monthly cannot be negative")
	}

	if c.AMQP.URL != "" {
		if u, err := url.Parse(c.AMQP.URL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid amqp.url: %v", err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid amqp.url scheme %q: must be amqp or amqps", u.Scheme))
		}
		if c.AMQP.Exchange == "" {
			problems = append(problems, "amqp.exchange cannot be empty when amqp.url is set")
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid logging.level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("invalid logging.format %q", c.Logging.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w:\n- %s", common.ErrInvalidConfig, strings.Join(problems, "\n- "))
	}
	return nil
}
