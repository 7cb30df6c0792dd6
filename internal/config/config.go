package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Search    SearchConfig    `yaml:"search"`
	Generator GeneratorConfig `yaml:"generator"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Storage   StorageConfig   `yaml:"storage"`
	Web       WebConfig       `yaml:"web"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type SearchConfig struct {
	APIKey            string  `yaml:"api_key"`
	BaseURL           string  `yaml:"base_url"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	ResultCount       int     `yaml:"result_count"`
}

type GeneratorConfig struct {
	Provider       string   `yaml:"provider"` // anthropic, openai, gemini
	APIKey         string   `yaml:"api_key"`
	Model          string   `yaml:"model"`
	BaseURL        string   `yaml:"base_url"`
	MaxTokens      int      `yaml:"max_tokens"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	// MaxWebSearches caps hosted web search calls per generation; 0 disables
	// the tool and an absent key falls back to the default.
	MaxWebSearches *int     `yaml:"max_web_searches"`
	AllowedDomains []string `yaml:"allowed_domains"`
}

type ScheduleConfig struct {
	Cron     string `yaml:"cron"`
	Timezone string `yaml:"timezone"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

type WebConfig struct {
	Port       int    `yaml:"port"`
	CronSecret string `yaml:"cron_secret"`
	PublicURL  string `yaml:"public_url"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
)

const defaultMaxWebSearches = 15

var defaultAllowedDomains = []string{
	"yahoo.com", "finance.yahoo.com", "investing.com", "cnbc.com",
	"cnn.com", "tradingview.com", "bloomberg.com", "techcrunch.com",
}

// Load reads the YAML file at path, applies environment overrides and
// defaults, and validates the result. A missing file is not an error: the
// environment alone may carry everything that is required.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	applyEnv(cfg, os.LookupEnv)
	setDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup("BRAVE_SEARCH_API_KEY"); ok && v != "" {
		cfg.Search.APIKey = v
	}
	if v, ok := lookup("ANTHROPIC_API_KEY"); ok && v != "" {
		cfg.Generator.APIKey = v
	}
	if v, ok := lookup("GENERATOR_API_KEY"); ok && v != "" {
		cfg.Generator.APIKey = v
	}
	if v, ok := lookup("GENERATOR_PROVIDER"); ok && v != "" {
		cfg.Generator.Provider = v
	}
	if v, ok := lookup("CRON_SECRET"); ok {
		cfg.Web.CronSecret = v
	}
	if v, ok := lookup("PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Web.Port = port
		}
	}
	if v, ok := lookup("DATABASE_PATH"); ok && v != "" {
		cfg.Storage.Path = v
	}
	if v, ok := lookup("TELEGRAM_BOT_TOKEN"); ok && v != "" {
		cfg.Telegram.BotToken = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Search.BaseURL == "" {
		cfg.Search.BaseURL = "https://api.search.brave.com/res/v1"
	}
	if cfg.Search.TimeoutSeconds == 0 {
		cfg.Search.TimeoutSeconds = 10
	}
	if cfg.Search.RequestsPerSecond == 0 {
		cfg.Search.RequestsPerSecond = 1
	}
	if cfg.Search.ResultCount == 0 {
		cfg.Search.ResultCount = 10
	}
	if cfg.Generator.Provider == "" {
		cfg.Generator.Provider = ProviderAnthropic
	}
	if cfg.Generator.Model == "" {
		switch cfg.Generator.Provider {
		case ProviderOpenAI:
			cfg.Generator.Model = "deepseek-chat"
		case ProviderGemini:
			cfg.Generator.Model = "gemini-2.0-flash"
		default:
			cfg.Generator.Model = "claude-sonnet-4-20250514"
		}
	}
	if cfg.Generator.Provider == ProviderOpenAI && cfg.Generator.BaseURL == "" {
		cfg.Generator.BaseURL = "https://api.deepseek.com/v1"
	}
	if cfg.Generator.MaxTokens == 0 {
		cfg.Generator.MaxTokens = 4000
	}
	if cfg.Generator.TimeoutSeconds == 0 {
		cfg.Generator.TimeoutSeconds = 300
	}
	if cfg.Generator.MaxWebSearches == nil {
		n := defaultMaxWebSearches
		cfg.Generator.MaxWebSearches = &n
	}
	if len(cfg.Generator.AllowedDomains) == 0 {
		cfg.Generator.AllowedDomains = append([]string(nil), defaultAllowedDomains...)
	}
	if cfg.Schedule.Timezone == "" {
		cfg.Schedule.Timezone = "America/New_York"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "data/newsletters.db"
	}
	if cfg.Web.Port == 0 {
		cfg.Web.Port = 5000
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func (c *Config) Validate() error {
	if c.Search.APIKey == "" {
		return fmt.Errorf("search.api_key (BRAVE_SEARCH_API_KEY) is required")
	}
	if c.Generator.APIKey == "" {
		return fmt.Errorf("generator.api_key (ANTHROPIC_API_KEY) is required")
	}
	switch c.Generator.Provider {
	case ProviderAnthropic, ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unknown generator.provider %q", c.Generator.Provider)
	}
	if c.WebSearchLimit() < 0 {
		return fmt.Errorf("generator.max_web_searches must not be negative")
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("invalid schedule.timezone %q: %w", c.Schedule.Timezone, err)
	}
	if c.Schedule.Cron != "" {
		if _, err := ParseSchedule(c.Schedule.Cron); err != nil {
			return err
		}
	}
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}
	return nil
}

// ParseSchedule parses a standard five-field cron expression or a
// descriptor such as "@daily".
func ParseSchedule(spec string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	sched, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule.cron %q: %w", spec, err)
	}
	return sched, nil
}

func (c *Config) SearchTimeout() time.Duration {
	return time.Duration(c.Search.TimeoutSeconds) * time.Second
}

func (c *Config) GeneratorTimeout() time.Duration {
	return time.Duration(c.Generator.TimeoutSeconds) * time.Second
}

func (c *Config) WebSearchLimit() int {
	if c.Generator.MaxWebSearches == nil {
		return defaultMaxWebSearches
	}
	return *c.Generator.MaxWebSearches
}

func (c *Config) ScheduleLocation() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SearchConfigured and GeneratorConfigured report whether the credentials
// are present, never their values.
func (c *Config) SearchConfigured() bool {
	return c.Search.APIKey != ""
}

func (c *Config) GeneratorConfigured() bool {
	return c.Generator.APIKey != ""
}
