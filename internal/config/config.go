// Load YAML config, overlay .env / environment, fill defaults, validate.

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

type Config struct {
	// Target board
	BaseURL  string `yaml:"base_url"`
	MenuPath string `yaml:"menu_path"`

	// Browser
	Headless    bool   `yaml:"headless"`
	UserAgent   string `yaml:"user_agent"`
	Proxy       string `yaml:"proxy"`
	CookiesPath string `yaml:"cookies_path"`

	// Timing and retry
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	RetryAttempts     int     `yaml:"retry_attempts"`
	DelayMinMs        int     `yaml:"delay_min_ms"`
	DelayMaxMs        int     `yaml:"delay_max_ms"`
	PopupIntervalMs   int     `yaml:"popup_interval_ms"`
	MaxScrollAttempts int     `yaml:"max_scroll_attempts"`
	ScrollStepPx      int     `yaml:"scroll_step_px"`
	NavPerMinute      float64 `yaml:"nav_per_minute"`

	// Outputs. Empty values disable the corresponding sink.
	OutputDir      string `yaml:"output_dir"`
	SQLitePath     string `yaml:"sqlite_path"`
	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`

	// Cross-run dedup cache. Empty disables it.
	CachePath string `yaml:"cache_path"`

	ScreenshotDir string `yaml:"screenshot_dir"`
}

// Load reads the YAML file at path, overlays environment variables
// (loading a .env first if present), applies defaults and validates.
// A missing config file is fine: defaults cover everything.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{Headless: true}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// run on defaults
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.TelegramToken = token
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}
	if proxy := os.Getenv("CRAWLER_PROXY"); proxy != "" {
		cfg.Proxy = proxy
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://www.zhipin.com/web/geek/job?query="
	}
	if c.MenuPath == "" {
		c.MenuPath = "data/select_menu.json"
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 3
	}
	if c.DelayMinMs <= 0 {
		c.DelayMinMs = 1000
	}
	if c.DelayMaxMs <= 0 {
		c.DelayMaxMs = 3000
	}
	if c.PopupIntervalMs <= 0 {
		c.PopupIntervalMs = 750
	}
	if c.MaxScrollAttempts <= 0 {
		c.MaxScrollAttempts = 20
	}
	if c.ScrollStepPx <= 0 {
		c.ScrollStepPx = 250
	}
	if c.NavPerMinute <= 0 {
		c.NavPerMinute = 10
	}
}

func (c *Config) validate() error {
	if c.DelayMinMs > c.DelayMaxMs {
		return fmt.Errorf("delay_min_ms (%d) must not exceed delay_max_ms (%d)", c.DelayMinMs, c.DelayMaxMs)
	}
	if c.TelegramToken != "" && c.TelegramChatID == 0 {
		return fmt.Errorf("telegram_chat_id is required when telegram_token is set")
	}
	return nil
}

func (c *Config) Timeout() time.Duration       { return time.Duration(c.TimeoutSeconds) * time.Second }
func (c *Config) DelayMin() time.Duration      { return time.Duration(c.DelayMinMs) * time.Millisecond }
func (c *Config) DelayMax() time.Duration      { return time.Duration(c.DelayMaxMs) * time.Millisecond }
func (c *Config) PopupInterval() time.Duration { return time.Duration(c.PopupIntervalMs) * time.Millisecond }
