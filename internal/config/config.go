package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the job board.
type Config struct {
	DataDir  string
	Seed     bool // insert the built-in jobs into an empty board
	Admin    AdminConfig
	Telegram TelegramConfig
	AI       AIConfig
	Server   ServerConfig
	Log      LogConfig
}

// AdminConfig identifies the single administrator.
type AdminConfig struct {
	UserID string
}

// TelegramConfig controls administrator chat notifications. An empty Token
// selects the log notifier.
type TelegramConfig struct {
	BaseURL        string
	Token          string // from file, env or keyring
	ChatID         string
	DisablePreview bool
	Timeout        time.Duration
}

// Enabled reports whether messages should go to Telegram.
func (t TelegramConfig) Enabled() bool {
	return t.Token != ""
}

// AIConfig controls the image and video generation client. An empty APIKey
// leaves generation disabled.
type AIConfig struct {
	BaseURL           string
	APIKey            string // from file, env or keyring
	ImageModel        string
	VideoModel        string
	PollInterval      time.Duration
	MaxPolls          int
	Timeout           time.Duration // per HTTP request
	RequestsPerSecond float64
	Burst             int
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Listen       string
	WriteLimit   float64 // write requests per second per client IP
	MaxBodyBytes int64
}

// LogConfig controls log output. An empty File logs to stderr only.
type LogConfig struct {
	File       string `yaml:"file" toml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" toml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" toml:"max_age_days"`
	Compress   bool   `yaml:"compress" toml:"compress"`
}

// Defaults.
const (
	DefaultAdminID         = "ADMIN_ID_6237727606"
	DefaultTelegramBaseURL = "https://api.telegram.org"
	DefaultAIBaseURL       = "https://generativelanguage.googleapis.com/v1beta"
	DefaultImageModel      = "gemini-2.5-flash-image"
	DefaultVideoModel      = "veo-3.1-fast-generate-preview"
	DefaultPollInterval    = 10 * time.Second
	DefaultMaxPolls        = 30
	DefaultListen          = "127.0.0.1:8080"
)

// SecretSource looks up credentials missing from the file. Any error is
// treated as "not stored".
type SecretSource interface {
	Get(name string) (string, error)
}

// Secret names looked up in a SecretSource.
const (
	SecretTelegramToken = "telegram-bot-token"
	SecretAIKey         = "ai-api-key"
)

// rawConfig is the on-disk shape (snake_case fields and durations as strings).
type rawConfig struct {
	DataDir  string      `yaml:"data_dir" toml:"data_dir"`
	Seed     *bool       `yaml:"seed" toml:"seed"`
	Admin    rawAdmin    `yaml:"admin" toml:"admin"`
	Telegram rawTelegram `yaml:"telegram" toml:"telegram"`
	AI       rawAI       `yaml:"ai" toml:"ai"`
	Server   rawServer   `yaml:"server" toml:"server"`
	Log      LogConfig   `yaml:"log" toml:"log"`
}

type rawAdmin struct {
	UserID string `yaml:"user_id" toml:"user_id"`
}

type rawTelegram struct {
	BaseURL        string `yaml:"base_url" toml:"base_url"`
	Token          string `yaml:"token" toml:"token"`
	ChatID         string `yaml:"chat_id" toml:"chat_id"`
	DisablePreview bool   `yaml:"disable_preview" toml:"disable_preview"`
	Timeout        string `yaml:"timeout" toml:"timeout"`
}

type rawAI struct {
	BaseURL           string  `yaml:"base_url" toml:"base_url"`
	APIKey            string  `yaml:"api_key" toml:"api_key"`
	ImageModel        string  `yaml:"image_model" toml:"image_model"`
	VideoModel        string  `yaml:"video_model" toml:"video_model"`
	PollInterval      string  `yaml:"poll_interval" toml:"poll_interval"`
	MaxPolls          int     `yaml:"max_polls" toml:"max_polls"`
	Timeout           string  `yaml:"timeout" toml:"timeout"`
	RequestsPerSecond float64 `yaml:"requests_per_second" toml:"requests_per_second"`
	Burst             int     `yaml:"burst" toml:"burst"`
}

type rawServer struct {
	Listen       string  `yaml:"listen" toml:"listen"`
	WriteLimit   float64 `yaml:"write_limit" toml:"write_limit"`
	MaxBodyBytes int64   `yaml:"max_body_bytes" toml:"max_body_bytes"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg, err := build(rawConfig{})
	if err != nil {
		panic(fmt.Sprintf("default config: %v", err))
	}
	return cfg
}

// Load reads the config file at path (YAML, or TOML for a .toml extension),
// expands ${ENV} references, fills credentials missing from the file from
// secrets when it is non-nil, validates the result and returns it.
func Load(path string, secrets SecretSource) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(expanded, &raw); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg, err := build(raw)
	if err != nil {
		return nil, err
	}
	cfg.ApplySecrets(secrets)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplySecrets fills an empty Telegram token or AI key from src.
func (c *Config) ApplySecrets(src SecretSource) {
	if src == nil {
		return
	}
	if c.Telegram.Token == "" {
		if v, err := src.Get(SecretTelegramToken); err == nil {
			c.Telegram.Token = v
		}
	}
	if c.AI.APIKey == "" {
		if v, err := src.Get(SecretAIKey); err == nil {
			c.AI.APIKey = v
		}
	}
}

func build(raw rawConfig) (*Config, error) {
	var err error

	tgTimeout := 10 * time.Second
	if raw.Telegram.Timeout != "" {
		tgTimeout, err = time.ParseDuration(raw.Telegram.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse telegram.timeout %q: %w", raw.Telegram.Timeout, err)
		}
	}

	pollInterval := DefaultPollInterval
	if raw.AI.PollInterval != "" {
		pollInterval, err = time.ParseDuration(raw.AI.PollInterval)
		if err != nil {
			return nil, fmt.Errorf("parse ai.poll_interval %q: %w", raw.AI.PollInterval, err)
		}
	}

	aiTimeout := 2 * time.Minute // video downloads are large
	if raw.AI.Timeout != "" {
		aiTimeout, err = time.ParseDuration(raw.AI.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse ai.timeout %q: %w", raw.AI.Timeout, err)
		}
	}

	seed := true
	if raw.Seed != nil {
		seed = *raw.Seed
	}

	cfg := &Config{
		DataDir: orDefault(raw.DataDir, "data"),
		Seed:    seed,
		Admin: AdminConfig{
			UserID: orDefault(raw.Admin.UserID, DefaultAdminID),
		},
		Telegram: TelegramConfig{
			BaseURL:        orDefault(raw.Telegram.BaseURL, DefaultTelegramBaseURL),
			Token:          raw.Telegram.Token,
			ChatID:         raw.Telegram.ChatID,
			DisablePreview: raw.Telegram.DisablePreview,
			Timeout:        tgTimeout,
		},
		AI: AIConfig{
			BaseURL:           orDefault(raw.AI.BaseURL, DefaultAIBaseURL),
			APIKey:            raw.AI.APIKey,
			ImageModel:        orDefault(raw.AI.ImageModel, DefaultImageModel),
			VideoModel:        orDefault(raw.AI.VideoModel, DefaultVideoModel),
			PollInterval:      pollInterval,
			MaxPolls:          raw.AI.MaxPolls,
			Timeout:           aiTimeout,
			RequestsPerSecond: raw.AI.RequestsPerSecond,
			Burst:             raw.AI.Burst,
		},
		Server: ServerConfig{
			Listen:       orDefault(raw.Server.Listen, DefaultListen),
			WriteLimit:   raw.Server.WriteLimit,
			MaxBodyBytes: raw.Server.MaxBodyBytes,
		},
		Log: raw.Log,
	}
	if cfg.AI.MaxPolls == 0 {
		cfg.AI.MaxPolls = DefaultMaxPolls
	}
	if cfg.AI.RequestsPerSecond == 0 {
		cfg.AI.RequestsPerSecond = 1
	}
	if cfg.AI.Burst == 0 {
		cfg.AI.Burst = 2
	}
	if cfg.Server.WriteLimit == 0 {
		cfg.Server.WriteLimit = 5
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 16 << 20 // base64 posters
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = 10
	}
	return cfg, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func validate(cfg *Config) error {
	if cfg.AI.PollInterval <= 0 {
		return fmt.Errorf("ai.poll_interval must be positive, got %v", cfg.AI.PollInterval)
	}
	if cfg.AI.MaxPolls < 1 {
		return fmt.Errorf("ai.max_polls must be at least 1, got %d", cfg.AI.MaxPolls)
	}
	if cfg.AI.Timeout <= 0 {
		return fmt.Errorf("ai.timeout must be positive, got %v", cfg.AI.Timeout)
	}
	if cfg.AI.RequestsPerSecond < 0 {
		return fmt.Errorf("ai.requests_per_second must not be negative, got %v", cfg.AI.RequestsPerSecond)
	}
	if cfg.Telegram.Enabled() && cfg.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when a bot token is configured")
	}
	if cfg.Server.WriteLimit < 0 {
		return fmt.Errorf("server.write_limit must not be negative, got %v", cfg.Server.WriteLimit)
	}
	if cfg.Admin.UserID == "" {
		return fmt.Errorf("admin.user_id must not be empty")
	}
	return nil
}
