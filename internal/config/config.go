// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string `yaml:"token"`
	Username string `yaml:"username"`
	Workers  int    `yaml:"workers"` // polling workers
	// BulkWorkers run downloads and bulk admin operations off the polling pool.
	BulkWorkers    int      `yaml:"bulk_workers"`
	AdminIDs       []int64  `yaml:"admin_ids"`
	AdminUsernames []string `yaml:"admin_usernames"`
	// RequiredChannel must be joined before the bot answers. Empty disables the check.
	RequiredChannel string `yaml:"required_channel"`
	ChannelLink     string `yaml:"channel_link"`
	// RequestChat receives /request submissions.
	RequestChat  string        `yaml:"request_chat"`
	ContactLinks []ContactLink `yaml:"contact_links"`
	Language     string        `yaml:"language"`
}

type ContactLink struct {
	Text string `yaml:"text"`
	URL  string `yaml:"url"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

// DatabaseConfig selects PostgreSQL when URL is set, SQLite at Path otherwise.
type DatabaseConfig struct {
	URL        string `yaml:"url"`
	Path       string `yaml:"path"`
	MaxConns   int32  `yaml:"max_conns"`
	RequireSSL bool   `yaml:"require_ssl"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type DriveConfig struct {
	FolderID        string `yaml:"folder_id"`
	CredentialsJSON string `yaml:"credentials_json"`
	CredentialsFile string `yaml:"credentials_file"`
	// TokenBase64 seeds the stored token when none is persisted yet.
	TokenBase64 string `yaml:"token_base64"`
	DownloadDir string `yaml:"download_dir"`
}

type LimitsConfig struct {
	BroadcastPace time.Duration `yaml:"broadcast_pace"`
	RemovalPace   time.Duration `yaml:"removal_pace"`
	// CommandsPerMinute is enforced per user when Redis is configured.
	CommandsPerMinute int           `yaml:"commands_per_minute"`
	SessionTTL        time.Duration `yaml:"session_ttl"`
}

type SchedulerConfig struct {
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	DownloadMaxAge  time.Duration `yaml:"download_max_age"`
}

type SecurityConfig struct {
	EncryptionKey string `yaml:"encryption_key"`
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Log       LogConfig       `yaml:"log"`
	Admin     AdminConfig     `yaml:"admin"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Drive     DriveConfig     `yaml:"drive"`
	Limits    LimitsConfig    `yaml:"limits"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Security  SecurityConfig  `yaml:"security"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the optional YAML file at path, applies environment
// overrides and defaults, then validates. A missing file is not an error.
func LoadConfig(path string, dev bool) (*Config, error) {
	cfg, err := Load(path, dev)
	if err != nil {
		return nil, err
	}

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required (BOT_TOKEN)")
	}
	return cfg, nil
}

// Load is LoadConfig without validation, for tools that never talk to Telegram.
func Load(path string, dev bool) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	if err := applyEnv(&cfg, os.Getenv); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.BulkWorkers <= 0 {
		cfg.Bot.BulkWorkers = 2
	}
	if cfg.Bot.Language == "" {
		cfg.Bot.Language = "en"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 8080
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "bot_data.db"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 4
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.Drive.DownloadDir == "" {
		cfg.Drive.DownloadDir = "downloads"
	}
	if cfg.Limits.BroadcastPace <= 0 {
		cfg.Limits.BroadcastPace = 50 * time.Millisecond
	}
	if cfg.Limits.RemovalPace <= 0 {
		cfg.Limits.RemovalPace = 100 * time.Millisecond
	}
	if cfg.Limits.CommandsPerMinute <= 0 {
		cfg.Limits.CommandsPerMinute = 20
	}
	if cfg.Limits.SessionTTL <= 0 {
		cfg.Limits.SessionTTL = 15 * time.Minute
	}
	if cfg.Scheduler.CleanupInterval <= 0 {
		cfg.Scheduler.CleanupInterval = 30 * time.Minute
	}
	if cfg.Scheduler.DownloadMaxAge <= 0 {
		cfg.Scheduler.DownloadMaxAge = 2 * time.Hour
	}
}

// applyEnv overrides file values with non-empty environment variables.
func applyEnv(cfg *Config, getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	str("BOT_TOKEN", &cfg.Bot.Token)
	str("BOT_USERNAME", &cfg.Bot.Username)
	str("CHANNEL_USERNAME", &cfg.Bot.RequiredChannel)
	str("CHANNEL_LINK", &cfg.Bot.ChannelLink)
	str("REQUEST_GROUP", &cfg.Bot.RequestChat)
	str("DATABASE_URL", &cfg.Database.URL)
	str("DB_PATH", &cfg.Database.Path)
	str("FOLDER_ID", &cfg.Drive.FolderID)
	str("GDRIVE_CREDENTIALS", &cfg.Drive.CredentialsJSON)
	str("GDRIVE_CREDENTIALS_FILE", &cfg.Drive.CredentialsFile)
	str("GDRIVE_TOKEN_BASE64", &cfg.Drive.TokenBase64)
	str("ENCRYPTION_KEY", &cfg.Security.EncryptionKey)
	str("REDIS_URL", &cfg.Redis.URL)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("API_KEY", &cfg.Admin.APIKey)

	if v := strings.TrimSpace(getenv("ADMIN_IDS")); v != "" {
		ids, err := parseIDList(v)
		if err != nil {
			return fmt.Errorf("ADMIN_IDS: %w", err)
		}
		cfg.Bot.AdminIDs = ids
	}
	if v := strings.TrimSpace(getenv("ADMIN_USERNAMES")); v != "" {
		cfg.Bot.AdminUsernames = splitList(v)
	}
	if v := strings.TrimSpace(getenv("HTTP_PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HTTP_PORT: %w", err)
		}
		cfg.Admin.Port = port
	}
	return nil
}

func parseIDList(s string) ([]int64, error) {
	var out []int64
	for _, part := range splitList(s) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		out = append(out, id)
	}
	return out, nil
}

func splitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	out := fields[:0]
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
