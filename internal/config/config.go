package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/vpnstack/backup/internal/domain"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Backup   BackupConfig   `mapstructure:"backup"`
	Remote   RemoteConfig   `mapstructure:"remote"`
	S3       S3Config       `mapstructure:"s3"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

type DatabaseConfig struct {
	Name      string `mapstructure:"name"`
	User      string `mapstructure:"user"`
	Container string `mapstructure:"container"`
}

type BackupConfig struct {
	// Enabled is resolved by parseEnabled after decoding: values like
	// "no" or "off" are valid here but not for a strict bool parse.
	Enabled       bool   `mapstructure:"-"`
	LocalDir      string `mapstructure:"local_dir"`
	RetentionDays int    `mapstructure:"retention_days"`
	Schedule      string `mapstructure:"schedule"`
}

type RemoteConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	User    string `mapstructure:"user"`
	Dir     string `mapstructure:"dir"`
	KeyFile string `mapstructure:"key_file"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// envBindings maps viper keys to the environment variables the deployment
// already passes to the backup container.
var envBindings = map[string]string{
	"app.log_level":         "LOG_LEVEL",
	"app.log_file":          "LOG_FILE",
	"database.name":         "DB_NAME",
	"database.user":         "DB_USER",
	"database.container":    "DB_CONTAINER_NAME",
	"backup.enabled":        "BACKUP_ENABLED",
	"backup.local_dir":      "BACKUP_LOCAL_DIR",
	"backup.retention_days": "BACKUP_RETENTION_DAYS",
	"backup.schedule":       "BACKUP_SCHEDULE",
	"remote.host":           "BACKUP_REMOTE_HOST",
	"remote.port":           "BACKUP_REMOTE_PORT",
	"remote.user":           "BACKUP_REMOTE_USER",
	"remote.dir":            "BACKUP_REMOTE_DIR",
	"remote.key_file":       "BACKUP_SSH_KEY",
	"s3.bucket":             "BACKUP_S3_BUCKET",
	"s3.region":             "BACKUP_S3_REGION",
	"s3.access_key":         "BACKUP_S3_ACCESS_KEY",
	"s3.secret_key":         "BACKUP_S3_SECRET_KEY",
	"s3.prefix":             "BACKUP_S3_PREFIX",
	"telegram.bot_token":    "TELEGRAM_BOT_TOKEN",
	"telegram.chat_id":      "TELEGRAM_CHAT_ID",
}

// Load builds the configuration from the process environment, optionally
// seeded from an env-format file. An explicitly given file that cannot be
// read is a configuration error; path == "" skips the file entirely.
//
// When BACKUP_ENABLED resolves to false the job is a deliberate no-op, so
// Load returns the config without validating required fields.
func Load(path string) (*Config, error) {
	v := viper.New()

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	v.SetDefault("app.log_level", "info")
	v.SetDefault("database.container", "vpn_db")
	v.SetDefault("backup.enabled", true)
	v.SetDefault("backup.local_dir", "backups")
	v.SetDefault("backup.retention_days", 7)
	v.SetDefault("remote.port", 22)

	if path != "" {
		// The file carries the same KEY=value names as the environment.
		// Its values sit below real environment variables in precedence.
		fv := viper.New()
		fv.SetConfigFile(path)
		fv.SetConfigType("env")
		if err := fv.ReadInConfig(); err != nil {
			return nil, &domain.ConfigError{Reason: fmt.Sprintf("read config file %s: %v", path, err)}
		}
		for key, env := range envBindings {
			if val := fv.Get(env); val != nil {
				v.SetDefault(key, val)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &domain.ConfigError{Reason: fmt.Sprintf("parse configuration: %v", err)}
	}
	cfg.Backup.Enabled = parseEnabled(v.Get("backup.enabled"))

	if !cfg.Backup.Enabled {
		return &cfg, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// parseEnabled treats any case variant of false/0/no/off as disabled.
// Anything else, including garbage, keeps the default of enabled.
func parseEnabled(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "false", "0", "no", "off":
			return false
		}
	}
	return true
}

func (c *Config) Validate() error {
	var missing []string
	if c.Database.Name == "" {
		missing = append(missing, "DB_NAME")
	}
	if c.Database.User == "" {
		missing = append(missing, "DB_USER")
	}
	if len(missing) > 0 {
		return &domain.ConfigError{Reason: "missing required settings: " + strings.Join(missing, ", ")}
	}

	if c.Backup.RetentionDays < 1 {
		return &domain.ConfigError{Reason: fmt.Sprintf("BACKUP_RETENTION_DAYS must be a positive integer, got %d", c.Backup.RetentionDays)}
	}

	return nil
}

// RemoteConfigured reports whether all four replication settings are
// present. Partial remote configuration disables replication entirely.
func (c *Config) RemoteConfigured() bool {
	r := c.Remote
	return r.Host != "" && r.User != "" && r.Dir != "" && r.KeyFile != ""
}

// RemoteKeyExists reports whether the configured SSH key is present. A
// missing key downgrades the run to local-only instead of failing it.
func (c *Config) RemoteKeyExists() bool {
	_, err := os.Stat(c.Remote.KeyFile)
	return err == nil
}

func (c *Config) S3Configured() bool {
	s := c.S3
	return s.Bucket != "" && s.Region != "" && s.AccessKey != "" && s.SecretKey != ""
}

func (c *Config) TelegramConfigured() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
