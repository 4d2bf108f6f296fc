package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
	Health   HealthConfig   `yaml:"health"`
}

type TelegramConfig struct {
	Token          string  `yaml:"token"`
	UpdateTimeout  int     `yaml:"update_timeout"`   // long polling timeout in seconds
	AllowedUserIDs []int64 `yaml:"allowed_user_ids"` // empty means everyone
	Debug          bool    `yaml:"debug"`

	// Minimum gap between messages to one chat; 0 disables throttling.
	SendInterval time.Duration `yaml:"send_interval"`
}

type StorageConfig struct {
	Driver     string         `yaml:"driver"`
	SQLitePath string         `yaml:"sqlite_path"`
	FilePath   string         `yaml:"file_path"` // JSON store, same layout as the old db.json
	Postgres   PostgresConfig `yaml:"postgres"`
	Redis      RedisConfig    `yaml:"redis"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // optional JSON log file
}

type HealthConfig struct {
	Port              int           `yaml:"port"` // 0 disables the server
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Telegram: TelegramConfig{
			UpdateTimeout: 60,
			SendInterval:  time.Second,
		},
		Storage: StorageConfig{
			Driver:     DriverSQLite,
			SQLitePath: "betlink.db",
			FilePath:   "db.json",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Health: HealthConfig{
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Load reads configPath on top of the defaults, then applies .env and
// environment overrides. A missing config file is not an error.
func Load(configPath string) (*Config, error) {
	config := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := config.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("BOT_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := getenv("BETLINK_ALLOWED_USERS"); v != "" {
		ids, err := ParseUserIDs(v)
		if err != nil {
			return fmt.Errorf("BETLINK_ALLOWED_USERS: %w", err)
		}
		c.Telegram.AllowedUserIDs = ids
	}
	if v := getenv("BETLINK_STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v := getenv("BETLINK_SQLITE_PATH"); v != "" {
		c.Storage.SQLitePath = v
	}
	if v := getenv("BETLINK_FILE_PATH"); v != "" {
		c.Storage.FilePath = v
	}
	if v := getenv("POSTGRES_DSN"); v != "" {
		c.Storage.Postgres.DSN = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Storage.Redis.Addr = v
	}
	if v := getenv("REDIS_PASSWORD"); v != "" {
		c.Storage.Redis.Password = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := getenv("HEALTH_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HEALTH_PORT: %w", err)
		}
		c.Health.Port = port
	}
	return nil
}

// Validate checks the settings needed to run the bot.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return errors.New("telegram bot token is required (telegram.token, BOT_TOKEN or TELEGRAM_BOT_TOKEN)")
	}
	if c.Telegram.UpdateTimeout <= 0 {
		return fmt.Errorf("telegram.update_timeout must be positive, got %d", c.Telegram.UpdateTimeout)
	}
	if c.Telegram.SendInterval < 0 {
		return fmt.Errorf("telegram.send_interval must not be negative, got %s", c.Telegram.SendInterval)
	}
	if c.Health.Port < 0 {
		return fmt.Errorf("health.port must not be negative, got %d", c.Health.Port)
	}
	if c.Health.Port > 0 && c.Health.ReadHeaderTimeout <= 0 {
		return errors.New("health.read_header_timeout must be specified when health.port is set")
	}
	return c.Storage.Validate()
}

func (s *StorageConfig) Validate() error {
	switch s.Driver {
	case DriverMemory:
	case DriverFile:
		if s.FilePath == "" {
			return errors.New("storage.file_path is required for the file driver")
		}
	case DriverSQLite:
		if s.SQLitePath == "" {
			return errors.New("storage.sqlite_path is required for the sqlite driver")
		}
	case DriverPostgres:
		if s.Postgres.DSN == "" {
			return errors.New("storage.postgres.dsn is required for the postgres driver")
		}
	case DriverRedis:
		if s.Redis.Addr == "" {
			return errors.New("storage.redis.addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", s.Driver)
	}
	return nil
}

// ParseUserIDs parses a comma-separated list of Telegram user IDs.
func ParseUserIDs(list string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
