package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Token        TokenConfig        `yaml:"token"`
	Security     SecurityConfig     `yaml:"security"`
	Paths        PathsConfig        `yaml:"paths"`
	Notification NotificationConfig `yaml:"notification"`
	CSV          CSVConfig          `yaml:"csv"`
	Log          LogConfig          `yaml:"log"`
	DefaultUser  DefaultUserConfig  `yaml:"default_user"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"`
}

type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Charset  string `yaml:"charset"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// TokenConfig controls bearer token issuance. TTLSeconds applies to tokens
// issued after it is set; existing tokens keep their expiry.
type TokenConfig struct {
	Secret     string `yaml:"secret"`
	TTLSeconds int    `yaml:"ttl_seconds"`
	Issuer     string `yaml:"issuer"`
}

func (t TokenConfig) TTL() time.Duration {
	return time.Duration(t.TTLSeconds) * time.Second
}

type SecurityConfig struct {
	BcryptCost int             `yaml:"bcrypt_cost"`
	RateLimit  RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	Burst             int  `yaml:"burst"`
}

type PathsConfig struct {
	Static string `yaml:"static"`
}

type NotificationConfig struct {
	Enabled bool `yaml:"enabled"`
	// PropagateErrors makes a failed notification fail the request that
	// produced the change record. The record itself stays persisted.
	PropagateErrors bool       `yaml:"propagate_errors"`
	SubjectPrefix   string     `yaml:"subject_prefix"`
	From            string     `yaml:"from"`
	To              []string   `yaml:"to"`
	SMTP            SMTPConfig `yaml:"smtp"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	TLS      bool   `yaml:"tls"`
}

type CSVConfig struct {
	YesLabel string `yaml:"yes_label"`
	NoLabel  string `yaml:"no_label"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
	File        string `yaml:"file"`
	MaxSizeMB   int    `yaml:"max_size_mb"`
	MaxBackups  int    `yaml:"max_backups"`
	MaxAgeDays  int    `yaml:"max_age_days"`
	Compress    bool   `yaml:"compress"`
}

type DefaultUserConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Email    string `yaml:"email"`
}

// Load reads the configuration file, the optional .env file and environment variables
func Load(configPath string) (*Config, error) {
	// A missing .env is fine, real deployments set the environment directly
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Ensure data directory exists for SQLite
	if cfg.Database.Type == "sqlite" {
		dataDir := filepath.Dir(cfg.Database.SQLite.Path)
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

// Default returns a configuration with every optional value filled in.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8001, Mode: "release"},
		Database: DatabaseConfig{
			Type:   "sqlite",
			SQLite: SQLiteConfig{Path: "data/inventory.db"},
			MySQL:  MySQLConfig{Port: 3306, Charset: "utf8mb4"},
		},
		Token: TokenConfig{TTLSeconds: 86400, Issuer: "pc-inventory"},
		Security: SecurityConfig{
			BcryptCost: 12,
			RateLimit:  RateLimitConfig{Enabled: true, RequestsPerMinute: 30, Burst: 10},
		},
		Paths: PathsConfig{Static: "static"},
		Notification: NotificationConfig{
			PropagateErrors: true,
			SubjectPrefix:   "Computer inventory",
			SMTP:            SMTPConfig{Port: 587, TLS: true},
		},
		CSV: CSVConfig{YesLabel: "Да", NoLabel: "Нет"},
		Log: LogConfig{Level: "info", MaxSizeMB: 100, MaxBackups: 7, MaxAgeDays: 30},
	}
}

func applyEnv(cfg *Config) {
	if secret := os.Getenv("INVENTORY_TOKEN_SECRET"); secret != "" {
		cfg.Token.Secret = secret
	}

	if ttl := os.Getenv("INVENTORY_TOKEN_TTL_SECONDS"); ttl != "" {
		if seconds, err := strconv.Atoi(ttl); err == nil {
			cfg.Token.TTLSeconds = seconds
		}
	}

	if dbType := os.Getenv("INVENTORY_DB_TYPE"); dbType != "" {
		cfg.Database.Type = dbType
	}

	if dbPath := os.Getenv("INVENTORY_DB_PATH"); dbPath != "" {
		cfg.Database.SQLite.Path = dbPath
	}

	if mysqlHost := os.Getenv("INVENTORY_MYSQL_HOST"); mysqlHost != "" {
		cfg.Database.MySQL.Host = mysqlHost
	}

	if mysqlUser := os.Getenv("INVENTORY_MYSQL_USER"); mysqlUser != "" {
		cfg.Database.MySQL.Username = mysqlUser
	}

	if mysqlPass := os.Getenv("INVENTORY_MYSQL_PASSWORD"); mysqlPass != "" {
		cfg.Database.MySQL.Password = mysqlPass
	}

	if mysqlDB := os.Getenv("INVENTORY_MYSQL_DATABASE"); mysqlDB != "" {
		cfg.Database.MySQL.Database = mysqlDB
	}

	if dsn := os.Getenv("INVENTORY_POSTGRES_DSN"); dsn != "" {
		cfg.Database.Postgres.DSN = dsn
	}

	if smtpPass := os.Getenv("INVENTORY_SMTP_PASSWORD"); smtpPass != "" {
		cfg.Notification.SMTP.Password = smtpPass
	}

	if from := os.Getenv("INVENTORY_NOTIFY_FROM"); from != "" {
		cfg.Notification.From = from
	}

	if to := os.Getenv("INVENTORY_NOTIFY_TO"); to != "" {
		cfg.Notification.To = []string{to}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Token.TTLSeconds <= 0 {
		cfg.Token.TTLSeconds = 86400
	}
	if cfg.Security.BcryptCost == 0 {
		cfg.Security.BcryptCost = 12
	}
	if cfg.CSV.YesLabel == "" {
		cfg.CSV.YesLabel = "Да"
	}
	if cfg.CSV.NoLabel == "" {
		cfg.CSV.NoLabel = "Нет"
	}
	if cfg.Notification.SubjectPrefix == "" {
		cfg.Notification.SubjectPrefix = "Computer inventory"
	}
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Token.Secret == "" {
		return fmt.Errorf("token secret is required")
	}

	switch c.Database.Type {
	case "sqlite":
		if c.Database.SQLite.Path == "" {
			return fmt.Errorf("SQLite path is required")
		}
	case "mysql":
		if c.Database.MySQL.Username == "" {
			return fmt.Errorf("MySQL username is required")
		}
		if c.Database.MySQL.Database == "" {
			return fmt.Errorf("MySQL database name is required")
		}
	case "postgres":
		if c.Database.Postgres.DSN == "" {
			return fmt.Errorf("Postgres DSN is required")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	if c.Notification.Enabled {
		if c.Notification.From == "" || len(c.Notification.To) == 0 {
			return fmt.Errorf("notification sender and recipient are required when notifications are enabled")
		}
		if c.Notification.SMTP.Host == "" {
			return fmt.Errorf("SMTP host is required when notifications are enabled")
		}
	}

	return nil
}
