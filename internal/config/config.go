package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Database struct {
	URL            string `yaml:"url"`
	Driver         string `yaml:"driver"` // postgres (lib/pq) or pgx
	MaxOpenConns   int    `yaml:"max_open_conns"`
	MaxIdleConns   int    `yaml:"max_idle_conns"`
	MigrateOnStart bool   `yaml:"migrate_on_start"`
}

type Logger struct {
	Level    string `yaml:"level"`
	Sink     string `yaml:"sink"`
	Encoding string `yaml:"encoding"` // console or json
}

type Server struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
	// LeadRateLimit caps lead submissions per client per minute; 0 disables it.
	LeadRateLimit int `yaml:"lead_rate_limit"`
	// TrustProxy takes the client address from X-Forwarded-For and X-Real-IP.
	// Enable it only behind a proxy that overwrites those headers.
	TrustProxy bool `yaml:"trust_proxy"`
}

type RabbitMQ struct {
	URL string `yaml:"url"`
}

type Mail struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type Storage struct {
	BlobDir string `yaml:"blob_dir"`
	// SweepInterval is how often orphaned documents are removed; 0 disables
	// the sweeper.
	SweepInterval time.Duration `yaml:"sweep_interval"`
	SweepGrace    time.Duration `yaml:"sweep_grace"`
}

type AppConfig struct {
	Server   Server   `yaml:"server"`
	Logger   Logger   `yaml:"log"`
	Database Database `yaml:"database"`
	RabbitMQ RabbitMQ `yaml:"rabbitmq"`
	Mail     Mail     `yaml:"mail"`
	Storage  Storage  `yaml:"storage"`
}

func defaults() AppConfig {
	return AppConfig{
		Server:   Server{Addr: ":8080", CORSOrigins: []string{"*"}, LeadRateLimit: 10},
		Logger:   Logger{Level: "info", Sink: "stdout", Encoding: "console"},
		Database: Database{Driver: "postgres", MaxOpenConns: 10, MaxIdleConns: 5, MigrateOnStart: true},
		Mail:     Mail{Port: 587, From: "nao-responda@ligue-crm.com"},
		Storage:  Storage{BlobDir: "media/contracts", SweepInterval: time.Hour, SweepGrace: 30 * time.Minute},
	}
}

// Load reads the optional YAML file at path (skipped when path is empty)
// and then applies environment overrides, including a .env file if present.
func Load(path string) (*AppConfig, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	_ = godotenv.Load()
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("database url is required (DATABASE_URL)")
	}
	return &cfg, nil
}

func applyEnv(cfg *AppConfig) error {
	setString(&cfg.Server.Addr, "HTTP_ADDR")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = strings.Split(v, ",")
	}
	setString(&cfg.Logger.Level, "LOG_LEVEL")
	setString(&cfg.Logger.Sink, "LOG_SINK")
	setString(&cfg.Logger.Encoding, "LOG_ENCODING")
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.RabbitMQ.URL, "RABBITMQ_URL")
	setString(&cfg.Mail.Host, "MAIL_HOST")
	setString(&cfg.Mail.User, "MAIL_USER")
	setString(&cfg.Mail.Password, "MAIL_PASS")
	setString(&cfg.Mail.From, "MAIL_FROM")
	setString(&cfg.Storage.BlobDir, "BLOB_DIR")

	return errors.Join(
		setInt(&cfg.Server.LeadRateLimit, "LEAD_RATE_LIMIT"),
		setBool(&cfg.Server.TrustProxy, "TRUST_PROXY"),
		setInt(&cfg.Database.MaxOpenConns, "DB_MAX_OPEN_CONNS"),
		setInt(&cfg.Database.MaxIdleConns, "DB_MAX_IDLE_CONNS"),
		setBool(&cfg.Database.MigrateOnStart, "DB_MIGRATE_ON_START"),
		setInt(&cfg.Mail.Port, "MAIL_PORT"),
		setDuration(&cfg.Storage.SweepInterval, "SWEEP_INTERVAL"),
		setDuration(&cfg.Storage.SweepGrace, "SWEEP_GRACE"),
	)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}
