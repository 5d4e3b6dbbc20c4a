package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Scheduler SchedulerConfig
	SMS       SMSConfig
	Notify    NotifyConfig
}

type ServerConfig struct {
	Address string
}

type DatabaseConfig struct {
	Driver string
	URL    string
}

type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

type SchedulerConfig struct {
	Interval  time.Duration
	AutoStart bool
}

const (
	SourceSimulated = "simulated"
	SourceInbox     = "inbox"
)

type SMSConfig struct {
	Source string
	Window time.Duration
}

type NotifyConfig struct {
	// WebhookURL is optional; notifications are only logged without it.
	WebhookURL string
}

func LoadAll() (*Config, error) {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	dbURL, err := requireEnv("DATABASE_URL")
	collect(err)
	interval, err := getEnvInt("VERIFY_INTERVAL_SECONDS", 30)
	collect(err)
	autoStart, err := getEnvBool("AUTO_START", true)
	collect(err)
	window, err := getEnvInt("SMS_WINDOW_SECONDS", 600)
	collect(err)
	redisCfg, err := loadRedisConfig()
	collect(err)

	cfg := &Config{
		Server: ServerConfig{
			Address: getEnv("SERVER_ADDRESS", ":8080"),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			URL:    dbURL,
		},
		Scheduler: SchedulerConfig{
			Interval:  time.Duration(interval) * time.Second,
			AutoStart: autoStart,
		},
		SMS: SMSConfig{
			Source: strings.ToLower(getEnv("SMS_SOURCE", SourceInbox)),
			Window: time.Duration(window) * time.Second,
		},
		Notify: NotifyConfig{
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		},
		Redis: redisCfg,
	}

	if err := joinErrors(errs); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadRedisConfig() (RedisConfig, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return RedisConfig{Enabled: false}, nil
	}

	db, dbErr := getEnvInt("REDIS_DB", 0)
	ttl, ttlErr := getEnvInt("REDIS_TTL_SECONDS", 30*24*60*60)
	if err := joinErrors([]error{dbErr, ttlErr}); err != nil {
		return RedisConfig{}, err
	}

	return RedisConfig{
		Enabled:  true,
		Address:  addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
		TTL:      time.Duration(ttl) * time.Second,
	}, nil
}

func validate(cfg *Config) error {
	var errs []error
	if cfg.Scheduler.Interval <= 0 {
		errs = append(errs, errors.New("VERIFY_INTERVAL_SECONDS must be > 0"))
	}
	if cfg.SMS.Window <= 0 {
		errs = append(errs, errors.New("SMS_WINDOW_SECONDS must be > 0"))
	}
	if cfg.Redis.Enabled && cfg.Redis.TTL <= 0 {
		errs = append(errs, errors.New("REDIS_TTL_SECONDS must be > 0"))
	}
	switch cfg.Database.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", cfg.Database.Driver))
	}
	switch cfg.SMS.Source {
	case SourceSimulated, SourceInbox:
	default:
		errs = append(errs, fmt.Errorf("SMS_SOURCE must be %s or %s, got %q", SourceSimulated, SourceInbox, cfg.SMS.Source))
	}
	return joinErrors(errs)
}

func requireEnv(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("missing required env var: %s", key)
	}
	return val, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("invalid int for env %s: %s", key, v)
	}
	return i, nil
}

func getEnvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("invalid bool for env %s: %s", key, v)
	}
	return b, nil
}

// joinErrors ignores nil entries and returns nil when nothing is left.
func joinErrors(errs []error) error {
	return errors.Join(errs...)
}
