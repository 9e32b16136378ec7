package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment   string        `mapstructure:"ENV"`
	LogLevel      string        `mapstructure:"LOG_LEVEL"`
	HTTPAddr      string        `mapstructure:"HTTP_ADDR"`
	DBDSN         string        `mapstructure:"DB_DSN"`
	MigrationsDir string        `mapstructure:"MIGRATIONS_DIR"`
	FlushInterval time.Duration `mapstructure:"FLUSH_INTERVAL"`
	TelegramToken string        `mapstructure:"TELEGRAM_TOKEN"`

	// Лимит запросов HTTP API на пользователя; 0 отключает
	RateLimitPerMinute int `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	RateLimitBurst     int `mapstructure:"RATE_LIMIT_BURST"`

	// EnvFileLoaded загружен ли .env (логируется после создания логгера)
	EnvFileLoaded bool `mapstructure:"-"`
}

// Load читает конфигурацию из .env (если есть) и переменных окружения
func Load() (*Config, error) {
	// Отсутствие .env не ошибка: в контейнере всё приходит через окружение
	loaded := godotenv.Load(".env") == nil

	cfg := &Config{
		Environment:   getEnv("ENV", "development"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		DBDSN:         os.Getenv("DB_DSN"),
		MigrationsDir: os.Getenv("MIGRATIONS_DIR"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		EnvFileLoaded: loaded,
	}

	interval, err := time.ParseDuration(getEnv("FLUSH_INTERVAL", "2s"))
	if err != nil {
		return nil, fmt.Errorf("parse FLUSH_INTERVAL: %w", err)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("FLUSH_INTERVAL must be positive, got %s", interval)
	}
	cfg.FlushInterval = interval

	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 300); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", 30); err != nil {
		return nil, err
	}

	return cfg, nil
}

// HasDatabase включено ли сохранение в Postgres
func (c *Config) HasDatabase() bool {
	return c.DBDSN != ""
}

// HasTelegram включён ли Telegram-бот
func (c *Config) HasTelegram() bool {
	return c.TelegramToken != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("parse %s: expected a non-negative integer, got %q", key, v)
	}
	return n, nil
}
