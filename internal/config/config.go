package config

import (
	"fmt"
	"log/slog"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

// Storage drivers accepted in STORAGE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverFile     = "file"
)

type Config struct {
	HTTPAddr    string
	CORSOrigins []string

	StorageDriver string
	DatabaseURL   string
	StoreFile     string

	RabbitMQURL string

	MailHost string
	MailPort int
	MailUser string
	MailPass string
	MailFrom string

	ReminderTo       string
	ReminderInterval time.Duration

	LogLevel           slog.Level
	RateLimitPerMinute int
	// TrustedProxies may set X-Forwarded-For / X-Real-IP for rate limiting.
	TrustedProxies []netip.Prefix

	// Language drives name collation when sorting leads.
	Language language.Tag
}

// MailEnabled reports whether reminders can be sent.
func (c Config) MailEnabled() bool {
	return c.MailHost != "" && c.ReminderTo != ""
}

// Load reads an optional env file (".env" when envFile is empty) and then
// the process environment. A missing env file is not an error.
func Load(envFile string) (Config, error) {
	if envFile == "" {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFile); err != nil {
		return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	cfg := Config{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "*")),
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", DriverSQLite)),
		DatabaseURL:   getEnv("DATABASE_URL", "file:leadbridge.db"),
		StoreFile:     getEnv("STORE_FILE", "leadbridge.json"),
		RabbitMQURL:   os.Getenv("RABBITMQ_URL"),
		MailHost:      os.Getenv("MAIL_HOST"),
		MailUser:      os.Getenv("MAIL_USER"),
		MailPass:      os.Getenv("MAIL_PASS"),
		MailFrom:      os.Getenv("MAIL_FROM"),
		ReminderTo:    os.Getenv("REMINDER_TO"),
	}

	var err error
	if cfg.MailPort, err = getInt("MAIL_PORT", 587); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 60); err != nil {
		return Config{}, err
	}
	if cfg.ReminderInterval, err = getDuration("REMINDER_INTERVAL", time.Minute); err != nil {
		return Config{}, err
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	if cfg.TrustedProxies, err = getPrefixes("TRUSTED_PROXIES"); err != nil {
		return Config{}, err
	}

	if cfg.Language, err = language.Parse(getEnv("LOCALE", "en")); err != nil {
		return Config{}, fmt.Errorf("LOCALE: %w", err)
	}

	switch cfg.StorageDriver {
	case DriverSQLite, DriverPostgres, DriverMySQL, DriverFile:
	default:
		return Config{}, fmt.Errorf("STORAGE_DRIVER: unknown driver %q", cfg.StorageDriver)
	}
	if cfg.MailFrom == "" {
		cfg.MailFrom = cfg.MailUser
	}

	return cfg, nil
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
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: must be a positive integer, got %q", key, v)
	}
	return n, nil
}

// getPrefixes parses a comma separated list of CIDRs or single addresses.
func getPrefixes(key string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, item := range splitList(os.Getenv(key)) {
		if p, err := netip.ParsePrefix(item); err == nil {
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not an IP or CIDR", key, item)
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: must be a positive duration, got %q", key, v)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
