// Package config loads runtime settings from the environment. Outside
// production a local .env file is read first.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTPAddr string

	// TrustedProxies lists the proxy addresses or CIDRs whose forwarding
	// headers are believed. Empty means the socket address is the client.
	TrustedProxies []string

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	RedisURL string

	SessionTTL   time.Duration
	CookieSecure bool

	BcryptCost   int
	TestCooldown time.Duration

	RateLimit RateLimitConfig
	Mail      MailConfig

	PublicDir string
	LogLevel  string
	LogFormat string
}

type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
}

type MailConfig struct {
	SendGridAPIKey string
	FromAddress    string
	FromName       string
}

// Load reads the configuration and validates it.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("no .env file found, continuing")
		}
	}

	cfg := &Config{
		Env:      envStr("APP_ENV", "development"),
		HTTPAddr: envStr("HTTP_ADDR", ":8080"),

		TrustedProxies: envList("TRUSTED_PROXIES"),

		DatabaseURL: envStr("DATABASE_URL", ""),
		DBMaxConns:  int32(envInt("DB_MAX_CONNS", 20)),
		DBMinConns:  int32(envInt("DB_MIN_CONNS", 2)),

		RedisURL: envStr("REDIS_URL", "redis://localhost:6379/0"),

		SessionTTL:   envDur("SESSION_TTL", 7*24*time.Hour),
		CookieSecure: envBool("COOKIE_SECURE", false),

		BcryptCost:   envInt("BCRYPT_COST", 10),
		TestCooldown: envDur("TEST_COOLDOWN", 30*24*time.Hour),

		RateLimit: RateLimitConfig{
			Enabled:        envBool("RATE_LIMIT_ENABLED", true),
			Capacity:       envInt("RATE_LIMIT_CAPACITY", 10),
			RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", 6*time.Second),
			TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
			Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
		},
		Mail: MailConfig{
			SendGridAPIKey: envStr("SENDGRID_API_KEY", ""),
			FromAddress:    envStr("MAIL_FROM_ADDRESS", "donotreply@selfcheck.local"),
			FromName:       envStr("MAIL_FROM_NAME", "Selfcheck"),
		},

		PublicDir: envStr("PUBLIC_DIR", "./public"),
		LogLevel:  envStr("LOG_LEVEL", "info"),
		LogFormat: envStr("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	var problems []string

	if c.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL is required")
	}
	if c.RedisURL == "" {
		problems = append(problems, "REDIS_URL is required")
	}
	if c.BcryptCost < 10 || c.BcryptCost > 31 {
		problems = append(problems, "BCRYPT_COST must be between 10 and 31")
	}
	if c.SessionTTL <= 0 {
		problems = append(problems, "SESSION_TTL must be positive")
	}
	if c.TestCooldown <= 0 {
		problems = append(problems, "TEST_COOLDOWN must be positive")
	}
	if c.DBMinConns > c.DBMaxConns {
		problems = append(problems, "DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}
	if c.RateLimit.Enabled && c.RateLimit.Capacity < 1 {
		problems = append(problems, "RATE_LIMIT_CAPACITY must be at least 1")
	}
	if c.RateLimit.RefillInterval <= 0 {
		c.RateLimit.RefillInterval = time.Second
	}
	if minTTL := 5 * c.RateLimit.RefillInterval; c.RateLimit.TTL < minTTL {
		c.RateLimit.TTL = minTTL
	}
	if c.IsProduction() && !c.CookieSecure {
		problems = append(problems, "COOKIE_SECURE must be enabled in production")
	}

	if len(problems) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(problems, ", "))
	}
	return nil
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envList(k string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(k), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func envBool(k string, d bool) bool {
	switch strings.ToLower(os.Getenv(k)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
