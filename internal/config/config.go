// Package config loads server settings from the environment. A .env file in
// the working directory is read first when present; real environment
// variables always win over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sakif/flexfolio/internal/notify"
	"github.com/sakif/flexfolio/internal/storage"
)

const minSecretLength = 16

type Config struct {
	Port     int
	Env      string
	LogLevel slog.Level
	DBPath   string

	JWTSecret    string
	SessionTTL   time.Duration
	CookieSecure bool

	AllowOrigins   []string
	RequestTimeout time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
	RedisURL       string

	GitHub GitHubConfig
	SMTP   notify.SMTPConfig
	S3     storage.Config
}

type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

func (g GitHubConfig) Enabled() bool { return g.ClientID != "" && g.ClientSecret != "" }

func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load reads envFile (if it exists) and then the process environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: reading %s: %w", envFile, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, applying defaults for unset keys.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	p := parser{lookup: lookup}

	cfg := &Config{
		Port:           p.int("PORT", 8080),
		Env:            strings.ToLower(p.string("ENV", "development")),
		DBPath:         p.string("DB_PATH", "data/flexfolio.db"),
		JWTSecret:      p.string("JWT_SECRET", ""),
		SessionTTL:     p.duration("SESSION_TTL", 7*24*time.Hour),
		AllowOrigins:   p.list("ALLOW_ORIGINS", []string{"http://localhost:3000"}),
		RequestTimeout: time.Duration(p.int("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,
		RateLimitRPS:   p.float("RATE_LIMIT_RPS", 1),
		RateLimitBurst: p.int("RATE_LIMIT_BURST", 10),
		RedisURL:       p.string("REDIS_URL", ""),
		GitHub: GitHubConfig{
			ClientID:     p.string("GITHUB_CLIENT_ID", ""),
			ClientSecret: p.string("GITHUB_CLIENT_SECRET", ""),
		},
		SMTP: notify.SMTPConfig{
			Host:     p.string("SMTP_HOST", ""),
			Port:     p.int("SMTP_PORT", 587),
			User:     p.string("SMTP_USER", ""),
			Password: p.string("SMTP_PASSWORD", ""),
			From:     p.string("SMTP_FROM", ""),
		},
		S3: storage.Config{
			Bucket:        p.string("S3_BUCKET", ""),
			Region:        p.string("S3_REGION", "us-east-1"),
			Endpoint:      p.string("S3_ENDPOINT", ""),
			AccessKey:     p.string("S3_ACCESS_KEY", ""),
			SecretKey:     p.string("S3_SECRET_KEY", ""),
			PublicBaseURL: p.string("S3_PUBLIC_BASE_URL", ""),
		},
	}
	cfg.LogLevel = p.level("LOG_LEVEL", slog.LevelInfo)
	cfg.CookieSecure = p.bool("COOKIE_SECURE", cfg.IsProduction())
	cfg.GitHub.CallbackURL = p.string("GITHUB_CALLBACK_URL",
		fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port))

	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every setting that would stop the server from working.
func (c *Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters", minSecretLength))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d is out of range", c.Port))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT_SECONDS must be positive"))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH must not be empty"))
	}
	if c.SMTP.Host != "" && c.SMTP.From == "" {
		errs = append(errs, errors.New("SMTP_FROM is required when SMTP_HOST is set"))
	}
	if (c.GitHub.ClientID == "") != (c.GitHub.ClientSecret == "") {
		errs = append(errs, errors.New("GITHUB_CLIENT_ID and GITHUB_CLIENT_SECRET must be set together"))
	}
	return errors.Join(errs...)
}

// parser collects conversion errors so one run reports all bad keys.
type parser struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (p *parser) raw(key string) (string, bool) {
	v, ok := p.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (p *parser) string(key, def string) string {
	if v, ok := p.raw(key); ok {
		return v
	}
	return def
}

func (p *parser) int(key string, def int) int {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not an integer", key, v))
		return def
	}
	return n
}

func (p *parser) float(key string, def float64) float64 {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a number", key, v))
		return def
	}
	return f
}

func (p *parser) bool(key string, def bool) bool {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a boolean", key, v))
		return def
	}
	return b
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a duration", key, v))
		return def
	}
	return d
}

func (p *parser) list(key string, def []string) []string {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (p *parser) level(key string, def slog.Level) slog.Level {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(v)); err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a log level", key, v))
		return def
	}
	return l
}
