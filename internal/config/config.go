package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/vadimbarashkov/shortlink/internal/spam"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

type Config struct {
	Env            string `yaml:"env"`
	BaseURL        string `yaml:"base_url"`
	MigrationsPath string `yaml:"migrations_path"`
	Log            `yaml:"log"`
	HTTPServer     `yaml:"http_server"`
	Postgres       `yaml:"postgres"`
	Redis          `yaml:"redis"`
	RateLimit      `yaml:"rate_limit"`
	Spam           `yaml:"spam"`
}

type Log struct {
	Level   string `yaml:"level"`
	JSON    bool   `yaml:"json"`
	Concise bool   `yaml:"concise"`
}

var defaultLog = Log{
	Level:   "info",
	Concise: true,
}

// SlogLevel maps Level to a slog level, defaulting to info.
func (l *Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type HTTPServer struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
	CertFile       string        `yaml:"cert_file"`
	KeyFile        string        `yaml:"key_file"`
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Enable only behind a reverse proxy that overwrites those headers.
	TrustProxy     bool          `yaml:"trust_proxy"`
}

var defaultHTTPServer = HTTPServer{
	Port:           8080,
	ReadTimeout:    5 * time.Second,
	WriteTimeout:   10 * time.Second,
	IdleTimeout:    time.Minute,
	MaxHeaderBytes: 1 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type Postgres struct {
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	DB              string        `yaml:"db"`
	SSLMode         string        `yaml:"sslmode"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
}

var defaultPostgres = Postgres{
	Host:            "localhost",
	Port:            5432,
	SSLMode:         "disable",
	ConnMaxIdleTime: 5 * time.Minute,
	ConnMaxLifetime: 30 * time.Minute,
	MaxIdleConns:    5,
	MaxOpenConns:    25,
}

func (p *Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

// Redis configures the optional redirect cache. The cache is off unless Enabled is set.
type Redis struct {
	Enabled        bool          `yaml:"enabled"`
	Addr           string        `yaml:"addr"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	DB             int           `yaml:"db"`
	PoolSize       int           `yaml:"pool_size"`
	DialTimeout    time.Duration `yaml:"dial_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	TTL            time.Duration `yaml:"ttl"`
}

var defaultRedis = Redis{
	Addr:           "localhost:6379",
	PoolSize:       10,
	DialTimeout:    5 * time.Second,
	ReadTimeout:    3 * time.Second,
	WriteTimeout:   3 * time.Second,
	ConnectTimeout: 30 * time.Second,
	TTL:            24 * time.Hour,
}

type RateLimit struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

var defaultRateLimit = RateLimit{
	Limit:  10,
	Window: 10 * time.Minute,
}

type Spam struct {
	Keywords         []string `yaml:"keywords"`
	SuspiciousTLDs   []string `yaml:"suspicious_tlds"`
	MaxSubdomainDots int      `yaml:"max_subdomain_dots"`
	MaxURLLength     int      `yaml:"max_url_length"`
}

func defaultSpam() Spam {
	rules := spam.DefaultRules()

	return Spam{
		Keywords:         append([]string(nil), rules.Keywords...),
		SuspiciousTLDs:   append([]string(nil), rules.SuspiciousTLDs...),
		MaxSubdomainDots: rules.MaxSubdomainDots,
		MaxURLLength:     rules.MaxURLLength,
	}
}

func (s *Spam) Rules() spam.Rules {
	return spam.Rules{
		Keywords:         s.Keywords,
		SuspiciousTLDs:   s.SuspiciousTLDs,
		MaxSubdomainDots: s.MaxSubdomainDots,
		MaxURLLength:     s.MaxURLLength,
	}
}

func Load(path string) (*Config, error) {
	const op = "config.Load"

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open config file: %w", op, err)
	}
	defer f.Close()

	var cfg Config
	setDefaults(&cfg)

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to decode config file: %w", op, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Env {
	case EnvDev, EnvStage, EnvProd:
	default:
		return fmt.Errorf("unknown env %q", c.Env)
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute url, got %q", c.BaseURL)
	}

	if c.RateLimit.Limit <= 0 || c.RateLimit.Window <= 0 {
		return errors.New("rate_limit limit and window must be positive")
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("redis addr is required when redis is enabled")
	}

	return nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.BaseURL = "http://localhost:8080"
	cfg.MigrationsPath = "file://migrations"
	cfg.Log = defaultLog
	cfg.HTTPServer = defaultHTTPServer
	cfg.Postgres = defaultPostgres
	cfg.Redis = defaultRedis
	cfg.RateLimit = defaultRateLimit
	cfg.Spam = defaultSpam()
}
