// Package config loads the service configuration: defaults, then an optional
// YAML file (CONFIG_FILE), then .env, then the process environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
	Timezone  string          `yaml:"timezone"`
	CacheTTL  time.Duration   `yaml:"cache_ttl"`
}

type ServerConfig struct {
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`

	// TrustedProxies are the IPs or CIDRs whose X-Forwarded-For header is
	// believed when resolving the client IP. Empty trusts none.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

type StoreConfig struct {
	Driver     string `yaml:"driver"`
	DSN        string `yaml:"dsn"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	Name       string `yaml:"name"`
	SQLitePath string `yaml:"sqlite_path"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// storeCredentials is the secret blob handed to the process out-of-band.
type storeCredentials struct {
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "5000",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Store: StoreConfig{
			Driver:     "memory",
			Host:       "localhost",
			Port:       "5432",
			SQLitePath: "data/kanso.db",
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: "6379",
		},
		RateLimit: RateLimitConfig{
			Requests: 100,
			Window:   time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
		Timezone: "Local",
		CacheTTL: 30 * time.Minute,
	}
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: loading .env: %w", err)
	}

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "PORT")
	setString(&c.Store.Driver, "STORE_DRIVER")
	setString(&c.Store.DSN, "STORE_DSN")
	setString(&c.Store.User, "DB_USER")
	setString(&c.Store.Password, "DB_PASSWORD")
	setString(&c.Store.Host, "DB_HOST")
	setString(&c.Store.Port, "DB_PORT")
	setString(&c.Store.Name, "DB_NAME")
	setString(&c.Store.SQLitePath, "SQLITE_PATH")
	setString(&c.Redis.Host, "REDIS_HOST")
	setString(&c.Redis.Port, "REDIS_PORT")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Timezone, "TIMEZONE")
	setList(&c.Server.TrustedProxies, "TRUSTED_PROXIES")

	if err := setBool(&c.Redis.Enabled, "REDIS_ENABLED"); err != nil {
		return err
	}
	if err := setBool(&c.Log.Development, "LOG_DEVELOPMENT"); err != nil {
		return err
	}
	if err := setInt(&c.Redis.DB, "REDIS_DB"); err != nil {
		return err
	}
	if err := setInt(&c.RateLimit.Requests, "RATE_LIMIT_REQUESTS"); err != nil {
		return err
	}
	if err := setDuration(&c.RateLimit.Window, "RATE_LIMIT_WINDOW"); err != nil {
		return err
	}
	if err := setDuration(&c.CacheTTL, "CACHE_TTL"); err != nil {
		return err
	}

	if blob := os.Getenv("STORE_CREDENTIALS"); blob != "" {
		var creds storeCredentials
		if err := json.Unmarshal([]byte(blob), &creds); err != nil {
			return fmt.Errorf("config: STORE_CREDENTIALS is not valid JSON: %w", err)
		}
		if creds.Driver != "" {
			c.Store.Driver = creds.Driver
		}
		if creds.DSN != "" {
			c.Store.DSN = creds.DSN
		}
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory", "pgx", "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if c.Server.Port == "" {
		return errors.New("config: server port is required")
	}
	if c.RateLimit.Requests < 0 {
		return errors.New("config: rate limit requests cannot be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	for _, p := range c.Server.TrustedProxies {
		if net.ParseIP(p) == nil {
			if _, _, err := net.ParseCIDR(p); err != nil {
				return fmt.Errorf("config: invalid trusted proxy %q", p)
			}
		}
	}
	return nil
}

// StoreDSN is the connection string for the selected store driver.
func (c *Config) StoreDSN() string {
	if c.Store.DSN != "" {
		return c.Store.DSN
	}

	switch c.Store.Driver {
	case "sqlite":
		return c.Store.SQLitePath
	case "pgx", "postgres":
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			c.Store.User, c.Store.Password, c.Store.Host, c.Store.Port, c.Store.Name)
	}
	return ""
}

// Location is the time zone that decides what "today" is.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// setList reads a comma separated list. A set but blank variable clears it.
func setList(dst *[]string, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}

func setBool(dst *bool, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = b
	return nil
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = d
	return nil
}
