package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Source   SourceConfig
	Charts   ChartsConfig
	Refresh  RefreshConfig
	Logger   LoggerConfig
	Security SecurityConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// SourceConfig selects where sales records come from. File takes
// precedence over URL when set.
type SourceConfig struct {
	URL      string
	File     string
	Timeout  time.Duration
	CacheTTL time.Duration
	CacheDir string
}

type ChartsConfig struct {
	Width  int
	Height int
}

type RefreshConfig struct {
	Enabled  bool
	Interval time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string
}

type SecurityConfig struct {
	EnableRateLimit bool
	RateLimitRPS    int
	RateLimitBurst  int
	AllowedOrigins  []string
	TrustedProxies  []string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first; variables already set win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "localhost"),
			Port:            getEnvInt("SERVER_PORT", 8084),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Source: SourceConfig{
			URL:      getEnvString("SOURCE_URL", "https://labdados.com/produtos"),
			File:     getEnvString("SOURCE_FILE", ""),
			Timeout:  getEnvDuration("SOURCE_TIMEOUT", 30*time.Second),
			CacheTTL: getEnvDuration("SOURCE_CACHE_TTL", 5*time.Minute),
			CacheDir: getEnvString("SOURCE_CACHE_DIR", ".cache"),
		},
		Charts: ChartsConfig{
			Width:  getEnvInt("CHART_WIDTH", 640),
			Height: getEnvInt("CHART_HEIGHT", 360),
		},
		Refresh: RefreshConfig{
			Enabled:  getEnvBool("REFRESH_ENABLED", true),
			Interval: getEnvDuration("REFRESH_INTERVAL", 10*time.Minute),
		},
		Logger: LoggerConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
		},
		Security: SecurityConfig{
			EnableRateLimit: getEnvBool("SECURITY_RATE_LIMIT_ENABLED", true),
			RateLimitRPS:    getEnvInt("SECURITY_RATE_LIMIT_RPS", 100),
			RateLimitBurst:  getEnvInt("SECURITY_RATE_LIMIT_BURST", 10),
			AllowedOrigins:  getEnvStringSlice("SECURITY_ALLOWED_ORIGINS", []string{"http://localhost:8084"}),
			TrustedProxies:  getEnvStringSlice("SECURITY_TRUSTED_PROXIES", []string{"127.0.0.1"}),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Source.URL == "" && c.Source.File == "" {
		return fmt.Errorf("either a source URL or a source file is required")
	}

	if c.Source.Timeout <= 0 {
		return fmt.Errorf("source timeout must be positive")
	}

	if c.Source.CacheTTL <= 0 {
		return fmt.Errorf("source cache TTL must be positive")
	}

	if c.Charts.Width < 200 || c.Charts.Height < 150 {
		return fmt.Errorf("chart size must be at least 200x150, got %dx%d", c.Charts.Width, c.Charts.Height)
	}

	if c.Refresh.Enabled && c.Refresh.Interval < time.Minute {
		return fmt.Errorf("refresh interval must be at least one minute, got %s", c.Refresh.Interval)
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !slices.Contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	return nil
}

// getEnv returns the parsed value of key, or def when the variable is
// unset or does not parse.
func getEnv[T any](key string, def T, parse func(string) (T, error)) T {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := parse(value)
	if err != nil {
		return def
	}
	return parsed
}

func getEnvString(key, def string) string {
	return getEnv(key, def, func(s string) (string, error) { return s, nil })
}

func getEnvInt(key string, def int) int {
	return getEnv(key, def, strconv.Atoi)
}

func getEnvBool(key string, def bool) bool {
	return getEnv(key, def, strconv.ParseBool)
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	return getEnv(key, def, time.ParseDuration)
}

func getEnvStringSlice(key string, def []string) []string {
	return getEnv(key, def, func(s string) ([]string, error) {
		parts := strings.Split(s, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	})
}

func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}
