package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Version         string
	ShutdownTimeout time.Duration
	Server          ServerConfig
	Chat            ChatConfig
	RateLimit       RateLimitConfig
	Log             LogConfig
}

type ServerConfig struct {
	Port         int
	PublicDir    string
	CORSOrigins  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type ChatConfig struct {
	// Palette overrides the default color palette when non-empty.
	Palette []string
}

type RateLimitConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Requests      int
	Window        time.Duration
}

type LogConfig struct {
	Level string
}

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

func Load() (*Config, error) {
	// Load .env if present
	_ = godotenv.Load()

	cfg := &Config{
		Version:         getEnv("APP_VERSION", "1.0.0"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		Server: ServerConfig{
			Port:         getEnvAsInt("PORT", 9000),
			PublicDir:    getEnv("PUBLIC_DIR", "public"),
			CORSOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Chat: ChatConfig{
			Palette: getEnvAsList("COLOR_PALETTE"),
		},
		RateLimit: RateLimitConfig{
			RedisAddr:     getEnv("RATE_LIMIT_REDIS_ADDR", ""),
			RedisPassword: getEnv("RATE_LIMIT_REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("RATE_LIMIT_REDIS_DB", 0),
			Requests:      getEnvAsInt("RATE_LIMIT_REQUESTS", 120),
			Window:        getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit requests and window must be positive")
	}
	for _, color := range c.Chat.Palette {
		if !colorPattern.MatchString(color) {
			return fmt.Errorf("COLOR_PALETTE entry %q is not a #RRGGBB color", color)
		}
	}
	switch c.Log.Level {
	case "info", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be info or error, got %q", c.Log.Level)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return ":" + strconv.Itoa(s.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
