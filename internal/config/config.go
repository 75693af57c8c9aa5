package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds settings for both the API server and the board client.
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	LLM           LLMConfig
	RateLimit     RateLimitConfig
	Notifications NotificationsConfig
	Board         BoardConfig
}

type ServerConfig struct {
	Addr         string
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig selects the gorm driver: "postgres" or "sqlite".
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// LLMConfig is optional; an empty APIKey disables scoring and extraction.
type LLMConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string
}

type RateLimitConfig struct {
	RPS     float64
	Burst   int
	IdleTTL time.Duration `mapstructure:"idle_ttl"`
}

type NotificationsConfig struct {
	Backlog int
}

type BoardConfig struct {
	APIURL      string        `mapstructure:"api_url"`
	JobID       uint          `mapstructure:"job_id"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MinUpdating time.Duration `mapstructure:"min_updating"`
	SavedFor    time.Duration `mapstructure:"saved_for"`
}

// Load reads .env (if present), then an optional config file, then env vars
// with prefix PIPELINE_ (e.g. PIPELINE_DATABASE_DSN).
func Load() (Config, error) {
	// .env is optional outside local development
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allow_origins", []string{"*"})
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "host=localhost user=postgres password=password dbname=pipeline port=5432 sslmode=disable")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gemini-2.5-flash")
	v.SetDefault("ratelimit.rps", 5.0)
	v.SetDefault("ratelimit.burst", 20)
	v.SetDefault("ratelimit.idle_ttl", 10*time.Minute)
	v.SetDefault("notifications.backlog", 256)
	v.SetDefault("board.api_url", "http://localhost:8080/api/v1")
	v.SetDefault("board.job_id", 0)
	v.SetDefault("board.timeout", 10*time.Second)
	v.SetDefault("board.min_updating", 800*time.Millisecond)
	v.SetDefault("board.saved_for", 2000*time.Millisecond)

	v.SetConfigType("yaml")
	if path := os.Getenv("PIPELINE_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("PIPELINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// GEMINI_API_KEY is honoured when no prefixed key is given
	if key := os.Getenv("GEMINI_API_KEY"); key != "" && v.GetString("llm.api_key") == "" {
		v.Set("llm.api_key", key)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Notifications.Backlog < 1 {
		return fmt.Errorf("notifications.backlog must be positive")
	}
	if c.Board.MinUpdating < 0 || c.Board.SavedFor < 0 {
		return fmt.Errorf("board timers must not be negative")
	}
	return nil
}
