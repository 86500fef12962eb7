package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	CORSOrigins []string

	DBDriver    string
	DatabaseURL string

	JWTSecret  string
	GuestEmail string
	GuestTTL   time.Duration

	GeminiAPIKey string
	GeminiModel  string

	LogLevel  string
	LogFormat string
}

// Load reads an optional .env file and then the process environment.
// Missing keys fall back to local development defaults.
func Load() (*Config, error) {
	// A missing .env is fine outside local dev.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := fromViper(v)
	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_URL", "host=localhost user=postgres password=password dbname=jobtracker port=5432 sslmode=disable")
	v.SetDefault("AUTH_JWT_SECRET", "")
	v.SetDefault("GUEST_EMAIL", "guest@example.com")
	v.SetDefault("GUEST_SESSION_TTL", "24h")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
}

func fromViper(v *viper.Viper) *Config {
	var origins []string
	for _, o := range strings.Split(v.GetString("CORS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return &Config{
		Port:         v.GetString("PORT"),
		CORSOrigins:  origins,
		DBDriver:     strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseURL:  v.GetString("DATABASE_URL"),
		JWTSecret:    v.GetString("AUTH_JWT_SECRET"),
		GuestEmail:   v.GetString("GUEST_EMAIL"),
		GuestTTL:     v.GetDuration("GUEST_SESSION_TTL"),
		GeminiAPIKey: v.GetString("GEMINI_API_KEY"),
		GeminiModel:  v.GetString("GEMINI_MODEL"),
		LogLevel:     v.GetString("LOG_LEVEL"),
		LogFormat:    v.GetString("LOG_FORMAT"),
	}
}

// AllowAllOrigins reports whether CORS should accept any origin.
func (c *Config) AllowAllOrigins() bool {
	return len(c.CORSOrigins) == 0 || (len(c.CORSOrigins) == 1 && c.CORSOrigins[0] == "*")
}
