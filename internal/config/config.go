// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config is everything the process needs at startup. SupabaseURL,
// SupabaseKey and GeminiAPIKey are mandatory; a missing value is a fatal
// startup error.
type Config struct {
	Env            string
	Port           string
	SupabaseURL    string
	SupabaseKey    string
	GeminiAPIKey   string
	AllowedOrigins []string
}

// Load reads the environment, merging in .env.local when present.
func Load() (*Config, error) {
	godotenv.Load(".env.local")

	cfg := &Config{
		Env:          os.Getenv("ENV"),
		Port:         os.Getenv("PORT"),
		SupabaseURL:  os.Getenv("SUPABASE_URL"),
		SupabaseKey:  os.Getenv("SUPABASE_KEY"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = strings.Split(origins, ",")
	}

	for name, value := range map[string]string{
		"SUPABASE_URL":   cfg.SupabaseURL,
		"SUPABASE_KEY":   cfg.SupabaseKey,
		"GEMINI_API_KEY": cfg.GeminiAPIKey,
	} {
		if value == "" {
			return nil, fmt.Errorf("missing required environment variable %s", name)
		}
	}

	return cfg, nil
}
