package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	TransportREST = "rest"
	TransportSDK  = "sdk"
)

type Config struct {
	// Server
	Port       string
	Env        string
	LogLevel   string
	CORSOrigin string

	// Gemini AI
	GeminiAPIKey    string
	GeminiAPIBase   string
	GeminiTransport string
	PreferredModel  string
	ModelProbe      bool
	UpstreamTimeout time.Duration

	// Domain filter
	KeywordsFile string
}

// Load reads configuration from the environment, after loading a .env file
// if one exists. It fails when no Gemini API key is configured.
func Load() (*Config, error) {
	godotenv.Load()

	apiKey := getFirstEnv("GEMINI_API_KEY", "API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("required environment variable GEMINI_API_KEY is not set")
	}

	cfg := &Config{
		Port:            getEnvOrDefault("PORT", "3000"),
		Env:             getEnvOrDefault("ENV", "development"),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		CORSOrigin:      getEnvOrDefault("CORS_ORIGIN", "*"),
		GeminiAPIKey:    apiKey,
		GeminiAPIBase:   strings.TrimRight(getEnvOrDefault("GEMINI_API_BASE", "https://generativelanguage.googleapis.com/v1"), "/"),
		GeminiTransport: strings.ToLower(getEnvOrDefault("GEMINI_TRANSPORT", TransportREST)),
		PreferredModel:  getFirstEnv("PREFERRED_MODEL_OVERRIDE", "GEMINI_MODEL"),
		ModelProbe:      getEnvAsBoolOrDefault("MODEL_PROBE", true),
		UpstreamTimeout: getEnvAsDurationOrDefault("UPSTREAM_TIMEOUT", 30*time.Second),
		KeywordsFile:    os.Getenv("DOMAIN_KEYWORDS_FILE"),
	}

	if cfg.GeminiTransport != TransportREST && cfg.GeminiTransport != TransportSDK {
		return nil, fmt.Errorf("GEMINI_TRANSPORT must be %q or %q, got %q", TransportREST, TransportSDK, cfg.GeminiTransport)
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getFirstEnv(keys ...string) string {
	for _, key := range keys {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			return val
		}
	}
	return ""
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

// getEnvAsDurationOrDefault accepts plain integers (seconds) or Go duration
// strings such as "45s" or "2m".
func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if secs, err := strconv.Atoi(val); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(val); err == nil && d > 0 {
		return d
	}
	return defaultVal
}
