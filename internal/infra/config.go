package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	// Gemini access. The API key is required; everything else has defaults.
	GeminiAPIKey     string
	GeminiModel      string
	GeminiVideoModel string
	GeminiBaseURL    string

	// DatabaseURL is optional; when empty the generation audit trail is off.
	DatabaseURL string

	// GeoIPDBPath is optional; when empty locale detection relies on headers.
	GeoIPDBPath string

	// StoragePath roots the local file store holding generated video bytes.
	StoragePath string

	// AccessCode gates the studio UI. It is stored base64-reversed so the
	// value is not greppable in deploy manifests; this is a UX gate, not a
	// security boundary.
	AccessCode string

	WatermarkSignature string
	DefaultLocale      string

	VideoPollInterval time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash-image"),
		GeminiVideoModel:   getEnv("GEMINI_VIDEO_MODEL", "veo-2.0-generate-001"),
		GeminiBaseURL:      getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		StoragePath:        getEnv("STORAGE_PATH", "./storage"),
		AccessCode:         os.Getenv("STUDIO_ACCESS_CODE"),
		WatermarkSignature: getEnv("WATERMARK_SIGNATURE", "AI Photo Studio"),
		DefaultLocale:      getEnv("DEFAULT_LOCALE", "vi"),
		VideoPollInterval:  time.Second * time.Duration(getEnvInt("VIDEO_POLL_SECONDS", 10)),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
