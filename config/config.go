package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Site    SiteConfig
	Browser BrowserConfig
	Pacing  PacingConfig
	Captcha CaptchaConfig
	Storage StorageConfig
	Log     LogConfig
}

// SiteConfig pins down the target portal. The endpoint paths are the
// deterministic patterns tried before falling back to link discovery.
type SiteConfig struct {
	BaseURL          string // default: "https://www.brokerbay.ca"
	SearchEndpoint   string // default: "/search"
	PropertyEndpoint string // default: "/property"
	BookingEndpoint  string // default: "/book"
}

// BrowserConfig controls the Rod browser session.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// ProfilePath points at an existing Chrome user-data dir so an
	// already-authenticated session can be reused.
	ProfilePath string

	// ProxyPool is the egress address pool rotated on session (re)init.
	ProxyPool []string

	// RequestTimeout bounds a single navigation.
	RequestTimeout time.Duration // default: 30s

	// ElementTimeout bounds a single visibility/clickability wait.
	ElementTimeout time.Duration // default: 10s
}

// PacingConfig bounds the randomized delay imposed before every
// network-visible action.
type PacingConfig struct {
	MinDelay time.Duration // default: 2s
	MaxDelay time.Duration // default: 5s
}

// CaptchaConfig controls the external solving provider.
type CaptchaConfig struct {
	// APIKey is the 2captcha credential. Solving fails closed when empty.
	APIKey string

	// SolveTimeout caps one provider solve end-to-end.
	SolveTimeout time.Duration // default: 180s
}

// StorageConfig controls the Postgres store.
type StorageConfig struct {
	// DatabaseURL is the pgx connection string.
	DatabaseURL string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory is honoured when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Site: SiteConfig{
			BaseURL:          envOr("BOOKBAY_BASE_URL", "https://www.brokerbay.ca"),
			SearchEndpoint:   envOr("BOOKBAY_SEARCH_ENDPOINT", "/search"),
			PropertyEndpoint: envOr("BOOKBAY_PROPERTY_ENDPOINT", "/property"),
			BookingEndpoint:  envOr("BOOKBAY_BOOKING_ENDPOINT", "/book"),
		},
		Browser: BrowserConfig{
			Headless:       envBoolOr("BOOKBAY_HEADLESS", true),
			NoSandbox:      envBoolOr("BOOKBAY_NO_SANDBOX", false),
			BrowserBin:     os.Getenv("BOOKBAY_BROWSER_BIN"),
			ProfilePath:    os.Getenv("BOOKBAY_PROFILE_PATH"),
			ProxyPool:      envSliceOr("BOOKBAY_PROXY_LIST", nil),
			RequestTimeout: envDurationOr("BOOKBAY_REQUEST_TIMEOUT", 30*time.Second),
			ElementTimeout: envDurationOr("BOOKBAY_ELEMENT_TIMEOUT", 10*time.Second),
		},
		Pacing: PacingConfig{
			MinDelay: envDurationOr("BOOKBAY_MIN_DELAY", 2*time.Second),
			MaxDelay: envDurationOr("BOOKBAY_MAX_DELAY", 5*time.Second),
		},
		Captcha: CaptchaConfig{
			APIKey:       os.Getenv("BOOKBAY_CAPTCHA_API_KEY"),
			SolveTimeout: envDurationOr("BOOKBAY_CAPTCHA_TIMEOUT", 180*time.Second),
		},
		Storage: StorageConfig{
			DatabaseURL: envOr("BOOKBAY_DATABASE_URL", "postgres://localhost:5432/bookbay?sslmode=disable"),
		},
		Log: LogConfig{
			Level:  envOr("BOOKBAY_LOG_LEVEL", "info"),
			Format: envOr("BOOKBAY_LOG_FORMAT", "text"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
