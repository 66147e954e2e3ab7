package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// FetchConfig tunes the lightweight HTTP tier and the resolver probes.
type FetchConfig struct {
	Timeout      time.Duration
	Retries      int
	ProbeTimeout time.Duration
}

// CrawlConfig bounds the secondary page crawl.
type CrawlConfig struct {
	Retries  int
	Delay    time.Duration
	MaxPages int
}

// BrowserConfig controls the headless browser tiers.
type BrowserConfig struct {
	Enabled               bool
	DisableManagedCrawler bool
	ChromePath            string
	Timeout               time.Duration
	RedirectProbeTimeout  time.Duration
}

// DNSConfig controls candidate pre-checks and e-mail MX verification.
type DNSConfig struct {
	Precheck      bool
	Servers       []string
	VerifyEmailMX bool
}

// BulkConfig sizes the bulk enrichment worker pool.
type BulkConfig struct {
	Workers  int
	RateRPS  float64
	ItemTTL  time.Duration
	MaxItems int
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL     string
	JWTSecret       string
	Port            string
	TokenTTL        time.Duration
	RateLimitEnrich RateLimitConfig
	FastMode        bool
	PhoneRegion     string
	LogLevel        string
	LogFormat       string

	Fetch   FetchConfig
	Crawl   CrawlConfig
	Browser BrowserConfig
	DNS     DNSConfig
	Bulk    BulkConfig
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   getEnv("JWT_SECRET", "dev-secret"),
		Port:        getEnv("PORT", "8080"),
		TokenTTL:    parseDuration(getEnv("JWT_TTL", "24h"), 24*time.Hour),
		PhoneRegion: strings.ToUpper(getEnv("PHONE_REGION", "US")),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		Fetch: FetchConfig{
			Timeout:      parseDuration(getEnv("FETCH_TIMEOUT", "3s"), 3*time.Second),
			ProbeTimeout: parseDuration(getEnv("PROBE_TIMEOUT", "5s"), 5*time.Second),
		},
		Crawl: CrawlConfig{
			Delay: parseDuration(getEnv("CRAWL_DELAY", "500ms"), 500*time.Millisecond),
		},
		Browser: BrowserConfig{
			ChromePath:           os.Getenv("CHROME_PATH"),
			Timeout:              parseDuration(getEnv("BROWSER_TIMEOUT", "20s"), 20*time.Second),
			RedirectProbeTimeout: parseDuration(getEnv("REDIRECT_PROBE_TIMEOUT", "5s"), 5*time.Second),
		},
		DNS: DNSConfig{
			Servers: splitList(getEnv("DNS_SERVERS", "8.8.8.8:53,1.1.1.1:53")),
		},
		Bulk: BulkConfig{
			ItemTTL: parseDuration(getEnv("BULK_ITEM_TIMEOUT", "90s"), 90*time.Second),
		},
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_ENRICH", "10/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_ENRICH value: %w", err)
	}
	cfg.RateLimitEnrich = rl

	bools := []struct {
		key      string
		fallback string
		dst      *bool
	}{
		{"FAST_MODE", "false", &cfg.FastMode},
		{"DISABLE_MANAGED_CRAWLER", "false", &cfg.Browser.DisableManagedCrawler},
		{"ENABLE_HEADLESS", "true", &cfg.Browser.Enabled},
		{"DNS_PRECHECK", "true", &cfg.DNS.Precheck},
		{"VERIFY_EMAIL_MX", "false", &cfg.DNS.VerifyEmailMX},
	}
	for _, b := range bools {
		v, err := strconv.ParseBool(getEnv(b.key, b.fallback))
		if err != nil {
			return nil, fmt.Errorf("invalid %s value: %w", b.key, err)
		}
		*b.dst = v
	}

	ints := []struct {
		key      string
		fallback int
		dst      *int
	}{
		{"FETCH_RETRIES", 2, &cfg.Fetch.Retries},
		{"CRAWL_RETRIES", 2, &cfg.Crawl.Retries},
		{"CRAWL_MAX_PAGES", 5, &cfg.Crawl.MaxPages},
		{"BULK_WORKERS", 1, &cfg.Bulk.Workers},
		{"BULK_MAX_ITEMS", 50, &cfg.Bulk.MaxItems},
	}
	for _, n := range ints {
		v, err := parsePositiveInt(getEnv(n.key, strconv.Itoa(n.fallback)))
		if err != nil {
			return nil, fmt.Errorf("invalid %s value: %w", n.key, err)
		}
		*n.dst = v
	}

	rps, err := strconv.ParseFloat(getEnv("BULK_RATE_RPS", "0"), 64)
	if err != nil || rps < 0 {
		return nil, fmt.Errorf("invalid BULK_RATE_RPS value: %q", os.Getenv("BULK_RATE_RPS"))
	}
	cfg.Bulk.RateRPS = rps

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func parsePositiveInt(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", v)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
