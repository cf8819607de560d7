package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SecurityConfig represents security configuration
type SecurityConfig struct {
	EnableRateLimit       bool     `yaml:"enable_rate_limit"`
	RateLimitPerSecond    float64  `yaml:"rate_limit_per_second"`
	RateLimitBurst        int      `yaml:"rate_limit_burst"`
	EnableCORS            bool     `yaml:"enable_cors"`
	AllowedOrigins        []string `yaml:"allowed_origins"`
	EnableSecurityHeaders bool     `yaml:"enable_security_headers"`
	MaxRequestSize        int64    `yaml:"max_request_size"`
	EnableRequestID       bool     `yaml:"enable_request_id"`
}

// BackendConfig points at the remote PHP backend.
type BackendConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// PaginationConfig controls the "load more" visible window.
type PaginationConfig struct {
	InitialVisible   int  `yaml:"initial"`
	LoadMoreStep     int  `yaml:"increment"`
	PreserveOnFilter bool `yaml:"preserve_on_filter"`
}

type Config struct {
	Port                   int                 `yaml:"port"`
	DataDir                string              `yaml:"data_dir"`
	FixturesDir            string              `yaml:"fixtures_dir"`
	Collections            map[string]string   `yaml:"collections"`
	Backend                BackendConfig       `yaml:"backend"`
	CacheTTL               time.Duration       `yaml:"cache_ttl"`
	CounterRefreshInterval time.Duration       `yaml:"counter_refresh_interval"`
	TrendPollInterval      time.Duration       `yaml:"trend_poll_interval"`
	Pagination             PaginationConfig    `yaml:"pagination"`
	BookmarkKey            string              `yaml:"bookmark_key"`
	Trends                 map[string][]string `yaml:"trends"`
	LogLevel               string              `yaml:"log_level"`
	EnableSwagger          bool                `yaml:"enable_swagger"`
	EnableFixtureFiles     bool                `yaml:"enable_fixture_files"`
	EnableMetrics          bool                `yaml:"enable_metrics"`
	Security               SecurityConfig      `yaml:"security"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:        8080,
		DataDir:     "./data",
		FixturesDir: "./fixtures",
		Collections: DefaultCollections(),
		Backend: BackendConfig{
			URL:     "http://localhost/news-portal/api",
			Timeout: 10 * time.Second,
		},
		CacheTTL:               15 * time.Minute,
		CounterRefreshInterval: 30 * time.Second,
		TrendPollInterval:      15 * time.Minute,
		Pagination: PaginationConfig{
			InitialVisible: 9,
			LoadMoreStep:   9,
		},
		BookmarkKey:        "savedNews",
		Trends:             map[string][]string{},
		LogLevel:           "info",
		EnableSwagger:      true,
		EnableFixtureFiles: true,
		EnableMetrics:      true,
		Security: SecurityConfig{
			EnableRateLimit:       true,
			RateLimitPerSecond:    10.0,
			RateLimitBurst:        20,
			EnableCORS:            true,
			AllowedOrigins:        []string{"*"},
			EnableSecurityHeaders: true,
			MaxRequestSize:        1 << 20, // 1MB
			EnableRequestID:       true,
		},
	}
}

// DefaultCollections maps collection names to their bundled fixture files.
func DefaultCollections() map[string]string {
	return map[string]string{
		"news":     "news.json",
		"articles": "articles.json",
		"jobs":     "jobs.json",
		"posts":    "generalPosts.json",
	}
}

// Load builds the configuration from defaults, the optional CONFIG_FILE and
// the environment, in that order of precedence (environment wins).
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnvAsInt("PORT", c.Port)
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.FixturesDir = getEnv("FIXTURES_DIR", c.FixturesDir)
	c.Backend.URL = getEnv("BACKEND_URL", c.Backend.URL)
	c.Backend.Timeout = getEnvAsDuration("BACKEND_TIMEOUT", c.Backend.Timeout)
	c.CacheTTL = getEnvAsDuration("CACHE_TTL", c.CacheTTL)
	c.CounterRefreshInterval = getEnvAsDuration("COUNTER_REFRESH_INTERVAL", c.CounterRefreshInterval)
	c.TrendPollInterval = getEnvAsDuration("TREND_POLL_INTERVAL", c.TrendPollInterval)
	c.Pagination.InitialVisible = getEnvAsInt("INITIAL_VISIBLE_COUNT", c.Pagination.InitialVisible)
	c.Pagination.LoadMoreStep = getEnvAsInt("LOAD_MORE_INCREMENT", c.Pagination.LoadMoreStep)
	c.Pagination.PreserveOnFilter = getEnvAsBool("PRESERVE_WINDOW_ON_FILTER", c.Pagination.PreserveOnFilter)
	c.BookmarkKey = getEnv("BOOKMARK_KEY", c.BookmarkKey)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.EnableSwagger = getEnvAsBool("ENABLE_SWAGGER", c.EnableSwagger)
	c.EnableFixtureFiles = getEnvAsBool("ENABLE_FIXTURE_FILES", c.EnableFixtureFiles)
	c.EnableMetrics = getEnvAsBool("ENABLE_METRICS", c.EnableMetrics)

	s := &c.Security
	s.EnableRateLimit = getEnvAsBool("ENABLE_RATE_LIMIT", s.EnableRateLimit)
	s.RateLimitPerSecond = getEnvAsFloat("RATE_LIMIT_PER_SECOND", s.RateLimitPerSecond)
	s.RateLimitBurst = getEnvAsInt("RATE_LIMIT_BURST", s.RateLimitBurst)
	s.EnableCORS = getEnvAsBool("ENABLE_CORS", s.EnableCORS)
	s.AllowedOrigins = getEnvAsStringSlice("ALLOWED_ORIGINS", s.AllowedOrigins)
	s.EnableSecurityHeaders = getEnvAsBool("ENABLE_SECURITY_HEADERS", s.EnableSecurityHeaders)
	s.MaxRequestSize = getEnvAsInt64("MAX_REQUEST_SIZE", s.MaxRequestSize)
	s.EnableRequestID = getEnvAsBool("ENABLE_REQUEST_ID", s.EnableRequestID)

	for topic, urls := range loadTrendsFromEnv() {
		c.Trends[topic] = urls
	}
}

// normalize repairs values a file or the environment may have zeroed out.
func (c *Config) normalize() {
	if len(c.Collections) == 0 {
		c.Collections = DefaultCollections()
	}
	if c.Trends == nil {
		c.Trends = map[string][]string{}
	}
	if c.Pagination.InitialVisible <= 0 {
		c.Pagination.InitialVisible = 9
	}
	if c.Pagination.LoadMoreStep <= 0 {
		c.Pagination.LoadMoreStep = 9
	}
	if strings.TrimSpace(c.BookmarkKey) == "" {
		c.BookmarkKey = "savedNews"
	}
	c.Backend.URL = strings.TrimRight(strings.TrimSpace(c.Backend.URL), "/")
}

func loadTrendsFromEnv() map[string][]string {
	trends := make(map[string][]string)

	// TREND_TOPIC_<NAME>=url1,url2
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, "TREND_TOPIC_") {
			continue
		}
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}

		topic := strings.ToLower(strings.TrimPrefix(parts[0], "TREND_TOPIC_"))
		if topic == "" {
			continue
		}
		if urls := parseURLList(parts[1]); len(urls) > 0 {
			trends[topic] = urls
		}
	}

	return trends
}

func parseURLList(value string) []string {
	var urls []string
	for _, u := range strings.Split(value, ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

func getEnv(key string, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if floatVal, err := strconv.ParseFloat(val, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.ParseInt(val, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsStringSlice(key string, defaultVal []string) []string {
	if val := os.Getenv(key); val != "" {
		origins := strings.Split(val, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		return origins
	}
	return defaultVal
}
