// Package security holds the gin middleware stack: request ids, secure
// headers, CORS, per-client rate limiting, request size caps, parameter
// validation and the access log.
package security

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"contentdesk/internal/config"
	"contentdesk/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	maxNameLength     = 50
	maxIDLength       = 64
	maxCategoryLength = 100
	maxFilterLength   = 1000
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	limiters map[string]*clientLimiter
	mu       sync.Mutex
	r        rate.Limit
	b        int
}

func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		r:        r,
		b:        b,
	}
}

// GetLimiter returns the bucket for key, creating it on first use.
func (rl *RateLimiter) GetLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, exists := rl.limiters[key]
	if !exists {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.r, rl.b)}
		rl.limiters[key] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter
}

// Cleanup drops buckets idle for longer than idle and returns how many
// were removed.
func (rl *RateLimiter) Cleanup(idle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-idle)
	removed := 0
	for key, cl := range rl.limiters {
		if cl.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Setup installs the middleware stack on router in order.
func Setup(router *gin.Engine, cfg config.SecurityConfig, logger *zap.Logger) {
	if cfg.EnableRequestID {
		router.Use(requestid.New())
	}

	if cfg.EnableSecurityHeaders {
		router.Use(secure.New(secure.Config{
			SSLRedirect:           false,
			STSSeconds:            31536000,
			STSIncludeSubdomains:  true,
			FrameDeny:             true,
			ContentTypeNosniff:    true,
			BrowserXssFilter:      true,
			ContentSecurityPolicy: "default-src 'self'; img-src 'self' data: https:; style-src 'self' 'unsafe-inline'",
			ReferrerPolicy:        "strict-origin-when-cross-origin",
		}))
	}

	if cfg.EnableCORS {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}
		corsConfig.ExposeHeaders = []string{"X-Request-ID"}
		corsConfig.AllowCredentials = !containsWildcard(cfg.AllowedOrigins)
		router.Use(cors.New(corsConfig))
	}

	if cfg.EnableRateLimit {
		limiter := NewRateLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitBurst)
		router.Use(RateLimitMiddleware(limiter))
	}

	router.Use(RequestSizeMiddleware(cfg.MaxRequestSize))
	router.Use(InputValidationMiddleware())
	router.Use(LoggingMiddleware(logger))
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, models.Fail(msg))
}

func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.GetLimiter(getClientIP(c)).Allow() {
			abort(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			return
		}
		c.Next()
	}
}

// RequestSizeMiddleware rejects declared oversize bodies and caps the
// readable body at maxSize.
func RequestSizeMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxSize <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxSize {
			abort(c, http.StatusRequestEntityTooLarge, "request body exceeds maximum allowed size")
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		}
		c.Next()
	}
}

func InputValidationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := validateQuery(c); err != nil {
			abort(c, http.StatusBadRequest, "invalid query parameters: "+err.Error())
			return
		}
		if err := validatePathParams(c); err != nil {
			abort(c, http.StatusBadRequest, "invalid path parameters: "+err.Error())
			return
		}
		c.Next()
	}
}

// LoggingMiddleware writes one access log entry per request.
func LoggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("ip", c.ClientIP()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("user_agent", c.Request.UserAgent()),
		}
		if id := c.Writer.Header().Get("X-Request-ID"); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
		switch {
		case status >= 500:
			logger.Error("request", fields...)
		case status >= 400:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

func validateQuery(c *gin.Context) error {
	for _, key := range []string{"clicks", "visible"} {
		if v := c.Query(key); v != "" && !isValidNumber(v) {
			return fmt.Errorf("%s must be a non-negative integer", key)
		}
	}
	for _, key := range []string{"category", "subcategory", "subsubcategory", "prev_category", "prev_subcategory", "prev_subsubcategory"} {
		if len(c.Query(key)) > maxCategoryLength {
			return fmt.Errorf("%s too long: maximum %d characters", key, maxCategoryLength)
		}
	}
	if len(c.Query("$filter")) > maxFilterLength {
		return fmt.Errorf("$filter too long: maximum %d characters", maxFilterLength)
	}
	return nil
}

func validatePathParams(c *gin.Context) error {
	if name := c.Param("collection"); name != "" && !isValidName(name) {
		return fmt.Errorf("invalid collection name: must contain only alphanumeric characters and hyphens")
	}
	if target := c.Param("target"); target != "" && !isValidName(target) {
		return fmt.Errorf("invalid refresh target")
	}
	if id := c.Param("id"); id != "" && !isValidID(id) {
		return fmt.Errorf("invalid id")
	}
	if category := c.Param("category"); len(category) > maxCategoryLength {
		return fmt.Errorf("category too long: maximum %d characters", maxCategoryLength)
	}
	return nil
}

// getClientIP prefers proxy headers over the socket address.
func getClientIP(c *gin.Context) string {
	if ip := c.GetHeader("X-Forwarded-For"); ip != "" {
		if commaIndex := strings.Index(ip, ","); commaIndex != -1 {
			return strings.TrimSpace(ip[:commaIndex])
		}
		return strings.TrimSpace(ip)
	}
	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}
	return c.ClientIP()
}

func isValidNumber(s string) bool {
	if s == "" || len(s) > 9 {
		return false
	}
	for _, char := range s {
		if char < '0' || char > '9' {
			return false
		}
	}
	return true
}

func isValidName(s string) bool {
	if s == "" || len(s) > maxNameLength {
		return false
	}
	for _, char := range s {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '-') {
			return false
		}
	}
	return true
}

func isValidID(s string) bool {
	if s == "" || len(s) > maxIDLength {
		return false
	}
	return !strings.ContainsAny(s, "/\\") && strings.TrimSpace(s) == s
}
