package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"missionhub/internal/metrics"
	"missionhub/pkg/logger"
	"missionhub/pkg/models"
)

const (
	ctxUserID   = "user_id"
	ctxUser     = "user"
	headerReqID = "X-Request-ID"
)

// TokenValidator resolves a bearer token to a profile
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*models.Profile, error)
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func abortWith(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, models.APIResponse{
		Success:   false,
		Error:     code,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// AuthMiddleware validates the JWT and stores the profile in the context
func AuthMiddleware(auth TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			abortWith(c, http.StatusUnauthorized, models.ErrCodeUnauthorized, "missing authorization header")
			return
		}
		token, ok := bearerToken(c)
		if !ok {
			abortWith(c, http.StatusUnauthorized, models.ErrCodeUnauthorized, "invalid authorization format")
			return
		}

		profile, err := auth.ValidateToken(c.Request.Context(), token)
		if err != nil {
			abortWith(c, http.StatusUnauthorized, models.ErrCodeUnauthorized, "unauthorized")
			return
		}

		c.Set(ctxUserID, profile.ID)
		c.Set(ctxUser, profile)
		c.Next()
	}
}

// OptionalAuth sets the profile when a valid token is present and otherwise
// lets the request through anonymously
func OptionalAuth(auth TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if profile, err := auth.ValidateToken(c.Request.Context(), token); err == nil {
				c.Set(ctxUserID, profile.ID)
				c.Set(ctxUser, profile)
			}
		}
		c.Next()
	}
}

// GetUserID extracts the authenticated profile id
func GetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxUserID)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// GetUser retrieves the authenticated profile
func GetUser(c *gin.Context) (*models.Profile, bool) {
	v, exists := c.Get(ctxUser)
	if !exists {
		return nil, false
	}
	p, ok := v.(*models.Profile)
	return p, ok
}

// AdminMiddleware must run after AuthMiddleware
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUser(c)
		if !ok {
			abortWith(c, http.StatusUnauthorized, models.ErrCodeUnauthorized, "unauthorized")
			return
		}
		if !user.IsAdmin() {
			abortWith(c, http.StatusForbidden, models.ErrCodeForbidden, "admin access required")
			return
		}
		c.Next()
	}
}

// RateLimiter keeps one token bucket per profile (or client IP when anonymous)
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*visitor
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	lastGC   time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter returns nil when perSecond is not positive, which disables limiting
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*visitor),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		ttl:      10 * time.Minute,
		lastGC:   time.Now(),
	}
}

// Allow reports whether key may act now
func (r *RateLimiter) Allow(key string) bool {
	if r == nil {
		return true
	}
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if now.Sub(r.lastGC) > r.ttl {
		for k, v := range r.limiters {
			if now.Sub(v.lastSeen) > r.ttl {
				delete(r.limiters, k)
			}
		}
		r.lastGC = now
	}

	v, ok := r.limiters[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.limiters[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := GetUserID(c)
		if !ok {
			key = c.ClientIP()
		}
		if !r.Allow(key) {
			c.Header("Retry-After", "1")
			abortWith(c, http.StatusTooManyRequests, models.ErrCodeRateLimited, "too many requests, slow down")
			return
		}
		c.Next()
	}
}

// requestLogger replaces gin.Logger with structured logging plus metrics
func requestLogger(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(headerReqID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(headerReqID, reqID)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), reqID))

		if m != nil {
			m.RequestsInFlight.Inc()
			defer m.RequestsInFlight.Dec()
		}

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		logger.HTTP(c.Request.Method, c.Request.URL.Path, status, int(elapsed.Milliseconds()))

		if m != nil {
			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			m.RequestDuration.WithLabelValues(route, c.Request.Method, strconv.Itoa(status)).Observe(elapsed.Seconds())
		}
	}
}

// corsMiddleware echoes allowed origins; "*" allows any
func corsMiddleware(allowed []string) gin.HandlerFunc {
	allowAll := false
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			allowAll = true
		}
		set[strings.ToLower(o)] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case origin != "" && set[strings.ToLower(origin)]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		case allowAll:
			c.Header("Access-Control-Allow-Origin", "*")
		}
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
