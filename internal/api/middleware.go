package api

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/logger"
	"alcyxob/fitcoach/internal/service"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/time/rate"
)

// Constants for context keys
const (
	ContextUserIDKey   = "userID"
	ContextUserRoleKey = "userRole"

	// UserIDParam identifies the caller without a token when enabled in config.
	UserIDParam = "user_id"
)

// AuthMiddleware authenticates the caller from a Bearer token. When
// allowUserIDParam is set, a request without an Authorization header may
// instead name an existing user through the user_id query parameter.
func AuthMiddleware(authService service.AuthService, allowUserIDParam bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if allowUserIDParam && c.Query(UserIDParam) != "" {
				authenticateByUserID(c, authService)
				return
			}
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		identity, err := authService.ParseToken(parts[1])
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, err.Error())
			return
		}

		setIdentity(c, identity)
		c.Next()
	}
}

func authenticateByUserID(c *gin.Context, authService service.AuthService) {
	userID, err := primitive.ObjectIDFromHex(c.Query(UserIDParam))
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Invalid user_id parameter")
		return
	}
	identity, err := authService.ResolveUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			abortWithError(c, http.StatusUnauthorized, "Unknown user_id")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user")
		return
	}
	setIdentity(c, identity)
	c.Next()
}

func setIdentity(c *gin.Context, identity *service.Identity) {
	c.Set(ContextUserIDKey, identity.UserID)
	c.Set(ContextUserRoleKey, identity.Role)
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// RoleMiddleware creates middleware to check if user has the required role(s).
// Must run AFTER AuthMiddleware.
func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, err := getUserRoleFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, err.Error())
			return
		}

		for _, allowedRole := range allowedRoles {
			if userRole == allowedRole {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, fmt.Sprintf("Access denied: Role '%s' does not have permission", userRole))
	}
}

// RequestLogger logs one line per request once the handler chain has run.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"clientIP", c.ClientIP(),
		}
		if userID, err := getUserIDFromContext(c); err == nil {
			fields = append(fields, "userID", userID.Hex())
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Errorw("request failed", fields...)
		case status >= http.StatusBadRequest:
			log.Warnw("request rejected", fields...)
		default:
			log.Infow("request", fields...)
		}
	}
}

// RateLimiter keeps one token bucket per caller. Authenticated callers are
// keyed by user ID, everyone else by client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	log      *logger.Logger
}

// maxTrackedLimiters bounds the bucket map. Once exceeded the map is reset.
const maxTrackedLimiters = 10000

func NewRateLimiter(rps float64, burst int, log *logger.Logger) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
		log:      log,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[key]
	if !ok {
		if len(rl.limiters) >= maxTrackedLimiters {
			rl.limiters = make(map[string]*rate.Limiter)
		}
		l = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = l
	}
	return l
}

// Middleware rejects requests over the limit with 429. A non-positive rate
// disables limiting.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.rate <= 0 {
			c.Next()
			return
		}

		key := c.ClientIP()
		if userID, err := getUserIDFromContext(c); err == nil {
			key = userID.Hex()
		}

		if !rl.limiter(key).Allow() {
			rl.log.Warnw("rate limit exceeded", "key", key, "path", c.FullPath())
			abortWithError(c, http.StatusTooManyRequests, "Too many requests, slow down")
			return
		}
		c.Next()
	}
}

// Helper function to get User ID from context (used by handlers)
func getUserIDFromContext(c *gin.Context) (primitive.ObjectID, error) {
	idRaw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return primitive.NilObjectID, errors.New("user ID not found in context")
	}
	id, ok := idRaw.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("invalid user ID type in context")
	}
	return id, nil
}

// Helper function to get User Role from context (used by handlers)
func getUserRoleFromContext(c *gin.Context) (domain.Role, error) {
	roleRaw, exists := c.Get(ContextUserRoleKey)
	if !exists {
		return "", errors.New("user role not found in context")
	}
	role, ok := roleRaw.(domain.Role)
	if !ok {
		return "", errors.New("invalid user role type in context")
	}
	return role, nil
}

// currentUser resolves the caller's ID or aborts with 401.
func currentUser(c *gin.Context) (primitive.ObjectID, bool) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return primitive.NilObjectID, false
	}
	return userID, true
}

// pathObjectID parses an ObjectID path parameter or aborts with 400.
func pathObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s format.", name))
		return primitive.NilObjectID, false
	}
	return id, true
}
