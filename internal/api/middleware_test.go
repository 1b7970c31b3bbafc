package api

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/logger"
	"alcyxob/fitcoach/internal/service"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubAuthService accepts exactly one token and knows a fixed set of users.
type stubAuthService struct {
	service.AuthService
	token    string
	identity service.Identity
	users    map[primitive.ObjectID]domain.Role
}

func (s *stubAuthService) ParseToken(token string) (*service.Identity, error) {
	if token != s.token {
		return nil, service.ErrInvalidToken
	}
	id := s.identity
	return &id, nil
}

func (s *stubAuthService) ResolveUser(_ context.Context, userID primitive.ObjectID) (*service.Identity, error) {
	role, ok := s.users[userID]
	if !ok {
		return nil, service.ErrInvalidToken
	}
	return &service.Identity{UserID: userID, Role: role}, nil
}

func whoAmI(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	role, _ := getUserRoleFromContext(c)
	c.JSON(http.StatusOK, gin.H{"userId": userID.Hex(), "role": role})
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware(t *testing.T) {
	tokenUser := primitive.NewObjectID()
	paramUser := primitive.NewObjectID()
	auth := &stubAuthService{
		token:    "good-token",
		identity: service.Identity{UserID: tokenUser, Role: domain.RoleTrainer},
		users:    map[primitive.ObjectID]domain.Role{paramUser: domain.RoleClient},
	}

	tests := []struct {
		name       string
		allowParam bool
		header     string
		query      string
		wantStatus int
		wantUser   primitive.ObjectID
	}{
		{"missing header", false, "", "", http.StatusUnauthorized, primitive.NilObjectID},
		{"wrong scheme", false, "Basic abc", "", http.StatusUnauthorized, primitive.NilObjectID},
		{"extra parts", false, "Bearer a b", "", http.StatusUnauthorized, primitive.NilObjectID},
		{"invalid token", false, "Bearer bad-token", "", http.StatusUnauthorized, primitive.NilObjectID},
		{"valid token", false, "Bearer good-token", "", http.StatusOK, tokenUser},
		{"lowercase scheme", false, "bearer good-token", "", http.StatusOK, tokenUser},
		{"user_id param disabled", false, "", "?user_id=" + paramUser.Hex(), http.StatusUnauthorized, primitive.NilObjectID},
		{"user_id param enabled", true, "", "?user_id=" + paramUser.Hex(), http.StatusOK, paramUser},
		{"user_id malformed", true, "", "?user_id=nope", http.StatusUnauthorized, primitive.NilObjectID},
		{"user_id unknown", true, "", "?user_id=" + primitive.NewObjectID().Hex(), http.StatusUnauthorized, primitive.NilObjectID},
		{"header wins over param", true, "Bearer good-token", "?user_id=" + paramUser.Hex(), http.StatusOK, tokenUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/me", AuthMiddleware(auth, tt.allowParam), whoAmI)

			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeBody(t, w)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantUser.Hex(), body["userId"])
			} else {
				assert.NotEmpty(t, body["error"])
			}
		})
	}
}

func withIdentity(userID primitive.ObjectID, role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		setIdentity(c, &service.Identity{UserID: userID, Role: role})
		c.Next()
	}
}

func TestRoleMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		role       domain.Role
		wantStatus int
	}{
		{"trainer allowed", domain.RoleTrainer, http.StatusOK},
		{"client rejected", domain.RoleClient, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/only-trainers", withIdentity(primitive.NewObjectID(), tt.role), RoleMiddleware(domain.RoleTrainer), whoAmI)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/only-trainers", nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}

	t.Run("no identity", func(t *testing.T) {
		router := gin.New()
		router.GET("/only-trainers", RoleMiddleware(domain.RoleTrainer), whoAmI)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/only-trainers", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	newRouter := func(limiter *RateLimiter) *gin.Engine {
		router := gin.New()
		router.POST("/generate/:as", func(c *gin.Context) {
			id, _ := primitive.ObjectIDFromHex(c.Param("as"))
			setIdentity(c, &service.Identity{UserID: id, Role: domain.RoleClient})
			c.Next()
		}, limiter.Middleware(), func(c *gin.Context) {
			c.Status(http.StatusCreated)
		})
		return router
	}
	call := func(router *gin.Engine, userID primitive.ObjectID) int {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generate/"+userID.Hex(), nil))
		return w.Code
	}

	t.Run("limits per user", func(t *testing.T) {
		// Refills far slower than the test runs.
		router := newRouter(NewRateLimiter(0.001, 2, logger.Nop()))

		assert.Equal(t, http.StatusCreated, call(router, alice))
		assert.Equal(t, http.StatusCreated, call(router, alice))
		assert.Equal(t, http.StatusTooManyRequests, call(router, alice))

		assert.Equal(t, http.StatusCreated, call(router, bob))
	})

	t.Run("non-positive rate disables limiting", func(t *testing.T) {
		router := newRouter(NewRateLimiter(0, 1, logger.Nop()))
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusCreated, call(router, alice))
		}
	})
}

func TestPathObjectID(t *testing.T) {
	router := gin.New()
	router.GET("/things/:thingId", func(c *gin.Context) {
		id, ok := pathObjectID(c, "thingId")
		if !ok {
			return
		}
		c.String(http.StatusOK, id.Hex())
	})

	id := primitive.NewObjectID()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/things/"+id.Hex(), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id.Hex(), w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/things/xyz", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
