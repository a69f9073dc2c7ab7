// internal/interfaces/http/middleware/auth_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/distribution-backend/internal/config"
	"github.com/your-org/distribution-backend/internal/pkg/auth"
)

func adminRouter(role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/distributors", func(c *gin.Context) {
		if role != "" {
			c.Set("exec_role", role)
		}
	}, AdminMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	return router
}

func TestAdminMiddleware(t *testing.T) {
	cases := []struct {
		name   string
		role   string
		status int
	}{
		{"admin passes", "admin", http.StatusOK},
		{"exec rejected", "exec", http.StatusForbidden},
		{"unauthenticated rejected", "", http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/distributors", nil)
			adminRouter(tc.role).ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestAuthMiddlewareSetsExecContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		App: config.AppConfig{Name: "test"},
		JWT: config.JWTConfig{
			Secret:             "test-secret",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
	}
	token, err := auth.NewJWTManager(cfg).GenerateAccessToken(7, "admin@example.com", "admin")
	require.NoError(t, err)

	var gotRole interface{}
	router := gin.New()
	router.GET("/profile", AuthMiddleware(cfg), func(c *gin.Context) {
		gotRole, _ = c.Get("exec_role")
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", gotRole)

	// No token, no access.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
