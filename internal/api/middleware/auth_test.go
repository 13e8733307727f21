package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inaciosamuel465/estateflow/internal/auth"
	"github.com/inaciosamuel465/estateflow/internal/models"
)

const testSecret = "test-secret"

func protectedRouter(admin bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/")
	group.Use(AuthMiddleware(testSecret))
	if admin {
		group.Use(AdminMiddleware())
	}
	group.GET("/secure", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c), "role": UserRole(c)})
	})
	return r
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	w := httptest.NewRecorder()
	protectedRouter(false).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/secure", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	token, err := auth.GenerateJWT("u1", models.RoleClient, testSecret, time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	protectedRouter(false).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminMiddlewareRejectsNonAdmin(t *testing.T) {
	token, err := auth.GenerateJWT("u1", models.RoleClient, testSecret, time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	protectedRouter(true).ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminMiddlewareAcceptsAdmin(t *testing.T) {
	token, err := auth.GenerateJWT("a1", models.RoleAdmin, testSecret, time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	protectedRouter(true).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
