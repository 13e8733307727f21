package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/inaciosamuel465/estateflow/internal/api/handlers"
	"github.com/inaciosamuel465/estateflow/internal/config"
	"github.com/inaciosamuel465/estateflow/internal/models"
	"github.com/inaciosamuel465/estateflow/internal/services"
)

func authTestConfig() *config.Config {
	return &config.Config{JwtSecret: "test-secret", JwtTTL: time.Hour}
}

func TestRegisterCreatesClientByDefault(t *testing.T) {
	userService := new(MockUserService)
	userService.On("CreateUser", mock.Anything, "Ana", "ana@example.com", "", "secret-password", models.RoleClient).
		Return(&models.User{Base: models.Base{ID: "u1"}, Name: "Ana", Role: models.RoleClient}, nil)

	h := handlers.NewAuthHandler(authTestConfig(), userService)
	r := gin.New()
	r.POST("/auth/register", h.Register)

	body := `{"name":"Ana","email":"ana@example.com","password":"secret-password"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "u1", resp.User.ID)
	userService.AssertExpectations(t)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	h := handlers.NewAuthHandler(authTestConfig(), new(MockUserService))
	r := gin.New()
	r.POST("/auth/register", h.Register)

	body := `{"name":"Eve","email":"eve@example.com","password":"secret-password","role":"admin"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginInvalidCredentials(t *testing.T) {
	userService := new(MockUserService)
	userService.On("Authenticate", mock.Anything, "ana@example.com", "wrong").
		Return(nil, services.ErrInvalidCredentials)

	h := handlers.NewAuthHandler(authTestConfig(), userService)
	r := gin.New()
	r.POST("/auth/login", h.Login)

	body := `{"email":"ana@example.com","password":"wrong"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
