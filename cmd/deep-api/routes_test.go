package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/deep-platform/deep-api/internal/handler"
	"github.com/deep-platform/deep-api/internal/models"
	"github.com/deep-platform/deep-api/internal/service"
	"github.com/deep-platform/deep-api/pkg/config"
)

func testRouter(t *testing.T) (*gin.Engine, *service.IdentityService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	identity := service.NewIdentityService(service.IdentityConfig{Secret: "router-secret"})
	metrics := service.NewMetricsService()
	cfg := &config.Config{Env: config.EnvProduction, APIPrefix: "/api/v1"}
	return newRouter(cfg, zap.NewNop(), routeDeps{
		identity:   identity,
		metrics:    metrics,
		sessions:   handler.NewSessionHandler(nil),
		feed:       handler.NewFeedHandler(nil),
		statements: handler.NewStatementHandler(nil),
		ops:        handler.NewMetricsHandler(metrics, nil),
	}), identity
}

func TestRouterRequiresToken(t *testing.T) {
	router, _ := testRouter(t)

	for _, target := range []string{"/api/v1/sessions", "/api/v1/feed", "/api/v1/mentors/me/statement", "/api/v1/mentors/m1/availability"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, target)
	}
}

func TestRouterModerationNeedsModeratorClaim(t *testing.T) {
	router, identity := testRouter(t)
	token, _, err := identity.Issue("user-1", models.RoleViewer)
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/posts/p1/moderation", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouterOpsEndpoints(t *testing.T) {
	router, _ := testRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/sessions", nil)
	req.Header.Set("Origin", "https://deep.app")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/index.html", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
