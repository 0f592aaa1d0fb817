package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ethics-case-api/internal/handler"
	"github.com/noah-isme/ethics-case-api/internal/models"
	"github.com/noah-isme/ethics-case-api/internal/service"
	"github.com/noah-isme/ethics-case-api/pkg/config"
)

func testToken(t *testing.T, role models.UserRole) string {
	t.Helper()
	claims := models.JWTClaims{
		UserID: "user-1",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	metrics := service.NewMetricsService()
	registerRoutes(r, &config.Config{}, routeDeps{
		identity: service.NewIdentityService(service.IdentityConfig{Secret: "secret"}),
		metrics:  metrics,
		workflow: handler.NewWorkflowHandler(nil, nil),
		health:   handler.NewMetricsHandler(metrics, nil),
	})
	return r
}

func TestRoutesEnforceRoles(t *testing.T) {
	r := newTestRouter()
	cases := []struct {
		method string
		path   string
		role   models.UserRole
	}{
		{http.MethodPost, "/api/v1/cases/c1/assign", models.RoleAnalyst},
		{http.MethodPost, "/api/v1/cases/c1/review", models.RoleSchoolManager},
		{http.MethodPost, "/api/v1/cases/c1/archive", models.RoleAdmin},
		{http.MethodPut, "/api/v1/cases/c1/visibility", models.RoleAnalyst},
		{http.MethodPost, "/api/v1/cases/c1/report", models.RoleDirector},
		{http.MethodPost, "/api/v1/cases/c1/draft", models.RoleDirector},
		{http.MethodGet, "/api/v1/cases", models.RoleAnalyst},
		{http.MethodGet, "/api/v1/cases/c1/history", models.RoleSchoolManager},
		{http.MethodGet, "/api/v1/cases/c1/history/export", models.RoleAnalyst},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader("{}"))
			req.Header.Set("Authorization", "Bearer "+testToken(t, tc.role))
			r.ServeHTTP(w, req)
			require.Equal(t, http.StatusForbidden, w.Code)
		})
	}
}

func TestRoutesRequireToken(t *testing.T) {
	r := newTestRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cases/c1", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoutesPublicEndpoints(t *testing.T) {
	r := newTestRouter()
	for _, path := range []string{"/health", "/ready", "/metrics"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code, path)
	}
}
