package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"park-ticketing/internal/logger"
	"park-ticketing/internal/middleware"
)

func newRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func get(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestServiceRoleAuth(t *testing.T) {
	router := newRouter(middleware.ServiceRoleAuth("role-secret", logger.NewLogger()))

	tests := []struct {
		name          string
		authorization string
		wantStatus    int
	}{
		{"valid token", "Bearer role-secret", http.StatusOK},
		{"wrong token", "Bearer wrong", http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
		{"not a bearer scheme", "Basic role-secret", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, get(router, tt.authorization).Code)
		})
	}
}

func TestServiceRoleAuthRejectsEverythingWithoutSecret(t *testing.T) {
	router := newRouter(middleware.ServiceRoleAuth("", logger.NewLogger()))

	// An unset secret must fail closed, not open.
	assert.Equal(t, http.StatusUnauthorized, get(router, "Bearer ").Code)
}

func TestRateLimitExhaustion(t *testing.T) {
	router := newRouter(middleware.RateLimit(logger.NewLogger()))

	var limited bool
	for i := 0; i < 150; i++ {
		if get(router, "").Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited, "burst exhaustion should produce a 429")
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CORS())
	r.POST("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
