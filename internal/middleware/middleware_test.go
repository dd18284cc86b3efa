package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"noticeboard/internal/metrics"
	"noticeboard/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func withUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user != nil {
			c.Set(CheckUserKey, user)
		}
		c.Next()
	}
}

func TestAuthRequiredAndAdminRequired(t *testing.T) {
	tests := []struct {
		name       string
		user       *models.User
		wantStatus int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"plain user", &models.User{ID: 1, Role: models.RoleUser}, http.StatusForbidden},
		{"admin", &models.User{ID: 2, Role: models.RoleAdmin}, http.StatusOK},
		{"super admin", &models.User{ID: 3, Role: models.RoleSuperAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/admin", withUser(tt.user), AuthRequired(), AdminRequired(), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestLogger_RequestIDAndLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(Logger(zap.New(core)))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
	}
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), nil)
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/announcements/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/announcements/1", "/announcements/2", "/healthz"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, promtest.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/announcements/:id", "2xx")))
}
