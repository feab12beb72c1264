package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kecdesk/internal/config"
	"kecdesk/internal/middleware"
	"kecdesk/internal/model"
	"kecdesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "router-test-secret"

type countingRunner struct{ runs int }

func (r *countingRunner) RunDailyNotifications(_ context.Context, today time.Time) (*service.NotificationResult, error) {
	r.runs++
	return &service.NotificationResult{Date: today}, nil
}

func newEngine(t *testing.T, runner service.NotificationService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Env:            "development",
		JWTSecret:      secret,
		CronSecretKey:  "cron-key",
		MetricsEnabled: true,
	}
	return New(cfg, Deps{Notifications: runner, Calendar: service.NewCalendar(time.UTC)})
}

func bearer(t *testing.T, roles string) string {
	t.Helper()
	tok, err := middleware.IssueToken(secret, &model.User{ID: uuid.New(), Username: "u", Roles: roles}, time.Hour, time.Now())
	require.NoError(t, err)
	return "Bearer " + tok
}

func serve(r *gin.Engine, method, path, auth string) int {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRouter_PublicRoutes(t *testing.T) {
	r := newEngine(t, &countingRunner{})

	assert.Equal(t, http.StatusServiceUnavailable, serve(r, "GET", "/health", ""))
	assert.Equal(t, http.StatusOK, serve(r, "GET", "/metrics", ""))
}

func TestRouter_ProtectedRoutesNeedToken(t *testing.T) {
	r := newEngine(t, &countingRunner{})

	for _, path := range []string{"/v1/companies", "/v1/contacts", "/v1/purchase-orders", "/v1/invoices", "/v1/inquiries"} {
		assert.Equal(t, http.StatusUnauthorized, serve(r, "GET", path, ""), path)
	}
}

func TestRouter_AutomationEndpoints(t *testing.T) {
	runner := &countingRunner{}
	r := newEngine(t, runner)

	assert.Equal(t, http.StatusUnauthorized, serve(r, "GET", "/automation/send-emails", ""))
	assert.Equal(t, http.StatusOK, serve(r, "GET", "/automation/send-emails?secret=cron-key", ""))

	assert.Equal(t, http.StatusForbidden, serve(r, "POST", "/v1/automation/notifications/run", bearer(t, "sales")))
	assert.Equal(t, http.StatusOK, serve(r, "POST", "/v1/automation/notifications/run", bearer(t, "admin")))

	assert.Equal(t, 2, runner.runs)

	assert.Equal(t, http.StatusForbidden, serve(r, "GET", "/v1/automation/dead-letters", bearer(t, "manager")))
	assert.Equal(t, http.StatusServiceUnavailable, serve(r, "GET", "/v1/automation/dead-letters", bearer(t, "admin")), "no redis configured")
}

func TestRouter_DeleteNeedsManager(t *testing.T) {
	r := newEngine(t, &countingRunner{})

	// The role check rejects before the handler touches the (nil) service.
	assert.Equal(t, http.StatusForbidden, serve(r, "DELETE", "/v1/invoices/"+uuid.NewString(), bearer(t, "sales")))
	assert.Equal(t, http.StatusForbidden, serve(r, "DELETE", "/v1/companies/"+uuid.NewString(), bearer(t, "sales")))
}

func TestRouter_MetricsDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := New(&config.Config{JWTSecret: secret}, Deps{})
	assert.Equal(t, http.StatusNotFound, serve(r, "GET", "/metrics", ""))
}
