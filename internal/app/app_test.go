package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/stockroom/internal/listing"
	"github.com/odyssey-erp/stockroom/internal/observability"
	"github.com/odyssey-erp/stockroom/internal/shared"
	"github.com/odyssey-erp/stockroom/internal/testing/guard"
)

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "")
	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("CSRF_SECRET", "csrf")
	t.Setenv("LIST_CACHE_TTL", "90s")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.ListCacheTTL)
	assert.Equal(t, "0 6 * * *", cfg.LowStockCron)
	assert.True(t, cfg.DBAutoMigrate)
	assert.False(t, cfg.IsProduction())
}

func TestGuardEnablesTestMode(t *testing.T) {
	t.Cleanup(RefreshTestMode)
	assert.Equal(t, testModeEnv, guard.Env)
	RefreshTestMode()
	assert.True(t, InTestMode())

	t.Setenv(testModeEnv, "0")
	RefreshTestMode()
	assert.False(t, InTestMode())
}

func TestModelsAndSchemasCoverEveryList(t *testing.T) {
	assert.NotEmpty(t, Models())
	names := map[string]bool{}
	for _, s := range ListSchemas() {
		assert.False(t, names[s.Name], "duplicate list %s", s.Name)
		names[s.Name] = true
	}
	for _, name := range []string{"products", "categories", "customers", "orders", "payments", "expenses", "activity", "inventory-logs"} {
		assert.True(t, names[name], name)
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &Config{AppEnv: "test", RateLimit: 1000, AppRequestTimeout: 5 * time.Second}
	return NewRouter(RouterParams{
		Config:         cfg,
		SessionManager: shared.NewSessionManager(client, "stockroom_session", time.Hour, false),
		CSRFManager:    shared.NewCSRFManager("csrf-secret"),
		Metrics:        observability.NewMetrics(),
		Filters:        listing.NewFilterHandler(listing.NewRegistry(ListSchemas()...), nil),
	})
}

func TestHealthzSkipsSession(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestUnsafeRequestsNeedCSRFToken(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/session", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var sess struct {
		CSRFToken   string `json:"csrf_token"`
		SidebarOpen bool   `json:"sidebar_open"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	require.NotEmpty(t, sess.CSRFToken)
	assert.True(t, sess.SidebarOpen)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ui/sidebar", strings.NewReader(`{"open":false}`))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/ui/sidebar", strings.NewReader(`{"open":false}`))
	req.Header.Set(shared.CSRFHeader, sess.CSRFToken)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var sidebar *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == shared.SidebarCookie {
			sidebar = c
		}
	}
	require.NotNil(t, sidebar)
	assert.Equal(t, "false", sidebar.Value)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/filters",
		strings.NewReader(`{"list":"orders","href":"/orders?status=PENDING&page=3","key":"paymentStatus","value":"PAID"}`))
	req.Header.Set(shared.CSRFHeader, sess.CSRFToken)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var filter listing.FilterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &filter))
	assert.Equal(t, "/orders?status=PENDING&paymentStatus=PAID", filter.Href)
	assert.False(t, filter.Scroll)
}
