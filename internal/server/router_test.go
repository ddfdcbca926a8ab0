package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/georgemunganga/storefront-api/internal/infrastructure/config"
	"github.com/georgemunganga/storefront-api/internal/infrastructure/logger"
	"github.com/georgemunganga/storefront-api/internal/infrastructure/metrics"
	"github.com/georgemunganga/storefront-api/internal/shared/apperr"
	"github.com/georgemunganga/storefront-api/internal/testutil"
)

func testConfig() *config.Config {
	return &config.Config{
		App:         config.AppConfig{APIVersion: "v1"},
		Database:    config.DatabaseConfig{QueryTimeout: 5 * time.Second},
		HTTP:        config.HTTPConfig{MaxBodySize: 1 << 20},
		Idempotency: config.IdempotencyConfig{DuplicateStatus: http.StatusServiceUnavailable},
	}
}

type testApp struct {
	handler http.Handler
	metrics *metrics.Metrics
}

func newTestApp(t *testing.T, cfg *config.Config) *testApp {
	t.Helper()
	m := metrics.New()
	return &testApp{
		handler: NewRouter(cfg, Deps{DB: testutil.NewSQLiteDB(t), Metrics: m, Logger: zap.NewNop()}),
		metrics: m,
	}
}

func (a *testApp) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRouter_EndToEnd(t *testing.T) {
	app := newTestApp(t, testConfig())

	rec := app.do(http.MethodPost, "/v1/stores/create", `{"name":"Acme"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]string](t, rec)
	storeID := created["storeId"]
	require.NotEmpty(t, storeID)
	assert.Equal(t, rec.Header().Get(logger.RequestIDHeader), created["requestId"])

	body := `{"requestId":"r1","item":"Widget","size":"M","onOffer":false,"Price":"9.99","discount":0}`
	rec = app.do(http.MethodPost, "/v1/"+storeID+"/postitem", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	posted := decode[map[string]string](t, rec)
	assert.NotEmpty(t, posted["itemCode"])
	assert.Equal(t, "r1", posted["requestId"])

	rec = app.do(http.MethodPost, "/v1/"+storeID+"/postitem", body)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	env := decode[apperr.Envelope](t, rec)
	assert.Equal(t, "DUPLICATE_REQUEST", env.ErrorCode)
	assert.Equal(t, "r1", env.RequestID)

	rec = app.do(http.MethodGet, "/v1/stores/"+storeID+"/items", "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]map[string]any](t, rec)
	require.Len(t, items, 1, "the duplicate must not create a second item")
	assert.Equal(t, posted["itemCode"], items[0]["id"])

	rec = app.do(http.MethodGet, "/v1/stores/all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = app.do(http.MethodDelete, "/v1/stores/"+storeID+"/items/"+posted["itemCode"], "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouter_EnvelopeUsesServerRequestID(t *testing.T) {
	app := newTestApp(t, testConfig())

	rec := app.do(http.MethodGet, "/v1/stores/"+uuid.NewString(), "", logger.RequestIDHeader, "trace-1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "trace-1", rec.Header().Get(logger.RequestIDHeader))
	assert.Equal(t, "trace-1", decode[apperr.Envelope](t, rec).RequestID)
}

func TestRouter_UnknownRoute(t *testing.T) {
	app := newTestApp(t, testConfig())

	rec := app.do(http.MethodGet, "/v2/stores/all", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode[apperr.Envelope](t, rec).ErrorCode)
}

func TestRouter_PostItemMethodNotAllowed(t *testing.T) {
	app := newTestApp(t, testConfig())

	rec := app.do(http.MethodGet, "/v1/"+uuid.NewString()+"/postitem", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
	env := decode[apperr.Envelope](t, rec)
	assert.Equal(t, "METHOD_NOT_ALLOWED", env.ErrorCode)
	assert.NotEmpty(t, env.RequestID)
}

func TestRouter_DuplicateStatusConfigurable(t *testing.T) {
	cfg := testConfig()
	cfg.Idempotency.DuplicateStatus = http.StatusConflict
	app := newTestApp(t, cfg)

	storeID := decode[map[string]string](t, app.do(http.MethodPost, "/v1/stores/create", `{"name":"Acme"}`))["storeId"]
	body := `{"requestId":"r1","item":"Widget","size":"M","onOffer":true,"Price":1,"discount":0}`

	require.Equal(t, http.StatusCreated, app.do(http.MethodPost, "/v1/"+storeID+"/postitem", body).Code)
	assert.Equal(t, http.StatusConflict, app.do(http.MethodPost, "/v1/"+storeID+"/postitem", body).Code)
}

func TestRouter_BodyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.MaxBodySize = 32
	app := newTestApp(t, cfg)

	rec := app.do(http.MethodPost, "/v1/stores/create", `{"name":"`+strings.Repeat("a", 64)+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.RateLimitEnabled = true
	cfg.HTTP.RateLimitRequests = 2
	cfg.HTTP.RateLimitWindow = time.Hour
	app := newTestApp(t, cfg)

	assert.Equal(t, http.StatusOK, app.do(http.MethodGet, "/v1/stores/all", "").Code)
	assert.Equal(t, http.StatusOK, app.do(http.MethodGet, "/v1/stores/all", "").Code)

	rec := app.do(http.MethodGet, "/v1/stores/all", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", decode[apperr.Envelope](t, rec).ErrorCode)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRouter_Health(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	h := NewRouter(testConfig(), Deps{DB: db, Logger: zap.NewNop()})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	require.NoError(t, db.Close())
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	app := newTestApp(t, testConfig())

	storeID := decode[map[string]string](t, app.do(http.MethodPost, "/v1/stores/create", `{"name":"Acme"}`))["storeId"]
	body := `{"requestId":"r1","item":"Widget","size":"M","onOffer":false,"Price":"9.99","discount":0}`
	app.do(http.MethodPost, "/v1/"+storeID+"/postitem", body)
	app.do(http.MethodPost, "/v1/"+storeID+"/postitem", body)

	rec := app.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.Contains(t, out, `storefront_item_submissions_total{outcome="created"} 1`)
	assert.Contains(t, out, `storefront_item_submissions_total{outcome="duplicate"} 1`)
	assert.Contains(t, out, `storefront_http_requests_total{method="POST",route="/v1/{storeID}/postitem",status="503"} 1`)
}

func TestRecoverer(t *testing.T) {
	respond := apperr.NewResponder(http.StatusServiceUnavailable, zap.NewNop())
	h := logger.Middleware(zap.NewNop())(Recoverer(respond)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decode[apperr.Envelope](t, rec)
	assert.Equal(t, "INTERNAL_ERROR", env.ErrorCode)
	assert.Equal(t, rec.Header().Get(logger.RequestIDHeader), env.RequestID)
}

func TestBodyLimit(t *testing.T) {
	var readErr error
	h := BodyLimit(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = new(bytes.Buffer).ReadFrom(r.Body)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))

	var tooLarge *http.MaxBytesError
	assert.ErrorAs(t, readErr, &tooLarge)
}
