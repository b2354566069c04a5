package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/leave-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/leave-dashboard-api/pkg/errors"
)

type resolverStub struct {
	sessions map[string]*models.Session
}

func (r resolverStub) Resolve(_ context.Context, token string) (*models.Session, error) {
	if s, ok := r.sessions[token]; ok {
		return s, nil
	}
	return nil, appErrors.Clone(appErrors.ErrSessionRevoked, "")
}

type observerStub struct {
	paths    []string
	statuses []int
}

func (o *observerStub) ObserveHTTPRequest(_ string, path string, status int, _ time.Duration) {
	o.paths = append(o.paths, path)
	o.statuses = append(o.statuses, status)
}

func newRouter(resolver SessionResolver, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := append([]gin.HandlerFunc{RequireSession(resolver)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		session, _ := CurrentSession(c)
		c.String(http.StatusOK, session.UserID)
	})
	router.GET("/private", handlers...)
	return router
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.NotNil(t, envelope.Error)
	return envelope.Error.Code
}

func TestRequireSession(t *testing.T) {
	resolver := resolverStub{sessions: map[string]*models.Session{"good": {UserID: "u1"}}}
	router := newRouter(resolver)

	cases := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"missing header", "", http.StatusUnauthorized, appErrors.ErrUnauthorized.Code},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, appErrors.ErrUnauthorized.Code},
		{"revoked", "Bearer stale", http.StatusUnauthorized, appErrors.ErrSessionRevoked.Code},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, errorCode(t, rec.Body.Bytes()))
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "bearer good")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	resolver := resolverStub{sessions: map[string]*models.Session{
		"admin": {UserID: "boss", IsAdmin: true},
		"staff": {UserID: "u1"},
	}}
	router := newRouter(resolver, RequireAdmin())

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer staff")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer admin")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsGroupsUnmatchedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	obs := &observerStub{}
	router := gin.New()
	router.Use(Metrics(obs))
	router.GET("/leave/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/leave/42", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, []string{"/leave/:id", "unmatched"}, obs.paths)
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNotFound}, obs.statuses)
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	var meta map[string]interface{}
	router.Use(WithResponseMeta())
	router.GET("/", func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, true, meta[cacheHitKey])
	assert.Contains(t, meta, processingKey)
}

func TestAuditLogsSuccessfulRequests(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	resolver := resolverStub{sessions: map[string]*models.Session{"admin": {UserID: "boss", IsAdmin: true}}}
	router := newRouter(resolver, Audit(zap.New(core), "cache.invalidate"))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer admin")
	router.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "cache.invalidate", fields["action"])
	assert.Equal(t, "boss", fields["user_id"])

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, 1, logs.Len())
}
