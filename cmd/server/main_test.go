package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"case_flow_app_go/config"
	"case_flow_app_go/db"
	"case_flow_app_go/middleware"
	"case_flow_app_go/models"
	"case_flow_app_go/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServer(t *testing.T) http.Handler {
	t.Helper()

	testDB, err := gorm.Open(sqlite.Open("file:mem_"+uuid.New().String()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, testDB.AutoMigrate(models.All()...))
	db.DB = testDB

	analyze := middleware.NewRateLimiter(middleware.RateLimitConfig{Requests: 1, Window: time.Minute})
	outbound := middleware.NewOutboundRateLimiter()
	t.Cleanup(analyze.Stop)
	t.Cleanup(outbound.Stop)

	cfg := &config.Config{Environment: "test", AllowedOrigins: []string{"*"}, EmailTestMode: true}
	return newServer(cfg, &services.Providers{}, analyze, outbound)
}

func TestRoutes(t *testing.T) {
	srv := setupServer(t)

	cases := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/cases", http.StatusOK},
		{http.MethodGet, "/api/cases/missing", http.StatusNotFound},
		{http.MethodGet, "/api/cases/missing/tasks", http.StatusNotFound},
		{http.MethodGet, "/api/cases/missing/analyze", http.StatusOK},
		{http.MethodGet, "/api/actions", http.StatusOK},
		{http.MethodGet, "/api/communications", http.StatusOK},
		{http.MethodGet, "/api/files/missing/download", http.StatusNotFound},
		{http.MethodGet, "/api/dashboard/stats", http.StatusOK},
		{http.MethodGet, "/api/dashboard/recent-cases", http.StatusOK},
		{http.MethodGet, "/api/dashboard/pending-actions", http.StatusOK},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}
}

func TestAnalyzeIsRateLimited(t *testing.T) {
	srv := setupServer(t)

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/cases/missing/analyze", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusBadRequest, post().Code)

	rec := post()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}
