package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"case_flow_app_go/config"
	"case_flow_app_go/db"
	"case_flow_app_go/models"
	"case_flow_app_go/services"
	"case_flow_app_go/services/telephony"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique shared memory name isolates tests while every pooled connection sees the same data
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, testDB.AutoMigrate(models.All()...))

	// Set global DB
	db.DB = testDB

	return testDB
}

type stubMailer struct {
	sent []*services.Email
	err  error
}

func (m *stubMailer) Send(_ context.Context, email *services.Email) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if email.From == "" {
		email.From = "noreply@example.com"
	}
	m.sent = append(m.sent, email)
	return "re_123", nil
}

type stubCaller struct {
	sid string
	err error
}

func (s *stubCaller) MakeCall(_ context.Context, _, _ string) (*telephony.CallResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &telephony.CallResponse{CallSid: s.sid}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Environment:         "test",
		OrchestratorTimeout: time.Minute,
		EmailTestMode:       true,
		FileURLExpiry:       15 * time.Minute,
	}
}

func testProviders() *services.Providers {
	return &services.Providers{
		Mailer: &stubMailer{},
		Caller: &stubCaller{sid: "CA-test"},
	}
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	c.Set(ConfigKey, testConfig())
	c.Set(ProvidersKey, testProviders())

	return e, c, rec
}

func jsonBody(v interface{}) io.Reader {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return strings.NewReader(string(raw))
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest))
}

func createCase(t *testing.T, database *gorm.DB, mutate ...func(*models.Case)) models.Case {
	t.Helper()
	c := models.Case{
		ClientName:   "Maria Garcia",
		CaseType:     "Workers Compensation",
		Status:       models.CaseStatusActive,
		LastActivity: time.Now().Add(-48 * time.Hour),
	}
	for _, m := range mutate {
		m(&c)
	}
	require.NoError(t, database.Create(&c).Error)
	return c
}
