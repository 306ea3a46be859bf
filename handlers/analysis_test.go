package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"case_flow_app_go/models"
	"case_flow_app_go/services"
	"case_flow_app_go/services/orchestrator"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orchestratorServer(t *testing.T, status int, body string) (*httptest.Server, *int32, *orchestrator.AnalyzeRequest) {
	t.Helper()
	var calls int32
	var received orchestrator.AnalyzeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, orchestrator.AnalyzePath, r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls, &received
}

func analyzeContext(t *testing.T, caseID string, body interface{}, analyzer services.Analyzer) (func() error, *httptest.ResponseRecorder) {
	t.Helper()
	_, c, rec := setupEcho(http.MethodPost, "/api/cases/"+caseID+"/analyze", jsonBody(body))
	c.SetParamNames("id")
	c.SetParamValues(caseID)
	providers := testProviders()
	providers.Analyzer = analyzer
	c.Set(ProvidersKey, providers)
	return func() error { return AnalyzeCaseHandler(c) }, rec
}

func TestAnalyzeCaseHandler_EndToEnd(t *testing.T) {
	database := setupTestDB(t)
	lawCase := createCase(t, database)

	srv, calls, received := orchestratorServer(t, http.StatusOK, `{
		"agent_type": "sherlock",
		"response": "Summary text",
		"analysis": {"tasks": [{"title": "Follow up", "priority": "high"}]}
	}`)

	run, rec := analyzeContext(t, lawCase.ID, map[string]interface{}{
		"userRequest": "Summarize",
		"fileUrls":    []string{"http://x/a.pdf"},
	}, orchestrator.NewClient(srv.URL, time.Minute))

	require.NoError(t, run())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
	assert.Equal(t, orchestrator.AnalyzeRequest{
		UserRequest: "Summarize",
		FileURLs:    []string{"http://x/a.pdf"},
		CaseID:      lawCase.ID,
	}, *received)

	var out struct {
		Success       bool                   `json:"success"`
		Analysis      map[string]interface{} `json:"analysis"`
		ReasonChainID string                 `json:"reasonChainId"`
		TasksCreated  int                    `json:"tasksCreated"`
		Tasks         []models.AITask        `json:"tasks"`
	}
	decodeJSON(t, rec, &out)
	assert.True(t, out.Success)
	assert.Equal(t, 1, out.TasksCreated)
	assert.Equal(t, "sherlock", out.Analysis["agent_type"])
	require.Len(t, out.Tasks, 1)
	assert.Equal(t, out.ReasonChainID, *out.Tasks[0].RelatedTo)

	var chain models.ReasonChain
	require.NoError(t, database.First(&chain, "id = ?", out.ReasonChainID).Error)
	assert.Equal(t, "sherlock", chain.AgentType)
	assert.Equal(t, models.ImpactHigh, chain.Impact)
	assert.InDelta(t, 0.85, *chain.Confidence, 1e-9)

	var task models.AITask
	require.NoError(t, database.First(&task, "case_id = ?", lawCase.ID).Error)
	assert.Equal(t, "Follow up", task.Title)
	assert.Equal(t, models.TaskCategoryFollowUp, task.Category)
	assert.Equal(t, models.TaskPriorityHigh, task.Priority)

	var updated models.Case
	require.NoError(t, database.First(&updated, "id = ?", lawCase.ID).Error)
	assert.WithinDuration(t, time.Now(), updated.LastActivity, 5*time.Second)
}

func TestAnalyzeCaseHandler_Validation(t *testing.T) {
	database := setupTestDB(t)
	lawCase := createCase(t, database)
	srv, calls, _ := orchestratorServer(t, http.StatusOK, `{}`)
	client := orchestrator.NewClient(srv.URL, time.Minute)

	bodies := []interface{}{
		map[string]interface{}{"fileUrls": []string{"http://x/a.pdf"}},
		map[string]interface{}{"userRequest": "", "fileUrls": []string{"http://x/a.pdf"}},
		map[string]interface{}{"userRequest": "Summarize"},
		map[string]interface{}{"userRequest": "Summarize", "fileUrls": "http://x/a.pdf"},
		map[string]interface{}{"userRequest": "Summarize", "fileUrls": []string{}},
	}
	for _, body := range bodies {
		run, rec := analyzeContext(t, lawCase.ID, body, client)
		require.NoError(t, run())
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp map[string]string
		decodeJSON(t, rec, &resp)
		assert.Equal(t, "userRequest and fileUrls array are required", resp["error"])
	}

	assert.Zero(t, atomic.LoadInt32(calls))
	var count int64
	database.Model(&models.ReasonChain{}).Count(&count)
	assert.Zero(t, count)
}

func TestAnalyzeCaseHandler_UnknownCase(t *testing.T) {
	setupTestDB(t)
	srv, calls, _ := orchestratorServer(t, http.StatusOK, `{}`)

	run, rec := analyzeContext(t, "missing", map[string]interface{}{
		"userRequest": "Summarize",
		"fileUrls":    []string{"http://x/a.pdf"},
	}, orchestrator.NewClient(srv.URL, time.Minute))

	require.NoError(t, run())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Case not found")
	assert.Zero(t, atomic.LoadInt32(calls))
}

func TestAnalyzeCaseHandler_UpstreamFailure(t *testing.T) {
	database := setupTestDB(t)
	lawCase := createCase(t, database)
	srv, _, _ := orchestratorServer(t, http.StatusBadGateway, `{"detail": "model overloaded"}`)

	run, rec := analyzeContext(t, lawCase.ID, map[string]interface{}{
		"userRequest": "Summarize",
		"fileUrls":    []string{"http://x/a.pdf"},
	}, orchestrator.NewClient(srv.URL, time.Minute))

	require.NoError(t, run())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "Failed to analyze case", resp["error"])
	assert.Contains(t, resp["details"], "502")

	var count int64
	database.Model(&models.ReasonChain{}).Count(&count)
	assert.Zero(t, count)
}

func TestAnalyzeCaseHandler_Timeout(t *testing.T) {
	database := setupTestDB(t)
	lawCase := createCase(t, database)

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	run, rec := analyzeContext(t, lawCase.ID, map[string]interface{}{
		"userRequest": "Summarize",
		"fileUrls":    []string{"http://x/a.pdf"},
	}, orchestrator.NewClient(srv.URL, 50*time.Millisecond))

	require.NoError(t, run())
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)

	var resp map[string]string
	decodeJSON(t, rec, &resp)
	assert.True(t, strings.HasPrefix(resp["error"], "Analysis timed out after 50ms"))

	var chains, tasks int64
	database.Model(&models.ReasonChain{}).Count(&chains)
	database.Model(&models.AITask{}).Count(&tasks)
	assert.Zero(t, chains)
	assert.Zero(t, tasks)
}

func TestListCaseAnalysesHandler(t *testing.T) {
	database := setupTestDB(t)
	lawCase := createCase(t, database)
	now := time.Now()

	require.NoError(t, database.Create(&[]models.ReasonChain{
		{CaseID: lawCase.ID, AgentType: "docu", Action: "older", Timestamp: now.Add(-time.Hour)},
		{CaseID: lawCase.ID, AgentType: "orchestrator", Action: "newer", Timestamp: now},
		{CaseID: lawCase.ID, AgentType: "billing", Action: "excluded", Timestamp: now},
	}).Error)

	_, c, rec := setupEcho(http.MethodGet, "/api/cases/"+lawCase.ID+"/analyze", nil)
	c.SetParamNames("id")
	c.SetParamValues(lawCase.ID)

	require.NoError(t, ListCaseAnalysesHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var analyses []models.ReasonChain
	decodeJSON(t, rec, &analyses)
	require.Len(t, analyses, 2)
	assert.Equal(t, "newer", analyses[0].Action)
	assert.Equal(t, "older", analyses[1].Action)
}

func TestHandlersWithoutProviders(t *testing.T) {
	database := setupTestDB(t)
	lawCase := createCase(t, database)

	routes := map[string]echo.HandlerFunc{
		"analyze":  AnalyzeCaseHandler,
		"email":    SendCaseEmailHandler,
		"call":     MakeCaseCallHandler,
		"download": DownloadFileHandler,
	}

	for name, handler := range routes {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/", jsonBody(map[string]interface{}{
				"userRequest": "Summarize",
				"fileUrls":    []string{"http://x/a.pdf"},
			}))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("id")
			c.SetParamValues(lawCase.ID)

			require.NotPanics(t, func() { require.NoError(t, handler(c)) })
			assert.Equal(t, http.StatusInternalServerError, rec.Code)

			var resp map[string]string
			decodeJSON(t, rec, &resp)
			assert.Equal(t, errProvidersMissing.Error(), resp["details"])
		})
	}
}
