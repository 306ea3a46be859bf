package handlers

import (
	"bytes"
	"net/http"
	"testing"

	"case_flow_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestTaskHandlers(t *testing.T) {
	database := setupTestDB(t)
	lawCase := createCase(t, database)

	var created models.AITask

	t.Run("Create", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/api/cases/"+lawCase.ID+"/tasks", jsonBody(map[string]interface{}{
			"title":    "Request medical records",
			"priority": "high",
			"category": "document",
			"dueDate":  "2026-11-01",
		}))
		c.SetParamNames("id")
		c.SetParamValues(lawCase.ID)

		require.NoError(t, CreateCaseTaskHandler(c))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decodeJSON(t, rec, &created)
		assert.Equal(t, "Request medical records", created.Title)
		assert.Equal(t, models.TaskCreatedByManual, created.CreatedBy)
		require.NotNil(t, created.DueDate)
	})

	t.Run("Create without title", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/api/cases/"+lawCase.ID+"/tasks", jsonBody(map[string]interface{}{"priority": "low"}))
		c.SetParamNames("id")
		c.SetParamValues(lawCase.ID)

		require.NoError(t, CreateCaseTaskHandler(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("List", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/cases/"+lawCase.ID+"/tasks", nil)
		c.SetParamNames("id")
		c.SetParamValues(lawCase.ID)

		require.NoError(t, ListCaseTasksHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var tasks []models.AITask
		decodeJSON(t, rec, &tasks)
		require.Len(t, tasks, 1)
		assert.Equal(t, created.ID, tasks[0].ID)
	})

	t.Run("Complete then clear due date", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPatch, "/api/cases/"+lawCase.ID+"/tasks/"+created.ID, jsonBody(map[string]interface{}{
			"status":  "completed",
			"dueDate": nil,
		}))
		c.SetParamNames("id", "taskId")
		c.SetParamValues(lawCase.ID, created.ID)

		require.NoError(t, UpdateCaseTaskHandler(c))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var task models.AITask
		decodeJSON(t, rec, &task)
		assert.Equal(t, models.TaskStatusCompleted, task.Status)
		assert.NotNil(t, task.CompletedAt)
		assert.Nil(t, task.DueDate)
	})

	t.Run("Invalid status", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPatch, "/", jsonBody(map[string]interface{}{"status": "archived"}))
		c.SetParamNames("id", "taskId")
		c.SetParamValues(lawCase.ID, created.ID)

		require.NoError(t, UpdateCaseTaskHandler(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Export", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/cases/"+lawCase.ID+"/tasks/export", nil)
		c.SetParamNames("id")
		c.SetParamValues(lawCase.ID)

		require.NoError(t, ExportCaseTasksHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows("Tasks")
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("Delete", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodDelete, "/", nil)
		c.SetParamNames("id", "taskId")
		c.SetParamValues(lawCase.ID, created.ID)

		require.NoError(t, DeleteCaseTaskHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		_, c, rec = setupEcho(http.MethodDelete, "/", nil)
		c.SetParamNames("id", "taskId")
		c.SetParamValues(lawCase.ID, created.ID)
		require.NoError(t, DeleteCaseTaskHandler(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
