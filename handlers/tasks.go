package handlers

import (
	"fmt"
	"net/http"
	"time"

	"case_flow_app_go/db"
	"case_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ListCaseTasksHandler returns the task board of a case
func ListCaseTasksHandler(c echo.Context) error {
	tasks, err := services.NewTaskService(db.DB).ListTasks(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, "Failed to fetch tasks", err)
	}
	return c.JSON(http.StatusOK, tasks)
}

// CreateCaseTaskHandler creates a manual task
func CreateCaseTaskHandler(c echo.Context) error {
	var input services.CreateTaskInput
	if err := bindJSON(c, &input); err != nil {
		return respondError(c, "Failed to create task", err)
	}

	task, err := services.NewTaskService(db.DB).CreateTask(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		return respondError(c, "Failed to create task", err)
	}
	return c.JSON(http.StatusOK, task)
}

// UpdateCaseTaskHandler patches status, priority or due date of a task
func UpdateCaseTaskHandler(c echo.Context) error {
	var input services.UpdateTaskInput
	if err := bindJSON(c, &input); err != nil {
		return respondError(c, "Failed to update task", err)
	}

	task, err := services.NewTaskService(db.DB).UpdateTask(c.Request().Context(), c.Param("id"), c.Param("taskId"), input)
	if err != nil {
		return respondError(c, "Failed to update task", err)
	}
	return c.JSON(http.StatusOK, task)
}

// DeleteCaseTaskHandler deletes a task
func DeleteCaseTaskHandler(c echo.Context) error {
	if err := services.NewTaskService(db.DB).DeleteTask(c.Request().Context(), c.Param("id"), c.Param("taskId")); err != nil {
		return respondError(c, "Failed to delete task", err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// ExportCaseTasksHandler downloads the task board as a spreadsheet
func ExportCaseTasksHandler(c echo.Context) error {
	buf, err := services.NewTaskService(db.DB).ExportTasks(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, "Failed to export tasks", err)
	}

	filename := fmt.Sprintf("tasks_%s_%s.xlsx", c.Param("id"), time.Now().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}
