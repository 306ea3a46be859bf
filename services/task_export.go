package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const taskExportSheet = "Tasks"

var taskExportHeaders = []string{
	"Title", "Description", "Status", "Priority", "Category",
	"Estimated Time", "Due Date", "Created By", "Created At", "Completed At",
}

// ExportTasks renders the task board of a case as an xlsx workbook in board order
func (s *TaskService) ExportTasks(ctx context.Context, caseID string) (*bytes.Buffer, error) {
	tasks, err := s.ListTasks(ctx, caseID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", taskExportSheet)

	for i, header := range taskExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(taskExportSheet, cell, header)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	lastHeader, _ := excelize.CoordinatesToCellName(len(taskExportHeaders), 1)
	f.SetCellStyle(taskExportSheet, "A1", lastHeader, headerStyle)
	f.SetColWidth(taskExportSheet, "A", "B", 40)
	f.SetColWidth(taskExportSheet, "C", "J", 18)

	for i, task := range tasks {
		row := []interface{}{
			task.Title,
			task.Description,
			task.Status,
			task.Priority,
			task.Category,
			derefString(task.EstimatedTime),
			formatDate(task.DueDate, "2006-01-02"),
			task.CreatedBy,
			task.CreatedAt.Format(time.RFC3339),
			formatDate(task.CompletedAt, time.RFC3339),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(taskExportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write task row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatDate(t *time.Time, layout string) string {
	if t == nil {
		return ""
	}
	return t.Format(layout)
}
