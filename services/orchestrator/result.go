package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"

	"case_flow_app_go/services/sanitize"
)

// Result is the typed view of an orchestrator reply. Document holds the full
// sanitized reply for auditing; nothing else should read it.
type Result struct {
	AgentType string // empty when the orchestrator did not report one
	Response  string // empty when absent or not a string
	Tasks     []TaskSuggestion
	Document  map[string]interface{}
}

// TaskSuggestion is one entry of analysis.tasks. Empty strings mean the field
// was absent; Priority and Category are lower-cased but not validated here.
type TaskSuggestion struct {
	Title         string
	Description   string
	Priority      string
	Category      string
	EstimatedTime *string
	Reasoning     *string
}

// ParseResult sanitizes a decoded reply and extracts the known fields.
// Any non-object entry of analysis.tasks still yields a (blank) suggestion so
// the number of suggestions always matches the array length.
func ParseResult(document interface{}) (*Result, error) {
	doc, ok := sanitize.Value(document).(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected response shape: expected a JSON object, got %T", document)
	}

	result := &Result{Document: doc}
	result.AgentType, _ = text(doc["agent_type"])
	result.Response, _ = text(doc["response"])

	analysis, _ := doc["analysis"].(map[string]interface{})
	if entries, ok := analysis["tasks"].([]interface{}); ok {
		result.Tasks = make([]TaskSuggestion, 0, len(entries))
		for _, entry := range entries {
			result.Tasks = append(result.Tasks, parseTask(entry))
		}
	}

	return result, nil
}

func parseTask(entry interface{}) TaskSuggestion {
	fields, _ := entry.(map[string]interface{})

	var s TaskSuggestion
	s.Title, _ = text(fields["title"])
	s.Description, _ = text(fields["description"])

	priority, _ := text(fields["priority"])
	s.Priority = strings.ToLower(strings.TrimSpace(priority))
	category, _ := text(fields["category"])
	s.Category = strings.ToLower(strings.TrimSpace(category))

	if v, ok := text(fields["estimatedTime"]); ok && v != "" {
		s.EstimatedTime = &v
	}
	if v, ok := text(fields["reasoning"]); ok && v != "" {
		s.Reasoning = &v
	}
	return s
}

// text reads a string or number leaf
func text(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}
