// Package query provides read-only dotted-path lookups into an instance's
// variable tree for debugging and inspection, grounded on the teacher's
// resolver (cmd/workflow-runner/resolver), which used the same library to
// resolve "$nodes.node_id.field"-shaped references against a JSON document.
package query

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/flowcore/bpmnengine/workflow/value"
)

// Get resolves a gjson path (e.g. "UT1.choice") against variables, returning
// Null if the path does not resolve or variables cannot be marshaled.
func Get(variables value.Value, path string) value.Value {
	raw, err := json.Marshal(value.ToAny(variables))
	if err != nil {
		return value.Null
	}
	result := gjson.GetBytes(raw, path)
	if !result.Exists() {
		return value.Null
	}
	var decoded any
	if err := json.Unmarshal([]byte(result.Raw), &decoded); err != nil {
		return value.Null
	}
	return value.FromAny(decoded)
}
