// Package patch applies RFC 6902 JSON Patch documents to an instance's
// variable tree as a single atomic bulk edit, supplementing §4.5's
// single-task set_variables with a multi-task edit — grounded on the
// teacher's run-patch handling, which applied the same library to update
// run records in place.
package patch

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/flowcore/bpmnengine/workflow/value"
)

// Apply decodes variables into plain JSON, applies the patch document, then
// re-decodes the result back into a value.Value tree. It returns an error
// rather than partially applying the patch — json-patch/v5 already applies
// all-or-nothing per document.
func Apply(variables value.Value, patchDoc []byte) (value.Value, error) {
	current, err := json.Marshal(value.ToAny(variables))
	if err != nil {
		return value.Null, fmt.Errorf("marshal variables for patch: %w", err)
	}

	p, err := jsonpatch.DecodePatch(patchDoc)
	if err != nil {
		return value.Null, fmt.Errorf("decode json patch: %w", err)
	}

	patched, err := p.Apply(current)
	if err != nil {
		return value.Null, fmt.Errorf("apply json patch: %w", err)
	}

	var raw any
	if err := json.Unmarshal(patched, &raw); err != nil {
		return value.Null, fmt.Errorf("unmarshal patched variables: %w", err)
	}
	return value.FromAny(raw), nil
}
