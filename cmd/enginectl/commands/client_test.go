package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestClientDo_SuccessDecodesJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"echoed": body["task_id"]})
	}))
	defer srv.Close()

	c := &client{baseURL: srv.URL, http: srv.Client()}
	result, err := c.do(http.MethodPost, "/x", map[string]any{"task_id": float64(7)})
	if err != nil {
		t.Fatalf("do failed: %v", err)
	}
	if result["echoed"] != float64(7) {
		t.Errorf("expected echoed=7, got %v", result["echoed"])
	}
}

func TestClientDo_NoContentReturnsNilWithoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := &client{baseURL: srv.URL, http: srv.Client()}
	result, err := c.do(http.MethodDelete, "/x", nil)
	if err != nil {
		t.Fatalf("expected no error on 204, got %v", err)
	}
	if result != nil {
		t.Errorf("expected a nil result on 204, got %v", result)
	}
}

func TestClientDo_ServerErrorSurfacesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "instance not found"})
	}))
	defer srv.Close()

	c := &client{baseURL: srv.URL, http: srv.Client()}
	_, err := c.do(http.MethodGet, "/x", nil)
	if err == nil {
		t.Fatalf("expected an error for a 404 response")
	}
	if !strings.Contains(err.Error(), "instance not found") {
		t.Errorf("expected the server error message to surface, got %v", err)
	}
}

func TestPrintResult_JSONFormat(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().String("output", "json", "")
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := printResult(cmd, map[string]any{"active": float64(3)}); err != nil {
		t.Fatalf("printResult failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"active"`) {
		t.Errorf("expected JSON output to contain the active field, got %q", buf.String())
	}
}

func TestPrintResult_TableFormat(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().String("output", "table", "")
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := printResult(cmd, map[string]any{"active": float64(3)}); err != nil {
		t.Fatalf("printResult failed: %v", err)
	}
	if !strings.Contains(buf.String(), "active:") {
		t.Errorf("expected table output to contain 'active:', got %q", buf.String())
	}
}

func TestPrintResult_NilResultFallsBackToJSON(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().String("output", "table", "")
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := printResult(cmd, nil); err != nil {
		t.Fatalf("printResult failed: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "null" {
		t.Errorf("expected a nil result to print as JSON null, got %q", buf.String())
	}
}
