package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/flowcore/bpmnengine/common/logger"
	"github.com/flowcore/bpmnengine/workflow/codec"
	"github.com/flowcore/bpmnengine/workflow/graph"
	"github.com/flowcore/bpmnengine/workflow/host"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]host.Record
}

func newMemStore() *memStore { return &memStore{data: map[string]host.Record{}} }

func (m *memStore) Get(_ context.Context, id string) (host.Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.data[id]
	return rec, ok, nil
}

func (m *memStore) Put(_ context.Context, rec host.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[rec.ID] = rec
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *memStore) Exists(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[id]
	return ok, nil
}

func encodedLinearDefinition(t *testing.T) []byte {
	t.Helper()
	schema := &graph.Schema{
		ID: "proc-http",
		Nodes: []graph.SchemaNode{
			{ID: "start", Type: "startEvent"},
			{ID: "task", Type: "userTask"},
			{ID: "end", Type: "endEvent"},
		},
		Edges: []graph.SchemaEdge{
			{ID: "f1", Source: "start", Target: "task"},
			{ID: "f2", Source: "task", Target: "end"},
		},
	}
	g, err := graph.Compile(schema)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	data, err := codec.EncodeDefinition(g)
	if err != nil {
		t.Fatalf("EncodeDefinition failed: %v", err)
	}
	return data
}

func newTestRegistry() (*echo.Echo, *Registry) {
	e := echo.New()
	reg := NewRegistry(newMemStore(), nil, nil, time.Minute, logger.New("error", "text"))
	reg.Register(e)
	return e, reg
}

func doRequest(e *echo.Echo, method, path string, body any) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = strings.NewReader(string(b))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateDefinition_Then_Start_Then_Complete(t *testing.T) {
	e, _ := newTestRegistry()
	archive := encodedLinearDefinition(t)

	createRec := doRequest(e, http.MethodPost, "/definitions", createDefinitionRequest{Data: archive})
	if createRec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating a definition, got %d: %s", createRec.Code, createRec.Body.String())
	}
	var created map[string]string
	if err := json.Unmarshal(createRec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	defID := created["id"]
	if defID != "proc-http" {
		t.Fatalf("expected definition id proc-http, got %q", defID)
	}

	startRec := doRequest(e, http.MethodPost, "/definitions/"+defID+"/instances/e1/start", nil)
	if startRec.Code != http.StatusOK {
		t.Fatalf("expected 200 starting an instance, got %d: %s", startRec.Code, startRec.Body.String())
	}
	var startSnap map[string]any
	if err := json.Unmarshal(startRec.Body.Bytes(), &startSnap); err != nil {
		t.Fatalf("failed to decode start response: %v", err)
	}
	pending, ok := startSnap["pending_tasks"].([]any)
	if !ok || len(pending) != 1 {
		t.Fatalf("expected one pending task in the start snapshot, got %v", startSnap["pending_tasks"])
	}

	completeRec := doRequest(e, http.MethodPost, "/instances/e1/complete", taskIDRequest{TaskID: 1})
	if completeRec.Code != http.StatusOK {
		t.Fatalf("expected 200 completing the pending task, got %d: %s", completeRec.Code, completeRec.Body.String())
	}
	var completeSnap map[string]any
	if err := json.Unmarshal(completeRec.Body.Bytes(), &completeSnap); err != nil {
		t.Fatalf("failed to decode complete response: %v", err)
	}
	if completed, _ := completeSnap["completed"].(bool); !completed {
		t.Errorf("expected the instance to be completed after its only user task is completed")
	}
}

func TestCreateDefinition_BadBodyReturnsBadRequest(t *testing.T) {
	e, _ := newTestRegistry()
	req := httptest.NewRequest(http.MethodPost, "/definitions", strings.NewReader("not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a malformed create_definition body, got %d", rec.Code)
	}
}

func TestUserTasks_UnknownDefinitionReturnsNotFound(t *testing.T) {
	e, _ := newTestRegistry()
	rec := doRequest(e, http.MethodGet, "/definitions/ghost/tasks", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for an unknown definition, got %d", rec.Code)
	}
}

func TestComplete_UnknownInstanceReturnsNotFound(t *testing.T) {
	e, _ := newTestRegistry()
	rec := doRequest(e, http.MethodPost, "/instances/ghost/complete", taskIDRequest{TaskID: 1})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 completing a task on an unknown instance, got %d", rec.Code)
	}
}

func TestComplete_UnknownTaskReturnsMappedErrorStatus(t *testing.T) {
	e, _ := newTestRegistry()
	archive := encodedLinearDefinition(t)
	doRequest(e, http.MethodPost, "/definitions", createDefinitionRequest{Data: archive})
	doRequest(e, http.MethodPost, "/definitions/proc-http/instances/e2/start", nil)

	rec := doRequest(e, http.MethodPost, "/instances/e2/complete", taskIDRequest{TaskID: 99})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected TaskNotFound to map to 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDestroy_RemovesInstanceAndSubsequentLookupFails(t *testing.T) {
	e, _ := newTestRegistry()
	archive := encodedLinearDefinition(t)
	doRequest(e, http.MethodPost, "/definitions", createDefinitionRequest{Data: archive})
	doRequest(e, http.MethodPost, "/definitions/proc-http/instances/e3/start", nil)

	destroyRec := doRequest(e, http.MethodDelete, "/instances/e3", nil)
	if destroyRec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 destroying an instance, got %d", destroyRec.Code)
	}

	snapRec := doRequest(e, http.MethodGet, "/instances/e3/snapshot", nil)
	if snapRec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for a snapshot after destroy, got %d", snapRec.Code)
	}
}

func TestSetState_GetState_RoundTrip(t *testing.T) {
	e, _ := newTestRegistry()
	archive := encodedLinearDefinition(t)
	doRequest(e, http.MethodPost, "/definitions", createDefinitionRequest{Data: archive})
	doRequest(e, http.MethodPost, "/definitions/proc-http/instances/e4/start", nil)

	getRec := doRequest(e, http.MethodGet, "/instances/e4/state", nil)
	if getRec.Code != http.StatusOK {
		t.Fatalf("expected 200 getting state, got %d", getRec.Code)
	}
	var getResp map[string]any
	if err := json.Unmarshal(getRec.Body.Bytes(), &getResp); err != nil {
		t.Fatalf("failed to decode get-state response: %v", err)
	}
	stateB64, ok := getResp["state"].(string)
	if !ok {
		t.Fatalf("expected state to be a base64 string, got %T", getResp["state"])
	}
	if _, err := base64.StdEncoding.DecodeString(stateB64); err != nil {
		t.Errorf("expected valid base64 state payload: %v", err)
	}

	setRec := doRequest(e, http.MethodPost, "/instances/e4/state", map[string]string{"state": stateB64})
	if setRec.Code != http.StatusOK {
		t.Fatalf("expected 200 setting state back, got %d: %s", setRec.Code, setRec.Body.String())
	}
}
