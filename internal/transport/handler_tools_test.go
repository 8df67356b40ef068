package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/trustgate/ksbridge/internal/tools"
	"github.com/trustgate/ksbridge/model"
)

// --- shared test helpers ---

func nopLogger() *zap.Logger {
	return zap.NewNop()
}

func withCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// stubTool is a Tool with canned behavior for handler tests.
type stubTool struct {
	name       string
	result     any
	err        error
	lastParams map[string]any
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "stub tool for tests" }
func (s *stubTool) Schema() *openapi3.Schema {
	return openapi3.NewObjectSchema().WithProperty("action", openapi3.NewStringSchema())
}

func (s *stubTool) Execute(_ context.Context, params map[string]any) (any, error) {
	s.lastParams = params
	return s.result, s.err
}

func newTestHandler(ts ...model.Tool) *ToolsHandler {
	return NewToolsHandler(tools.NewRegistry(ts...), nopLogger(), nil)
}

// --- HandleList tests ---

func TestHandleList_returnsDescriptorsSorted(t *testing.T) {
	handler := newTestHandler(
		&stubTool{name: "service_management"},
		&stubTool{name: "cckm_management"},
		&stubTool{name: "cluster_management"},
	)

	w := httptest.NewRecorder()
	handler.HandleList(w, httptest.NewRequest("GET", "/v1/tools", nil))

	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Tools []model.ToolDescriptor `json:"tools"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Tools) != 3 {
		t.Fatalf("tools count = %d, want 3", len(resp.Tools))
	}
	want := []string{"cckm_management", "cluster_management", "service_management"}
	for i, name := range want {
		if resp.Tools[i].Name != name {
			t.Errorf("tools[%d].Name = %q, want %q", i, resp.Tools[i].Name, name)
		}
	}
	if resp.Tools[0].InputSchema == nil {
		t.Error("descriptor should include input schema")
	}
}

func TestHandleList_emptyRegistry(t *testing.T) {
	handler := newTestHandler()

	w := httptest.NewRecorder()
	handler.HandleList(w, httptest.NewRequest("GET", "/v1/tools", nil))

	var resp struct {
		Tools []model.ToolDescriptor `json:"tools"`
	}
	json.NewDecoder(w.Body).Decode(&resp)
	if len(resp.Tools) != 0 {
		t.Errorf("tools count = %d, want 0", len(resp.Tools))
	}
}

// --- HandleExecute tests ---

// executeRequest drives HandleExecute through a chi router so URL
// parameters are populated.
func executeRequest(handler *ToolsHandler, tool, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Post("/v1/tools/{tool}", handler.HandleExecute)

	req := httptest.NewRequest("POST", "/v1/tools/"+tool, strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleExecute_unknownTool(t *testing.T) {
	handler := newTestHandler(&stubTool{name: "cckm_management"})

	w := executeRequest(handler, "no_such_tool", `{}`)
	if w.Code != 404 {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHandleExecute_invalidJSON(t *testing.T) {
	handler := newTestHandler(&stubTool{name: "cckm_management"})

	w := executeRequest(handler, "cckm_management", `{not json`)
	if w.Code != 400 {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleExecute_emptyBody(t *testing.T) {
	tool := &stubTool{name: "cckm_management", result: map[string]any{"ok": true}}
	handler := newTestHandler(tool)

	w := executeRequest(handler, "cckm_management", "")
	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if tool.lastParams == nil {
		t.Error("tool should receive an empty parameter mapping, not nil")
	}
}

func TestHandleExecute_paramsPassedThrough(t *testing.T) {
	tool := &stubTool{name: "cckm_management", result: map[string]any{"ok": true}}
	handler := newTestHandler(tool)

	body := `{"action":"keys_list","cloud_provider":"aws","aws_keys_params":{"limit":10}}`
	w := executeRequest(handler, "cckm_management", body)
	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	if tool.lastParams["action"] != "keys_list" {
		t.Errorf("action = %v, want keys_list", tool.lastParams["action"])
	}
	if tool.lastParams["cloud_provider"] != "aws" {
		t.Errorf("cloud_provider = %v, want aws", tool.lastParams["cloud_provider"])
	}
	bag, ok := tool.lastParams["aws_keys_params"].(map[string]any)
	if !ok || bag["limit"] != float64(10) {
		t.Errorf("aws_keys_params = %v", tool.lastParams["aws_keys_params"])
	}
}

func TestHandleExecute_resultReturnedVerbatim(t *testing.T) {
	tool := &stubTool{
		name:   "cckm_management",
		result: map[string]any{"resources": []any{map[string]any{"id": "k-1"}}},
	}
	handler := newTestHandler(tool)

	w := executeRequest(handler, "cckm_management", `{"action":"keys_list","cloud_provider":"aws"}`)
	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp map[string]any
	json.NewDecoder(w.Body).Decode(&resp)
	if _, ok := resp["resources"]; !ok {
		t.Errorf("response should be the tool result verbatim, got %v", resp)
	}
}

func TestHandleExecute_errorMapping_returns200(t *testing.T) {
	// Tool-level failures come back as data so the agent can correct them.
	tool := &stubTool{
		name:   "cckm_management",
		result: map[string]any{"error": "Missing required parameters for keys_create: ['region', 'kms']"},
	}
	handler := newTestHandler(tool)

	w := executeRequest(handler, "cckm_management", `{"action":"keys_create","cloud_provider":"aws"}`)
	if w.Code != 200 {
		t.Fatalf("status = %d, want 200 for error-as-data result", w.Code)
	}

	var resp map[string]any
	json.NewDecoder(w.Body).Decode(&resp)
	if resp["error"] == "" {
		t.Error("error message should be preserved in the response")
	}
}

func TestHandleExecute_transportError_returns500(t *testing.T) {
	tool := &stubTool{name: "cckm_management", err: errors.New("context deadline exceeded")}
	handler := newTestHandler(tool)

	w := executeRequest(handler, "cckm_management", `{"action":"keys_list"}`)
	if w.Code != 500 {
		t.Errorf("status = %d, want 500 for transport error", w.Code)
	}
}

// --- classification helpers ---

func TestExecutionStatus(t *testing.T) {
	tests := []struct {
		name   string
		result any
		err    error
		want   string
	}{
		{"nil error plain result", map[string]any{"ok": true}, nil, "success"},
		{"non-map result", "raw output", nil, "success"},
		{"error mapping", map[string]any{"error": "boom"}, nil, "failure"},
		{"go error", nil, errors.New("boom"), "failure"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := executionStatus(tc.result, tc.err); got != tc.want {
				t.Errorf("executionStatus() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIsValidationFailure(t *testing.T) {
	tests := []struct {
		name   string
		result any
		want   bool
	}{
		{"missing parameter", map[string]any{"error": "Missing required parameter: cloud_provider"}, true},
		{"missing parameters", map[string]any{"error": "Missing required parameters for keys_create: ['region']"}, true},
		{"cli failure", map[string]any{"error": "Failed to execute keys_list: exit status 1"}, false},
		{"no error key", map[string]any{"ok": true}, false},
		{"non-map", "text", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := isValidationFailure(tc.result); got != tc.want {
				t.Errorf("isValidationFailure() = %v, want %v", got, tc.want)
			}
		})
	}
}
