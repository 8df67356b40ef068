package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/trustgate/ksbridge/internal/observability"
	"github.com/trustgate/ksbridge/internal/tools"
	"github.com/trustgate/ksbridge/model"
)

// maxBodySize caps tool execution request bodies. Parameter mappings are
// small; anything larger is a malformed or hostile request.
const maxBodySize = 1 << 20

// ToolsHandler serves the tool discovery and execution endpoints.
type ToolsHandler struct {
	registry *tools.Registry
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// NewToolsHandler creates a ToolsHandler over the given registry.
func NewToolsHandler(registry *tools.Registry, logger *zap.Logger, metrics *observability.Metrics) *ToolsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ToolsHandler{registry: registry, logger: logger, metrics: metrics}
}

// HandleList serves GET /v1/tools: every advertised tool descriptor with
// its input schema, sorted by name.
func (h *ToolsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	type listResponse struct {
		Tools []model.ToolDescriptor `json:"tools"`
	}
	WriteJSON(w, http.StatusOK, listResponse{Tools: h.registry.Descriptors()})
}

// HandleExecute serves POST /v1/tools/{tool}: decode the JSON parameter
// mapping, run the tool, and return its result verbatim. Tool-level
// failures (unknown action, missing parameters, CLI errors) come back as
// an error mapping inside a 200 response so the calling agent can inspect
// and correct them; HTTP error statuses are reserved for transport
// problems.
func (h *ToolsHandler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "tool")
	tool, ok := h.registry.Get(name)
	if !ok {
		WriteNotFound(w, "Unknown tool: "+name)
		return
	}

	params, err := decodeParams(r)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordToolValidationFailure(name)
		}
		WriteBadRequest(w, err.Error())
		return
	}

	ctx, span := observability.StartSpan(r.Context(), "tool.execute",
		observability.AttrTool.String(name),
	)
	if action, ok := params["action"].(string); ok {
		span.SetAttributes(observability.AttrAction.String(action))
	}
	if provider, ok := params["cloud_provider"].(string); ok {
		span.SetAttributes(observability.AttrProvider.String(provider))
	}

	start := time.Now()
	result, err := tool.Execute(ctx, params)
	duration := time.Since(start)
	observability.EndSpanWithError(span, err)

	logger := observability.RequestLogger(ctx, h.logger)
	status := executionStatus(result, err)
	if h.metrics != nil {
		h.metrics.RecordToolExecution(name, status, duration)
		if status == "failure" && isValidationFailure(result) {
			h.metrics.RecordToolValidationFailure(name)
		}
	}

	if err != nil {
		logger.Error("tool execution failed",
			zap.String("tool", name),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		WriteError(w, err)
		return
	}

	logger.Info("tool executed",
		zap.String("tool", name),
		zap.String("status", status),
		zap.Duration("duration", duration),
	)
	WriteJSON(w, http.StatusOK, result)
}

// decodeParams reads the request body into a parameter mapping. An empty
// body is an empty mapping.
func decodeParams(r *http.Request) (map[string]any, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return nil, errors.New("failed to read request body")
	}
	if len(body) == 0 {
		return map[string]any{}, nil
	}

	var params map[string]any
	if err := json.Unmarshal(body, &params); err != nil {
		return nil, errors.New("request body must be a JSON object")
	}
	if params == nil {
		params = map[string]any{}
	}
	return params, nil
}

// executionStatus classifies a tool result for metrics. Tools report
// recoverable failures as an {"error": ...} mapping rather than a Go error.
func executionStatus(result any, err error) string {
	if err != nil {
		return "failure"
	}
	if m, ok := result.(map[string]any); ok {
		if _, failed := m["error"]; failed {
			return "failure"
		}
	}
	return "success"
}

// isValidationFailure reports whether an error-mapping result is a
// missing-parameter failure rather than a downstream CLI failure.
func isValidationFailure(result any) bool {
	m, ok := result.(map[string]any)
	if !ok {
		return false
	}
	msg, ok := m["error"].(string)
	if !ok {
		return false
	}
	return strings.HasPrefix(msg, "Missing required parameter")
}
