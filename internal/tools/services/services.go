// Package services implements the service management tool: status,
// restart, and full reset of CipherTrust Manager services.
package services

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/trustgate/ksbridge/internal/cckm"
	"github.com/trustgate/ksbridge/internal/ksctl"
	"github.com/trustgate/ksbridge/model"
)

const resetWarning = "WARNING: This operation will perform a full reset of CipherTrust Manager " +
	"and WIPE ALL DATA. This action cannot be undone."

const defaultDelaySeconds = 5

// Tool executes service operations. Like the cluster subcommands, the
// services subcommands have no --domain flags and use the runner's global
// override window.
type Tool struct {
	runner *ksctl.Runner
}

// NewTool creates the services tool.
func NewTool(runner *ksctl.Runner) *Tool {
	return &Tool{runner: runner}
}

// Name implements model.Tool.
func (t *Tool) Name() string { return "service_management" }

// Description implements model.Tool.
func (t *Tool) Description() string {
	return "Service management operations (status, restart, reset)"
}

// Schema implements model.Tool.
func (t *Tool) Schema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema().
		WithProperty("action", openapi3.NewStringSchema().
			WithEnum("status", "restart", "reset")).
		WithProperty("service_names", describe(openapi3.NewStringSchema(),
			"Specific service name (e.g., nae-kmip, web)")).
		WithProperty("overall_status", describe(openapi3.NewBoolSchema(),
			"Return overall status of all services")).
		WithProperty("yes", describe(openapi3.NewBoolSchema(),
			"Automatically respond yes to all prompts")).
		WithProperty("delay", describe(openapi3.NewIntegerSchema(),
			"Delay in seconds before restart or reset"))
	for name, prop := range model.DomainSchemaProperties() {
		schema = schema.WithProperty(name, prop)
	}
	schema.Required = []string{"action"}
	return schema
}

// Execute implements model.Tool.
func (t *Tool) Execute(ctx context.Context, params map[string]any) (any, error) {
	action := cckm.StringParam(params, "action")

	cmd := cckm.NewArgList("services")
	switch action {
	case "status":
		cmd.Add("status")
		if v, ok := params["overall_status"].(bool); ok && v {
			cmd.Add("--overall-status")
		} else {
			cmd.Optional(params, "service_names", "--service-names")
		}

	case "restart":
		cmd.Add("restart").
			Optional(params, "service_names", "--service-names")
		if v, ok := params["yes"].(bool); !ok || v {
			cmd.Add("--yes")
		}
		cmd.Add("--delay", cckm.FormatValue(delay(params)))

	case "reset":
		cmd.Add("reset", "--delay", cckm.FormatValue(delay(params)))

	default:
		return nil, fmt.Errorf("unknown action: %s", action)
	}

	args, err := cmd.Build()
	if err != nil {
		return nil, err
	}

	res, err := t.runner.RunWithGlobalOverride(ctx,
		args,
		cckm.StringParam(params, "domain"),
		cckm.StringParam(params, "auth_domain"),
	)
	if err != nil {
		return nil, err
	}

	payload := ksctl.Payload(res)
	if action == "reset" {
		if m, ok := payload.(map[string]any); ok {
			m["warning"] = resetWarning
		} else {
			payload = map[string]any{"result": payload, "warning": resetWarning}
		}
	}
	return payload, nil
}

func delay(params map[string]any) int {
	if v, ok := params["delay"].(float64); ok {
		return int(v)
	}
	return defaultDelaySeconds
}

// describe sets the schema description and returns the schema, mirroring the
// builder style of the other openapi3 With* helpers.
func describe(s *openapi3.Schema, d string) *openapi3.Schema {
	s.Description = d
	return s
}
