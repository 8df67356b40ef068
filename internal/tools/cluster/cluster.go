// Package cluster implements the cluster management tool: cluster
// lifecycle and node membership over ksctl "cluster" subcommands.
package cluster

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/trustgate/ksbridge/internal/cckm"
	"github.com/trustgate/ksbridge/internal/ksctl"
	"github.com/trustgate/ksbridge/model"
)

// Tool executes cluster operations. The cluster subcommands have no
// --domain flags, so domain-scoped calls go through the runner's global
// override window.
type Tool struct {
	runner *ksctl.Runner
}

// NewTool creates the cluster tool.
func NewTool(runner *ksctl.Runner) *Tool {
	return &Tool{runner: runner}
}

// Name implements model.Tool.
func (t *Tool) Name() string { return "cluster_management" }

// Description implements model.Tool.
func (t *Tool) Description() string {
	return "Manage CipherTrust Manager clusters (create, join, delete, info, summary, node management)"
}

// Schema implements model.Tool.
func (t *Tool) Schema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema().
		WithProperty("action", openapi3.NewStringSchema().
			WithEnum("new", "delete", "info", "summary", "join",
				"nodes_list", "nodes_get", "nodes_delete")).
		WithProperty("host", openapi3.NewStringSchema()).
		WithProperty("public_address", openapi3.NewStringSchema()).
		WithProperty("yes", describe(openapi3.NewBoolSchema(),
			"Automatically respond yes to all prompts")).
		WithProperty("member", openapi3.NewStringSchema()).
		WithProperty("cachain", openapi3.NewStringSchema()).
		WithProperty("cafile", openapi3.NewStringSchema()).
		WithProperty("cert", openapi3.NewStringSchema()).
		WithProperty("certfile", openapi3.NewStringSchema()).
		WithProperty("mkek_blob", openapi3.NewStringSchema()).
		WithProperty("allowlist", openapi3.NewStringSchema()).
		WithProperty("id", openapi3.NewStringSchema()).
		WithProperty("force", openapi3.NewBoolSchema())
	for name, prop := range model.DomainSchemaProperties() {
		schema = schema.WithProperty(name, prop)
	}
	schema.Required = []string{"action"}
	return schema
}

// confirm appends -y unless the caller explicitly passed yes=false.
// Destructive cluster verbs prompt interactively without it.
func confirm(cmd *cckm.ArgList, p map[string]any) *cckm.ArgList {
	if v, ok := p["yes"].(bool); !ok || v {
		cmd.Add("-y")
	}
	return cmd
}

// Execute implements model.Tool.
func (t *Tool) Execute(ctx context.Context, params map[string]any) (any, error) {
	action := cckm.StringParam(params, "action")

	cmd := cckm.NewArgList("cluster")
	switch action {
	case "new":
		cmd.Add("new").
			Required(params, "host", "--host").
			Optional(params, "public_address", "--public-address")

	case "delete":
		confirm(cmd.Add("delete"), params)

	case "info":
		cmd.Add("info")

	case "summary":
		cmd.Add("summary")

	case "join":
		cmd.Add("join").
			Required(params, "host", "--host").
			Required(params, "member", "--member").
			Optional(params, "cachain", "--cachain").
			Optional(params, "cafile", "--cafile").
			Optional(params, "cert", "--cert").
			Optional(params, "certfile", "--certfile").
			Optional(params, "mkek_blob", "--mkek-blob").
			Optional(params, "public_address", "--public-address")
		confirm(cmd, params)

	case "nodes_list":
		cmd.Add("nodes", "list").
			Optional(params, "allowlist", "--allowlist")

	case "nodes_get":
		cmd.Add("nodes", "get").
			Required(params, "id", "--id")

	case "nodes_delete":
		cmd.Add("nodes", "delete").
			Required(params, "id", "--id").
			OptionalBool(params, "force", "--force")
		confirm(cmd, params)

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
	return ksctl.Payload(res), nil
}

// describe sets the schema description and returns the schema, mirroring the
// builder style of the other openapi3 With* helpers.
func describe(s *openapi3.Schema, d string) *openapi3.Schema {
	s.Description = d
	return s
}
