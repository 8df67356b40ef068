// Package google implements the Google Cloud CCKM operation dispatcher:
// key lifecycle and version management, key rings, projects, locations,
// and reports, rendered to ksctl "cckm google" subcommands.
package google

import (
	"context"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/trustgate/ksbridge/internal/cckm"
	"github.com/trustgate/ksbridge/internal/ksctl"
)

// Dispatcher routes Google Cloud operations to the command builder.
type Dispatcher struct {
	runner       *ksctl.Runner
	requirements map[string]cckm.Requirement
}

// NewDispatcher creates the Google Cloud dispatcher.
func NewDispatcher(runner *ksctl.Runner) *Dispatcher {
	return &Dispatcher{runner: runner, requirements: requirements()}
}

// Provider implements cckm.Dispatcher.
func (d *Dispatcher) Provider() string { return "google" }

// Operations implements cckm.Dispatcher.
func (d *Dispatcher) Operations() []string {
	ops := make([]string, 0, len(d.requirements))
	for op := range d.requirements {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// SchemaProperties implements cckm.Dispatcher.
func (d *Dispatcher) SchemaProperties() map[string]*openapi3.Schema {
	return map[string]*openapi3.Schema{
		"google_params": describe(schemaProperties(),
			"Google Cloud-specific parameters"),
	}
}

// ActionRequirements implements cckm.Dispatcher.
func (d *Dispatcher) ActionRequirements() map[string]cckm.Requirement {
	return d.requirements
}

// Execute implements cckm.Dispatcher.
func (d *Dispatcher) Execute(ctx context.Context, action string, params map[string]any) (any, error) {
	p := cckm.MergeParams(params, "google", nil)

	args, err := buildCommand(action, p)
	if err != nil {
		return nil, err
	}

	res, err := d.runner.Run(ctx,
		args,
		cckm.StringParam(params, "domain"),
		cckm.StringParam(params, "auth_domain"),
	)
	if err != nil {
		return nil, err
	}
	return ksctl.Payload(res), nil
}

// buildCommand renders the ksctl argument list for one Google Cloud
// operation. Key operations carry no family prefix; key rings, projects,
// locations, and reports are prefixed families with their own subcommand
// roots.
func buildCommand(action string, p map[string]any) ([]string, error) {
	if simpleKeyVerbs[action] {
		return cckm.NewArgList("cckm", "google", "keys").
			Add(strings.ReplaceAll(action, "_", "-")).
			Required(p, "id", "--id").
			Build()
	}

	switch {
	case strings.HasPrefix(action, "keys_sync_jobs_"):
		return buildSyncJobsCommand(action, p)
	case strings.HasPrefix(action, "keyrings_"):
		return buildKeyRingCommand(action, p)
	case strings.HasPrefix(action, "locations_"):
		return buildLocationCommand(action, p)
	case strings.HasPrefix(action, "projects_"):
		return buildProjectCommand(action, p)
	case strings.HasPrefix(action, "reports_"):
		return buildReportsCommand(action, p)
	}

	cmd := cckm.NewArgList("cckm", "google", "keys")
	switch action {
	case "list":
		cmd.Add("list").
			Optional(p, "project_id", "--project-id").
			Optional(p, "location", "--location").
			Optional(p, "key_ring", "--key-ring").
			Optional(p, "limit", "--limit").
			Optional(p, "skip", "--skip")

	case "create":
		cmd.Add("create").
			Required(p, "alias", "--alias").
			Required(p, "project_id", "--project-id").
			Required(p, "location", "--location").
			Required(p, "key_ring", "--key-ring").
			Optional(p, "protection_level", "--protection-level").
			Optional(p, "algorithm", "--algorithm").
			Optional(p, "purpose", "--purpose")

	case "update":
		cmd.Add("update").
			Required(p, "id", "--id").
			Optional(p, "alias", "--alias").
			Optional(p, "description", "--description")
		if v, ok := p["enabled"].(bool); ok {
			if v {
				cmd.Add("--enabled", "yes")
			} else {
				cmd.Add("--enabled", "no")
			}
		}
		cmd.Optional(p, "tags", "--tags")

	case "restore":
		cmd.Add("restore").Required(p, "backup_data", "--backup-data")

	case "download_metadata":
		cmd.Add("download-metadata").
			Optional(p, "project_id", "--project-id").
			Optional(p, "location", "--location").
			Optional(p, "keyring", "--keyring").
			Optional(p, "limit", "--limit").
			Optional(p, "skip", "--skip").
			Optional(p, "file_path", "--file-path")

	default:
		return nil, &cckm.UnsupportedOperationError{Provider: "google", Action: action}
	}

	return cmd.Build()
}

func buildSyncJobsCommand(action string, p map[string]any) ([]string, error) {
	cmd := cckm.NewArgList("cckm", "google", "keys", "synchronization-jobs")
	switch action {
	case "keys_sync_jobs_start":
		cmd.Add("start").Required(p, "project_id", "--project-id")
	case "keys_sync_jobs_get":
		cmd.Add("get").Required(p, "job_id", "--id")
	case "keys_sync_jobs_status":
		cmd.Add("status")
	case "keys_sync_jobs_cancel":
		cmd.Add("cancel").Required(p, "job_id", "--id")
	default:
		return nil, &cckm.UnsupportedOperationError{Provider: "google", Action: action}
	}
	return cmd.Build()
}

func buildKeyRingCommand(action string, p map[string]any) ([]string, error) {
	cmd := cckm.NewArgList("cckm", "google", "key-rings")
	switch action {
	case "keyrings_list":
		cmd.Add("list").
			Optional(p, "project_id", "--project-id").
			Optional(p, "location", "--location").
			Optional(p, "limit", "--limit").
			Optional(p, "skip", "--skip")
	case "keyrings_get":
		cmd.Add("get").Required(p, "keyring_id", "--id")
	case "keyrings_create":
		cmd.Add("create").
			Required(p, "keyring_name", "--keyring-name").
			Required(p, "project_id", "--project-id").
			Required(p, "location", "--location")
	case "keyrings_delete":
		cmd.Add("delete").Required(p, "keyring_id", "--id")
	case "keyrings_update_acls":
		cmd.Add("update-acls").
			Required(p, "keyring_id", "--id").
			Required(p, "acls", "--acls")
	default:
		return nil, &cckm.UnsupportedOperationError{Provider: "google", Action: action}
	}
	return cmd.Build()
}

func buildLocationCommand(action string, p map[string]any) ([]string, error) {
	if action != "locations_get_locations" {
		return nil, &cckm.UnsupportedOperationError{Provider: "google", Action: action}
	}
	return cckm.NewArgList("cckm", "google", "locations", "get-locations").Build()
}

func buildProjectCommand(action string, p map[string]any) ([]string, error) {
	cmd := cckm.NewArgList("cckm", "google", "projects")
	switch action {
	case "projects_list":
		cmd.Add("list").
			Optional(p, "limit", "--limit").
			Optional(p, "skip", "--skip")
	case "projects_get":
		cmd.Add("get").Required(p, "project_id", "--id")
	case "projects_add":
		cmd.Add("add").
			Required(p, "project_id", "--project-id").
			Optional(p, "project_name", "--project-name")
	case "projects_update":
		cmd.Add("update").
			Required(p, "project_id", "--id").
			Optional(p, "project_name", "--project-name")
	case "projects_delete":
		cmd.Add("delete").Required(p, "project_id", "--id")
	case "projects_get_project":
		cmd.Add("get-project")
	case "projects_update_acls":
		cmd.Add("update-acls").
			Required(p, "project_id", "--id").
			Required(p, "acls", "--acls")
	default:
		return nil, &cckm.UnsupportedOperationError{Provider: "google", Action: action}
	}
	return cmd.Build()
}

func buildReportsCommand(action string, p map[string]any) ([]string, error) {
	cmd := cckm.NewArgList("cckm", "google", "reports")
	switch action {
	case "reports_list":
		cmd.Add("list").
			Optional(p, "limit", "--limit").
			Optional(p, "skip", "--skip")
	case "reports_get":
		cmd.Add("get").Required(p, "job_id", "--id")
	case "reports_generate":
		cmd.Add("generate-report").
			Required(p, "report_type", "--report-type").
			Optional(p, "report_format", "--report-format").
			Optional(p, "filters", "--filters")
	case "reports_download":
		cmd.Add("download").
			Required(p, "job_id", "--id").
			Required(p, "file_path", "--file-path")
	case "reports_delete":
		cmd.Add("delete").Required(p, "job_id", "--id")
	case "reports_get_report":
		cmd.Add("get-report").
			Optional(p, "report_type", "--report-type").
			Optional(p, "filters", "--filters").
			Optional(p, "limit", "--limit").
			Optional(p, "skip", "--skip")
	default:
		return nil, &cckm.UnsupportedOperationError{Provider: "google", Action: action}
	}
	return cmd.Build()
}
