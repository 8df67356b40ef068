package google

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/trustgate/ksbridge/internal/cckm"
)

// schemaProperties describes the google_params bag. Google Cloud keeps a
// single bag across keys, key rings, projects, locations, and reports.
func schemaProperties() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("id", describe(openapi3.NewStringSchema(),
			"Key ID")).
		WithProperty("alias", describe(openapi3.NewStringSchema(),
			"Key alias")).
		WithProperty("project_id", describe(openapi3.NewStringSchema(),
			"Google Cloud project ID")).
		WithProperty("location", describe(openapi3.NewStringSchema(),
			"Google Cloud location")).
		WithProperty("key_ring", describe(openapi3.NewStringSchema(),
			"Key ring for key operations")).
		WithProperty("protection_level", describe(openapi3.NewStringSchema(),
			"Protection level (SOFTWARE, HSM)")).
		WithProperty("algorithm", describe(openapi3.NewStringSchema(),
			"Key algorithm")).
		WithProperty("purpose", describe(openapi3.NewStringSchema(),
			"Key purpose")).
		WithProperty("description", describe(openapi3.NewStringSchema(),
			"Key description")).
		WithProperty("enabled", describe(openapi3.NewBoolSchema(),
			"Whether the key is enabled")).
		WithProperty("tags", describe(openapi3.NewStringSchema(),
			"Key tags")).
		WithProperty("limit", describe(openapi3.NewIntegerSchema(),
			"Maximum number of results")).
		WithProperty("skip", describe(openapi3.NewIntegerSchema(),
			"Number of results to skip")).
		WithProperty("backup_data", describe(openapi3.NewStringSchema(),
			"Backup data for restore operations")).
		WithProperty("keyring", describe(openapi3.NewStringSchema(),
			"Key ring name")).
		WithProperty("keyring_id", describe(openapi3.NewStringSchema(),
			"Key ring ID")).
		WithProperty("keyring_name", describe(openapi3.NewStringSchema(),
			"Key ring name for creation")).
		WithProperty("acls", describe(openapi3.NewStringSchema(),
			"ACLs in JSON format")).
		WithProperty("project_name", describe(openapi3.NewStringSchema(),
			"Project display name")).
		WithProperty("file_path", describe(openapi3.NewStringSchema(),
			"File path for download operations")).
		WithProperty("job_id", describe(openapi3.NewStringSchema(),
			"Job ID for operations")).
		WithProperty("report_type", describe(openapi3.NewStringSchema(),
			"Type of report to generate")).
		WithProperty("report_format", describe(openapi3.NewStringSchema(),
			"Report output format")).
		WithProperty("filters", describe(openapi3.NewStringSchema(),
			"Report filters in JSON format"))
}

func requirements() map[string]cckm.Requirement {
	idOnly := cckm.Requirement{Required: []string{"id"}}
	reqs := map[string]cckm.Requirement{
		"list": {
			Optional: []string{"project_id", "location", "key_ring", "limit", "skip"},
		},
		"get": idOnly,
		"create": {
			Required: []string{"alias", "project_id", "location", "key_ring"},
			Optional: []string{"protection_level", "algorithm", "purpose"},
		},
		"update": {
			Required: []string{"id"},
			Optional: []string{"alias", "description", "enabled", "tags"},
		},
		"delete":  idOnly,
		"enable":  idOnly,
		"disable": idOnly,
		"rotate":  idOnly,
		"destroy": idOnly,
		"restore": {Required: []string{"backup_data"}},

		"add_version":             idOnly,
		"cancel_schedule_destroy": idOnly,
		"disable_auto_rotation":   idOnly,
		"disable_version":         idOnly,
		"download_metadata": {
			Optional: []string{"project_id", "location", "keyring", "limit", "skip", "file_path"},
		},
		"download_public_key":            idOnly,
		"enable_auto_rotation":           idOnly,
		"enable_version":                 idOnly,
		"get_update_all_versions_status": idOnly,
		"get_version":                    idOnly,
		"list_version":                   idOnly,
		"policy":                         idOnly,
		"re_import":                      idOnly,
		"refresh":                        idOnly,
		"refresh_version":                idOnly,
		"schedule_destroy":               idOnly,
		"upload_key":                     idOnly,
		"update_all_versions_jobs":       idOnly,

		"keys_sync_jobs_start":  {Required: []string{"project_id"}},
		"keys_sync_jobs_get":    {Required: []string{"job_id"}},
		"keys_sync_jobs_status": {},
		"keys_sync_jobs_cancel": {Required: []string{"job_id"}},

		"keyrings_list": {
			Optional: []string{"project_id", "location", "limit", "skip"},
		},
		"keyrings_get":         {Required: []string{"keyring_id"}},
		"keyrings_create":      {Required: []string{"keyring_name", "project_id", "location"}},
		"keyrings_delete":      {Required: []string{"keyring_id"}},
		"keyrings_update_acls": {Required: []string{"keyring_id", "acls"}},

		"locations_get_locations": {},

		"projects_list": {
			Optional: []string{"limit", "skip"},
		},
		"projects_get": {Required: []string{"project_id"}},
		"projects_add": {
			Required: []string{"project_id"},
			Optional: []string{"project_name"},
		},
		"projects_update": {
			Required: []string{"project_id"},
			Optional: []string{"project_name"},
		},
		"projects_delete":      {Required: []string{"project_id"}},
		"projects_get_project": {},
		"projects_update_acls": {Required: []string{"project_id", "acls"}},

		"reports_list": {
			Optional: []string{"limit", "skip"},
		},
		"reports_get": {Required: []string{"job_id"}},
		"reports_generate": {
			Required: []string{"report_type"},
			Optional: []string{"report_format", "filters"},
		},
		"reports_download": {Required: []string{"job_id", "file_path"}},
		"reports_delete":   {Required: []string{"job_id"}},
		"reports_get_report": {
			Optional: []string{"report_type", "filters", "limit", "skip"},
		},
	}
	// Every operation accepts a per-call domain scope.
	for action, req := range reqs {
		req.Optional = append(req.Optional, "domain", "auth_domain")
		reqs[action] = req
	}
	return reqs
}

// simpleKeyVerbs are unprefixed key operations whose only argument is --id.
var simpleKeyVerbs = map[string]bool{
	"get": true, "delete": true, "enable": true, "disable": true,
	"rotate": true, "destroy": true, "add_version": true,
	"cancel_schedule_destroy": true, "disable_auto_rotation": true,
	"disable_version": true, "download_public_key": true,
	"enable_auto_rotation": true, "enable_version": true,
	"get_update_all_versions_status": true, "get_version": true,
	"list_version": true, "policy": true, "re_import": true,
	"refresh": true, "refresh_version": true, "schedule_destroy": true,
	"upload_key": true, "update_all_versions_jobs": true,
}

// describe sets the schema description and returns the schema, mirroring the
// builder style of the other openapi3 With* helpers.
func describe(s *openapi3.Schema, d string) *openapi3.Schema {
	s.Description = d
	return s
}
