package oci

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/trustgate/ksbridge/internal/cckm"
)

// keySchemaProperties describes the oci_keys_params bag.
func keySchemaProperties() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("key_name", describe(openapi3.NewStringSchema(),
			"Name for the key")).
		WithProperty("oci_vault", describe(openapi3.NewStringSchema(),
			"ID of the vault to create the key in")).
		WithProperty("oci_algorithm", describe(openapi3.NewStringSchema(),
			"Algorithm of the key (AES, RSA, ECDSA)")).
		WithProperty("length", describe(openapi3.NewIntegerSchema(),
			"Length of the key")).
		WithProperty("protection_mode", describe(openapi3.NewStringSchema(),
			"Protection mode (SOFTWARE, HSM)")).
		WithProperty("oci_compartment_id", describe(openapi3.NewStringSchema(),
			"Compartment ID where the key will belong")).
		WithProperty("description", describe(openapi3.NewStringSchema(),
			"Key description")).
		WithProperty("oci_curve", describe(openapi3.NewStringSchema(),
			"Elliptic curve (NIST_P256, NIST_P384, NIST_P521)")).
		WithProperty("id", describe(openapi3.NewStringSchema(),
			"Key ID")).
		WithProperty("oci_version_id", describe(openapi3.NewStringSchema(),
			"Version ID for version operations")).
		WithProperty("limit", describe(openapi3.NewIntegerSchema(),
			"Maximum number of results")).
		WithProperty("skip", describe(openapi3.NewIntegerSchema(),
			"Number of results to skip")).
		WithProperty("sort", describe(openapi3.NewStringSchema(),
			"Sort field and order")).
		WithProperty("oci_keycreate_jsonfile", describe(openapi3.NewStringSchema(),
			"OCI key create parameters in JSON file")).
		WithProperty("oci_defined_tags_jsonfile", describe(openapi3.NewStringSchema(),
			"OCI defined tags in JSON file")).
		WithProperty("oci_freeform_tags_jsonfile", describe(openapi3.NewStringSchema(),
			"OCI freeform tags in JSON file")).
		WithProperty("oci_keyaddversion_jsonfile", describe(openapi3.NewStringSchema(),
			"OCI key add version parameters in JSON file")).
		WithProperty("days", describe(openapi3.NewIntegerSchema(),
			"Number of days for schedule deletion")).
		WithProperty("job_id", describe(openapi3.NewStringSchema(),
			"Job ID for sync operations")).
		WithProperty("synchronize_all", describe(openapi3.NewBoolSchema(),
			"Synchronize all keys from all vaults")).
		WithProperty("file", describe(openapi3.NewStringSchema(),
			"File path for metadata download")).
		WithProperty("time_of_rotation", describe(openapi3.NewStringSchema(),
			"Time of rotation in ISO 8601 format")).
		WithProperty("rotation_interval_days", describe(openapi3.NewIntegerSchema(),
			"Rotation interval in days"))
}

func keyRequirements() map[string]cckm.Requirement {
	idOnly := cckm.Requirement{Required: []string{"id"}}
	return map[string]cckm.Requirement{
		"keys_list": {
			Optional: []string{
				"limit", "skip", "sort", "oci_compartment_id", "key_name",
				"oci_algorithm", "length", "protection_mode", "oci_curve", "oci_vault",
			},
		},
		"keys_get": idOnly,
		"keys_create": {
			Required: []string{"key_name", "oci_vault", "oci_algorithm", "length", "protection_mode", "oci_compartment_id"},
			Optional: []string{"description", "oci_curve", "oci_keycreate_jsonfile", "oci_defined_tags_jsonfile", "oci_freeform_tags_jsonfile"},
		},
		"keys_delete":             idOnly,
		"keys_enable":             idOnly,
		"keys_disable":            idOnly,
		"keys_refresh":            idOnly,
		"keys_restore":            idOnly,
		"keys_schedule_deletion":  {Required: []string{"id", "days"}},
		"keys_cancel_deletion":    idOnly,
		"keys_change_compartment": {Required: []string{"id", "oci_compartment_id"}},
		"keys_enable_auto_rotation": {
			Required: []string{"id"},
			Optional: []string{"time_of_rotation", "rotation_interval_days"},
		},
		"keys_disable_auto_rotation": idOnly,
		"keys_delete_backup":         idOnly,
		"keys_download_metadata": {
			Optional: []string{"limit", "skip", "sort", "file", "oci_compartment_id", "oci_vault"},
		},
		"keys_add_version": {
			Required: []string{"id"},
			Optional: []string{"oci_keyaddversion_jsonfile"},
		},
		"keys_get_version": {Required: []string{"id", "oci_version_id"}},
		"keys_list_version": {
			Required: []string{"id"},
			Optional: []string{"limit", "skip"},
		},
		"keys_schedule_deletion_version":        {Required: []string{"id", "oci_version_id", "days"}},
		"keys_cancel_schedule_deletion_version": {Required: []string{"id", "oci_version_id"}},
		"keys_sync_jobs_start": {
			Optional: []string{"oci_vault", "synchronize_all"},
		},
		"keys_sync_jobs_get": {Required: []string{"job_id"}},
		"keys_sync_jobs_status": {
			Optional: []string{"limit", "skip", "sort"},
		},
		"keys_sync_jobs_cancel": {Required: []string{"job_id"}},
	}
}

var simpleKeyVerbs = map[string]bool{
	"get": true, "delete": true, "enable": true, "disable": true,
	"refresh": true, "restore": true, "cancel_deletion": true,
	"disable_auto_rotation": true, "delete_backup": true,
}

// buildKeyCommand renders the ksctl argument list for one OCI key
// operation over the merged parameter view.
func buildKeyCommand(action string, p map[string]any) ([]string, error) {
	verb := strings.TrimPrefix(action, "keys_")
	cmd := cckm.NewArgList("cckm", "oci", "keys")

	if simpleKeyVerbs[verb] {
		return cmd.Add(strings.ReplaceAll(verb, "_", "-")).
			Required(p, "id", "--id").
			Build()
	}

	switch verb {
	case "list":
		cmd.Add("list").
			Optional(p, "limit", "--limit").
			Optional(p, "skip", "--skip").
			Optional(p, "sort", "--sort").
			Optional(p, "oci_compartment_id", "--oci-compartment-id").
			Optional(p, "key_name", "--key-name").
			Optional(p, "oci_algorithm", "--oci-algorithm").
			Optional(p, "length", "--length").
			Optional(p, "protection_mode", "--protection-mode").
			Optional(p, "oci_curve", "--oci-curve").
			Optional(p, "oci_vault", "--oci-vault")

	case "create":
		cmd.Add("create").
			Required(p, "key_name", "--key-name").
			Required(p, "oci_vault", "--oci-vault").
			Required(p, "oci_algorithm", "--oci-algorithm").
			Required(p, "length", "--length").
			Required(p, "protection_mode", "--protection-mode").
			Required(p, "oci_compartment_id", "--oci-compartment-id").
			Optional(p, "description", "--description").
			Optional(p, "oci_curve", "--oci-curve").
			Optional(p, "oci_keycreate_jsonfile", "--oci-keycreate-jsonfile").
			Optional(p, "oci_defined_tags_jsonfile", "--oci-defined-tags-jsonfile").
			Optional(p, "oci_freeform_tags_jsonfile", "--oci-freeform-tags-jsonfile")

	case "schedule_deletion":
		cmd.Add("schedule-deletion").
			Required(p, "id", "--id").
			Required(p, "days", "--days")

	case "change_compartment":
		cmd.Add("change-compartment").
			Required(p, "id", "--id").
			Required(p, "oci_compartment_id", "--oci-compartment-id")

	case "enable_auto_rotation":
		cmd.Add("enable-auto-rotation").
			Required(p, "id", "--id").
			Optional(p, "time_of_rotation", "--time-of-rotation").
			Optional(p, "rotation_interval_days", "--rotation-interval-days")

	case "download_metadata":
		cmd.Add("download-metadata").
			Optional(p, "limit", "--limit").
			Optional(p, "skip", "--skip").
			Optional(p, "sort", "--sort").
			Optional(p, "file", "--file").
			Optional(p, "oci_compartment_id", "--oci-compartment-id").
			Optional(p, "oci_vault", "--oci-vault")

	case "add_version":
		cmd.Add("add-version").
			Required(p, "id", "--id").
			Optional(p, "oci_keyaddversion_jsonfile", "--oci-keyaddversion-jsonfile")

	case "get_version":
		cmd.Add("get-version").
			Required(p, "id", "--id").
			Required(p, "oci_version_id", "--oci-version-id")

	case "list_version":
		cmd.Add("list-version").
			Required(p, "id", "--id").
			Optional(p, "limit", "--limit").
			Optional(p, "skip", "--skip")

	case "schedule_deletion_version":
		cmd.Add("schedule-deletion-version").
			Required(p, "id", "--id").
			Required(p, "oci_version_id", "--oci-version-id").
			Required(p, "days", "--days")

	case "cancel_schedule_deletion_version":
		cmd.Add("cancel-schedule-deletion-version").
			Required(p, "id", "--id").
			Required(p, "oci_version_id", "--oci-version-id")

	case "sync_jobs_start":
		cmd.Add("synchronization-jobs", "start").
			Optional(p, "oci_vault", "--oci-vault").
			OptionalBool(p, "synchronize_all", "--synchronize-all")

	case "sync_jobs_get":
		cmd.Add("synchronization-jobs", "get").
			Required(p, "job_id", "--id")

	case "sync_jobs_status":
		cmd.Add("synchronization-jobs", "status").
			Optional(p, "limit", "--limit").
			Optional(p, "skip", "--skip").
			Optional(p, "sort", "--sort")

	case "sync_jobs_cancel":
		cmd.Add("synchronization-jobs", "cancel").
			Required(p, "job_id", "--id")

	default:
		return nil, &cckm.UnsupportedOperationError{Provider: "oci", Action: action}
	}

	return cmd.Build()
}

// describe sets the schema description and returns the schema, mirroring the
// builder style of the other openapi3 With* helpers.
func describe(s *openapi3.Schema, d string) *openapi3.Schema {
	s.Description = d
	return s
}
