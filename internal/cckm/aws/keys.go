package aws

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/trustgate/ksbridge/internal/cckm"
)

// keySchemaProperties describes the aws_keys_params bag.
func keySchemaProperties() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("customer_masterkey_spec", openapi3.NewStringSchema()).
		WithProperty("kms", openapi3.NewStringSchema()).
		WithProperty("external_accounts", openapi3.NewStringSchema()).
		WithProperty("key_admins", openapi3.NewStringSchema()).
		WithProperty("key_users", openapi3.NewStringSchema()).
		WithProperty("key_admins_roles", openapi3.NewStringSchema()).
		WithProperty("key_users_roles", openapi3.NewStringSchema()).
		WithProperty("multiregion", openapi3.NewBoolSchema()).
		WithProperty("policy_template", openapi3.NewStringSchema()).
		WithProperty("aws_tags_jsonfile", openapi3.NewStringSchema()).
		WithProperty("aws_policy_jsonfile", openapi3.NewStringSchema()).
		WithProperty("aws_keycreate_jsonfile", openapi3.NewStringSchema()).
		WithProperty("aws_create_key_kms_params_jsonfile", openapi3.NewStringSchema()).
		WithProperty("days", openapi3.NewIntegerSchema()).
		WithProperty("material", openapi3.NewStringSchema()).
		WithProperty("description", openapi3.NewStringSchema()).
		WithProperty("enabled", openapi3.NewBoolSchema()).
		WithProperty("tags", openapi3.NewStringSchema()).
		WithProperty("key_usage", openapi3.NewStringSchema()).
		WithProperty("origin", openapi3.NewStringSchema()).
		WithProperty("bypass_policy_lockout_safety_check", openapi3.NewBoolSchema()).
		WithProperty("alias", openapi3.NewStringSchema()).
		WithProperty("region", openapi3.NewStringSchema()).
		WithProperty("id", openapi3.NewStringSchema()).
		WithProperty("limit", openapi3.NewIntegerSchema()).
		WithProperty("skip", openapi3.NewIntegerSchema()).
		WithProperty("key_state", openapi3.NewStringSchema()).
		WithProperty("sort", openapi3.NewStringSchema()).
		WithProperty("policy_template_name", openapi3.NewStringSchema()).
		WithProperty("aws_policycreate_jsonfile", openapi3.NewStringSchema()).
		WithProperty("aws_policyupdate_jsonfile", openapi3.NewStringSchema()).
		WithProperty("custom_key_store_id", openapi3.NewStringSchema()).
		WithProperty("source_key_tier", openapi3.NewStringSchema()).
		WithProperty("sourceKey_identifier", openapi3.NewStringSchema()).
		WithProperty("source_key_identifier", openapi3.NewStringSchema()).
		WithProperty("blocked", openapi3.NewStringSchema()).
		WithProperty("linked_state", openapi3.NewStringSchema()).
		WithProperty("arn", describe(openapi3.NewStringSchema(),
			"AWS key ARN for filtering")).
		WithProperty("key_expiration", describe(openapi3.NewBoolSchema(),
			"Enable key expiration")).
		WithProperty("valid_to", describe(openapi3.NewStringSchema(),
			"Key expiration time in format 2021-04-01T01:00:15Z")).
		WithProperty("aws_uploadkey_jsonfile", describe(openapi3.NewStringSchema(),
			"AWS upload key parameters in JSON file")).
		WithProperty("aws_key_upload_kms_params_jsonfile", describe(openapi3.NewStringSchema(),
			"AWS KMS upload parameters in JSON file")).
		WithProperty("kms_list", describe(openapi3.NewStringSchema(),
			"Name or ID of KMS resources for synchronization (comma-separated)")).
		WithProperty("regions", describe(openapi3.NewStringSchema(),
			"List of AWS regions for synchronization (comma-separated)")).
		WithProperty("synchronize_all", describe(openapi3.NewBoolSchema(),
			"Synchronize all keys from all KMS and regions"))
}

var listFilterOptional = []string{
	"cloud_name", "gone", "id", "job_config_id", "key_material_origin", "keyid",
	"kms_id", "multi_region", "multi_region_key_type", "rotation_job_enabled",
}

// keyRequirements is the AWS key operation table.
func keyRequirements() map[string]cckm.Requirement {
	idOnly := cckm.Requirement{Required: []string{"id"}}
	hsmKeyOptional := []string{
		"description", "external_accounts", "key_admins", "key_users",
		"key_admins_roles", "key_users_roles", "policy_template",
		"source_key_tier", "sourceKey_identifier", "blocked", "linked_state",
		"aws_policy_jsonfile",
	}
	return map[string]cckm.Requirement{
		"keys_create": {
			Required: []string{"alias", "region", "kms"},
			Optional: []string{
				"customer_masterkey_spec", "description", "enabled", "tags",
				"key_usage", "origin", "external_accounts", "key_admins",
				"key_users", "key_admins_roles", "key_users_roles", "multiregion",
				"policy_template", "bypass_policy_lockout_safety_check",
				"aws_tags_jsonfile", "aws_policy_jsonfile", "aws_keycreate_jsonfile",
				"aws_create_key_kms_params_jsonfile",
			},
		},
		"keys_list": {
			Optional: append([]string{
				"alias", "enabled", "limit", "skip", "key_state", "origin",
				"sort", "region", "kms", "customer_masterkey_spec", "tags",
			}, listFilterOptional...),
		},
		"keys_delete":            idOnly,
		"keys_schedule_deletion": {Required: []string{"id", "days"}},
		"keys_add_tags":          {Required: []string{"id", "aws_tags_jsonfile"}},
		"keys_policy":            {Required: []string{"id", "aws_policy_jsonfile"}},
		"keys_import_material": {
			Required: []string{"id", "source_key_identifier"},
			Optional: []string{"source_key_tier", "key_expiration", "valid_to", "aws_importmaterial_jsonfile"},
		},
		"keys_enable":             idOnly,
		"keys_disable":            idOnly,
		"keys_add_alias":          {Required: []string{"id", "alias"}},
		"keys_delete_alias":       {Required: []string{"id", "alias"}},
		"keys_update_description": {Required: []string{"id", "description"}},
		"keys_get":                idOnly,
		"keys_cancel_deletion":    idOnly,
		"keys_delete_material":    idOnly,
		"keys_upload": {
			Required: []string{"source_key_identifier", "region", "kms"},
			Optional: []string{
				"alias", "description", "customer_masterkey_spec", "key_usage",
				"key_expiration", "valid_to", "source_key_tier", "external_accounts",
				"key_admins", "key_users", "key_admins_roles", "key_users_roles",
				"multiregion", "policy_template", "bypass_policy_lockout_safety_check",
				"aws_tags_jsonfile", "aws_policy_jsonfile", "aws_uploadkey_jsonfile",
				"aws_key_upload_kms_params_jsonfile",
			},
		},
		"keys_download_public_key":   idOnly,
		"keys_block":                 idOnly,
		"keys_unblock":               idOnly,
		"keys_enable_auto_rotation":  idOnly,
		"keys_disable_auto_rotation": idOnly,
		"keys_enable_rotation_job":   idOnly,
		"keys_disable_rotation_job":  idOnly,
		"keys_list_rotations":        idOnly,
		"keys_link":                  idOnly,
		"keys_rotate_material":       idOnly,
		"keys_sync_jobs_start": {
			Optional: append([]string{
				"kms_list", "regions", "synchronize_all", "limit", "skip", "sort",
			}, listFilterOptional...),
		},
		"keys_sync_jobs_get": idOnly,
		"keys_sync_jobs_status": {
			Optional: append([]string{"limit", "skip", "sort"}, listFilterOptional...),
		},
		"keys_sync_jobs_cancel": idOnly,
		"keys_policy_template_create": {
			Required: []string{"policy_template_name"},
			Optional: []string{"aws_policycreate_jsonfile"},
		},
		"keys_policy_template_delete": idOnly,
		"keys_policy_template_get":    idOnly,
		"keys_policy_template_list": {
			Optional: []string{"limit", "skip", "sort"},
		},
		"keys_policy_template_update": {
			Required: []string{"id"},
			Optional: []string{"aws_policyupdate_jsonfile"},
		},
		"keys_create_aws_cloudhsm": {
			Required: []string{"alias", "custom_key_store_id"},
			Optional: hsmKeyOptional,
		},
		"keys_create_aws_hyok": {
			Required: []string{"alias", "custom_key_store_id"},
			Optional: hsmKeyOptional,
		},
	}
}

// simpleKeyVerbs are subcommands whose only argument is --id. The verb on
// the command line is the operation suffix with underscores turned into
// hyphens.
var simpleKeyVerbs = map[string]bool{
	"enable": true, "disable": true, "delete": true, "cancel_deletion": true,
	"delete_material": true, "download_public_key": true, "block": true,
	"unblock": true, "enable_auto_rotation": true, "disable_auto_rotation": true,
	"enable_rotation_job": true, "disable_rotation_job": true,
	"list_rotations": true, "link": true, "rotate_material": true, "get": true,
	"sync_jobs_get": true, "sync_jobs_cancel": true,
	"policy_template_delete": true, "policy_template_get": true,
}

func addListFilters(a *cckm.ArgList, p map[string]any) *cckm.ArgList {
	return a.
		Optional(p, "cloud_name", "--cloud-name").
		Optional(p, "gone", "--gone").
		Optional(p, "id", "--id").
		Optional(p, "job_config_id", "--job-config-id").
		Optional(p, "key_material_origin", "--key-material-origin").
		Optional(p, "keyid", "--keyid").
		Optional(p, "kms_id", "--kms-id").
		Optional(p, "multi_region", "--multi-region").
		Optional(p, "multi_region_key_type", "--multi-region-key-type").
		Optional(p, "rotation_job_enabled", "--rotation-job-enabled")
}

func addHSMKeyFlags(a *cckm.ArgList, p map[string]any) *cckm.ArgList {
	return a.
		Required(p, "alias", "--alias").
		Required(p, "custom_key_store_id", "--custom-key-store-id").
		Optional(p, "description", "--description").
		Optional(p, "external_accounts", "--external-accounts").
		Optional(p, "key_admins", "--key-admins").
		Optional(p, "key_users", "--key-users").
		Optional(p, "key_admins_roles", "--key-admins-roles").
		Optional(p, "key_users_roles", "--key-users-roles").
		Optional(p, "policy_template", "--policy-template").
		Optional(p, "source_key_tier", "--source-key-tier").
		Optional(p, "sourceKey_identifier", "--sourceKey-identifier").
		Optional(p, "blocked", "--blocked").
		Optional(p, "linked_state", "--linked-state").
		Optional(p, "aws_policy_jsonfile", "--aws-policy-jsonfile")
}

// buildKeyCommand renders the ksctl argument list for one AWS key
// operation over the merged parameter view.
func buildKeyCommand(action string, p map[string]any) ([]string, error) {
	verb := strings.TrimPrefix(action, "keys_")
	cmd := cckm.NewArgList("cckm", "aws", "keys")

	if simpleKeyVerbs[verb] {
		cmd.Add(strings.ReplaceAll(verb, "_", "-"))
		return cmd.Required(p, "id", "--id").Build()
	}

	switch verb {
	case "create":
		cmd.Add("create").
			Required(p, "alias", "--alias").
			Required(p, "region", "--region").
			Required(p, "kms", "--kms").
			Optional(p, "customer_masterkey_spec", "--customer-masterkey-spec").
			Optional(p, "description", "--description").
			OptionalBoolValue(p, "enabled", "--enabled").
			Optional(p, "tags", "--tags").
			Optional(p, "key_usage", "--key-usage").
			Optional(p, "origin", "--origin").
			Optional(p, "external_accounts", "--external-accounts").
			Optional(p, "key_admins", "--key-admins").
			Optional(p, "key_users", "--key-users").
			Optional(p, "key_admins_roles", "--key-admins-roles").
			Optional(p, "key_users_roles", "--key-users-roles").
			OptionalBool(p, "multiregion", "--multiregion").
			Optional(p, "policy_template", "--policy-template").
			OptionalBool(p, "bypass_policy_lockout_safety_check", "--bypass-policy-lockout-safety-check").
			Optional(p, "aws_tags_jsonfile", "--aws-tags-jsonfile").
			Optional(p, "aws_policy_jsonfile", "--aws-policy-jsonfile").
			Optional(p, "aws_keycreate_jsonfile", "--aws-keycreate-jsonfile").
			Optional(p, "aws_create_key_kms_params_jsonfile", "--aws-create-key-kms-params-jsonfile")

	case "list":
		cmd.Add("list").
			Optional(p, "alias", "--alias").
			OptionalBoolValue(p, "enabled", "--enabled").
			Optional(p, "limit", "--limit").
			Optional(p, "skip", "--skip").
			Optional(p, "key_state", "--key-state").
			Optional(p, "origin", "--origin").
			Optional(p, "sort", "--sort").
			Optional(p, "region", "--region").
			Optional(p, "kms", "--kms").
			Optional(p, "arn", "--arn").
			Optional(p, "customer_masterkey_spec", "--customer-masterkey-spec").
			Optional(p, "tags", "--tags")
		addListFilters(cmd, p)

	case "schedule_deletion":
		cmd.Add("schedule-deletion").
			Required(p, "id", "--id").
			Required(p, "days", "--days")

	case "add_tags":
		cmd.Add("add-tags").
			Required(p, "id", "--id").
			Required(p, "aws_tags_jsonfile", "--aws-tags-jsonfile")

	case "policy":
		cmd.Add("policy").
			Required(p, "id", "--id").
			Required(p, "aws_policy_jsonfile", "--aws-policy-jsonfile")

	case "add_alias":
		cmd.Add("add-alias").
			Required(p, "id", "--id").
			Required(p, "alias", "--alias")

	case "delete_alias":
		cmd.Add("delete-alias").
			Required(p, "id", "--id").
			Required(p, "alias", "--alias")

	case "update_description":
		cmd.Add("update-description").
			Required(p, "id", "--id").
			Required(p, "description", "--description")

	case "import_material":
		key := p
		if _, ok := p["source_key_identifier"]; !ok {
			if v, ok := p["sourceKey_identifier"]; ok {
				key = cloneWith(p, "source_key_identifier", v)
			}
		}
		cmd.Add("import-material").
			Required(key, "id", "--id").
			Required(key, "source_key_identifier", "--source-key-identifier").
			Optional(key, "source_key_tier", "--source-key-tier").
			OptionalBool(key, "key_expiration", "--key-expiration").
			Optional(key, "valid_to", "--valid-to").
			Optional(key, "aws_importmaterial_jsonfile", "--aws-importmaterial-jsonfile")

	case "upload":
		key := p
		if _, ok := p["source_key_identifier"]; !ok {
			if v, ok := p["sourceKey_identifier"]; ok {
				key = cloneWith(p, "source_key_identifier", v)
			}
		}
		cmd.Add("upload").
			Required(key, "source_key_identifier", "--source-key-identifier").
			Required(key, "region", "--region").
			Required(key, "kms", "--kms").
			Optional(key, "alias", "--alias").
			Optional(key, "description", "--description").
			Optional(key, "customer_masterkey_spec", "--customer-masterkey-spec").
			Optional(key, "key_usage", "--key-usage").
			Optional(key, "source_key_tier", "--source-key-tier").
			Optional(key, "external_accounts", "--external-accounts").
			Optional(key, "key_admins", "--key-admins").
			Optional(key, "key_users", "--key-users").
			Optional(key, "key_admins_roles", "--key-admins-roles").
			Optional(key, "key_users_roles", "--key-users-roles").
			OptionalBool(key, "multiregion", "--multiregion").
			Optional(key, "policy_template", "--policy-template").
			OptionalBool(key, "bypass_policy_lockout_safety_check", "--bypass-policy-lockout-safety-check").
			OptionalBool(key, "key_expiration", "--key-expiration").
			Optional(key, "valid_to", "--valid-to").
			Optional(key, "aws_tags_jsonfile", "--aws-tags-jsonfile").
			Optional(key, "aws_policy_jsonfile", "--aws-policy-jsonfile").
			Optional(key, "aws_uploadkey_jsonfile", "--aws-uploadkey-jsonfile").
			Optional(key, "aws_key_upload_kms_params_jsonfile", "--aws-key-upload-kms-params-jsonfile")

	case "sync_jobs_start":
		cmd.Add("synchronization-jobs", "start").
			Optional(p, "kms_list", "--kms-list").
			Optional(p, "regions", "--regions").
			OptionalBool(p, "synchronize_all", "--synchronize-all").
			Optional(p, "limit", "--limit").
			Optional(p, "skip", "--skip").
			Optional(p, "sort", "--sort")
		addListFilters(cmd, p)

	case "sync_jobs_status":
		cmd.Add("synchronization-jobs", "status").
			Optional(p, "limit", "--limit").
			Optional(p, "skip", "--skip").
			Optional(p, "sort", "--sort")
		addListFilters(cmd, p)

	case "policy_template_create":
		cmd.Add("policy-template", "create").
			Required(p, "policy_template_name", "--policy-template-name").
			Optional(p, "aws_policycreate_jsonfile", "--aws-policycreate-jsonfile")

	case "policy_template_list":
		cmd.Add("policy-template", "list").
			Optional(p, "limit", "--limit").
			Optional(p, "skip", "--skip").
			Optional(p, "sort", "--sort")

	case "policy_template_update":
		cmd.Add("policy-template", "update").
			Required(p, "id", "--id").
			Optional(p, "aws_policyupdate_jsonfile", "--aws-policyupdate-jsonfile")

	case "create_aws_cloudhsm":
		cmd.Add("create-aws-cloudhsm-keys")
		addHSMKeyFlags(cmd, p)

	case "create_aws_hyok":
		cmd.Add("create-aws-hyok-keys")
		addHSMKeyFlags(cmd, p)

	default:
		return nil, &cckm.UnsupportedOperationError{Provider: "aws", Action: action}
	}

	return cmd.Build()
}

// cloneWith copies p and sets one extra key. Builders never mutate the
// merged view they were handed.
func cloneWith(p map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	out[key] = value
	return out
}

// describe sets the schema description and returns the schema, mirroring the
// builder style of the other openapi3 With* helpers.
func describe(s *openapi3.Schema, d string) *openapi3.Schema {
	s.Description = d
	return s
}
