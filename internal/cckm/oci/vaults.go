package oci

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/trustgate/ksbridge/internal/cckm"
)

// vaultSchemaProperties describes the oci_vaults_params bag.
func vaultSchemaProperties() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("oci_compartment_id", describe(openapi3.NewStringSchema(),
			"OCI compartment ID")).
		WithProperty("connection_identifier", describe(openapi3.NewStringSchema(),
			"Connection identifier")).
		WithProperty("id", describe(openapi3.NewStringSchema(),
			"Vault ID")).
		WithProperty("limit", describe(openapi3.NewIntegerSchema(),
			"Maximum number of results")).
		WithProperty("skip", describe(openapi3.NewIntegerSchema(),
			"Number of results to skip")).
		WithProperty("sort", describe(openapi3.NewStringSchema(),
			"Sort field and order"))
}

func vaultRequirements() map[string]cckm.Requirement {
	return map[string]cckm.Requirement{
		"vaults_list": {
			Optional: []string{"limit", "skip", "sort", "oci_compartment_id"},
		},
		"vaults_get":        {Required: []string{"id"}},
		"vaults_get_vaults": {Required: []string{"oci_compartment_id"}},
	}
}

// buildVaultCommand renders the ksctl argument list for one OCI vault
// operation over the merged parameter view.
func buildVaultCommand(action string, p map[string]any) ([]string, error) {
	verb := strings.TrimPrefix(action, "vaults_")
	cmd := cckm.NewArgList("cckm", "oci", "vaults")

	switch verb {
	case "list":
		cmd.Add("list").
			Optional(p, "limit", "--limit").
			Optional(p, "skip", "--skip").
			Optional(p, "sort", "--sort").
			Optional(p, "oci_compartment_id", "--oci-compartment-id")

	case "get":
		cmd.Add("get").Required(p, "id", "--id")

	case "get_vaults":
		cmd.Add("get-vaults").Required(p, "oci_compartment_id", "--oci-compartment-id")

	default:
		return nil, &cckm.UnsupportedOperationError{Provider: "oci", Action: action}
	}

	return cmd.Build()
}
