package oci

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/trustgate/ksbridge/internal/cckm"
)

// compartmentSchemaProperties describes the oci_compartments_params bag.
func compartmentSchemaProperties() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("connection_identifier", describe(openapi3.NewStringSchema(),
			"Name or ID of the connection")).
		WithProperty("oci_compartment_id", describe(openapi3.NewStringSchema(),
			"OCI compartment ID")).
		WithProperty("id", describe(openapi3.NewStringSchema(),
			"Compartment resource ID")).
		WithProperty("limit", describe(openapi3.NewIntegerSchema(),
			"Maximum number of results")).
		WithProperty("skip", describe(openapi3.NewIntegerSchema(),
			"Number of results to skip")).
		WithProperty("sort", describe(openapi3.NewStringSchema(),
			"Sort field and order"))
}

func compartmentRequirements() map[string]cckm.Requirement {
	return map[string]cckm.Requirement{
		"compartments_list": {
			Optional: []string{"limit", "skip", "sort"},
		},
		"compartments_get":              {Required: []string{"id"}},
		"compartments_add_compartments": {Required: []string{"connection_identifier", "oci_compartment_id"}},
		"compartments_delete":           {Required: []string{"id"}},
	}
}

// buildCompartmentCommand renders the ksctl argument list for one OCI
// compartment operation over the merged parameter view.
func buildCompartmentCommand(action string, p map[string]any) ([]string, error) {
	verb := strings.TrimPrefix(action, "compartments_")
	cmd := cckm.NewArgList("cckm", "oci", "compartments")

	switch verb {
	case "list":
		cmd.Add("list").
			Optional(p, "limit", "--limit").
			Optional(p, "skip", "--skip").
			Optional(p, "sort", "--sort")

	case "get", "delete":
		cmd.Add(verb).Required(p, "id", "--id")

	case "add_compartments":
		cmd.Add("add-compartments").
			Required(p, "connection_identifier", "--connection-identifier").
			Required(p, "oci_compartment_id", "--oci-compartment-id")

	default:
		return nil, &cckm.UnsupportedOperationError{Provider: "oci", Action: action}
	}

	return cmd.Build()
}
