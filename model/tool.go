package model

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"
)

// Tool is a single agent-callable tool. A tool advertises a JSON schema for
// its parameters and executes an action described by that schema.
//
// Execute returns a JSON-serializable value. Tools that wrap external
// commands return errors as data (an {"error": ...} mapping) wherever the
// failure is something the calling agent can inspect and correct; a non-nil
// error is reserved for transport-level failures.
type Tool interface {
	// Name is the unique tool identifier used in request routing.
	Name() string

	// Description is a human/agent readable summary of what the tool does.
	Description() string

	// Schema describes the tool's input parameters.
	Schema() *openapi3.Schema

	// Execute runs the tool with the given parameter mapping.
	Execute(ctx context.Context, params map[string]any) (any, error)
}

// ToolDescriptor is the externally advertised shape of a tool.
type ToolDescriptor struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	InputSchema *openapi3.Schema `json:"input_schema"`
}

// DescribeTool builds the descriptor for a tool.
func DescribeTool(t Tool) ToolDescriptor {
	return ToolDescriptor{
		Name:        t.Name(),
		Description: t.Description(),
		InputSchema: t.Schema(),
	}
}

// DomainSchemaProperties returns the domain and auth-domain schema
// properties shared by every tool that scopes operations to a CipherTrust
// Manager domain.
func DomainSchemaProperties() map[string]*openapi3.Schema {
	return map[string]*openapi3.Schema{
		"domain": describe(openapi3.NewStringSchema(),
			"The CipherTrust Manager domain that the command will operate in"),
		"auth_domain": describe(openapi3.NewStringSchema(),
			"The CipherTrust Manager domain where the user is created"),
	}
}

// describe sets the schema description and returns the schema, mirroring the
// builder style of the other openapi3 With* helpers.
func describe(s *openapi3.Schema, d string) *openapi3.Schema {
	s.Description = d
	return s
}
