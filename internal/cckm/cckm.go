// Package cckm implements the CCKM (CipherTrust Cloud Key Manager) unified
// tool: a registry of per-cloud-provider operation dispatchers selected at
// runtime, generic required-parameter validation across heterogeneous
// parameter bags, and best-effort identifier resolution.
package cckm

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// Requirement lists the required and optional parameters of one operation.
// The two sets never overlap.
type Requirement struct {
	Required []string
	Optional []string
}

// Dispatcher owns one cloud provider's operation catalogue and executes
// named operations against it. Implementations never mutate state outside
// a single call.
type Dispatcher interface {
	// Provider is the provider identifier string ("aws", "oci", "google").
	Provider() string

	// Operations returns the provider's supported operation names.
	Operations() []string

	// SchemaProperties returns the provider's scoped parameter-bag schema
	// fragments, keyed by bag name (e.g. "oci_keys_params").
	SchemaProperties() map[string]*openapi3.Schema

	// ActionRequirements returns the required/optional parameter table per
	// operation.
	ActionRequirements() map[string]Requirement

	// Execute merges the parameter bags, optionally resolves identifiers,
	// builds the command, and runs it.
	Execute(ctx context.Context, action string, params map[string]any) (any, error)
}

// UnsupportedOperationError reports an operation name with no matching
// command-builder branch. It indicates the operation table and the builder
// have drifted apart and is surfaced loudly rather than swallowed.
type UnsupportedOperationError struct {
	Provider string
	Action   string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("unsupported %s action: %s", e.Provider, e.Action)
}

// Bag extracts a scoped parameter bag from params, returning an empty map
// when the key is absent or not an object.
func Bag(params map[string]any, key string) map[string]any {
	if b, ok := params[key].(map[string]any); ok {
		return b
	}
	return map[string]any{}
}

// MergeParams builds the effective parameter view for one provider call:
// the generic "{provider}_params" bag plus every recognized family bag.
// Generic values win on conflict; they represent the caller's explicit
// top-level intent.
func MergeParams(params map[string]any, provider string, familyBagKeys []string) map[string]any {
	merged := make(map[string]any)
	for k, v := range Bag(params, provider+"_params") {
		merged[k] = v
	}
	for _, bagKey := range familyBagKeys {
		for k, v := range Bag(params, bagKey) {
			if _, exists := merged[k]; !exists {
				merged[k] = v
			}
		}
	}
	return merged
}

// StringParam returns the string value of a top-level parameter, or "".
func StringParam(params map[string]any, key string) string {
	s, _ := params[key].(string)
	return s
}
