// Package oci implements the OCI CCKM operation dispatcher: key, vault,
// and compartment operations rendered to ksctl "cckm oci" subcommands,
// with best-effort name-to-ID resolution on identifier-taking operations.
package oci

import (
	"context"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/trustgate/ksbridge/internal/cckm"
	"github.com/trustgate/ksbridge/internal/ksctl"
)

var familyBagKeys = []string{"oci_keys_params", "oci_vaults_params", "oci_compartments_params"}

// resolvableActions are the operations whose --id argument may arrive as a
// human-readable name. Resolution is attempted only when an id is present;
// list-style operations and creates are never resolved.
var resolvableActions = map[string]bool{
	"keys_get": true, "keys_delete": true, "keys_enable": true,
	"keys_disable": true, "keys_refresh": true, "keys_restore": true,
	"keys_schedule_deletion": true, "keys_cancel_deletion": true,
	"keys_change_compartment": true, "keys_enable_auto_rotation": true,
	"keys_disable_auto_rotation": true, "keys_delete_backup": true,
	"keys_add_version": true, "keys_get_version": true,
	"keys_list_version": true, "keys_schedule_deletion_version": true,
	"keys_cancel_schedule_deletion_version": true,
	"vaults_get":                            true,
	"compartments_get":                      true,
	"compartments_delete":                   true,
}

// Dispatcher routes OCI operations to the matching command builder.
type Dispatcher struct {
	runner       *ksctl.Runner
	resolver     *cckm.Resolver
	requirements map[string]cckm.Requirement
}

// NewDispatcher creates the OCI dispatcher. The resolver lists through the
// dispatcher itself, so a resolution-triggered list call goes through the
// same merge and build path as a caller-issued one.
func NewDispatcher(runner *ksctl.Runner) *Dispatcher {
	reqs := keyRequirements()
	for op, req := range vaultRequirements() {
		reqs[op] = req
	}
	for op, req := range compartmentRequirements() {
		reqs[op] = req
	}
	d := &Dispatcher{runner: runner, requirements: reqs}
	d.resolver = cckm.NewResolver(d, "oci", map[string]cckm.ResourceKind{
		"keys": {
			ListAction:  "keys_list",
			BagKey:      "oci_keys_params",
			NameFilter:  "key_name",
			NameFields:  []string{"name", "key_name"},
			ContextKeys: []string{"oci_compartment_id", "oci_vault"},
		},
		"vaults": {
			ListAction:  "vaults_list",
			BagKey:      "oci_vaults_params",
			NameFields:  []string{"name", "display_name"},
			ContextKeys: []string{"oci_compartment_id"},
		},
		"compartments": {
			ListAction: "compartments_list",
			BagKey:     "oci_compartments_params",
			NameFields: []string{"name", "compartment_name"},
		},
	})
	return d
}

// Provider implements cckm.Dispatcher.
func (d *Dispatcher) Provider() string { return "oci" }

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
		"oci_keys_params":         keySchemaProperties(),
		"oci_vaults_params":       vaultSchemaProperties(),
		"oci_compartments_params": compartmentSchemaProperties(),
	}
}

// ActionRequirements implements cckm.Dispatcher.
func (d *Dispatcher) ActionRequirements() map[string]cckm.Requirement {
	return d.requirements
}

// Execute implements cckm.Dispatcher.
func (d *Dispatcher) Execute(ctx context.Context, action string, params map[string]any) (any, error) {
	merged := cckm.MergeParams(params, "oci", familyBagKeys)

	if resolvableActions[action] {
		if id, ok := merged["id"].(string); ok && id != "" {
			merged["id"] = d.resolver.Resolve(ctx, id, resourceKind(action), merged)
		}
	}

	var args []string
	var err error
	switch {
	case strings.HasPrefix(action, "keys_"):
		args, err = buildKeyCommand(action, merged)
	case strings.HasPrefix(action, "vaults_"):
		args, err = buildVaultCommand(action, merged)
	case strings.HasPrefix(action, "compartments_"):
		args, err = buildCompartmentCommand(action, merged)
	default:
		return nil, &cckm.UnsupportedOperationError{Provider: "oci", Action: action}
	}
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

func resourceKind(action string) string {
	switch {
	case strings.HasPrefix(action, "vaults_"):
		return "vaults"
	case strings.HasPrefix(action, "compartments_"):
		return "compartments"
	default:
		return "keys"
	}
}
