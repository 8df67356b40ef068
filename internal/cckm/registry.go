package cckm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/trustgate/ksbridge/model"
)

// paramAliases maps a canonical required-parameter name to the alternate
// spellings individual ksctl subcommands still use. The validator accepts
// either spelling; builders normalize to the flag each verb expects.
var paramAliases = map[string][]string{
	"source_key_identifier": {"sourceKey_identifier"},
}

// Registry is the unified CCKM tool. It routes a caller-supplied
// cloud_provider string to the matching operation dispatcher, validates
// required parameters generically across every recognized parameter bag,
// and normalizes all failures into an {"error": ...} result so the calling
// agent can inspect and retry. It never lets an internal error propagate.
type Registry struct {
	providers map[string]Dispatcher
	names     []string
	logger    *zap.Logger
}

// NewRegistry creates a Registry over the given dispatchers.
func NewRegistry(logger *zap.Logger, dispatchers ...Dispatcher) *Registry {
	r := &Registry{
		providers: make(map[string]Dispatcher, len(dispatchers)),
		logger:    logger,
	}
	for _, d := range dispatchers {
		r.providers[d.Provider()] = d
		r.names = append(r.names, d.Provider())
	}
	sort.Strings(r.names)
	return r
}

// Name implements model.Tool.
func (r *Registry) Name() string { return "cckm_management" }

// Description implements model.Tool.
func (r *Registry) Description() string {
	return "CCKM (CipherTrust Cloud Key Manager) operations for managing cloud keys and related " +
		"resources across providers. AWS: keys, reports, synchronization jobs, policy templates; " +
		"OCI: keys, vaults, compartments; Google Cloud: keys, key rings, projects, locations, " +
		"reports. Each provider has specific operations and parameters - see action_requirements " +
		"in the schema for details."
}

// Schema implements model.Tool. It unions every dispatcher's operation
// catalogue into one action enum and merges their scoped-bag schema
// fragments. Duplicate operation names across providers are legal; the
// cloud_provider field disambiguates.
func (r *Registry) Schema() *openapi3.Schema {
	operations := make(map[string]bool)
	for _, d := range r.providers {
		for _, op := range d.Operations() {
			operations[op] = true
		}
	}
	actionEnum := make([]any, 0, len(operations))
	for op := range operations {
		actionEnum = append(actionEnum, op)
	}
	sort.Slice(actionEnum, func(i, j int) bool {
		return actionEnum[i].(string) < actionEnum[j].(string)
	})

	providerEnum := make([]any, 0, len(r.names))
	for _, name := range r.names {
		providerEnum = append(providerEnum, name)
	}

	schema := openapi3.NewObjectSchema().
		WithProperty("action", describe(openapi3.NewStringSchema().
			WithEnum(actionEnum...),
			"The CCKM operation to perform (e.g. keys_create, keys_list, keys_get). "+
				"The cloud_provider parameter determines which cloud provider to use.")).
		WithProperty("cloud_provider", describe(openapi3.NewStringSchema().
			WithEnum(providerEnum...),
			"The cloud provider to operate on"))
	for name, prop := range model.DomainSchemaProperties() {
		schema = schema.WithProperty(name, prop)
	}

	requirements := make(map[string]any)
	for _, name := range r.names {
		d := r.providers[name]
		for bagKey, bagSchema := range d.SchemaProperties() {
			schema = schema.WithProperty(bagKey, bagSchema)
		}
		for op, req := range d.ActionRequirements() {
			requirements[op] = map[string]any{
				"required": req.Required,
				"optional": req.Optional,
			}
		}
	}

	schema.Required = []string{"action", "cloud_provider"}
	schema.Extensions = map[string]any{"action_requirements": requirements}
	return schema
}

// Execute implements model.Tool.
func (r *Registry) Execute(ctx context.Context, params map[string]any) (any, error) {
	action := StringParam(params, "action")
	if action == "" {
		return errorResult("Missing required parameter: action"), nil
	}
	return r.ExecuteAction(ctx, action, params), nil
}

// ExecuteAction validates and dispatches one CCKM operation. The returned
// value is either the provider result or an {"error": ...} mapping.
func (r *Registry) ExecuteAction(ctx context.Context, action string, params map[string]any) any {
	provider := StringParam(params, "cloud_provider")
	if provider == "" {
		return errorResult("Missing required parameter: cloud_provider")
	}

	d, ok := r.providers[provider]
	if !ok {
		return errorResult(fmt.Sprintf("Cloud provider %s not implemented yet", provider))
	}

	requirements, ok := d.ActionRequirements()[action]
	if !ok {
		return errorResult(fmt.Sprintf("Operation %s not supported for cloud provider %s", action, provider))
	}

	if missing := missingParams(d, requirements, params); len(missing) > 0 {
		quoted := make([]string, len(missing))
		for i, name := range missing {
			quoted[i] = "'" + name + "'"
		}
		return errorResult(fmt.Sprintf("Missing required parameters for %s: [%s]",
			action, strings.Join(quoted, ", ")))
	}

	result, err := d.Execute(ctx, action, params)
	if err != nil {
		r.logger.Warn("cckm operation failed",
			zap.String("provider", provider),
			zap.String("action", action),
			zap.Error(err),
		)
		return errorResult(fmt.Sprintf("Failed to execute %s: %v", action, err))
	}
	return result
}

// missingParams returns the required fields of one operation that are
// present in none of the recognized locations: the top-level parameters,
// the provider-generic bag, any provider family bag, or an accepted alias
// spelling within those same locations.
func missingParams(d Dispatcher, req Requirement, params map[string]any) []string {
	bagKeys := make([]string, 0, len(d.SchemaProperties())+1)
	bagKeys = append(bagKeys, d.Provider()+"_params")
	familyKeys := make([]string, 0, len(d.SchemaProperties()))
	for k := range d.SchemaProperties() {
		familyKeys = append(familyKeys, k)
	}
	sort.Strings(familyKeys)
	bagKeys = append(bagKeys, familyKeys...)

	var missing []string
	for _, name := range req.Required {
		if paramPresent(params, bagKeys, name) {
			continue
		}
		found := false
		for _, alias := range paramAliases[name] {
			if paramPresent(params, bagKeys, alias) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, name)
		}
	}
	return missing
}

// paramPresent searches the top-level parameters and every given bag.
func paramPresent(params map[string]any, bagKeys []string, name string) bool {
	if _, ok := params[name]; ok {
		return true
	}
	for _, bagKey := range bagKeys {
		if bag, ok := params[bagKey].(map[string]any); ok {
			if _, ok := bag[name]; ok {
				return true
			}
		}
	}
	return false
}

func errorResult(msg string) map[string]any {
	return map[string]any{"error": msg}
}

// describe sets the schema description and returns the schema, mirroring the
// builder style of the other openapi3 With* helpers.
func describe(s *openapi3.Schema, d string) *openapi3.Schema {
	s.Description = d
	return s
}
