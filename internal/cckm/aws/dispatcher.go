// Package aws implements the AWS CCKM operation dispatcher: key lifecycle,
// synchronization jobs, policy templates, CloudHSM/HYOK key stores, and
// reports, all rendered to ksctl "cckm aws" subcommands.
package aws

import (
	"context"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/trustgate/ksbridge/internal/cckm"
	"github.com/trustgate/ksbridge/internal/ksctl"
)

// familyBagKeys are the scoped parameter bags recognized on top of the
// generic aws_params bag.
var familyBagKeys = []string{"aws_keys_params", "aws_reports_params"}

// Dispatcher routes AWS operations to the keys or reports command builder.
type Dispatcher struct {
	runner       *ksctl.Runner
	requirements map[string]cckm.Requirement
}

// NewDispatcher creates the AWS dispatcher.
func NewDispatcher(runner *ksctl.Runner) *Dispatcher {
	reqs := keyRequirements()
	for op, req := range reportRequirements() {
		reqs[op] = req
	}
	return &Dispatcher{runner: runner, requirements: reqs}
}

// Provider implements cckm.Dispatcher.
func (d *Dispatcher) Provider() string { return "aws" }

// Operations implements cckm.Dispatcher. The catalogue is the requirement
// table's key set, sorted for stable schema output.
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
		"aws_keys_params":    keySchemaProperties(),
		"aws_reports_params": reportSchemaProperties(),
	}
}

// ActionRequirements implements cckm.Dispatcher.
func (d *Dispatcher) ActionRequirements() map[string]cckm.Requirement {
	return d.requirements
}

// Execute implements cckm.Dispatcher. AWS identifiers are KMS key IDs and
// template IDs the caller already holds, so no name resolution happens
// here.
func (d *Dispatcher) Execute(ctx context.Context, action string, params map[string]any) (any, error) {
	merged := cckm.MergeParams(params, "aws", familyBagKeys)

	var args []string
	var err error
	switch {
	case strings.HasPrefix(action, "reports_"):
		args, err = buildReportsCommand(action, merged)
	default:
		args, err = buildKeyCommand(action, merged)
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
