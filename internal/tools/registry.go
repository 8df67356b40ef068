// Package tools holds the tool registry the HTTP surface serves from.
package tools

import (
	"sort"

	"github.com/trustgate/ksbridge/model"
)

// Registry is the set of tools advertised to clients, keyed by name.
type Registry struct {
	byName map[string]model.Tool
}

// NewRegistry creates a Registry over the given tools.
func NewRegistry(ts ...model.Tool) *Registry {
	r := &Registry{byName: make(map[string]model.Tool, len(ts))}
	for _, t := range ts {
		r.byName[t.Name()] = t
	}
	return r
}

// Get returns the named tool.
func (r *Registry) Get(name string) (model.Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Descriptors returns every tool's descriptor sorted by name.
func (r *Registry) Descriptors() []model.ToolDescriptor {
	out := make([]model.ToolDescriptor, 0, len(r.byName))
	for _, t := range r.byName {
		out = append(out, model.DescribeTool(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
