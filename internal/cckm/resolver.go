package cckm

import (
	"context"
	"encoding/json"

	"github.com/trustgate/ksbridge/internal/cckm/ident"
)

// OperationExecutor is the dispatch surface the resolver lists through.
// Resolution is itself implemented as another dispatched operation.
type OperationExecutor interface {
	Execute(ctx context.Context, action string, params map[string]any) (any, error)
}

// ResourceKind describes how to resolve one resource family by name: which
// list operation to issue, which scoped bag carries its filters, and which
// fields identify an entry.
type ResourceKind struct {
	// ListAction is the dispatched operation used to enumerate candidates.
	ListAction string

	// BagKey is the scoped parameter bag the list filters go into.
	BagKey string

	// NameFilter, when non-empty, is a name-equality filter parameter
	// populated with the identifier being resolved.
	NameFilter string

	// NameFields are the entry fields compared against the identifier.
	NameFields []string

	// ContextKeys are narrowing parameters forwarded from the caller's
	// effective parameters when present (e.g. a parent-resource filter).
	ContextKeys []string
}

// Resolver translates human-supplied resource names into canonical IDs on
// a best-effort basis. Resolution is a convenience, never a validator: any
// failure degrades to passing the original string through so the CLI
// remains the authority on identifier validity.
type Resolver struct {
	ops      OperationExecutor
	provider string
	kinds    map[string]ResourceKind
}

// NewResolver creates a Resolver for one provider's resource kinds.
func NewResolver(ops OperationExecutor, provider string, kinds map[string]ResourceKind) *Resolver {
	return &Resolver{ops: ops, provider: provider, kinds: kinds}
}

// Resolve returns the canonical ID for identifier, or identifier unchanged
// when it already has a recognized ID shape, when no exact name match is
// found, or when anything goes wrong along the way. It never returns an
// error and never issues a list call for canonical input.
func (r *Resolver) Resolve(ctx context.Context, identifier, kind string, contextParams map[string]any) string {
	if ident.IsUUID(identifier) || ident.IsOCID(identifier) {
		return identifier
	}

	rk, ok := r.kinds[kind]
	if !ok {
		return identifier
	}

	bag := make(map[string]any)
	if rk.NameFilter != "" {
		bag[rk.NameFilter] = identifier
	}
	for _, key := range rk.ContextKeys {
		if v, ok := contextParams[key]; ok {
			bag[key] = v
		}
	}

	listParams := map[string]any{
		"cloud_provider": r.provider,
		rk.BagKey:        bag,
	}

	result, err := r.ops.Execute(ctx, rk.ListAction, listParams)
	if err != nil {
		return identifier
	}

	for _, entry := range listEntries(result) {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		for _, field := range rk.NameFields {
			if name, ok := m[field].(string); ok && name == identifier {
				if id, ok := m["id"].(string); ok && id != "" {
					return id
				}
				return identifier
			}
		}
	}
	return identifier
}

// listEntries extracts the entry slice from a list-operation result,
// tolerating a JSON string payload and either a "resources" or "data"
// container key.
func listEntries(result any) []any {
	if s, ok := result.(string); ok {
		var parsed any
		if err := json.Unmarshal([]byte(s), &parsed); err != nil {
			return nil
		}
		result = parsed
	}

	switch t := result.(type) {
	case []any:
		return t
	case map[string]any:
		if entries, ok := t["resources"].([]any); ok && len(entries) > 0 {
			return entries
		}
		if entries, ok := t["data"].([]any); ok {
			return entries
		}
	}
	return nil
}
