package tools

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is the catalog entry sent to the model for one tool.
type Schema struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// Registry maps tool id to tool handle and validates every invocation's
// raw arguments against the tool's schema before execution.
type Registry struct {
	mu         sync.RWMutex
	tools      map[string]Tool
	validators map[string]*jsonschema.Schema
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:      make(map[string]Tool),
		validators: make(map[string]*jsonschema.Schema),
	}
}

// Register adds a tool, compiling its input schema for validation. It
// panics on a malformed schema — that is a programming error, not a
// runtime condition.
func (r *Registry) Register(t Tool) {
	compiler := jsonschema.NewCompiler()
	resourceID := "tool:" + t.ID()
	if err := compiler.AddResource(resourceID, any(t.InputSchema())); err != nil {
		panic(fmt.Sprintf("tools: invalid schema for %q: %v", t.ID(), err))
	}
	sch, err := compiler.Compile(resourceID)
	if err != nil {
		panic(fmt.Sprintf("tools: compile schema for %q: %v", t.ID(), err))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.ID()] = t
	r.validators[t.ID()] = sch
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// ListSchemas returns the catalog sent to the model, sorted by name for
// deterministic ordering.
func (r *Registry) ListSchemas() []Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Schema, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, Schema{Name: t.ID(), Description: t.Description(), InputSchema: t.InputSchema()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Filter returns a view containing only the named subset of tools. The
// wildcard "*" means "all tools, unfiltered".
func (r *Registry) Filter(allowed []string) *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(allowed) == 1 && allowed[0] == "*" {
		filtered := NewRegistry()
		for name, t := range r.tools {
			filtered.tools[name] = t
			filtered.validators[name] = r.validators[name]
		}
		return filtered
	}

	filtered := NewRegistry()
	for _, name := range allowed {
		if t, ok := r.tools[name]; ok {
			filtered.tools[name] = t
			filtered.validators[name] = r.validators[name]
		}
	}
	return filtered
}

// Validate checks raw arguments against name's compiled schema, returning
// an InvalidParams ToolError on mismatch.
func (r *Registry) Validate(name string, args json.RawMessage) *ToolError {
	r.mu.RLock()
	sch, ok := r.validators[name]
	r.mu.RUnlock()
	if !ok {
		return NewToolErrorf(ErrNotFound, "tool %q not registered", name)
	}

	var instance any
	if err := json.Unmarshal(args, &instance); err != nil {
		return NewToolErrorf(ErrInvalidParams, "arguments are not valid JSON: %v", err)
	}
	if err := sch.Validate(instance); err != nil {
		return NewToolErrorf(ErrInvalidParams, "%v", err)
	}
	return nil
}

// Execute validates args against name's schema, then dispatches to the
// tool if the tool exists and validation passes.
func (r *Registry) Execute(ctx *ToolContext, name string, args json.RawMessage) (Result, *ToolError) {
	t, ok := r.Get(name)
	if !ok {
		return Result{}, NewToolErrorf(ErrNotFound, "tool %q not found", name)
	}
	if err := r.Validate(name, args); err != nil {
		return Result{}, err
	}
	return t.Execute(ctx, args)
}
