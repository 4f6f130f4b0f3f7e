// Package tools provides a metadata-driven registry for MCP tool definitions.
// Tools are defined declaratively and registered through type-safe handlers.
package tools

// ToolSpec defines a tool's metadata for declarative registration.
// Each spec maps to a commons client method with matching Args/Result types.
type ToolSpec struct {
	// Name is the MCP tool name (e.g., "commons_media_list")
	Name string

	// Method is the client method name (e.g., "MediaList")
	Method string

	// Description is the tool description shown to LLMs
	Description string

	// Title is the human-readable tool title for annotations
	Title string

	// Category groups tools logically (stats, places, media, history)
	Category string

	// Service is the upstream the tool talks to (toolforge, sparql, campaigns, commons)
	Service string

	// ReadOnly indicates the tool doesn't modify any state
	ReadOnly bool

	// Destructive indicates the tool can delete or overwrite data
	Destructive bool

	// Idempotent indicates repeated calls have the same effect
	Idempotent bool

	// OpenWorld indicates the tool accesses external resources
	OpenWorld bool
}

// ToolsByService returns the specs that talk to service
func ToolsByService(service string) []ToolSpec {
	var out []ToolSpec
	for _, spec := range AllTools {
		if spec.Service == service {
			out = append(out, spec)
		}
	}
	return out
}

// ToolsByCategory returns the specs in category
func ToolsByCategory(category string) []ToolSpec {
	var out []ToolSpec
	for _, spec := range AllTools {
		if spec.Category == category {
			out = append(out, spec)
		}
	}
	return out
}

// ptr is a helper to create a pointer to a value.
func ptr[T any](v T) *T {
	return &v
}
