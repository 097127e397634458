package tools

import (
	"context"
	"fmt"

	"github.com/hupe1980/membox/core"
	"github.com/hupe1980/membox/memories"
	"github.com/hupe1980/membox/search"
)

// Tool names as presented to the model.
const (
	ToolMemoryPut    = "memory_put"
	ToolMemoryGet    = "memory_get"
	ToolMemoryDelete = "memory_delete"
	ToolMemorySearch = "memory_search"
)

// Definition is a provider-neutral tool schema.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON schema: properties + required
}

// Service turns the memory API into LLM tools.
type Service struct {
	memories *memories.Service
	search   *search.Service
}

// New creates a tools service over the given resource services.
func New(mem *memories.Service, srch *search.Service) *Service {
	return &Service{memories: mem, search: srch}
}

// Definitions returns the schemas of all memory tools.
func (s *Service) Definitions() []Definition {
	return []Definition{
		{
			Name:        ToolMemoryPut,
			Description: "Store a memory under a key so it can be recalled later.",
			Parameters: map[string]any{
				"properties": map[string]any{
					"key":     map[string]any{"type": "string", "description": "Stable identifier for the memory."},
					"content": map[string]any{"type": "string", "description": "The text to remember."},
				},
				"required": []string{"key", "content"},
			},
		},
		{
			Name:        ToolMemoryGet,
			Description: "Fetch a previously stored memory by key.",
			Parameters: map[string]any{
				"properties": map[string]any{
					"key": map[string]any{"type": "string", "description": "Key of the memory to fetch."},
				},
				"required": []string{"key"},
			},
		},
		{
			Name:        ToolMemoryDelete,
			Description: "Delete a stored memory. Deleting an absent key succeeds.",
			Parameters: map[string]any{
				"properties": map[string]any{
					"key": map[string]any{"type": "string", "description": "Key of the memory to delete."},
				},
				"required": []string{"key"},
			},
		},
		{
			Name:        ToolMemorySearch,
			Description: "Search stored memories by semantic relevance.",
			Parameters: map[string]any{
				"properties": map[string]any{
					"query": map[string]any{"type": "string", "description": "What to look for."},
					"limit": map[string]any{"type": "integer", "description": "Maximum number of matches."},
				},
				"required": []string{"query"},
			},
		},
	}
}

// Execute dispatches one tool call against the API and returns a
// JSON-serializable result for the model.
func (s *Service) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case ToolMemoryPut:
		key, _ := args["key"].(string)
		content, _ := args["content"].(string)
		if err := s.memories.Put(ctx, core.Memory{Key: key, Content: content}); err != nil {
			return nil, err
		}
		return map[string]any{"stored": key}, nil

	case ToolMemoryGet:
		key, _ := args["key"].(string)
		mem, err := s.memories.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		return mem, nil

	case ToolMemoryDelete:
		key, _ := args["key"].(string)
		if err := s.memories.Delete(ctx, key); err != nil {
			return nil, err
		}
		return map[string]any{"deleted": key}, nil

	case ToolMemorySearch:
		query, _ := args["query"].(string)
		limit := 0
		if f, ok := args["limit"].(float64); ok {
			limit = int(f)
		}
		matches, err := s.search.Query(ctx, search.Request{Query: query, Limit: limit})
		if err != nil {
			return nil, err
		}
		return matches, nil

	default:
		return nil, fmt.Errorf("tools: unknown tool %q", name)
	}
}
