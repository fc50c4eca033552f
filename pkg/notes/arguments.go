package notes

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/mark3labs/mcp-go/mcp"
)

// definition pairs a tool descriptor with its resolved input schema.
// Tools embed it to get Definition and argument binding.
type definition struct {
	tool   mcp.Tool
	schema *jsonschema.Resolved
}

// newDefinition resolves the input schema of tool. Tool schemas are fixed at
// construction, so a schema that does not resolve is a programming error.
func newDefinition(tool mcp.Tool) definition {
	schema, err := resolveInputSchema(tool)
	if err != nil {
		panic(fmt.Sprintf("tool %s: %v", tool.Name, err))
	}

	return definition{tool: tool, schema: schema}
}

func (d definition) Definition() mcp.Tool {
	return d.tool
}

// bind validates args against the input schema and decodes them into params.
// Nothing reaches the store unless this succeeds. A null argument counts as absent.
func (d definition) bind(args map[string]any, params any) error {
	args = withoutNulls(args)

	if err := d.schema.Validate(args); err != nil {
		return fmt.Errorf("invalid arguments for %s: %w", d.tool.Name, err)
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = d.tool.Name
	req.Params.Arguments = args
	if err := req.BindArguments(params); err != nil {
		return fmt.Errorf("invalid arguments for %s: %w", d.tool.Name, err)
	}

	return nil
}

// resolveInputSchema converts the mcp-go input schema into a jsonschema schema
func resolveInputSchema(tool mcp.Tool) (*jsonschema.Resolved, error) {
	data, err := json.Marshal(tool.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input schema: %w", err)
	}

	var schema jsonschema.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to decode input schema: %w", err)
	}

	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve input schema: %w", err)
	}

	return resolved, nil
}

func withoutNulls(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if v != nil {
			out[k] = v
		}
	}
	return out
}

// integer narrows a number property to JSON integers
func integer() mcp.PropertyOption {
	return func(schema map[string]any) {
		schema["type"] = "integer"
	}
}
