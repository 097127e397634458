package tools

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
)

// Anthropic converts the tool definitions to Anthropic Messages API tool
// parameters.
func (s *Service) Anthropic() []anthropic.ToolUnionParam {
	defs := s.Definitions()
	out := make([]anthropic.ToolUnionParam, len(defs))

	for i, def := range defs {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}
		if props, ok := def.Parameters["properties"]; ok {
			inputSchema.Properties = props
		}
		if req, ok := def.Parameters["required"].([]string); ok {
			inputSchema.Required = req
		}

		tu := anthropic.ToolUnionParamOfTool(inputSchema, def.Name)
		if tu.OfTool != nil {
			tu.OfTool.Description = anthropic.String(def.Description)
		}
		out[i] = tu
	}

	return out
}
