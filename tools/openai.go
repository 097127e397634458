package tools

import (
	"github.com/openai/openai-go"
)

// OpenAI converts the tool definitions to OpenAI chat-completion tool
// parameters.
func (s *Service) OpenAI() []openai.ChatCompletionToolParam {
	defs := s.Definitions()
	out := make([]openai.ChatCompletionToolParam, len(defs))

	for i, def := range defs {
		params := openai.FunctionParameters{"type": "object"}
		for k, v := range def.Parameters {
			params[k] = v
		}
		out[i] = openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        def.Name,
				Description: openai.String(def.Description),
				Parameters:  params,
			},
		}
	}

	return out
}
