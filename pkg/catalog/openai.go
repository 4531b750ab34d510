package catalog

import (
	"github.com/sashabaranov/go-openai"
)

// OpenAITools converts the catalog to the OpenAI function-calling wire
// format.
func (c *Catalog) OpenAITools() []openai.Tool {
	specs := c.List()
	if len(specs) == 0 {
		return nil
	}
	result := make([]openai.Tool, len(specs))
	for i, s := range specs {
		result[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        s.Name,
				Description: s.Description,
				Parameters:  s.ParametersSchema(),
			},
		}
	}
	return result
}
