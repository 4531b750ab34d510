package catalog

import (
	"google.golang.org/genai"

	"github.com/pythagonacci/trak/pkg/types"
)

// GeminiTools converts the catalog to Gemini function declarations.
func (c *Catalog) GeminiTools() []*genai.Tool {
	specs := c.List()
	if len(specs) == 0 {
		return nil
	}
	fds := make([]*genai.FunctionDeclaration, 0, len(specs))
	for _, s := range specs {
		fds = append(fds, &genai.FunctionDeclaration{
			Name:        s.Name,
			Description: s.Description,
			Parameters:  convertSchema(s.ParametersSchema()),
		})
	}
	return []*genai.Tool{{FunctionDeclarations: fds}}
}

func convertSchema(schema types.JSONSchema) *genai.Schema {
	if schema == nil {
		return nil
	}

	valType, _ := schema["type"].(string)

	s := &genai.Schema{
		Type:        toGenaiType(valType),
		Description: getString(schema, "description"),
	}

	if props, ok := schema["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema)
		for k, v := range props {
			if vMap, ok := v.(map[string]any); ok {
				s.Properties[k] = convertSchema(vMap)
			}
		}
	}

	if items, ok := schema["items"].(map[string]any); ok {
		s.Items = convertSchema(items)
	}

	if enumVals, ok := schema["enum"].([]any); ok {
		for _, e := range enumVals {
			if str, ok := e.(string); ok {
				s.Enum = append(s.Enum, str)
			}
		}
	}

	switch req := schema["required"].(type) {
	case []any:
		for _, r := range req {
			if str, ok := r.(string); ok {
				s.Required = append(s.Required, str)
			}
		}
	case []string:
		s.Required = append(s.Required, req...)
	}

	return s
}

func getString(schema types.JSONSchema, key string) string {
	v, _ := schema[key].(string)
	return v
}

func toGenaiType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeUnspecified
	}
}
