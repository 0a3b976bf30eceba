package agent

import (
	"encoding/json"

	"google.golang.org/genai"
)

// FunctionDeclarations converts tool definitions into Gemini function
// declarations so a Gemini runtime can be configured with the same tool
// surface.
func FunctionDeclarations(defs []ToolDef) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(defs))
	for _, d := range defs {
		fd := &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
		}
		if d.InputSchema != "" && json.Valid([]byte(d.InputSchema)) {
			fd.ParametersJsonSchema = json.RawMessage(d.InputSchema)
		}
		decls = append(decls, fd)
	}
	return decls
}

// GenAITools wraps the declarations in a single genai.Tool.
func GenAITools(defs []ToolDef) []*genai.Tool {
	return []*genai.Tool{{FunctionDeclarations: FunctionDeclarations(defs)}}
}
