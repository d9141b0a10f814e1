package doubts

import "github.com/eddge/learnengine/internal/llm"

// DoubtSchema is the structured reply requested from the model.
var DoubtSchema = &llm.Schema{
	Name:        "doubt-answer",
	Description: "An explanation of a student's doubt with worked steps and a check question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{
				"type":        "string",
				"description": "Direct answer to the doubt in 2-5 sentences",
				"minLength":   1,
			},
			"steps": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Worked steps, one idea per step; empty when no working is needed",
				"maxItems":    8,
			},
			"check_question": map[string]any{
				"type":        "string",
				"description": "One short question the student can answer to confirm they understood",
			},
		},
		"required":             []any{"explanation", "steps", "check_question"},
		"additionalProperties": false,
	},
}
