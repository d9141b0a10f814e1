package llm

import (
	"context"
	"testing"

	"google.golang.org/genai"
)

func TestNewGeminiProvider(t *testing.T) {
	if _, err := NewGeminiProvider(context.Background(), GeminiConfig{}); err == nil {
		t.Error("missing key should fail")
	}
	p, err := NewGeminiProvider(context.Background(), GeminiConfig{APIKey: "k", Model: "gemini-flash"})
	if err != nil {
		t.Fatal(err)
	}
	if p.ModelID() != "gemini-2.5-flash" {
		t.Errorf("ModelID = %q", p.ModelID())
	}
}

func TestGeminiSchema(t *testing.T) {
	s := geminiSchema(stepSchema().Definition)

	if s.Type != genai.TypeObject {
		t.Fatalf("type = %s", s.Type)
	}
	if len(s.Required) != 2 {
		t.Errorf("required = %v", s.Required)
	}
	steps := s.Properties["steps"]
	if steps == nil || steps.Type != genai.TypeArray || steps.Items.Type != genai.TypeString {
		t.Fatalf("steps = %+v", steps)
	}
	if steps.MaxItems == nil || *steps.MaxItems != 3 {
		t.Errorf("maxItems = %v", steps.MaxItems)
	}
	if got := s.Properties["level"].Enum; len(got) != 2 || got[0] != "easy" {
		t.Errorf("enum = %v", got)
	}
}

func TestGeminiSchema_DecodedJSON(t *testing.T) {
	// Definitions read from JSON carry []any and float64.
	s := geminiSchema(map[string]any{
		"type":     "array",
		"minItems": float64(1),
		"items":    map[string]any{"type": "number", "enum": []any{"a", 2.0}},
	})
	if s.Type != genai.TypeArray || s.MinItems == nil || *s.MinItems != 1 {
		t.Fatalf("schema = %+v", s)
	}
	if s.Items.Type != genai.TypeNumber || len(s.Items.Enum) != 1 {
		t.Errorf("items = %+v", s.Items)
	}
	if geminiSchema(map[string]any{"type": "null"}).Type != genai.TypeString {
		t.Error("unknown types fall back to string")
	}
}
