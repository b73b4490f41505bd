// Package llm - schema.go describes the structured output shapes requested from providers.
package llm

// Schema defines a flat object of required string fields.
// It is rendered into a JSON Schema document for OpenAI structured outputs and
// response validation, and into a genai.Schema for Gemini.
type Schema struct {
	Name        string        // Schema name sent to the provider (e.g., "summary_schema")
	Description string        // Short description of the object
	Fields      []SchemaField // Output fields, in prompt order
}

// SchemaField defines a single string field in the output object.
type SchemaField struct {
	Name        string // JSON field name
	Description string // Description for the LLM
}

// FieldNames returns the field names in declaration order.
func (s Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// JSONSchema renders the schema as a JSON Schema document.
// Every field is a required string and no other properties are allowed,
// which is also what OpenAI strict mode demands.
func (s Schema) JSONSchema() map[string]any {
	properties := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		prop := map[string]any{"type": "string"}
		if f.Description != "" {
			prop["description"] = f.Description
		}
		properties[f.Name] = prop
	}

	doc := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             s.FieldNames(),
		"additionalProperties": false,
	}
	if s.Description != "" {
		doc["description"] = s.Description
	}
	return doc
}
