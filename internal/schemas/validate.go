// Package schemas validates model output against JSON Schema documents before it is decoded.
package schemas

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaViolation is returned when a document does not parse or does not
// conform to the schema it was checked against.
type SchemaViolation struct {
	Schema  string
	Message string
	Errors  []FieldError
	Cause   error
}

func (e *SchemaViolation) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "schema violation (%s): %s", e.Schema, e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&sb, ": %v", e.Cause)
	}
	for i, fe := range e.Errors {
		fmt.Fprintf(&sb, "\n  %d. %s: %s", i+1, fe.Field, fe.Message)
	}
	return sb.String()
}

func (e *SchemaViolation) Unwrap() error {
	return e.Cause
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Schema  string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Schema, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Schema, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// Validator is a compiled schema. It is safe for concurrent use.
type Validator struct {
	name   string
	schema *gojsonschema.Schema
}

// Compile compiles a schema document (any value that marshals to JSON Schema).
func Compile(name string, doc any) (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, &SchemaLoadError{Schema: name, Message: "invalid schema document", Cause: err}
	}
	return &Validator{name: name, schema: schema}, nil
}

// MustCompile is like Compile but panics on error.
// Use this for schemas that are built into the binary.
func MustCompile(name string, doc any) *Validator {
	v, err := Compile(name, doc)
	if err != nil {
		panic(err)
	}
	return v
}

// Name returns the schema name used in errors.
func (v *Validator) Name() string {
	return v.name
}

// Validate checks raw JSON text against the schema.
func (v *Validator) Validate(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return &SchemaViolation{Schema: v.name, Message: "empty document"}
	}

	result, err := v.schema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return &SchemaViolation{Schema: v.name, Message: "document is not valid JSON", Cause: err}
	}
	if result.Valid() {
		return nil
	}

	violation := &SchemaViolation{
		Schema:  v.name,
		Message: "document does not match schema",
		Errors:  make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		violation.Errors = append(violation.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return violation
}

// Decode validates raw and unmarshals it into out. Nothing is written to out
// unless the document conforms.
func (v *Validator) Decode(raw string, out any) error {
	if err := v.Validate(raw); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return &SchemaViolation{Schema: v.name, Message: "failed to decode document", Cause: err}
	}
	return nil
}
