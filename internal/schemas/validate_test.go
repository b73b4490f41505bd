package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var summaryDoc = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"websiteSummary":  map[string]any{"type": "string"},
		"linkedinSummary": map[string]any{"type": "string"},
	},
	"required":             []string{"websiteSummary", "linkedinSummary"},
	"additionalProperties": false,
}

type summary struct {
	WebsiteSummary  string `json:"websiteSummary"`
	LinkedInSummary string `json:"linkedinSummary"`
}

func TestDecode_Valid(t *testing.T) {
	v, err := Compile("summary_schema", summaryDoc)
	require.NoError(t, err)

	var out summary
	err = v.Decode(`{"websiteSummary": "Acme makes anvils", "linkedinSummary": ""}`, &out)
	require.NoError(t, err)
	assert.Equal(t, "Acme makes anvils", out.WebsiteSummary)
	assert.Empty(t, out.LinkedInSummary)
}

func TestDecode_MissingField(t *testing.T) {
	v := MustCompile("summary_schema", summaryDoc)

	out := summary{WebsiteSummary: "untouched"}
	err := v.Decode(`{"websiteSummary": "x"}`, &out)
	require.Error(t, err)

	var violation *SchemaViolation
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "summary_schema", violation.Schema)
	require.NotEmpty(t, violation.Errors)
	assert.Contains(t, violation.Error(), "linkedinSummary")
	assert.Equal(t, "untouched", out.WebsiteSummary)
}

func TestDecode_WrongType(t *testing.T) {
	v := MustCompile("summary_schema", summaryDoc)

	var out summary
	err := v.Decode(`{"websiteSummary": 42, "linkedinSummary": "l"}`, &out)

	var violation *SchemaViolation
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "websiteSummary", violation.Errors[0].Field)
}

func TestDecode_ExtraField(t *testing.T) {
	v := MustCompile("summary_schema", summaryDoc)

	var out summary
	err := v.Decode(`{"websiteSummary": "w", "linkedinSummary": "l", "extra": "x"}`, &out)

	var violation *SchemaViolation
	require.ErrorAs(t, err, &violation)
}

func TestDecode_Malformed(t *testing.T) {
	v := MustCompile("summary_schema", summaryDoc)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "whitespace", raw: "  \n"},
		{name: "truncated", raw: `{"websiteSummary": "w"`},
		{name: "prose", raw: "Sure! Here is your summary."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out summary
			err := v.Decode(tt.raw, &out)
			var violation *SchemaViolation
			require.ErrorAs(t, err, &violation)
		})
	}
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile("broken", map[string]any{"type": 12})
	require.Error(t, err)

	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "broken", loadErr.Schema)

	assert.Panics(t, func() { MustCompile("broken", map[string]any{"type": 12}) })
}
