package llm

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextFromResponse_ValidResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []genai.Part{
						genai.Text(`{"websiteSummary": "`),
						genai.Text(`Acme sells anvils", "linkedinSummary": ""}`),
					},
				},
			},
		},
	}

	text, err := extractTextFromResponse(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"websiteSummary": "Acme sells anvils", "linkedinSummary": ""}`, text)
}

func TestExtractTextFromResponse_NoCandidates(t *testing.T) {
	_, err := extractTextFromResponse(&genai.GenerateContentResponse{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")

	_, err = extractTextFromResponse(nil)
	require.Error(t, err)
}

func TestExtractTextFromResponse_NoContent(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: nil}},
	}

	_, err := extractTextFromResponse(resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no content")
}

func TestGeminiSchema(t *testing.T) {
	s := Schema{
		Name:        "email_generation_reasoning",
		Description: "three emails",
		Fields: []SchemaField{
			{Name: "email_subject", Description: "shared subject"},
			{Name: "primary_email"},
		},
	}

	got := geminiSchema(s)
	assert.Equal(t, genai.TypeObject, got.Type)
	assert.Equal(t, "three emails", got.Description)
	assert.Equal(t, []string{"email_subject", "primary_email"}, got.Required)
	require.Contains(t, got.Properties, "email_subject")
	assert.Equal(t, genai.TypeString, got.Properties["email_subject"].Type)
	assert.Equal(t, "shared subject", got.Properties["email_subject"].Description)
}
