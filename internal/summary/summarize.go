// Package summary condenses a target's enrichment into a website summary and a profile summary.
package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leadgpt/emailgend/internal/enrich"
	"github.com/leadgpt/emailgend/internal/llm"
	"github.com/leadgpt/emailgend/internal/prompts"
	"github.com/leadgpt/emailgend/internal/schemas"
)

// Schema is the two-field structured output requested from the model.
var Schema = llm.Schema{
	Name:        "summary_schema",
	Description: "Summaries of the recipient's company website and LinkedIn profile",
	Fields: []llm.SchemaField{
		{Name: "websiteSummary", Description: "Summary of the company website content"},
		{Name: "linkedinSummary", Description: "Summary of the LinkedIn profile data"},
	},
}

var validator = schemas.MustCompile(Schema.Name, Schema.JSONSchema())

// Summary is the decoded model output.
type Summary struct {
	WebsiteSummary string `json:"websiteSummary"`
	ProfileSummary string `json:"linkedinSummary"`
}

// Options configures a Summarizer.
type Options struct {
	// Tier defaults to llm.TierStandard.
	Tier   llm.ModelTier
	Logger *slog.Logger
}

// Summarizer turns raw enrichment into summaries with one model call.
type Summarizer struct {
	client llm.Client
	tier   llm.ModelTier
	logger *slog.Logger
}

// New creates a Summarizer.
func New(client llm.Client, opts Options) *Summarizer {
	tier := opts.Tier
	if tier == "" {
		tier = llm.TierStandard
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{client: client, tier: tier, logger: logger}
}

// Summarize issues the summary request, even when both inputs are empty.
// Backend failures surface as *llm.BackendError and malformed output as
// *schemas.SchemaViolation.
func (s *Summarizer) Summarize(ctx context.Context, in enrich.Result) (Summary, error) {
	raw, err := s.client.GenerateStructured(ctx, llm.Request{
		Tier:   s.tier,
		System: prompts.MustGet(prompts.Outreach, "summarize-system"),
		Prompt: BuildPrompt(in),
		Schema: Schema,
	})
	if err != nil {
		return Summary{}, fmt.Errorf("summarize: %w", err)
	}

	var out Summary
	if err := validator.Decode(raw, &out); err != nil {
		return Summary{}, fmt.Errorf("summarize: %w", err)
	}

	s.logger.Debug("summaries generated",
		"website_chars", len(out.WebsiteSummary),
		"profile_chars", len(out.ProfileSummary))
	return out, nil
}

// BuildPrompt renders the user content: a website section and a profile
// section, each present only when that source produced data.
func BuildPrompt(in enrich.Result) string {
	var sb strings.Builder
	if in.WebsiteContent != "" {
		sb.WriteString(prompts.Format(prompts.MustGet(prompts.Outreach, "summarize-website-section"), map[string]string{
			"Content": in.WebsiteContent,
		}))
	}
	if len(in.ProfileData) > 0 {
		sb.WriteString(prompts.Format(prompts.MustGet(prompts.Outreach, "summarize-profile-section"), map[string]string{
			"Content": string(in.ProfileData),
		}))
	}
	return sb.String()
}
