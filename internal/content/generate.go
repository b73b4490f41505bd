// Package content generates the outreach email sequence for a single target.
package content

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leadgpt/emailgend/internal/llm"
	"github.com/leadgpt/emailgend/internal/prompts"
	"github.com/leadgpt/emailgend/internal/schemas"
	"github.com/leadgpt/emailgend/internal/types"
)

// Schema is the four-field structured output requested from the model.
var Schema = llm.Schema{
	Name:        "email_generation_reasoning",
	Description: "A cold email sequence sharing one subject line",
	Fields: []llm.SchemaField{
		{Name: "email_subject", Description: "Subject line shared by all three emails"},
		{Name: "primary_email", Description: "Body of the original email"},
		{Name: "first_follow_up_email", Description: "Body of the first follow-up"},
		{Name: "second_follow_up_email", Description: "Body of the second and last follow-up"},
	},
}

var validator = schemas.MustCompile(Schema.Name, Schema.JSONSchema())

// Output is the decoded model output.
type Output struct {
	Subject   string `json:"email_subject"`
	Primary   string `json:"primary_email"`
	FollowUp1 string `json:"first_follow_up_email"`
	FollowUp2 string `json:"second_follow_up_email"`
}

// Emails expands the output into the three sequenced email records.
// Every record carries the same subject.
func (o Output) Emails() []types.Email {
	return []types.Email{
		{EmailNumber: types.EmailPrimary, EmailContent: o.Primary, EmailSubject: o.Subject},
		{EmailNumber: types.EmailFirstFollowUp, EmailContent: o.FollowUp1, EmailSubject: o.Subject},
		{EmailNumber: types.EmailSecondFollowUp, EmailContent: o.FollowUp2, EmailSubject: o.Subject},
	}
}

// Options configures a Generator.
type Options struct {
	// Tier defaults to llm.TierAdvanced.
	Tier   llm.ModelTier
	Logger *slog.Logger
}

// Generator produces email sequences with one model call per target.
type Generator struct {
	client llm.Client
	tier   llm.ModelTier
	logger *slog.Logger
}

// New creates a Generator.
func New(client llm.Client, opts Options) *Generator {
	tier := opts.Tier
	if tier == "" {
		tier = llm.TierAdvanced
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{client: client, tier: tier, logger: logger}
}

// Model returns the provider model used for generation.
func (g *Generator) Model() string {
	return g.client.GetModel(g.tier)
}

// Generate writes the sequence for target. The target's summaries must
// already be populated.
func (g *Generator) Generate(ctx context.Context, target types.Target, org types.Organization, campaign types.Campaign) (Output, error) {
	raw, err := g.client.GenerateStructured(ctx, llm.Request{
		Tier:   g.tier,
		System: prompts.MustGet(prompts.Outreach, "generate-system"),
		Prompt: BuildPrompt(target, org, campaign),
		Schema: Schema,
	})
	if err != nil {
		return Output{}, fmt.Errorf("generate emails: %w", err)
	}

	var out Output
	if err := validator.Decode(raw, &out); err != nil {
		return Output{}, fmt.Errorf("generate emails: %w", err)
	}

	g.logger.Debug("email sequence generated", "target_id", target.ID, "subject", out.Subject)
	return out, nil
}

// BuildPrompt renders the generation instruction. Campaign overrides take
// precedence over the target's and organization's own values.
func BuildPrompt(target types.Target, org types.Organization, campaign types.Campaign) string {
	template := prompts.MustGet(prompts.Outreach, "generate-email-sequence")
	return prompts.Format(template, map[string]string{
		"ProductName":             campaign.ProductName,
		"PainPoints":              campaign.PainPoints,
		"ValueProposition":        campaign.ValueProposition,
		"CallToAction":            campaign.CallToAction,
		"EmailSignature":          campaign.EmailSignature,
		"RecipientName":           firstNonEmpty(campaign.PersonName, target.Name),
		"RecipientTitle":          firstNonEmpty(campaign.PersonTitle, target.Title),
		"OrganizationName":        firstNonEmpty(campaign.UserName, org.Name),
		"OrganizationDescription": firstNonEmpty(campaign.UserDescription, org.Description),
		"WebsiteSummary":          target.WebsiteSummary,
		"ProfileSummary":          target.LinkedInSummary,
		"SenderOrgSummary":        campaign.OrgSummary,
		"SenderSummary":           campaign.UserSummary,
		"ExtraInformation":        campaign.ExtraInformation,
		"SuccessStories":          campaign.SuccessStories,
		"MotivationOfOutreach":    campaign.MotivationOfOutreach,
		"EmailTone":               campaign.EmailTone,
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
