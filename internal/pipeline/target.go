package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/leadgpt/emailgend/internal/content"
	"github.com/leadgpt/emailgend/internal/enrich"
	"github.com/leadgpt/emailgend/internal/summary"
	"github.com/leadgpt/emailgend/internal/types"
)

// Enricher retrieves raw enrichment for a target. It never fails.
type Enricher interface {
	Fetch(ctx context.Context, target types.Target) enrich.Result
}

// Summarizer condenses enrichment into summaries.
type Summarizer interface {
	Summarize(ctx context.Context, in enrich.Result) (summary.Summary, error)
}

// Generator writes the email sequence for a summarized target.
type Generator interface {
	Generate(ctx context.Context, target types.Target, org types.Organization, campaign types.Campaign) (content.Output, error)
}

// Outcome is the result of processing one target. Target is always a copy
// of the input; on success it carries summaries and emails.
type Outcome struct {
	Target types.Target
	Err    *TargetFailure
}

// TargetProcessor runs fetch, summarize and generate for one target, in order.
type TargetProcessor struct {
	enricher   Enricher
	summarizer Summarizer
	generator  Generator
	progress   ProgressCallback
	logger     *slog.Logger
}

// NewTargetProcessor creates a TargetProcessor.
func NewTargetProcessor(e Enricher, s Summarizer, g Generator, opts Options) *TargetProcessor {
	return &TargetProcessor{
		enricher:   e,
		summarizer: s,
		generator:  g,
		progress:   opts.OnProgress,
		logger:     resolveLogger(opts.Logger),
	}
}

// Process never returns an error and never panics: summarizer and generator
// failures, and panics in any stage, are captured in Outcome.Err and the
// returned target keeps no emails.
func (p *TargetProcessor) Process(ctx context.Context, target types.Target, org types.Organization, campaign types.Campaign) (outcome Outcome) {
	logger := p.logger.With("organization_id", org.CompanyID, "target_id", target.ID)
	out := target
	out.Emails = nil
	out.Error = ""

	stage := StageFetch
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("target stage panicked", "stage", stage, "stack", string(debug.Stack()))
			outcome = p.fail(logger, out, stage, fmt.Errorf("panic: %v", rec))
		}
	}()

	p.emit(StageFetch, org, target, "fetching enrichment")
	raw := p.enricher.Fetch(ctx, target)

	stage = StageSummarize
	p.emit(StageSummarize, org, target, "summarizing enrichment")
	sum, err := p.summarizer.Summarize(ctx, raw)
	if err != nil {
		return p.fail(logger, out, StageSummarize, err)
	}
	out.WebsiteSummary = sum.WebsiteSummary
	out.LinkedInSummary = sum.ProfileSummary

	stage = StageGenerate
	p.emit(StageGenerate, org, target, "generating emails")
	generated, err := p.generator.Generate(ctx, out, org, campaign)
	if err != nil {
		return p.fail(logger, out, StageGenerate, err)
	}
	out.Emails = generated.Emails()

	logger.Info("target processed", "emails", len(out.Emails))
	return Outcome{Target: out}
}

func (p *TargetProcessor) fail(logger *slog.Logger, out types.Target, stage Stage, err error) Outcome {
	failure := &TargetFailure{TargetID: out.ID, Stage: stage, Cause: err}
	logger.Error("target failed", "stage", stage, "error", err)
	out.Emails = []types.Email{}
	out.Error = failure.Error()
	return Outcome{Target: out, Err: failure}
}

func (p *TargetProcessor) emit(stage Stage, org types.Organization, target types.Target, message string) {
	if p.progress != nil {
		p.progress(ProgressEvent{
			Stage:          stage,
			OrganizationID: org.CompanyID,
			TargetID:       target.ID,
			Message:        message,
		})
	}
}
