// Package pipeline fans a job out over its organizations and targets and
// merges the per-target results back into one result document.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/leadgpt/emailgend/internal/types"
	"golang.org/x/sync/errgroup"
)

// ProgressEvent represents a progress update during job processing.
type ProgressEvent struct {
	Stage          Stage  `json:"stage"`
	OrganizationID string `json:"organization_id,omitempty"`
	TargetID       string `json:"target_id,omitempty"`
	Message        string `json:"message"`
}

// ProgressCallback is called when processing progress occurs.
// It may be called from several goroutines at once.
type ProgressCallback func(event ProgressEvent)

// Options configures the orchestrator and its target processor.
type Options struct {
	// MaxTargetConcurrency caps concurrent targets per organization; 0 means one goroutine per target.
	MaxTargetConcurrency int
	OnProgress           ProgressCallback
	Logger               *slog.Logger
}

// Orchestrator processes organizations in order and each organization's targets concurrently.
type Orchestrator struct {
	processor *TargetProcessor
	limit     int
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(processor *TargetProcessor, opts Options) *Orchestrator {
	return &Orchestrator{
		processor: processor,
		limit:     opts.MaxTargetConcurrency,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    resolveLogger(opts.Logger),
	}
}

// Run returns one organization per input organization, in input order, each
// with one target per input target, in input order. A target that failed is
// kept with its Error set and no emails. Run only fails when the payload is
// structurally malformed or ctx is done before the job completes.
func (o *Orchestrator) Run(ctx context.Context, payload types.JobPayload) ([]types.Organization, error) {
	if err := o.check(payload); err != nil {
		return nil, err
	}

	results := make([]types.Organization, len(payload.EmailData))
	for i, org := range payload.EmailData {
		start := time.Now()
		results[i] = o.runOrganization(ctx, org, payload.Campaign)

		failed := 0
		for _, t := range results[i].People {
			if t.Failed() {
				failed++
			}
		}
		o.logger.Info("organization processed",
			"organization_id", org.CompanyID,
			"targets", len(org.People),
			"failed", failed,
			"duration", time.Since(start))

		if err := ctx.Err(); err != nil {
			return nil, &OrchestrationError{Message: "job interrupted", Cause: err}
		}
	}
	return results, nil
}

func (o *Orchestrator) runOrganization(ctx context.Context, org types.Organization, campaign types.Campaign) types.Organization {
	out := org
	out.People = make([]types.Target, len(org.People))

	var g errgroup.Group
	if o.limit > 0 {
		g.SetLimit(o.limit)
	}
	for i, target := range org.People {
		g.Go(func() error {
			out.People[i] = o.processor.Process(ctx, target, org, campaign).Target
			// Never report failure to the group; siblings keep running.
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (o *Orchestrator) check(payload types.JobPayload) error {
	err := o.validate.Struct(payload)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &OrchestrationError{Message: "invalid payload", Cause: err}
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return &OrchestrationError{Message: "malformed payload: " + strings.Join(problems, "; "), Cause: err}
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
