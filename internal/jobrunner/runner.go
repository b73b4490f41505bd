// Package jobrunner turns queue deliveries into persisted job results.
package jobrunner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/leadgpt/emailgend/internal/db"
	"github.com/leadgpt/emailgend/internal/queue"
	"github.com/leadgpt/emailgend/internal/types"
)

// ResultStore persists a finished job result against its pre-registered record.
type ResultStore interface {
	WriteResult(ctx context.Context, jobID string, result types.JobResult) error
}

// Orchestrator produces the per-organization results for a job payload.
type Orchestrator interface {
	Run(ctx context.Context, payload types.JobPayload) ([]types.Organization, error)
}

// Options configures a Runner.
type Options struct {
	Store        ResultStore
	Orchestrator Orchestrator
	// Model is recorded on every result as the generation model.
	Model  string
	Logger *slog.Logger
}

// Runner handles one delivery at a time. A delivery is acknowledged only after
// its result has been written.
type Runner struct {
	store        ResultStore
	orchestrator Orchestrator
	model        string
	validate     *validator.Validate
	logger       *slog.Logger
}

// New creates a Runner.
func New(opts Options) (*Runner, error) {
	if opts.Store == nil {
		return nil, errors.New("result store is required")
	}
	if opts.Orchestrator == nil {
		return nil, errors.New("orchestrator is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		store:        opts.Store,
		orchestrator: opts.Orchestrator,
		model:        opts.Model,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		logger:       logger,
	}, nil
}

// Run consumes deliveries until ctx is done or the consumer fails.
func (r *Runner) Run(ctx context.Context, consumer queue.Consumer) error {
	return consumer.Consume(ctx, func(ctx context.Context, d queue.Delivery) {
		r.Handle(ctx, d)
	})
}

// Handle drives one delivery through the job lifecycle and returns the state
// it ended in. Every failure ends in StateRejected without an ack. Handle
// never panics.
func (r *Runner) Handle(ctx context.Context, d queue.Delivery) (state State) {
	logger := r.logger.With("attempt_id", uuid.NewString())
	start := time.Now()
	state = StateReceived

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("job handler panicked",
				"panic", fmt.Sprint(rec),
				"stack", string(debug.Stack()))
			state = StateRejected
		}
		logger.Info("job finished", "state", state.String(), "duration", time.Since(start))
	}()

	env, err := r.parse(d.Body())
	if err != nil {
		logger.Error("rejecting delivery", "error", err)
		return StateRejected
	}
	state = StateParsed
	logger = logger.With("job_id", env.JobID)

	state = StateProcessing
	logger.Info("processing job",
		"user_id", env.Message.UserID,
		"campaign_id", env.Message.CampaignID,
		"organizations", len(env.Message.EmailData))

	orgs, err := r.orchestrator.Run(ctx, env.Message)
	if err != nil {
		logger.Error("job failed", "error", err)
		return StateRejected
	}

	result := types.JobResult{
		UserID:     env.Message.UserID,
		CampaignID: env.Message.CampaignID,
		Model:      r.model,
		EmailData:  orgs,
	}

	if err := r.store.WriteResult(ctx, env.JobID, result); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			logger.Error("no registered record for job, leaving delivery unacknowledged", "error", err)
		} else {
			logger.Error("failed to persist job result", "error", err)
		}
		return StateRejected
	}
	state = StatePersisted
	logger.Info("job result saved",
		"targets", result.TargetCount(),
		"failed", result.FailedCount())

	if err := d.Ack(); err != nil {
		logger.Error("failed to ack delivery", "error", err)
		return StatePersisted
	}
	return StateAcknowledged
}

func (r *Runner) parse(body []byte) (types.Envelope, error) {
	var env types.Envelope
	if len(body) == 0 {
		return env, &EnvelopeParseError{Message: "empty body"}
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return env, &EnvelopeParseError{Message: "body is not a valid envelope", Cause: err}
	}

	if err := r.validate.Struct(env); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return env, &EnvelopeParseError{Message: "invalid envelope", Cause: err}
		}
		problems := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
		}
		return env, &EnvelopeParseError{Message: strings.Join(problems, "; "), Cause: err}
	}
	return env, nil
}
