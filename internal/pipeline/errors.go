package pipeline

import "fmt"

// Stage names a step of target processing.
type Stage string

// Target processing stages.
const (
	StageFetch     Stage = "fetch"
	StageSummarize Stage = "summarize"
	StageGenerate  Stage = "generate"
)

// OrchestrationError is returned when a job payload is structurally unusable
// and the whole job must be abandoned.
type OrchestrationError struct {
	Message string
	Cause   error
}

func (e *OrchestrationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("orchestration error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("orchestration error: %s", e.Message)
}

func (e *OrchestrationError) Unwrap() error {
	return e.Cause
}

// TargetFailure records why a single target produced no emails.
type TargetFailure struct {
	TargetID string
	Stage    Stage
	Cause    error
}

func (e *TargetFailure) Error() string {
	return fmt.Sprintf("target %s failed at %s: %v", e.TargetID, e.Stage, e.Cause)
}

func (e *TargetFailure) Unwrap() error {
	return e.Cause
}
