// Package queue abstracts the message broker the worker consumes jobs from.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultQueueName is the queue jobs are published to.
const DefaultQueueName = "email_generation"

// Delivery is one received message. Ack must only be called once the job's
// result is durably stored.
type Delivery interface {
	Body() []byte
	Ack() error
	Nack(requeue bool) error
}

// Handler processes a delivery. It owns acknowledgement.
type Handler func(ctx context.Context, d Delivery)

// Consumer delivers messages to a handler one at a time until ctx is done.
type Consumer interface {
	Consume(ctx context.Context, h Handler) error
	Close() error
}

// Publisher enqueues a job envelope.
type Publisher interface {
	Publish(ctx context.Context, jobID string, payload json.RawMessage) error
}

// ErrEmptyJobID is returned when publishing without a job id.
var ErrEmptyJobID = errors.New("job id is required")

// EncodeEnvelope renders the {jobID, message} body the worker consumes.
func EncodeEnvelope(jobID string, payload json.RawMessage) ([]byte, error) {
	if jobID == "" {
		return nil, ErrEmptyJobID
	}
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	body, err := json.Marshal(struct {
		JobID   string          `json:"jobID"`
		Message json.RawMessage `json:"message"`
	}{JobID: jobID, Message: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope for job %s: %w", jobID, err)
	}
	return body, nil
}
