package db

import (
	"errors"
	"time"

	"github.com/leadgpt/emailgend/internal/types"
)

// ErrNotFound is returned when a job has no registered record.
var ErrNotFound = errors.New("job record not found")

// ErrAlreadyRegistered is returned when registering a job id that already has a record.
var ErrAlreadyRegistered = errors.New("job record already registered")

// Record is a row of generated_emails.
type Record struct {
	JobID      string           `json:"jobId"`
	UserID     string           `json:"userId"`
	CampaignID string           `json:"campaignId"`
	IsDone     bool             `json:"isDone"`
	Emails     *types.JobResult `json:"emails,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}
