package jobrunner

import "fmt"

// EnvelopeParseError is returned when a delivery body is not a usable
// {jobID, message} envelope.
type EnvelopeParseError struct {
	Message string
	Cause   error
}

func (e *EnvelopeParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("envelope parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("envelope parse error: %s", e.Message)
}

func (e *EnvelopeParseError) Unwrap() error {
	return e.Cause
}
