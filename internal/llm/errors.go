package llm

import "fmt"

// BackendError represents a failure of the generative backend itself:
// transport errors, API errors, refusals, or empty responses.
type BackendError struct {
	Provider Provider
	Model    string
	Message  string
	Cause    error
}

func (e *BackendError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("llm backend error (%s/%s): %s: %v", e.Provider, e.Model, e.Message, e.Cause)
	}
	return fmt.Sprintf("llm backend error (%s/%s): %s", e.Provider, e.Model, e.Message)
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}
