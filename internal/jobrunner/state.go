package jobrunner

// State is a delivery's position in the job lifecycle.
type State int

// Lifecycle states. Rejected is terminal and leaves the delivery un-acked.
const (
	StateReceived State = iota
	StateParsed
	StateProcessing
	StatePersisted
	StateAcknowledged
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateReceived:
		return "received"
	case StateParsed:
		return "parsed"
	case StateProcessing:
		return "processing"
	case StatePersisted:
		return "persisted"
	case StateAcknowledged:
		return "acknowledged"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}
