package agent

// State is the coarse phase of a session.
type State string

const (
	StateStarting        State = "starting"
	StateSending         State = "sending"
	StateExecutingTool   State = "executing_tool"
	StateParsing         State = "parsing"
	StateWaitingForInput State = "waiting_for_input"
	StateComplete        State = "complete"
	StateFailed          State = "failed"
	StateCancelled       State = "cancelled"
)

// Status is what callers observe while a session runs.
// Tool is set while executing tools, Question while waiting for input and
// Reason once failed.
type Status struct {
	State    State  `json:"state"`
	Round    int    `json:"round"`
	Tool     string `json:"tool,omitempty"`
	Question string `json:"question,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Terminal reports whether no further transitions will happen.
func (s Status) Terminal() bool {
	switch s.State {
	case StateComplete, StateFailed, StateCancelled:
		return true
	default:
		return false
	}
}
