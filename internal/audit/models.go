package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	RunID     string
	CallerID  string
	Action    string
	Outcome   string
	Detail    string

	// Numbers is the submitted batch size for run events, zero otherwise.
	Numbers int
}

// Actions recorded by the service.
const (
	ActionRunStarted    = "run_started"
	ActionRunFinished   = "run_finished"
	ActionConfigUpdated = "config_updated"
	ActionConfigReset   = "config_reset"
)
