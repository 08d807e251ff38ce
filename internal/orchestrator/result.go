package orchestrator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError reports bad input. Nothing has been sent to the provider
// when it is returned.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Result is the finalized record of one orchestrated call.
type Result struct {
	RunID           string          `json:"run_id"`
	Status          string          `json:"status"`
	Duration        string          `json:"duration"`
	DurationSeconds int64           `json:"duration_seconds"`
	Cost            decimal.Decimal `json:"cost"`
	Currency        string          `json:"currency"`
	Language        string          `json:"language"`
	CallID          string          `json:"call_id"`
	AgentID         string          `json:"agent_id"`
	RecordingURL    string          `json:"recording_url,omitempty"`
	VoiceName       string          `json:"voice_name"`
	StartTime       string          `json:"start_time"`
	EndTime         string          `json:"end_time"`
	Phone           string          `json:"phone"`
	Purpose         string          `json:"purpose"`
	EndReason       string          `json:"end_reason"`
	Summary         string          `json:"summary"`
	Transcript      string          `json:"transcript"`
	Persisted       bool            `json:"persisted"`
	Polls           int             `json:"polls"`
}

// TimedOut reports whether the call never reached a terminal status.
func (r *Result) TimedOut() bool {
	return r.EndReason == endReasonTimeout
}
