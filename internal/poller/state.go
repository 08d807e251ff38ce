package poller

// Status is a call lifecycle status as reported by the provider, plus the
// synthetic TimedOut.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusRinging    Status = "ringing"
	StatusInProgress Status = "in-progress"
	StatusForwarding Status = "forwarding"
	StatusEnded      Status = "ended"
	StatusCompleted  Status = "completed"
	StatusBusy       Status = "busy"
	StatusNoAnswer   Status = "no-answer"
	StatusFailed     Status = "failed"

	// StatusTimedOut is never reported by the provider. The poller returns
	// it when the wait budget runs out.
	StatusTimedOut Status = "timeout"
)

// statusInfo describes each known status. Statuses missing from this map are
// treated as non-terminal.
var statusInfo = map[Status]struct {
	Terminal    bool
	Description string
}{
	StatusQueued:     {false, "The call is queued at the provider"},
	StatusRinging:    {false, "The destination is ringing"},
	StatusInProgress: {false, "The call is connected"},
	StatusForwarding: {false, "The call is being forwarded"},
	StatusEnded:      {true, "The call ended"},
	StatusCompleted:  {true, "The call completed"},
	StatusBusy:       {true, "The destination was busy"},
	StatusNoAnswer:   {true, "The destination did not answer"},
	StatusFailed:     {true, "The call failed"},
	StatusTimedOut:   {true, "No terminal status was seen before the wait budget elapsed"},
}

// IsTerminal reports whether no further state change is expected.
func (s Status) IsTerminal() bool {
	return statusInfo[s].Terminal
}

// Description returns a human-readable explanation of s.
func (s Status) Description() string {
	if info, ok := statusInfo[s]; ok {
		return info.Description
	}
	return "Unrecognized provider status"
}
