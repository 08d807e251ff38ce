package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Outcome is a finished call as seen by subscribers.
type Outcome struct {
	RunID           string
	CallID          string
	AgentID         string
	Language        string
	Status          string
	Description     string
	EndReason       string
	DurationSeconds int64
	Cost            string
	Currency        string
	RecordingURL    string
	Persisted       bool
	Polls           int
	Timestamp       time.Time
}

// Topic returns "<prefix>/call/<call_id>/<status>".
func (o Outcome) Topic(prefix string) string {
	return fmt.Sprintf("%s/call/%s/%s", prefix, o.CallID, o.Status)
}

// outcomePayload is the JSON structure published for an Outcome.
type outcomePayload struct {
	Event           string `json:"event"`
	Description     string `json:"description"`
	RunID           string `json:"run_id"`
	CallID          string `json:"call_id"`
	AgentID         string `json:"agent_id"`
	Language        string `json:"language"`
	Timestamp       string `json:"timestamp"`
	EndReason       string `json:"end_reason,omitempty"`
	DurationSeconds int64  `json:"duration_seconds"`
	Cost            string `json:"cost"`
	Currency        string `json:"currency,omitempty"`
	RecordingURL    string `json:"recording_url,omitempty"`
	Persisted       bool   `json:"persisted"`
	Polls           int    `json:"polls"`
}

// PublishOutcome encodes o and publishes it under prefix.
func PublishOutcome(ctx context.Context, pub Publisher, prefix string, o Outcome) error {
	data, err := json.Marshal(outcomePayload{
		Event:           o.Status,
		Description:     o.Description,
		RunID:           o.RunID,
		CallID:          o.CallID,
		AgentID:         o.AgentID,
		Language:        o.Language,
		Timestamp:       o.Timestamp.UTC().Format(time.RFC3339),
		EndReason:       o.EndReason,
		DurationSeconds: o.DurationSeconds,
		Cost:            o.Cost,
		Currency:        o.Currency,
		RecordingURL:    o.RecordingURL,
		Persisted:       o.Persisted,
		Polls:           o.Polls,
	})
	if err != nil {
		return fmt.Errorf("marshaling outcome: %w", err)
	}
	return pub.Publish(ctx, o.Topic(prefix), data)
}
