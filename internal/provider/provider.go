// Package provider abstracts the external voice-call API.
package provider

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Client is the set of provider operations the caller needs. GetCall serves
// both status polling and transcript retrieval.
type Client interface {
	CreateAgent(ctx context.Context, req AgentRequest) (*Agent, error)
	PlaceCall(ctx context.Context, req PlaceCallRequest) (*Call, error)
	GetCall(ctx context.Context, callID string) (*Call, error)
}

// APIError is a non-success HTTP response from the provider.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider returned %d: %s", e.StatusCode, e.Body)
}

// Agent is the provider's view of a created assistant. Only the ID is
// relied on.
type Agent struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// AgentRequest is the assistant-creation payload.
type AgentRequest struct {
	Name             string            `json:"name"`
	Model            ModelConfig       `json:"model"`
	Voice            VoiceConfig       `json:"voice"`
	FirstMessage     string            `json:"firstMessage,omitempty"`
	Transcriber      TranscriberConfig `json:"transcriber"`
	RecordingEnabled bool              `json:"recordingEnabled"`
	EndCallMessage   string            `json:"endCallMessage,omitempty"`
	EndCallPhrases   []string          `json:"endCallPhrases,omitempty"`
}

type ModelConfig struct {
	Provider    string         `json:"provider"`
	Model       string         `json:"model"`
	Messages    []ModelMessage `json:"messages"`
	Temperature float64        `json:"temperature"`
	MaxTokens   int            `json:"maxTokens"`
}

type ModelMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// VoiceConfig holds the base voice fields plus tuning fields that only some
// voice providers accept; unset tuning fields are omitted from the payload.
type VoiceConfig struct {
	Provider        string   `json:"provider"`
	VoiceID         string   `json:"voiceId"`
	Model           string   `json:"model,omitempty"`
	Stability       *float64 `json:"stability,omitempty"`
	SimilarityBoost *float64 `json:"similarityBoost,omitempty"`
	Style           *float64 `json:"style,omitempty"`
	UseSpeakerBoost *bool    `json:"useSpeakerBoost,omitempty"`
}

type TranscriberConfig struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Language string `json:"language"`
}

// PlaceCallRequest is the outbound call payload.
type PlaceCallRequest struct {
	AssistantID   string   `json:"assistantId"`
	PhoneNumberID string   `json:"phoneNumberId"`
	Customer      Customer `json:"customer"`
}

type Customer struct {
	Number string `json:"number"`
}

// Message is one conversation turn. The provider uses either "content" or
// "message" for the text depending on the message source.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content,omitempty"`
	Message string `json:"message,omitempty"`
}

// Text returns whichever text field is populated.
func (m Message) Text() string {
	if m.Content != "" {
		return m.Content
	}
	return m.Message
}

// Call is a snapshot of the provider's call state.
type Call struct {
	ID           string         `json:"id"`
	AssistantID  string         `json:"assistantId,omitempty"`
	Status       string         `json:"status"`
	Duration     float64        `json:"duration,omitempty"`
	StartedAt    string         `json:"startedAt,omitempty"`
	EndedAt      string         `json:"endedAt,omitempty"`
	RecordingURL string         `json:"recordingUrl,omitempty"`
	EndedReason  string         `json:"endedReason,omitempty"`
	Transcript   string         `json:"transcript,omitempty"`
	Messages     []Message      `json:"messages,omitempty"`
	Summary      string         `json:"summary,omitempty"`
	Analysis     map[string]any `json:"analysis,omitempty"`
}

// StartTime parses StartedAt, returning false when absent or malformed.
func (c *Call) StartTime() (time.Time, bool) {
	return parseTimestamp(c.StartedAt)
}

// EndTime parses EndedAt, returning false when absent or malformed.
func (c *Call) EndTime() (time.Time, bool) {
	return parseTimestamp(c.EndedAt)
}

// AnalysisSummary returns analysis.summary when it is a non-empty string.
func (c *Call) AnalysisSummary() string {
	if s, ok := c.Analysis["summary"].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
