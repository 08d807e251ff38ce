package outbound

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ssasrajita121/DS-ai-WScaller/internal/provider"
)

// Initiator places outbound calls from a fixed phone-number line.
type Initiator struct {
	client        provider.Client
	phoneNumberID string
	now           func() time.Time
	logger        *zap.Logger
}

// InitiatorOption configures an Initiator.
type InitiatorOption func(*Initiator)

// WithInitiatorLogger sets the logger.
func WithInitiatorLogger(l *zap.Logger) InitiatorOption {
	return func(i *Initiator) { i.logger = l }
}

// WithNow sets the time source used for the initiation timestamp.
func WithNow(now func() time.Time) InitiatorOption {
	return func(i *Initiator) { i.now = now }
}

// NewInitiator creates an Initiator.
func NewInitiator(client provider.Client, phoneNumberID string, opts ...InitiatorOption) *Initiator {
	i := &Initiator{
		client:        client,
		phoneNumberID: phoneNumberID,
		now:           time.Now,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Initiate dials phone using agent and returns the provider's call id and the
// time the call was accepted. There is no retry.
func (i *Initiator) Initiate(ctx context.Context, agent AgentHandle, phone string) (string, time.Time, error) {
	call, err := i.client.PlaceCall(ctx, provider.PlaceCallRequest{
		AssistantID:   agent.ID,
		PhoneNumberID: i.phoneNumberID,
		Customer:      provider.Customer{Number: phone},
	})
	if err != nil {
		code, body := apiDetails(err)
		return "", time.Time{}, &InitiationError{StatusCode: code, Body: body, Err: err}
	}
	if call.ID == "" {
		return "", time.Time{}, &InitiationError{Err: fmt.Errorf("provider returned no call id")}
	}

	at := i.now()
	i.logger.Info("call placed",
		zap.String("call_id", call.ID),
		zap.String("agent_id", agent.ID),
		zap.String("status", call.Status))
	return call.ID, at, nil
}
