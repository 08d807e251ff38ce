// Package outbound creates calling agents and places calls with them.
package outbound

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ssasrajita121/DS-ai-WScaller/internal/config"
	"github.com/ssasrajita121/DS-ai-WScaller/internal/profile"
	"github.com/ssasrajita121/DS-ai-WScaller/internal/provider"
)

const (
	maxAgentName = 40

	// tunableVoiceProvider is the only voice provider that accepts the
	// stability/similarity/style/speaker-boost fields. Others reject them.
	tunableVoiceProvider = "11labs"
	multilingualModel    = "eleven_multilingual_v2"

	defaultStability       = 0.5
	defaultSimilarityBoost = 0.75
)

// AgentHandle identifies a provisioned agent.
type AgentHandle struct {
	ID   string
	Name string
}

// Provisioner creates one provider agent per language profile. Agents are
// never reused or deleted; each Provision call creates a new one.
type Provisioner struct {
	client provider.Client
	cfg    config.AssistantConfig
	logger *zap.Logger
}

// ProvisionerOption configures a Provisioner.
type ProvisionerOption func(*Provisioner)

// WithProvisionerLogger sets the logger.
func WithProvisionerLogger(l *zap.Logger) ProvisionerOption {
	return func(p *Provisioner) { p.logger = l }
}

// NewProvisioner creates a Provisioner.
func NewProvisioner(client provider.Client, cfg config.AssistantConfig, opts ...ProvisionerOption) *Provisioner {
	p := &Provisioner{client: client, cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Provision creates an agent for prof. There is no retry: agent creation is
// not idempotent.
func (p *Provisioner) Provision(ctx context.Context, prof profile.Profile) (AgentHandle, error) {
	req := p.Request(prof)
	agent, err := p.client.CreateAgent(ctx, req)
	if err != nil {
		code, body := apiDetails(err)
		return AgentHandle{}, &ProvisioningError{StatusCode: code, Body: body, Err: err}
	}
	if agent.ID == "" {
		return AgentHandle{}, &ProvisioningError{Err: fmt.Errorf("provider returned no agent id")}
	}

	p.logger.Info("agent provisioned; not reused or deleted by this process",
		zap.String("agent_id", agent.ID),
		zap.String("agent_name", req.Name),
		zap.String("language", prof.ID),
		zap.String("voice_provider", prof.VoiceProvider))

	return AgentHandle{ID: agent.ID, Name: req.Name}, nil
}

// Request builds the agent-creation payload for prof.
func (p *Provisioner) Request(prof profile.Profile) provider.AgentRequest {
	return provider.AgentRequest{
		Name: agentName(p.cfg.NamePrefix, prof),
		Model: provider.ModelConfig{
			Provider:    p.cfg.ModelProvider,
			Model:       p.cfg.Model,
			Messages:    []provider.ModelMessage{{Role: "system", Content: prof.Prompt}},
			Temperature: p.cfg.Temperature,
			MaxTokens:   p.cfg.MaxTokens,
		},
		Voice:        voiceConfig(prof),
		FirstMessage: p.cfg.FirstMessage,
		Transcriber: provider.TranscriberConfig{
			Provider: p.cfg.TranscriberVendor,
			Model:    p.cfg.TranscriberModel,
			Language: prof.TranscriberLanguage,
		},
		RecordingEnabled: p.cfg.RecordingEnabled,
		EndCallMessage:   p.cfg.EndCallMessage,
		EndCallPhrases:   append([]string(nil), p.cfg.EndCallPhrases...),
	}
}

func agentName(prefix string, prof profile.Profile) string {
	name := strings.TrimSpace(prefix + " " + prof.ShortName())
	if r := []rune(name); len(r) > maxAgentName {
		name = string(r[:maxAgentName])
	}
	return name
}

func voiceConfig(prof profile.Profile) provider.VoiceConfig {
	v := provider.VoiceConfig{Provider: prof.VoiceProvider, VoiceID: prof.VoiceID}
	if prof.VoiceProvider != tunableVoiceProvider {
		return v
	}

	t := prof.Tuning
	v.Stability = floatOr(t.Stability, defaultStability)
	v.SimilarityBoost = floatOr(t.SimilarityBoost, defaultSimilarityBoost)
	if t.Style != nil {
		style := *t.Style
		v.Style = &style
	}
	if t.UseSpeakerBoost {
		boost := true
		v.UseSpeakerBoost = &boost
	}
	if t.VoiceLanguage != "" {
		v.Model = multilingualModel
	}
	return v
}

func floatOr(f *float64, def float64) *float64 {
	v := def
	if f != nil {
		v = *f
	}
	return &v
}
