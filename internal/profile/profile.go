// Package profile holds the per-language calling agent configuration.
package profile

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var defaultProfiles []byte

// ErrUnknownLanguage is returned by Resolve for identifiers outside the
// supported set.
var ErrUnknownLanguage = errors.New("unknown language")

// VoiceTuning carries optional voice parameters. Nil pointers fall back to
// the voice provider's defaults.
type VoiceTuning struct {
	Stability       *float64 `yaml:"stability"`
	SimilarityBoost *float64 `yaml:"similarity_boost"`
	Style           *float64 `yaml:"style"`
	UseSpeakerBoost bool     `yaml:"use_speaker_boost"`
	// VoiceLanguage forces a language on the voice model when set.
	VoiceLanguage string `yaml:"voice_language"`
}

// Profile is the immutable configuration used to provision one calling agent.
type Profile struct {
	ID                  string      `yaml:"id"`
	VoiceProvider       string      `yaml:"voice_provider"`
	VoiceID             string      `yaml:"voice_id"`
	VoiceName           string      `yaml:"voice_name"`
	TranscriberLanguage string      `yaml:"language_code"`
	Prompt              string      `yaml:"prompt"`
	Tuning              VoiceTuning `yaml:"tuning"`
}

// ShortName returns the first word of the identifier ("Hindi" for
// "Hindi (हिंदी)").
func (p Profile) ShortName() string {
	if f := strings.Fields(p.ID); len(f) > 0 {
		return f[0]
	}
	return p.ID
}

func (p Profile) validate() error {
	if p.ID == "" {
		return fmt.Errorf("profile id is required")
	}
	if p.VoiceProvider == "" {
		return fmt.Errorf("profile %q: voice_provider is required", p.ID)
	}
	if p.VoiceID == "" {
		return fmt.Errorf("profile %q: voice_id is required", p.ID)
	}
	if p.TranscriberLanguage == "" {
		return fmt.Errorf("profile %q: language_code is required", p.ID)
	}
	if strings.TrimSpace(p.Prompt) == "" {
		return fmt.Errorf("profile %q: prompt is required", p.ID)
	}
	return nil
}

func (p Profile) clone() Profile {
	c := p
	c.Tuning.Stability = copyFloat(p.Tuning.Stability)
	c.Tuning.SimilarityBoost = copyFloat(p.Tuning.SimilarityBoost)
	c.Tuning.Style = copyFloat(p.Tuning.Style)
	return c
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// Registry is a read-only lookup of language identifier to Profile.
type Registry struct {
	order    []string
	profiles map[string]Profile
}

// NewRegistry validates profiles and indexes them by ID, keeping the given
// order for Languages.
func NewRegistry(profiles []Profile) (*Registry, error) {
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no language profiles configured")
	}
	r := &Registry{profiles: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		if err := p.validate(); err != nil {
			return nil, err
		}
		if _, dup := r.profiles[p.ID]; dup {
			return nil, fmt.Errorf("duplicate profile %q", p.ID)
		}
		r.profiles[p.ID] = p.clone()
		r.order = append(r.order, p.ID)
	}
	return r, nil
}

// Default returns the registry built from the embedded profiles.
func Default() (*Registry, error) {
	return parse(defaultProfiles)
}

// Load builds a registry from a YAML file with a top-level "profiles" list.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profiles: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Registry, error) {
	var doc struct {
		Profiles []Profile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing profiles: %w", err)
	}
	return NewRegistry(doc.Profiles)
}

// Resolve returns the profile for languageID. An exact ID match wins;
// otherwise a case-insensitive match on the full ID or its first word is
// accepted, so "hindi" resolves "Hindi (हिंदी)".
func (r *Registry) Resolve(languageID string) (Profile, error) {
	if p, ok := r.profiles[languageID]; ok {
		return p.clone(), nil
	}
	want := strings.TrimSpace(languageID)
	for _, id := range r.order {
		p := r.profiles[id]
		if want != "" && (strings.EqualFold(want, p.ID) || strings.EqualFold(want, p.ShortName())) {
			return p.clone(), nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, languageID)
}

// Languages lists the supported identifiers in registration order.
func (r *Registry) Languages() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
