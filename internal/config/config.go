package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Provider     ProviderConfig   `yaml:"provider"`
	Poll         PollConfig       `yaml:"poll"`
	Pricing      PricingConfig    `yaml:"pricing"`
	Assistant    AssistantConfig  `yaml:"assistant"`
	Transcript   TranscriptConfig `yaml:"transcript"`
	Ledger       LedgerConfig     `yaml:"ledger"`
	MQTT         MQTTConfig       `yaml:"mqtt"`
	Log          LogConfig        `yaml:"log"`
	Metrics      MetricsConfig    `yaml:"metrics"`
	ProfilesPath string           `yaml:"profiles_path"`
	Purpose      string           `yaml:"purpose"`
}

type ProviderConfig struct {
	BaseURL       string        `yaml:"base_url"`
	APIKey        string        `yaml:"api_key"`
	PhoneNumberID string        `yaml:"phone_number_id"`
	Timeout       time.Duration `yaml:"timeout"`
}

type PollConfig struct {
	Interval time.Duration `yaml:"interval"`
	MaxWait  time.Duration `yaml:"max_wait"`
}

type PricingConfig struct {
	MinimumFee             float64 `yaml:"minimum_fee"`
	PerMinuteRate          float64 `yaml:"per_minute_rate"`
	Currency               string  `yaml:"currency"`
	TimeoutEstimateSeconds int     `yaml:"timeout_estimate_seconds"`
}

type AssistantConfig struct {
	NamePrefix        string   `yaml:"name_prefix"`
	ModelProvider     string   `yaml:"model_provider"`
	Model             string   `yaml:"model"`
	Temperature       float64  `yaml:"temperature"`
	MaxTokens         int      `yaml:"max_tokens"`
	FirstMessage      string   `yaml:"first_message"`
	EndCallMessage    string   `yaml:"end_call_message"`
	EndCallPhrases    []string `yaml:"end_call_phrases"`
	TranscriberVendor string   `yaml:"transcriber_provider"`
	TranscriberModel  string   `yaml:"transcriber_model"`
	RecordingEnabled  bool     `yaml:"recording_enabled"`
}

type TranscriptConfig struct {
	SummaryLength int `yaml:"summary_length"`
}

type LedgerConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a Config populated with the built-in defaults. Credentials
// are left empty.
func Default() *Config {
	return &Config{
		Provider: ProviderConfig{
			BaseURL: "https://api.vapi.ai",
			Timeout: 30 * time.Second,
		},
		Poll: PollConfig{
			Interval: 3 * time.Second,
			MaxWait:  180 * time.Second,
		},
		Pricing: PricingConfig{
			MinimumFee:             4.20,
			PerMinuteRate:          4.565,
			Currency:               "INR",
			TimeoutEstimateSeconds: 120,
		},
		Assistant: AssistantConfig{
			NamePrefix:        "SnapSkill",
			ModelProvider:     "openai",
			Model:             "gpt-4o",
			Temperature:       0.7,
			MaxTokens:         500,
			FirstMessage:      "Hello! I'm calling from SnapSkill.!",
			EndCallMessage:    "Thank you for your time. Goodbye!",
			EndCallPhrases:    []string{"goodbye", "bye", "thank you bye", "not interested"},
			TranscriberVendor: "deepgram",
			TranscriberModel:  "nova-2",
			RecordingEnabled:  true,
		},
		Transcript: TranscriptConfig{
			SummaryLength: 200,
		},
		Ledger: LedgerConfig{
			Driver: "xlsx",
			Path:   "call_summaries.xlsx",
		},
		MQTT: MQTTConfig{
			Broker:      "tcp://localhost:1883",
			ClientID:    "ai-caller",
			TopicPrefix: "ai-caller",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 5,
		},
		Purpose: "Data Science Feedback Collection",
	}
}

// Load reads the YAML file at path, overlays VAPI_* environment variables
// (after loading an optional .env file) and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("VAPI_BASE_URL"); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv("VAPI_API_KEY"); v != "" {
		c.Provider.APIKey = v
	}
	if v := os.Getenv("VAPI_PHONE_NUMBER_ID"); v != "" {
		c.Provider.PhoneNumberID = v
	}
}

func (c *Config) validate() error {
	if c.Provider.BaseURL == "" {
		return fmt.Errorf("provider.base_url is required")
	}
	if c.Provider.APIKey == "" {
		return fmt.Errorf("provider.api_key is required")
	}
	if c.Provider.PhoneNumberID == "" {
		return fmt.Errorf("provider.phone_number_id is required")
	}
	if c.Provider.Timeout <= 0 {
		return fmt.Errorf("provider.timeout must be positive, got %s", c.Provider.Timeout)
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll.interval must be positive, got %s", c.Poll.Interval)
	}
	if c.Poll.MaxWait < c.Poll.Interval {
		return fmt.Errorf("poll.max_wait must be at least poll.interval, got %s", c.Poll.MaxWait)
	}
	if c.Pricing.MinimumFee < 0 {
		return fmt.Errorf("pricing.minimum_fee must not be negative, got %v", c.Pricing.MinimumFee)
	}
	if c.Pricing.PerMinuteRate <= 0 {
		return fmt.Errorf("pricing.per_minute_rate must be positive, got %v", c.Pricing.PerMinuteRate)
	}
	if c.Pricing.TimeoutEstimateSeconds < 0 {
		return fmt.Errorf("pricing.timeout_estimate_seconds must not be negative, got %d", c.Pricing.TimeoutEstimateSeconds)
	}
	if c.Transcript.SummaryLength <= 0 {
		return fmt.Errorf("transcript.summary_length must be positive, got %d", c.Transcript.SummaryLength)
	}
	switch c.Ledger.Driver {
	case "xlsx", "sqlite":
	default:
		return fmt.Errorf("ledger.driver must be xlsx or sqlite, got %q", c.Ledger.Driver)
	}
	if c.Ledger.Path == "" {
		return fmt.Errorf("ledger.path is required")
	}
	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			return fmt.Errorf("mqtt.broker is required")
		}
		if c.MQTT.ClientID == "" {
			return fmt.Errorf("mqtt.client_id is required")
		}
		if c.MQTT.TopicPrefix == "" {
			return fmt.Errorf("mqtt.topic_prefix is required")
		}
	}
	return nil
}
