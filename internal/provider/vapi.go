package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ssasrajita121/DS-ai-WScaller/internal/metrics"
)

// Verify interface compliance at compile time.
var _ Client = (*Vapi)(nil)

// VapiConfig configures the Vapi adapter.
type VapiConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Vapi talks to the Vapi REST API with bearer-token auth.
type Vapi struct {
	rc *resty.Client
}

// NewVapi creates a Vapi adapter. Every request carries cfg.Timeout
// (30s when unset) so no single request can hang the run.
func NewVapi(cfg VapiConfig) (*Vapi, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("vapi api key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.vapi.ai"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var rc *resty.Client
	if cfg.HTTPClient != nil {
		rc = resty.NewWithClient(cfg.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Vapi{rc: rc}, nil
}

// CreateAgent creates an assistant. Each call creates a new provider-side
// resource.
func (v *Vapi) CreateAgent(ctx context.Context, req AgentRequest) (*Agent, error) {
	var agent Agent
	if err := v.do(ctx, "create_agent", http.MethodPost, "/assistant", req, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// PlaceCall starts an outbound phone call.
func (v *Vapi) PlaceCall(ctx context.Context, req PlaceCallRequest) (*Call, error) {
	var call Call
	if err := v.do(ctx, "place_call", http.MethodPost, "/call/phone", req, &call); err != nil {
		return nil, err
	}
	return &call, nil
}

// GetCall fetches the current call snapshot.
func (v *Vapi) GetCall(ctx context.Context, callID string) (*Call, error) {
	var call Call
	if err := v.do(ctx, "get_call", http.MethodGet, "/call/"+callID, nil, &call); err != nil {
		return nil, err
	}
	return &call, nil
}

// GetCallRaw returns the unparsed call JSON, for fixture capture.
func (v *Vapi) GetCallRaw(ctx context.Context, callID string) ([]byte, error) {
	resp, err := v.send(ctx, "get_call", http.MethodGet, "/call/"+callID, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func (v *Vapi) do(ctx context.Context, op, method, path string, body, result any) error {
	resp, err := v.send(ctx, op, method, path, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body(), result); err != nil {
		metrics.ProviderErrors.WithLabelValues(op).Inc()
		return fmt.Errorf("%s: decoding response: %w", op, err)
	}
	return nil
}

// send executes the request. Only 200 and 201 count as success.
func (v *Vapi) send(ctx context.Context, op, method, path string, body any) (*resty.Response, error) {
	req := v.rc.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		metrics.ProviderErrors.WithLabelValues(op).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if code := resp.StatusCode(); code != http.StatusOK && code != http.StatusCreated {
		metrics.ProviderErrors.WithLabelValues(op).Inc()
		return nil, &APIError{StatusCode: code, Body: resp.String()}
	}
	return resp, nil
}
