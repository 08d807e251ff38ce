package outbound

import (
	"errors"
	"fmt"

	"github.com/ssasrajita121/DS-ai-WScaller/internal/provider"
)

// ProvisioningError reports a failed agent creation. StatusCode and Body are
// set when the provider answered with a non-success response.
type ProvisioningError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ProvisioningError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("creating agent: status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("creating agent: %v", e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

// InitiationError reports a failed call placement.
type InitiationError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *InitiationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("placing call: status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("placing call: %v", e.Err)
}

func (e *InitiationError) Unwrap() error { return e.Err }

func apiDetails(err error) (int, string) {
	var apiErr *provider.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, apiErr.Body
	}
	return 0, ""
}
