package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"listforge/internal/catalog"
	"listforge/internal/services"
)

// Severity grades a readiness finding.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Finding is one readiness issue attached to a model or to the selection.
type Finding struct {
	Severity  Severity `json:"severity"`
	ModelID   int64    `json:"model_id,omitempty"`
	ModelName string   `json:"model_name,omitempty"`
	Message   string   `json:"message"`
}

// Summary aggregates finding counts by severity.
type Summary struct {
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// Report is the readiness service's response for a selection.
type Report struct {
	Status  string    `json:"status"`
	Summary Summary   `json:"summary_counts"`
	Items   []Finding `json:"items"`
}

// Warnings returns the subset of findings with warning severity.
func (r *Report) Warnings() []Finding {
	if r == nil {
		return nil
	}
	var out []Finding
	for _, item := range r.Items {
		if item.Severity == SeverityWarning {
			out = append(out, item)
		}
	}
	return out
}

// HTTPDoer describes the HTTP client used by the validation client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config carries connection settings for the readiness service.
type Config struct {
	BaseURL        string
	APIKey         string
	TimeoutSeconds int
}

// Client requests readiness reports for a selection.
type Client struct {
	baseURL string
	apiKey  string
	client  HTTPDoer
}

// NewClient constructs a validation client. A nil doer falls back to a
// client with the configured timeout.
func NewClient(cfg Config, doer HTTPDoer) *Client {
	if doer == nil {
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		doer = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		client:  doer,
	}
}

type validateRequest struct {
	ModelIDs    []int64 `json:"model_ids"`
	ListingType string  `json:"listing_type"`
}

// Validate fetches the readiness report for the given models.
func (c *Client) Validate(ctx context.Context, modelIDs []int64, listingType catalog.ListingType) (*Report, error) {
	if c == nil || c.baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "validation", "validate", "validation service base URL not configured", nil)
	}

	body, err := json.Marshal(validateRequest{ModelIDs: modelIDs, ListingType: string(listingType)})
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "validation", "validate", "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/exports/validate", bytes.NewReader(body))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "validation", "validate", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "validation", "validate", "request readiness report", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, services.Wrap(services.ErrExternalTool, "validation", "validate",
			fmt.Sprintf("validation service returned %d", resp.StatusCode), nil)
	}

	var report Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "validation", "validate", "decode readiness report", err)
	}
	return &report, nil
}
