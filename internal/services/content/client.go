package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"listforge/internal/catalog"
	"listforge/internal/services"
)

// HTTPDoer describes the HTTP client used by the content service client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// maxErrorBodyBytes bounds how much of an error payload is surfaced.
const maxErrorBodyBytes = 4 << 10

// Config carries connection settings for the content-generation service.
type Config struct {
	BaseURL        string
	APIKey         string
	TimeoutSeconds int
}

// Client requests generated listing files from the content service.
type Client struct {
	baseURL string
	apiKey  string
	client  HTTPDoer
}

// NewClient constructs a content client. A nil doer falls back to a client
// with the configured timeout.
func NewClient(cfg Config, doer HTTPDoer) *Client {
	if doer == nil {
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		doer = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		client:  doer,
	}
}

type generateRequest struct {
	ModelIDs    []int64 `json:"model_ids"`
	ListingType string  `json:"listing_type"`
	Format      string  `json:"format"`
}

type errorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// Generate requests the rendered listing file for the given models and
// returns its raw bytes. A JSON response body is a server-side failure
// disguised as content and is surfaced as an error, never as payload.
func (c *Client) Generate(ctx context.Context, modelIDs []int64, listingType catalog.ListingType, format catalog.Format) ([]byte, error) {
	if c == nil || c.baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "content", "generate", "content service base URL not configured", nil)
	}
	if len(modelIDs) == 0 {
		return nil, services.Wrap(services.ErrValidation, "content", "generate", "no models selected", nil)
	}

	body, err := json.Marshal(generateRequest{
		ModelIDs:    modelIDs,
		ListingType: string(listingType),
		Format:      string(format),
	})
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "content", "generate", "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/exports/generate", bytes.NewReader(body))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "content", "generate", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/octet-stream")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "content", "generate", "request listing content", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail := readErrorDetail(resp.Body)
		return nil, services.Wrap(services.ErrExternalTool, "content", "generate",
			fmt.Sprintf("content service returned %d: %s", resp.StatusCode, detail), nil)
	}

	if isJSONContentType(resp.Header.Get("Content-Type")) {
		detail := readErrorDetail(resp.Body)
		return nil, services.Wrap(services.ErrExternalTool, "content", "generate",
			fmt.Sprintf("content service reported an error: %s", detail), nil)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "content", "generate", "read listing content", err)
	}
	if len(payload) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "content", "generate", "content service returned an empty payload", nil)
	}
	return payload, nil
}

func isJSONContentType(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.IndexByte(contentType, ';'); idx >= 0 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	return contentType == "application/json" || strings.HasSuffix(contentType, "+json")
}

func readErrorDetail(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBodyBytes))
	if err != nil || len(data) == 0 {
		return "no detail"
	}
	var payload errorPayload
	if err := json.Unmarshal(data, &payload); err == nil {
		for _, candidate := range []string{payload.Error, payload.Message, payload.Detail} {
			if strings.TrimSpace(candidate) != "" {
				return strings.TrimSpace(candidate)
			}
		}
	}
	return strings.TrimSpace(string(data))
}
