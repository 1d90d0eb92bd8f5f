package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"tagsmith/internal/config"
)

// HTTPDoer describes the HTTP client used by the inference client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ModelInfo describes one model the tagging backend has loaded.
type ModelInfo struct {
	Name       string   `json:"name"`
	Identifier string   `json:"identifier"`
	Version    string   `json:"version"`
	Type       string   `json:"type"`
	Categories []string `json:"categories"`
}

// Client queries the tagging inference backend for its active models.
type Client struct {
	baseURL string
	apiKey  string
	client  HTTPDoer
}

// NewConfiguredClient returns a client for the configured backend, or nil
// when inference is disabled.
func NewConfiguredClient(cfg *config.Config) *Client {
	if cfg == nil || !cfg.Inference.Enabled {
		return nil
	}
	timeout := time.Duration(cfg.Inference.TimeoutSeconds) * time.Second
	return NewClient(cfg.Inference.URL, cfg.Inference.APIKey, &http.Client{Timeout: timeout})
}

// NewClient constructs a client against baseURL using the given doer.
func NewClient(baseURL, apiKey string, client HTTPDoer) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		client:  client,
	}
}

// ActiveModels returns the models the backend currently serves.
func (c *Client) ActiveModels(ctx context.Context) ([]ModelInfo, error) {
	if c == nil || c.baseURL == "" {
		return nil, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/models/active", nil)
	if err != nil {
		return nil, fmt.Errorf("build models request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query inference models: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("inference backend returned %d", resp.StatusCode)
	}

	var payload struct {
		Models []ModelInfo `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode models response: %w", err)
	}
	return payload.Models, nil
}

// LoadedCategories returns the sorted union of categories across models.
func LoadedCategories(models []ModelInfo) []string {
	seen := make(map[string]struct{})
	for _, model := range models {
		for _, category := range model.Categories {
			trimmed := strings.TrimSpace(category)
			if trimmed == "" {
				continue
			}
			seen[trimmed] = struct{}{}
		}
	}
	categories := make([]string, 0, len(seen))
	for category := range seen {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}
