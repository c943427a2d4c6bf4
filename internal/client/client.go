// Package client is an HTTP client for the comprules API, used by the CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"comprules/internal/snapshot"
	"comprules/internal/store"
)

// Client is an HTTP client for the comprules API
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		blob, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(blob)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// CreateRule creates or updates a rule
func (c *Client) CreateRule(ctx context.Context, params store.UpsertParams) error {
	return c.do(ctx, http.MethodPost, "/v1/rules", params, nil)
}

// DeleteRule deletes a rule by name
func (c *Client) DeleteRule(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/v1/rules/"+url.PathEscape(name), nil, nil)
}

// GetRule retrieves a single rule view from the snapshot
func (c *Client) GetRule(ctx context.Context, name string) (*snapshot.RuleView, error) {
	views, err := c.ListRules(ctx)
	if err != nil {
		return nil, err
	}
	for i := range views {
		if views[i].Name == name {
			return &views[i], nil
		}
	}
	return nil, fmt.Errorf("rule not found: %s", name)
}

// ListRules retrieves all rule views from the snapshot, sorted by name
func (c *Client) ListRules(ctx context.Context) ([]snapshot.RuleView, error) {
	var snap struct {
		Rules map[string]snapshot.RuleView `json:"rules"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/rules/snapshot", nil, &snap); err != nil {
		return nil, err
	}

	views := make([]snapshot.RuleView, 0, len(snap.Rules))
	for _, v := range snap.Rules {
		views = append(views, v)
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })
	return views, nil
}

// RulePrompt fetches the rendered marketing prompt for a rule.
func (c *Client) RulePrompt(ctx context.Context, name, language string) (string, []string, error) {
	path := "/v1/rules/" + url.PathEscape(name) + "/prompt"
	if language != "" {
		path += "?language=" + url.QueryEscape(language)
	}

	var resp struct {
		Statements []string `json:"statements"`
		Prompt     string   `json:"prompt"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", nil, err
	}
	return resp.Prompt, resp.Statements, nil
}
