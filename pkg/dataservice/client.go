// Package dataservice fetches catalog files from a remote data
// endpoint.
package dataservice

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Client is an HTTP client for a catalog data endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Config holds the configuration for the data service client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewClient creates a new data service client with the given
// configuration.
func NewClient(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimSuffix(u.String(), "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// doRequest performs a GET with authentication and error handling.
func (c *Client) doRequest(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/x-yaml, text/plain")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("data service returned %d for %s: %s", resp.StatusCode, path, strings.TrimSpace(string(body)))
	}
	return resp, nil
}

// ValidateConnection tests the connection to the data service.
func (c *Client) ValidateConnection(ctx context.Context) error {
	resp, err := c.doRequest(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to data service: %w", err)
	}
	_ = resp.Body.Close()
	return nil
}

// FetchCatalog downloads the catalog at path and returns its contents.
func (c *Client) FetchCatalog(ctx context.Context, path string) ([]byte, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	resp, err := c.doRequest(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog body: %w", err)
	}
	return data, nil
}

// IsRemote reports whether a catalog reference is an http(s) URL.
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// FetchURL downloads a catalog from a full URL, splitting it into
// endpoint and path.
func FetchURL(ctx context.Context, rawURL, apiKey string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog URL: %w", err)
	}

	client, err := NewClient(Config{BaseURL: u.Scheme + "://" + u.Host, APIKey: apiKey})
	if err != nil {
		return nil, err
	}
	return client.FetchCatalog(ctx, u.Path)
}

// APIKeyFromEnv returns the API key from the SKYSIM_API_KEY environment
// variable, empty when unset.
func APIKeyFromEnv() string {
	return os.Getenv("SKYSIM_API_KEY")
}

// GetAPIKey retrieves an API key from the named environment variable.
func GetAPIKey(envVarName string) string {
	if envVarName == "" {
		return ""
	}
	return os.Getenv(envVarName)
}
