package bsky

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Client is a thin HTTP wrapper for the public Bluesky AppView XRPC API.
// Every endpoint this client touches is unauthenticated, so there is no
// token handling anywhere — the visibility filtering in the graph fetcher
// exists precisely because requests carry no session.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an AppView API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

// Get performs a GET request against an XRPC query endpoint, e.g.
// Get(ctx, "app.bsky.feed.getAuthorFeed", params).
func (c *Client) Get(ctx context.Context, nsid string, params url.Values) ([]byte, error) {
	u := c.baseURL + "/xrpc/" + nsid
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s: %w", nsid, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API %s returned %d: %s", nsid, resp.StatusCode, string(data))
	}

	return data, nil
}
