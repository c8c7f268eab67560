// Package facebook talks to the Graph API photo-post endpoint.
package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fbsync/internal/domain"
	"fbsync/internal/ports"
)

const maxResponseBytes = 1 << 20

// APIError is a failure reported by the platform itself. Error() is the
// bare platform message so it can be stored verbatim in the ledger.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client posts photos to a page feed.
type Client struct {
	graphURL   string
	apiVersion string
	http       *http.Client
}

var _ ports.Publisher = (*Client)(nil)

// NewClient wires an HTTP client; a nil client gets a sane default.
func NewClient(graphURL, apiVersion string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		graphURL:   strings.TrimRight(graphURL, "/"),
		apiVersion: apiVersion,
		http:       client,
	}
}

// PostPhoto publishes one photo with a caption to the page and returns
// the remote post identifier.
func (c *Client) PostPhoto(ctx context.Context, pageID, accessToken string, post domain.PhotoPost) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/photos", c.graphURL, c.apiVersion, pageID)

	form := url.Values{}
	form.Set("url", post.ImageURL)
	form.Set("caption", post.Caption)
	form.Set("access_token", accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("post photo: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed struct {
		ID    string `json:"id"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("invalid JSON response from Facebook: %s", strings.TrimSpace(string(body)))
	}

	if parsed.Error != nil {
		message := parsed.Error.Message
		if message == "" {
			message = "Unknown Facebook API error"
		}
		return "", &APIError{Message: message}
	}

	if parsed.ID == "" {
		return "", fmt.Errorf("no post ID returned from Facebook, status %s", resp.Status)
	}

	return parsed.ID, nil
}
