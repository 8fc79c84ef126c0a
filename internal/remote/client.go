// Package remote implements the client for the hosted backend: a
// PostgREST-style HTTP API with per-table select, insert, filtered update
// and filtered delete, plus an auth endpoint for the current session.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

var (
	ErrUnauthorized = fmt.Errorf("remote store unauthorized")
	ErrNotFound     = fmt.Errorf("remote store not found")
)

// Client talks to the remote store. Construct it explicitly and pass it
// where needed; there is deliberately no package-level instance.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	accessToken string
}

// NewClient builds a client for the remote store at baseURL. apiKey is the
// project key sent on every request; accessToken is the user session token
// (falls back to the apiKey when empty). A nil httpClient uses
// http.DefaultClient.
func NewClient(httpClient *http.Client, baseURL, apiKey, accessToken string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:      strings.TrimSpace(apiKey),
		accessToken: strings.TrimSpace(accessToken),
	}
}

// Select fetches all rows of a table as loosely-typed key/value maps.
func (c *Client) Select(ctx context.Context, table string) ([]map[string]any, error) {
	var rows []map[string]any
	path := "/rest/v1/" + url.PathEscape(table) + "?select=*"
	if err := c.do(ctx, http.MethodGet, path, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Insert creates one row from a key/value map.
func (c *Client) Insert(ctx context.Context, table string, payload map[string]any) error {
	path := "/rest/v1/" + url.PathEscape(table)
	return c.do(ctx, http.MethodPost, path, payload, nil)
}

// Update patches the row(s) matching id.
func (c *Client) Update(ctx context.Context, table string, payload map[string]any, id string) error {
	path := "/rest/v1/" + url.PathEscape(table) + "?" + idFilter(id)
	return c.do(ctx, http.MethodPatch, path, payload, nil)
}

// Delete removes the row(s) matching id.
func (c *Client) Delete(ctx context.Context, table string, id string) error {
	path := "/rest/v1/" + url.PathEscape(table) + "?" + idFilter(id)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// CurrentUserID resolves the authenticated identity. Returns
// ErrUnauthorized when the session is missing or expired.
func (c *Client) CurrentUserID(ctx context.Context) (string, error) {
	var user struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", nil, &user); err != nil {
		return "", err
	}
	if user.ID == "" {
		return "", ErrUnauthorized
	}
	return user.ID, nil
}

func idFilter(id string) string {
	return url.Values{"id": {"eq." + id}}.Encode()
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	token := c.accessToken
	if token == "" {
		token = c.apiKey
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if method == http.MethodPost || method == http.MethodPatch {
		req.Header.Set("Prefer", "return=minimal")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	}

	var eb struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&eb)
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		if strings.TrimSpace(eb.Message) != "" {
			return fmt.Errorf("remote store %d: %s", resp.StatusCode, eb.Message)
		}
		return fmt.Errorf("remote store status %d", resp.StatusCode)
	}
}
