package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrMissingCredentials is returned when the base URL or API key is blank.
var ErrMissingCredentials = errors.New("rest base url and api key are required")

const maxErrorBody = 4 << 10

// StatusError is returned for any response other than 200 or 201. Body is
// kept for logging.
type StatusError struct {
	Method     string
	Table      string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Table, e.StatusCode, e.Body)
}

// Temporary reports whether the request may succeed when repeated.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusRequestTimeout ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= 500
}

// Client talks to a PostgREST endpoint under <base>/rest/v1.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewClient builds a client. A nil http client gets one with timeout.
func NewClient(client *http.Client, baseURL, apiKey string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" || apiKey == "" {
		return nil, ErrMissingCredentials
	}
	if client == nil {
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{client: client, baseURL: baseURL, apiKey: apiKey}, nil
}

// Select runs a GET against table with the given query and decodes the JSON
// array into dest.
func (c *Client) Select(ctx context.Context, table string, query url.Values, dest any) error {
	req, err := c.newRequest(ctx, http.MethodGet, table, query, nil)
	if err != nil {
		return err
	}
	return c.do(req, table, dest)
}

// Insert posts payload to table and decodes the returned representation into
// dest when dest is non-nil. A non-empty onConflict turns the insert into a
// merge on those columns.
func (c *Client) Insert(ctx context.Context, table string, payload any, onConflict string, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", table, err)
	}
	query := url.Values{}
	if onConflict != "" {
		query.Set("on_conflict", onConflict)
	}
	req, err := c.newRequest(ctx, http.MethodPost, table, query, body)
	if err != nil {
		return err
	}
	prefer := "return=representation"
	if onConflict != "" {
		prefer = "resolution=merge-duplicates," + prefer
	}
	req.Header.Set("Prefer", prefer)
	return c.do(req, table, dest)
}

func (c *Client) newRequest(ctx context.Context, method, table string, query url.Values, body []byte) (*http.Request, error) {
	endpoint := c.baseURL + "/rest/v1/" + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", table, err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, table string, dest any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Method: req.Method, Table: table, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(dest); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("could not decode %s response: %w", table, err)
	}
	return nil
}
