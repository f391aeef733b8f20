package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TokenSource supplies the bearer token for each request. It is consulted
// per call so a login or logout takes effect on the very next request.
type TokenSource interface {
	Token() (string, bool)
}

// Client is a thin HTTP client for the task REST API. It attaches the
// current bearer token, encodes JSON bodies and maps failures onto
// NetworkError, AuthError and APIError. It never retries.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// NewClient creates a client for the API rooted at baseURL
// (e.g. http://localhost:8000/api/v1).
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// errorBody is the error payload format of the API.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// do builds the request, attaches auth when authed is set, and decodes the
// JSON response into result. An authed call without a token fails with
// ErrNoSession before touching the network.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
	authed bool,
) error {
	var token string
	if authed {
		tok, ok := c.tokens.Token()
		if !ok || tok == "" {
			return ErrNoSession
		}
		token = tok
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	op := method + " " + path

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return &NetworkError{Op: op, Err: err}
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("reading response body: %w", readErr)}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &AuthError{
			Status:  resp.StatusCode,
			Message: detailMessage(respBody, "credential rejected"),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Status:  resp.StatusCode,
			Message: detailMessage(respBody, http.StatusText(resp.StatusCode)),
		}
	}

	// No content to parse (e.g. 204).
	if result == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return &APIError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("unreadable response from %s: %v", op, err),
		}
	}

	return nil
}

// detailMessage extracts the "detail" field of an error body. Validation
// errors carry a list of objects with a "msg" field; those are joined.
func detailMessage(body []byte, fallback string) string {
	var eb errorBody
	if json.Unmarshal(body, &eb) != nil || len(eb.Detail) == 0 {
		return fallback
	}

	var s string
	if json.Unmarshal(eb.Detail, &s) == nil && s != "" {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(eb.Detail, &items) == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	return fallback
}
