// Package httpclient fetches and posts JSON resources over HTTP.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
)

// StatusError is returned when the server answers with a status code the
// caller did not accept.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// GetResource performs a GET against url and decodes the JSON body into T.
func GetResource[T any](ctx context.Context, c *http.Client, url string, headers http.Header, okStatuses []int) (T, error) {
	var zero T
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return zero, fmt.Errorf("couldn't create request: %w", err)
	}
	return do[T](c, req, headers, okStatuses)
}

// PostResource encodes body as JSON, POSTs it to url and decodes the JSON
// response into T.
func PostResource[T any](ctx context.Context, c *http.Client, url string, body any, headers http.Header, okStatuses []int) (T, error) {
	var zero T
	payload, err := json.Marshal(body)
	if err != nil {
		return zero, fmt.Errorf("couldn't encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return zero, fmt.Errorf("couldn't create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return do[T](c, req, headers, okStatuses)
}

func do[T any](c *http.Client, req *http.Request, headers http.Header, okStatuses []int) (T, error) {
	var res T
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.Do(req)
	if err != nil {
		return res, fmt.Errorf("couldn't do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return res, fmt.Errorf("couldn't read response: %w", err)
	}

	if !slices.Contains(okStatuses, resp.StatusCode) {
		return res, &StatusError{StatusCode: resp.StatusCode, Body: body}
	}

	if err := json.Unmarshal(body, &res); err != nil {
		return res, fmt.Errorf("couldn't parse response: %w", err)
	}
	return res, nil
}
