// Package tinvest is a client for the T-Invest REST gateway and an adapter to domain types.
package tinvest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const servicePrefix = "/tinkoff.public.invest.api.contract.v1."

// grpcNotFound is the gRPC status code the gateway reports in error bodies for missing entities.
const grpcNotFound = 5

// ErrNotFound is returned when the gateway has no such account, instrument or price.
var ErrNotFound = errors.New("tinvest: not found")

// Client is an HTTP client for the T-Invest REST API with retry on 429.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
}

// NewClient creates a new T-Invest API client.
func NewClient(baseURL, token string, maxRetries int, baseDelay time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// post calls a unary gateway method with retry on 429. method is "Service/Method".
func (c *Client) post(ctx context.Context, method string, payload []byte) ([]byte, error) {
	url := c.baseURL + servicePrefix + method

	var lastErr error
	for attempt := range c.maxRetries + 1 {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("executing request: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("HTTP 429 at %s (attempt %d/%d)", method, attempt+1, c.maxRetries+1)
			if attempt < c.maxRetries {
				delay := c.baseDelay * time.Duration(1<<uint(attempt))
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delay):
				}
				continue
			}
			return nil, lastErr
		}

		var eb errorBody
		if resp.StatusCode == http.StatusNotFound ||
			(json.Unmarshal(body, &eb) == nil && eb.Code == grpcNotFound) {
			return nil, fmt.Errorf("%s: %w", method, ErrNotFound)
		}

		return nil, fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, method, string(body))
	}

	return nil, lastErr
}

// postJSON marshals req, calls method and unmarshals the JSON response into dest.
func (c *Client) postJSON(ctx context.Context, method string, req, dest any) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", method, err)
	}
	body, err := c.post(ctx, method, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("parsing JSON from %s: %w", method, err)
	}
	return nil
}
