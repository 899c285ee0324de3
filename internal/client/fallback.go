package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/checkfox/go_reassign/internal/logger"
	"github.com/checkfox/go_reassign/internal/models"
)

// endpointStrategy is one way of performing a backend operation. Each
// operation carries an ordered list of strategies (current API first, legacy
// API second) tried in sequence; the first 2xx response short-circuits.
// Legacy endpoints are differently shaped, so each strategy owns its own
// response decoding.
type endpointStrategy struct {
	name   string
	method string
	url    string
	body   interface{}
	decode func(data []byte) error
}

// strategyResult reports which strategy served a successful call
type strategyResult struct {
	Name       string
	StatusCode int
}

// call tries each strategy in order and returns the result of the first
// success. On total failure the last attempt's error is returned, already
// classified onto the workflow error taxonomy.
func (c *Client) call(ctx context.Context, action models.ReassignmentAction, leadID string, strategies []endpointStrategy) (*strategyResult, error) {
	if len(strategies) == 0 {
		return nil, models.NewTransportError(0, "no endpoint strategies configured", nil)
	}

	var lastErr error

	for _, strategy := range strategies {
		result, err := c.attempt(ctx, action, leadID, strategy)
		if err == nil {
			return result, nil
		}

		logger.Warn(ctx, "Endpoint strategy failed",
			"strategy", strategy.name,
			"action", action.String(),
			"error", err.Error(),
		)
		lastErr = err
	}

	return nil, lastErr
}

// attempt performs a single strategy's HTTP call
func (c *Client) attempt(ctx context.Context, action models.ReassignmentAction, leadID string, strategy endpointStrategy) (*strategyResult, error) {
	var reqBody io.Reader
	if strategy.body != nil {
		jsonData, err := json.Marshal(strategy.body)
		if err != nil {
			return nil, models.NewTransportError(0, "failed to marshal request body", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, strategy.method, strategy.url, reqBody)
	if err != nil {
		return nil, models.NewTransportError(0, "failed to create request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, models.NewTransportError(0, "network error", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.NewTransportError(resp.StatusCode, "failed to read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, models.ClassifyHTTPError(action, leadID, resp.StatusCode, string(bodyBytes))
	}

	if strategy.decode != nil {
		if err := strategy.decode(bodyBytes); err != nil {
			return nil, models.NewTransportError(resp.StatusCode, "failed to decode response", err)
		}
	}

	return &strategyResult{
		Name:       strategy.name,
		StatusCode: resp.StatusCode,
	}, nil
}
