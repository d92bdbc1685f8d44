package models

import (
	"context"
	"fmt"
	"time"

	dmodels "StockPulse/internal/domain/models"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
)

// Client calls the external model-serving HTTP API for named per-model
// price predictions. A disabled or unreachable server is not fatal: callers
// fall back to the heuristic predictor on empty output.
type Client struct {
	baseURL  string
	attempts int
	client   *xhttp.Client
}

func NewClient(cfg *config.Config) *Client {
	timeout := cfg.Models.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	attempts := cfg.Models.Retries + 1
	if attempts < 1 {
		attempts = 1
	}
	return &Client{
		baseURL:  cfg.Models.BaseURL,
		attempts: attempts,
		client:   xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type predictRequest struct {
	Symbol    string             `json:"symbol"`
	DaysAhead int                `json:"days_ahead"`
	Features  map[string]float64 `json:"features"`
}

type predictResponse struct {
	Predictions []struct {
		Model string  `json:"model"`
		Price float64 `json:"price"`
	} `json:"predictions"`
}

// Predict posts the feature payload and returns the per-model predictions.
// An unconfigured base URL yields an empty slice without error.
func (c *Client) Predict(ctx context.Context, symbol string, features map[string]float64, daysAhead int) ([]dmodels.ModelPrediction, error) {
	if c.baseURL == "" {
		return nil, nil
	}

	payload := predictRequest{Symbol: symbol, DaysAhead: daysAhead, Features: features}
	var resp predictResponse
	if err := c.postJSON(ctx, "/predict", payload, &resp); err != nil {
		return nil, fmt.Errorf("model server predict: %w", err)
	}

	out := make([]dmodels.ModelPrediction, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		out = append(out, dmodels.ModelPrediction{Model: p.Model, Price: p.Price})
	}
	return out, nil
}

// postJSON posts payload to path under the base URL with simple retry
// backoff for transient errors.
func (c *Client) postJSON(ctx context.Context, path string, payload interface{}, dest interface{}) error {
	var err error
	for i := 1; i <= c.attempts; i++ {
		err = c.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: xhttp.MethodPost,
			URL:    c.baseURL + path,
			Headers: map[string]string{
				"Content-Type": "application/json",
			},
			Body: payload,
		}, dest)
		if err == nil {
			return nil
		}
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
