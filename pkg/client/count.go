// Package client ships HTTP implementations of the builder's two external
// services: the count-preview query and the dataset submission endpoint.
// Every request carries a fresh X-Request-ID so server logs can be correlated
// with a specific preview or submission attempt.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-datasetform/pkg/preview"
)

const requestIDHeader = "X-Request-ID"

var defaultHTTPClient = &http.Client{Timeout: 30 * time.Second}

// Option customises an HTTP client.
type Option func(*options)

type options struct {
	httpClient *http.Client
}

// WithHTTPClient replaces the default http.Client (30s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		if hc != nil {
			o.httpClient = hc
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{httpClient: defaultHTTPClient}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&o)
	}
	return o
}

// CountClient implements preview.CountService against
// GET {base}/datasets/counts.
type CountClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ preview.CountService = (*CountClient)(nil)

// NewCountClient constructs a count client for the given base URL.
func NewCountClient(baseURL string, opts ...Option) (*CountClient, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("client: base URL is required")
	}
	o := applyOptions(opts)
	return &CountClient{
		baseURL:    trimmed,
		httpClient: o.httpClient,
	}, nil
}

type countPayload struct {
	InferenceCount        *int64 `json:"inference_count"`
	FeedbackCount         *int64 `json:"feedback_count"`
	CuratedInferenceCount *int64 `json:"curated_inference_count"`
}

// Query resolves preview counts for a selection.
func (c *CountClient) Query(ctx context.Context, params preview.Params) (preview.Result, error) {
	query := url.Values{}
	query.Set("function", params.Function)
	if params.Metric != "" {
		query.Set("metric", params.Metric)
		query.Set("threshold", strconv.FormatFloat(params.Threshold, 'f', -1, 64))
	}

	endpoint := c.baseURL + "/datasets/counts?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return preview.Result{}, fmt.Errorf("client: build count request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return preview.Result{}, fmt.Errorf("client: count query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return preview.Result{}, fmt.Errorf("client: count query: unexpected status %d", resp.StatusCode)
	}

	var payload countPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return preview.Result{}, fmt.Errorf("client: decode count response: %w", err)
	}
	return preview.Result{
		InferenceCount:        payload.InferenceCount,
		FeedbackCount:         payload.FeedbackCount,
		CuratedInferenceCount: payload.CuratedInferenceCount,
	}, nil
}
