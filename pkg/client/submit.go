package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-datasetform/pkg/submission"
)

// SubmitClient implements submission.Service against POST {base}/datasets.
type SubmitClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ submission.Service = (*SubmitClient)(nil)

// NewSubmitClient constructs a submission client for the given base URL.
func NewSubmitClient(baseURL string, opts ...Option) (*SubmitClient, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("client: base URL is required")
	}
	o := applyOptions(opts)
	return &SubmitClient{
		baseURL:    trimmed,
		httpClient: o.httpClient,
	}, nil
}

type submitResponse struct {
	Success bool   `json:"success"`
	Count   *int64 `json:"count,omitempty"`
	Errors  struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Submit sends the serialized selection in a single request and maps the
// response onto a submission.Outcome. Transport failures surface as errors;
// a well-formed failure body becomes an unsuccessful outcome with the
// server's message.
func (c *SubmitClient) Submit(ctx context.Context, payload []byte) (submission.Outcome, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/datasets", bytes.NewReader(payload))
	if err != nil {
		return submission.Outcome{}, fmt.Errorf("client: build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return submission.Outcome{}, fmt.Errorf("client: submit: %w", err)
	}
	defer resp.Body.Close()

	var body submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return submission.Outcome{}, fmt.Errorf("client: decode submit response: %w", err)
	}

	if !body.Success {
		message := strings.TrimSpace(body.Errors.Message)
		if message == "" {
			message = fmt.Sprintf("submit failed with status %d", resp.StatusCode)
		}
		return submission.Outcome{Message: message}, nil
	}
	return submission.Outcome{Success: true, Count: body.Count}, nil
}
