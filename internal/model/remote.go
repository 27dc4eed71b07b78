package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/alexanderramin/polipredict/internal/domain"
)

// RemoteConfig configures the HTTP model-serving client.
type RemoteConfig struct {
	Endpoint   string
	TimeoutMs  int
	MaxRetries int
}

// RemotePredictor calls a model server over HTTP.
type RemotePredictor struct {
	cfg      RemoteConfig
	http     *http.Client
	observer Observer
}

// NewRemotePredictor creates a Predictor that talks to the model server at
// cfg.Endpoint.
func NewRemotePredictor(cfg RemoteConfig, observer Observer) *RemotePredictor {
	if cfg.TimeoutMs <= 0 {
		cfg.TimeoutMs = 5000
	}
	return &RemotePredictor{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observerOrNoop(observer),
	}
}

// predictRequest is the JSON body sent to POST /predict.
type predictRequest struct {
	Rows []map[string]any `json:"rows"`
}

// predictResponse is the JSON body returned by POST /predict.
type predictResponse struct {
	Model       string    `json:"model,omitempty"`
	Predictions []float64 `json:"predictions"`
}

// errorResponse is the JSON body of a non-200 reply.
type errorResponse struct {
	Error  string `json:"error"`
	Column string `json:"column,omitempty"`
	Value  string `json:"value,omitempty"`
}

// statusError is a non-200 reply that is not an unknown-category rejection.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("model server returned status %d: %s", e.code, e.body)
}

func (c *RemotePredictor) Predict(ctx context.Context, row domain.FeatureRow) (float64, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	body := predictRequest{Rows: []map[string]any{row.Columns()}}

	var lastErr error
	attempts := 1 + c.cfg.MaxRetries

	for i := 0; i < attempts; i++ {
		resp, err := c.doRequest(ctx, body)
		if err == nil {
			c.observer.OnPredict(ctx, CallEvent{
				Backend:   "remote",
				Model:     resp.Model,
				LatencyMs: time.Since(start).Milliseconds(),
				Success:   true,
			})
			return resp.Predictions[0], nil
		}
		lastErr = err

		// Don't retry on context cancellation/timeout or on rejected input.
		if ctx.Err() != nil || !retryable(err) {
			break
		}
	}

	finalErr := c.classify(ctx, lastErr)
	c.observer.OnPredict(ctx, CallEvent{
		Backend:   "remote",
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   false,
		ErrorCode: errorCode(finalErr),
	})
	return 0, finalErr
}

func (c *RemotePredictor) classify(ctx context.Context, err error) error {
	switch {
	case ctx.Err() != nil:
		return ErrTimeout
	case IsUnknownCategory(err), errors.Is(err, ErrInvalidResponse):
		return err
	case isConnectionError(err):
		return ErrModelUnavailable
	default:
		return fmt.Errorf("%w: %v", ErrRetryExhausted, err)
	}
}

func (c *RemotePredictor) doRequest(ctx context.Context, body predictRequest) (*predictResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := c.cfg.Endpoint + "/predict"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var er errorResponse
		if json.Unmarshal(respBody, &er) == nil && er.Error == "unknown_category" {
			return nil, &UnknownCategoryError{Column: er.Column, Value: er.Value}
		}
		return nil, &statusError{code: httpResp.StatusCode, body: string(respBody)}
	}

	var resp predictResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding: %v", ErrInvalidResponse, err)
	}
	if len(resp.Predictions) != 1 {
		return nil, fmt.Errorf("%w: expected 1 prediction, got %d", ErrInvalidResponse, len(resp.Predictions))
	}

	return &resp, nil
}

// Available checks whether the model server is reachable.
func (c *RemotePredictor) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	url := c.cfg.Endpoint + "/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func retryable(err error) bool {
	if IsUnknownCategory(err) || errors.Is(err, ErrInvalidResponse) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}
	return true
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}
