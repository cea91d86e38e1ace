package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/coderunr/editor/internal/types"
	"github.com/sirupsen/logrus"
)

// DefaultURL is the execution endpoint used when none is configured
const DefaultURL = "http://localhost:3000/api/execute/"

// maxErrorBody caps how much of an undecodable body ends up in an error
const maxErrorBody = 512

// Client talks to the remote execution service
type Client struct {
	url        string
	httpClient *http.Client
	logger     *logrus.Entry
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger *logrus.Logger) Option {
	return func(c *Client) {
		c.logger = logger.WithField("component", "client")
	}
}

// New creates a client for the execution endpoint at url. A zero timeout
// leaves requests unbounded.
func New(url string, timeout time.Duration, opts ...Option) *Client {
	if url == "" {
		url = DefaultURL
	}
	c := &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logrus.WithField("component", "client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the execution endpoint
func (c *Client) URL() string {
	return c.url
}

// Execute submits a request and decodes the service response. The HTTP status
// does not decide success: any decodable result is returned as is.
func (c *Client) Execute(ctx context.Context, request types.ExecutionRequest) (*types.ExecutionResult, error) {
	reqBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.WithFields(logrus.Fields{
		"language": request.Language,
		"bytes":    len(reqBody),
	}).Debug("Submitting execution request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var raw struct {
		Output         *string `json:"output"`
		CompileMessage *string `json:"compile_message"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode response (status %d): %w: %s",
			resp.StatusCode, err, truncate(body))
	}

	if raw.Output == nil && raw.CompileMessage == nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("execution failed with status %d: %s", resp.StatusCode, truncate(body))
		}
		return nil, fmt.Errorf("malformed response: missing output and compile_message")
	}

	result := &types.ExecutionResult{}
	if raw.Output != nil {
		result.Output = *raw.Output
	}
	if raw.CompileMessage != nil {
		result.CompileMessage = *raw.CompileMessage
	}
	return result, nil
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}
	return string(body)
}
