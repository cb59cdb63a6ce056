package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"showdown-vote/internal/constants"

	"github.com/valyala/fasthttp"
)

// RelayClient pushes upstream snapshots to a running server.
type RelayClient struct {
	baseURL  string
	relayKey string
	client   *fasthttp.Client
}

type PushResponse struct {
	OK bool `json:"ok"`
}

type HealthResponse struct {
	OK bool `json:"ok"`
}

// RelayError is a non-2xx answer from the server.
type RelayError struct {
	StatusCode int
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *RelayError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("relay error: %d", e.StatusCode)
	}
	return fmt.Sprintf("relay error: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func NewRelayClient(baseURL, relayKey string) *RelayClient {
	return &RelayClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		relayKey: relayKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     10,
			ReadTimeout:         constants.RelayTimeout,
			WriteTimeout:        constants.RelayTimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

func (c *RelayClient) PushSnapshot(ctx context.Context, payload []byte) (*PushResponse, error) {
	return doRequest[PushResponse](ctx, c, fasthttp.MethodPost, "/api/relay/state", payload)
}

func (c *RelayClient) Health(ctx context.Context) (*HealthResponse, error) {
	return doRequest[HealthResponse](ctx, c, fasthttp.MethodGet, "/api/health", nil)
}

func (c *RelayClient) CloseIdleConnections() {
	c.client.CloseIdleConnections()
}

func doRequest[T any](ctx context.Context, client *RelayClient, method, path string, body []byte) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(client.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set(constants.RelayKeyHeader, client.relayKey)
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(constants.RelayTimeout)
	}
	if err := client.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("failed to reach %s: %w", path, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		relayErr := &RelayError{StatusCode: resp.StatusCode()}
		_ = json.Unmarshal(resp.Body(), relayErr)
		return nil, relayErr
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return &result, nil
}
