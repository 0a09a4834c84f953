// Package invoker is the HTTP implementation of the agent-invocation port:
// one bounded POST against the agent's address, no retries. Re-invocation
// policy belongs to the caller.
package invoker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"

	"agent-dispatch-service/internal/service"
)

// maxResponseBytes caps how much of an agent response is read.
const maxResponseBytes = 10 << 20

type Client struct {
	http *retryablehttp.Client
}

func New() *Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 0 // single attempt per dispatch; the deadline comes from ctx
	c.Logger = nil
	return &Client{http: c}
}

// Invoke posts the payload to the agent and returns its response body as raw
// JSON. Timeouts, transport errors and non-2xx statuses all come back as
// errors scoped to this one call.
func (c *Client) Invoke(ctx context.Context, address string, payload service.InvocationPayload) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal invocation payload: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, address, body)
	if err != nil {
		return nil, fmt.Errorf("build agent request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || (ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded)) {
			return nil, fmt.Errorf("agent call timed out: %w", err)
		}
		return nil, fmt.Errorf("agent call failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read agent response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("agent returned status %d: %s", resp.StatusCode, truncate(data, 256))
	}

	if json.Valid(data) {
		return data, nil
	}
	// Agents are supposed to answer JSON; keep a non-JSON body as a string.
	wrapped, _ := json.Marshal(string(data))
	return wrapped, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
