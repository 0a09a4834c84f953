// Package settlement calls the external payment collaborator after a job
// completes. Settlement is opaque to the dispatch core: failures are reported
// upward as warnings and never touch job state.
package settlement

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"

	"agent-dispatch-service/internal/service"
)

type Client struct {
	http     *retryablehttp.Client
	endpoint string
}

// New builds a settlement client. An empty endpoint disables settlement: every
// Settle call succeeds as a no-op, which keeps local and test deployments free
// of payment wiring.
func New(endpoint string) *Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 2
	c.Logger = nil
	return &Client{http: c, endpoint: endpoint}
}

func (c *Client) Settle(ctx context.Context, req service.SettlementRequest) error {
	if c.endpoint == "" {
		return nil
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal settlement request: %w", err)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return fmt.Errorf("build settlement request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("settlement call failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("settlement returned status %d", resp.StatusCode)
	}
	return nil
}
