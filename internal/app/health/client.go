package health

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxProbeBody caps how much of an agent's reply is read.
const maxProbeBody = 64 << 10

type httpClient struct {
	inner *http.Client
}

func newHTTPClient(timeout time.Duration) *httpClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &httpClient{inner: &http.Client{Timeout: timeout}}
}

func (c *httpClient) get(ctx context.Context, endpoint string) (int, []byte, error) {
	return c.do(ctx, http.MethodGet, endpoint, nil)
}

func (c *httpClient) post(ctx context.Context, endpoint string, body []byte) (int, []byte, error) {
	return c.do(ctx, http.MethodPost, endpoint, body)
}

func (c *httpClient) do(ctx context.Context, method, endpoint string, body []byte) (int, []byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, rd)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.inner.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxProbeBody))
	if readErr != nil {
		return resp.StatusCode, nil, readErr
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.StatusCode, raw, nil
	}
	return resp.StatusCode, raw, fmt.Errorf("%s %s returned status %d", method, endpoint, resp.StatusCode)
}
