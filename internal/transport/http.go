package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/tidwall/gjson"
)

// maxBodySize caps how much of a response body is read
const maxBodySize = 32 << 20

// HTTPShim is a Shim backed by plain GET requests
type HTTPShim struct {
	client *http.Client
}

// NewHTTPShim creates a shim with a private pooled client. A zero timeout
// leaves requests bounded only by their context.
func NewHTTPShim(timeout time.Duration) *HTTPShim {
	client := cleanhttp.DefaultPooledClient()
	client.Timeout = timeout
	return &HTTPShim{client: client}
}

// NewHTTPShimWithClient creates a shim around an existing client
func NewHTTPShimWithClient(client *http.Client) *HTTPShim {
	if client == nil {
		client = cleanhttp.DefaultClient()
	}
	return &HTTPShim{client: client}
}

// Call issues GET baseURL+path. Status codes and headers are not inspected;
// only whether a JSON body could be read matters.
func (s *HTTPShim) Call(ctx context.Context, baseURL, path string) (gjson.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+path, nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: read body: %w", ErrRequest, err)
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%w: %s returned invalid JSON", ErrDecode, path)
	}
	return gjson.ParseBytes(body), nil
}
