package utils

import (
	"context"
	"fmt"
	"net/http"

	"orderwalk/internal/types"

	"github.com/go-resty/resty/v2"
)

// acceptLanguage keeps the listing in English, which the date and total
// selectors expect.
const acceptLanguage = "en-US,en;q=0.5"

// HTTPClient fetches single documents over HTTP. It never retries: a failed
// request is reported to the caller as is.
type HTTPClient struct {
	client *resty.Client
	config *types.Config
	logger types.Logger
}

// NewHTTPClient creates a new HTTP client with the given configuration
func NewHTTPClient(config *types.Config, logger types.Logger) *HTTPClient {
	client := resty.New().
		SetTimeout(config.Timeout).
		SetRetryCount(0).
		SetHeaders(map[string]string{
			"User-Agent":      config.UserAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": acceptLanguage,
		})

	return &HTTPClient{
		client: client,
		config: config,
		logger: logger,
	}
}

// SetTransport replaces the underlying round tripper.
func (h *HTTPClient) SetTransport(transport http.RoundTripper) {
	h.client.SetTransport(transport)
}

// Get performs a GET request and returns the body with the status code.
// err is only set when no response was received; any status, including
// non-2xx ones, is returned to the caller to judge.
func (h *HTTPClient) Get(ctx context.Context, url string) ([]byte, int, error) {
	h.logger.Debugf("Making request to %s", url)

	resp, err := h.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}

	h.logger.Debugf("Retrieved %d bytes from %s (status %d)", len(resp.Body()), url, resp.StatusCode())
	return resp.Body(), resp.StatusCode(), nil
}

// Close releases idle connections
func (h *HTTPClient) Close() {
	h.client.GetClient().CloseIdleConnections()
}
