package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kjstillabower/attire-decider/internal/observability"
)

// PageFetcher retrieves the raw weather page for a postal code.
type PageFetcher interface {
	FetchPage(ctx context.Context, zip string) (string, error)
}

var (
	ErrLocationNotFound = errors.New("location not found")
	ErrUpstreamFailure  = errors.New("upstream failure")
	ErrRateLimited      = errors.New("rate limited")
)

// DefaultPageURL is the legacy wunderground forecast lookup; the postal code goes in "query".
const DefaultPageURL = "http://www.wunderground.com/cgi-bin/findweather/getForecast"

// maxPageBytes is the largest page accepted; anything bigger is an upstream failure.
const maxPageBytes = 8 << 20

// PageClient fetches weather pages over HTTP. There is no retry: a failed fetch is returned
// to the caller as is.
type PageClient struct {
	pageURL *url.URL
	timeout time.Duration
	client  *http.Client
}

// NewPageClient returns a PageClient for pageURL. timeout bounds each fetch.
func NewPageClient(pageURL string, timeout time.Duration) (*PageClient, error) {
	if pageURL == "" {
		pageURL = DefaultPageURL
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid page URL %q: scheme must be http or https", pageURL)
	}
	return &PageClient{
		pageURL: u,
		timeout: timeout,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// FetchPage implements PageFetcher.
func (c *PageClient) FetchPage(ctx context.Context, zip string) (string, error) {
	start := time.Now()

	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := c.buildRequest(reqCtx, zip)
	if err != nil {
		observability.PageFetchCallsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("build request: %w", err)
	}

	if corrID := extractCorrelationID(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		duration := time.Since(start).Seconds()
		observability.PageFetchCallsTotal.WithLabelValues("error").Inc()
		observability.PageFetchDuration.WithLabelValues("error").Observe(duration)

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", fmt.Errorf("request timeout: %w", err)
		}
		return "", fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	status := statusLabel(resp.StatusCode)
	observability.PageFetchCallsTotal.WithLabelValues(status).Inc()

	if err := c.handleErrorResponse(resp); err != nil {
		observability.PageFetchDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
		return "", err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes+1))
	observability.PageFetchDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	if len(body) > maxPageBytes {
		return "", fmt.Errorf("%w: page too large (over %d bytes)", ErrUpstreamFailure, maxPageBytes)
	}
	return string(body), nil
}

func (c *PageClient) buildRequest(ctx context.Context, zip string) (*http.Request, error) {
	u := *c.pageURL
	params := u.Query()
	params.Set("query", zip)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("User-Agent", "attire-decider/1.0")
	return req, nil
}

func (c *PageClient) handleErrorResponse(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w", ErrLocationNotFound)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w", ErrRateLimited)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: HTTP %d", ErrUpstreamFailure, resp.StatusCode)
	}

	return nil
}

// correlationIDKey matches the context key set by the HTTP correlation middleware.
const correlationIDKey = "correlation_id"

func extractCorrelationID(ctx context.Context) string {
	if corrIDVal := ctx.Value(correlationIDKey); corrIDVal != nil {
		if corrID, ok := corrIDVal.(string); ok {
			return corrID
		}
	}
	return ""
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
