package yahoochart

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"marketdash/internal/httpx"
)

const (
	baseURL = "https://query1.finance.yahoo.com"

	// DefaultTimeout bounds a single chart request.
	DefaultTimeout = 8 * time.Second
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=yahoochart_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ChartAPIClient is a client for the Yahoo Finance v8 chart API.
type ChartAPIClient struct {
	// baseURL is the base URL for the API.
	baseURL string
	// httpClient is the HTTP client.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// timeout bounds each chart request.
	timeout time.Duration
	log     *zap.Logger
}

// ChartAPIClientOption is a configuration option for the chart API client.
type ChartAPIClientOption func(*ChartAPIClient)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) ChartAPIClientOption {
	return func(c *ChartAPIClient) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) ChartAPIClientOption {
	return func(c *ChartAPIClient) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) ChartAPIClientOption {
	return func(c *ChartAPIClient) {
		for key, values := range header {
			c.header.Del(key)
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) ChartAPIClientOption {
	return func(c *ChartAPIClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used when failures are swallowed.
func WithLogger(l *zap.Logger) ChartAPIClientOption {
	return func(c *ChartAPIClient) {
		if l != nil {
			c.log = l
		}
	}
}

// NewChartAPIClient creates a new chart API client.
func NewChartAPIClient(options ...ChartAPIClientOption) *ChartAPIClient {
	var client = &ChartAPIClient{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		timeout:    DefaultTimeout,
		log:        zap.NewNop(),
	}
	// Yahoo answers 429 to the Go default agent.
	client.header.Set("User-Agent", httpx.BrowserUserAgent)
	for _, option := range options {
		option(client)
	}
	return client
}
