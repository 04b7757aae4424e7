package client

import (
	"bytes"
	"codedx-client/internal/application/common/logging"
	"codedx-client/internal/application/common/slogger"
	"codedx-client/internal/version"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
)

const (
	// contentTypeJSON is the Content-Type header value for JSON requests.
	contentTypeJSON = "application/json"

	// requestIDHeader carries a fresh UUID per request. Log entries of the request
	// use it as their correlation ID.
	requestIDHeader = "X-Request-Id"
)

// Client performs Code Dx API operations. Every operation returns an *APIError on failure.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	auth       Authenticator
	userAgent  string
	metrics    *clientMetrics
	sleep      func(time.Duration)
	logger     logging.ApplicationLogger
}

// Option customizes a Client.
type Option func(*options)

type options struct {
	meterProvider metric.MeterProvider
	sleep         func(time.Duration)
}

// WithMeterProvider records metrics on provider instead of the global one.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = provider }
}

// WithSleeper replaces time.Sleep between job status checks.
func WithSleeper(sleep func(time.Duration)) Option {
	return func(o *options) { o.sleep = sleep }
}

// NewClient creates a new API client with the given configuration.
// Returns an error if the configuration is invalid.
func NewClient(config Config, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: base URL: %w", err)
	}

	o := options{sleep: time.Sleep}
	for _, opt := range opts {
		opt(&o)
	}

	metrics, err := newClientMetrics(o.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create client metrics: %w", err)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: newHTTPClient(config),
		auth:       config.authenticator(),
		userAgent:  version.Get().UserAgent(),
		metrics:    metrics,
		sleep:      o.sleep,
		logger:     slogger.WithComponent("api-client"),
	}, nil
}

func newHTTPClient(config Config) *http.Client {
	httpClient := &http.Client{Timeout: config.Timeout}
	if config.Insecure {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // Opt-in via --insecure.
		httpClient.Transport = transport
	}
	return httpClient
}

// requestBody is an encoded request payload.
type requestBody struct {
	reader      io.Reader
	contentType string
}

func jsonBody(v interface{}) (*requestBody, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, NewTransportError(fmt.Errorf("failed to encode request: %w", err))
	}
	return &requestBody{reader: bytes.NewReader(data), contentType: contentTypeJSON}, nil
}

// endpoint appends each segment below the base URL path, percent-encoding it as a
// single path segment. ';' ',' and '=' are kept so that project contexts such as
// "42;branch=main" reach the server verbatim.
func (c *Client) endpoint(segments ...string) string {
	u := *c.baseURL
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = escapeSegment(s)
	}
	u.RawPath = strings.TrimSuffix(c.baseURL.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")
	u.Path, _ = url.PathUnescape(u.RawPath)
	return u.String()
}

var segmentRestorer = strings.NewReplacer("%3B", ";", "%2C", ",")

func escapeSegment(s string) string {
	return segmentRestorer.Replace(url.PathEscape(s))
}

// do sends a request and returns the response for the caller to run through the
// response chain. operation names the API call in logs and metrics.
func (c *Client) do(
	ctx context.Context,
	operation, method string,
	body *requestBody,
	segments ...string,
) response {
	fullURL := c.endpoint(segments...)

	var reader io.Reader
	if body != nil {
		reader = body.reader
	}
	requestID := uuid.New().String()
	ctx = logging.WithCorrelationID(ctx, requestID)

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return response{err: NewTransportError(err)}
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set(requestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", body.contentType)
	}
	c.auth.Apply(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	fields := logging.Fields{
		"method": method,
		"url":    fullURL,
	}

	if err != nil {
		apiErr := NewTransportError(err)
		if errors.Is(err, context.Canceled) {
			apiErr = NewTransportError(fmt.Errorf("request cancelled: %w", err))
		}
		c.metrics.recordRequest(ctx, operation, method, 0, duration, apiErr)
		fields["operation"] = operation
		fields["duration"] = duration.String()
		c.logger.ErrorWithError(ctx, err, "API request failed", fields)
		return response{err: apiErr}
	}

	fields["status"] = resp.StatusCode
	c.metrics.recordRequest(ctx, operation, method, resp.StatusCode, duration, nil)
	c.logger.LogPerformance(ctx, operation, duration, fields)

	return response{resp: resp}
}
