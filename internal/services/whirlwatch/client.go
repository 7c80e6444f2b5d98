// Package whirlwatch is the REST client of the WhirlWatch backend.
package whirlwatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/amaumene/whirlwatch/internal/config"
	"github.com/amaumene/whirlwatch/internal/metrics"
)

const apiPrefix = "/api"

// maxErrorBody bounds how much of an error response is read
const maxErrorBody = 64 << 10

// Options configures the transport
type Options struct {
	BaseURL              string
	Timeout              time.Duration
	RetryMaxElapsed      time.Duration
	RetryInitialInterval time.Duration
}

// OptionsFromConfig builds transport options from the loaded configuration
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		BaseURL:              cfg.APIURL,
		Timeout:              cfg.HTTPTimeout,
		RetryMaxElapsed:      cfg.RetryMaxElapsed,
		RetryInitialInterval: 250 * time.Millisecond,
	}
}

// Transport performs HTTP requests against the backend
type Transport struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
	tracer     trace.Tracer
	metrics    *metrics.Metrics

	retryMaxElapsed      time.Duration
	retryInitialInterval time.Duration
}

// NewTransport creates a new backend transport
func NewTransport(opts Options, logger *logrus.Logger, tracer trace.Tracer, m *metrics.Metrics) *Transport {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RetryInitialInterval <= 0 {
		opts.RetryInitialInterval = 250 * time.Millisecond
	}
	return &Transport{
		baseURL:              opts.BaseURL,
		httpClient:           &http.Client{Timeout: opts.Timeout},
		logger:               logger,
		tracer:               tracer,
		metrics:              m,
		retryMaxElapsed:      opts.RetryMaxElapsed,
		retryInitialInterval: opts.RetryInitialInterval,
	}
}

// request describes one backend call
type request struct {
	operation string
	method    string
	path      string
	token     string
	body      interface{}
	result    interface{}
}

// do performs a request. GETs are retried with exponential backoff on
// transport failures and gateway errors; other methods are sent once.
func (t *Transport) do(ctx context.Context, req request) error {
	ctx, span := t.tracer.Start(ctx, "whirlwatch."+req.operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.method),
			attribute.String("http.path", req.path),
		))
	defer span.End()

	start := time.Now()
	attempts := 0
	send := func() error {
		attempts++
		err := t.send(ctx, req)
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	var err error
	if req.method == http.MethodGet {
		err = backoff.RetryNotify(send, backoff.WithContext(t.newBackOff(), ctx), func(err error, next time.Duration) {
			t.logger.WithError(err).WithFields(logrus.Fields{
				"operation": req.operation,
				"retry_in":  next,
			}).Warn("Backend request failed, retrying")
		})
	} else {
		attempts = 1
		err = t.send(ctx, req)
	}
	if err != nil && ctx.Err() != nil && !errors.Is(err, ErrNetworkFailure) {
		err = fmt.Errorf("%w: %w", ErrNetworkFailure, err)
	}

	span.SetAttributes(attribute.Int("http.attempts", attempts))
	t.metrics.ObserveBackendCall(req.operation, Classify(err), time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, Classify(err))
		return err
	}
	return nil
}

func (t *Transport) newBackOff() backoff.BackOff {
	if t.retryMaxElapsed <= 0 {
		return &backoff.StopBackOff{}
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = t.retryInitialInterval
	b.MaxElapsedTime = t.retryMaxElapsed
	return b
}

// send performs a single HTTP round trip
func (t *Transport) send(ctx context.Context, req request) error {
	var reqBody io.Reader
	if req.body != nil {
		jsonData, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	fullURL := t.baseURL + apiPrefix + req.path
	t.logger.WithFields(logrus.Fields{
		"method": req.method,
		"url":    fullURL,
	}).Debug("Making WhirlWatch API request")

	httpReq, err := http.NewRequestWithContext(ctx, req.method, fullURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	httpReq.Header.Set("Accept", "application/json")
	if reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	// Perform request
	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	// Check status code
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return statusError(resp.StatusCode, bodyBytes)
	}

	// Parse response
	if req.result != nil {
		if err := json.NewDecoder(resp.Body).Decode(req.result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// SessionProvider supplies access tokens for authorized calls
type SessionProvider interface {
	AccessToken(ctx context.Context) (string, error)
	Invalidate()
}

// Client handles the authorized calls of the backend
type Client struct {
	transport *Transport
	session   SessionProvider
	logger    *logrus.Logger
}

// NewClient creates a new WhirlWatch API client
func NewClient(transport *Transport, session SessionProvider) *Client {
	return &Client{
		transport: transport,
		session:   session,
		logger:    transport.logger,
	}
}

// call performs an authorized request; a refused token invalidates the session
func (c *Client) call(ctx context.Context, req request) error {
	token, err := c.session.AccessToken(ctx)
	if err != nil {
		return err
	}
	req.token = token

	err = c.transport.do(ctx, req)
	if errors.Is(err, ErrUnauthorized) {
		c.logger.WithField("operation", req.operation).Info("Backend refused the session")
		c.session.Invalidate()
	}
	return err
}
