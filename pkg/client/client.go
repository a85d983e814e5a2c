// Package client provides the Wise API client: authenticated GET requests,
// transparent Strong Customer Authentication (SCA) replay, the endpoint
// catalogue and cursor pagination over profile activities.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Sternrassler/wise-api-client/pkg/signing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for Wise client operations.
var (
	wiseRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wise_requests_total",
		Help: "Total Wise HTTP round-trips by endpoint and status",
	}, []string{"endpoint", "status"})

	wiseRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wise_request_duration_seconds",
		Help:    "Wise logical request duration in seconds by endpoint, SCA replay included",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	wiseErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wise_errors_total",
		Help: "Total Wise request errors by class",
	}, []string{"class"})

	wiseSCAChallengesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wise_sca_challenges_total",
		Help: "Total SCA challenges by replay outcome",
	}, []string{"outcome"})
)

// SCA replay outcomes used as metric labels.
const (
	scaOutcomeApproved  = "approved"
	scaOutcomeRejected  = "rejected"
	scaOutcomeFailed    = "failed"
	scaOutcomeSignError = "sign_error"
)

// Header names of the SCA flow. Lookups are case-insensitive.
const (
	HeaderApprovalResult = "X-2fa-Approval-Result"
	HeaderApproval       = "X-2fa-Approval"
	HeaderSignature      = "X-Signature"

	approvalRejected = "REJECTED"
)

// Request identifies one API call.
type Request struct {
	// Name labels the endpoint in logs and metrics (paths carry IDs).
	Name  string
	Path  string
	Query url.Values
}

// Response is a successful API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client is the Wise API client. The zero value is not usable; use New.
//
// A Client is not safe for concurrent use. Sharing one across goroutines
// is at the caller's risk and relies on the injected HTTPDoer.
type Client struct {
	httpClient HTTPDoer
	signer     signing.Signer
	config     Config
	logger     zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport used for every request.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithSigner replaces the signer built from Config.SigningKey.
func WithSigner(signer signing.Signer) Option {
	return func(c *Client) {
		c.signer = signer
	}
}

// WithLogger replaces the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a new Wise client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.SigningKey = append([]byte(nil), cfg.SigningKey...)

	c := &Client{
		httpClient: defaultHTTPClient(),
		config:     cfg,
		logger:     log.With().Str("component", "wise-client").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.signer == nil && len(cfg.SigningKey) > 0 {
		signer, err := signing.NewRSASignerFromPEM(cfg.SigningKey)
		if err != nil {
			return nil, fmt.Errorf("signing key: %w", err)
		}
		c.signer = signer
	}

	return c, nil
}

// Config returns the configuration the client was created with.
func (c *Client) Config() Config {
	return c.config
}

// Do performs one logical GET, absorbing at most one SCA challenge.
//
// A response is an SCA challenge iff it is a 403 carrying
// X-2fa-Approval-Result: REJECTED. The token from X-2fa-Approval is signed
// and the identical request is sent again with X-2fa-Approval and
// X-Signature. A 400 on that replay yields *InvalidPublicKeyError; any other
// non-2xx response, including a second challenge, yields *HTTPError.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	endpoint := r.Name
	if endpoint == "" {
		endpoint = "custom"
	}

	startTime := time.Now()
	defer func() {
		wiseRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	target := c.config.BaseURL() + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	header := make(http.Header)
	header.Set("Authorization", "Bearer "+c.config.APIKey)

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("path", r.Path).
		Msg("Executing Wise request")

	resp, err := c.send(ctx, endpoint, target, header)
	if err != nil {
		return nil, err
	}

	if isSCAChallenge(resp) {
		token := resp.Header.Get(HeaderApproval)
		c.logger.Debug().Str("endpoint", endpoint).Msg("SCA challenge received")

		signature, err := c.sign(token)
		if err != nil {
			wiseSCAChallengesTotal.WithLabelValues(scaOutcomeSignError).Inc()
			wiseErrorsTotal.WithLabelValues(string(ErrorClassSCA)).Inc()
			return nil, &SigningError{Err: err}
		}

		header.Set(HeaderApproval, token)
		header.Set(HeaderSignature, signature)

		resp, err = c.send(ctx, endpoint, target, header)
		if err != nil {
			wiseSCAChallengesTotal.WithLabelValues(scaOutcomeFailed).Inc()
			return nil, err
		}

		if resp.StatusCode == http.StatusBadRequest {
			wiseSCAChallengesTotal.WithLabelValues(scaOutcomeRejected).Inc()
			wiseErrorsTotal.WithLabelValues(string(ErrorClassSCA)).Inc()
			c.logger.Debug().Str("endpoint", endpoint).Msg("SCA replay rejected")
			return nil, &InvalidPublicKeyError{Path: r.Path, Body: resp.Body}
		}

		if isSuccess(resp.StatusCode) {
			wiseSCAChallengesTotal.WithLabelValues(scaOutcomeApproved).Inc()
		} else {
			wiseSCAChallengesTotal.WithLabelValues(scaOutcomeFailed).Inc()
		}
	}

	if !isSuccess(resp.StatusCode) {
		errClass := classifyStatus(resp.StatusCode)
		wiseErrorsTotal.WithLabelValues(string(errClass)).Inc()

		c.logger.Debug().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Wise request error")

		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Method:     http.MethodGet,
			Path:       r.Path,
			Body:       resp.Body,
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
	}, nil
}

// Get performs r and returns the JSON body.
func (c *Client) Get(ctx context.Context, r Request) (json.RawMessage, error) {
	resp, err := c.Do(ctx, r)
	if err != nil {
		return nil, err
	}
	if !json.Valid(resp.Body) {
		return nil, fmt.Errorf("decode %s response: body is not valid JSON", r.Path)
	}
	return json.RawMessage(resp.Body), nil
}

// GetJSON performs r and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, r Request, v any) error {
	resp, err := c.Do(ctx, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("decode %s response: %w", r.Path, err)
	}
	return nil
}

// GetRaw performs r and returns the body untouched. Used for statement
// formats that are not JSON.
func (c *Client) GetRaw(ctx context.Context, r Request) ([]byte, error) {
	resp, err := c.Do(ctx, r)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Close releases idle connections held by the default transport.
func (c *Client) Close() error {
	if hc, ok := c.httpClient.(*http.Client); ok {
		hc.CloseIdleConnections()
	}
	return nil
}

type rawResponse struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// send performs a single round-trip and reads the whole body.
func (c *Client) send(ctx context.Context, endpoint, target string, header http.Header) (*rawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header = header.Clone()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		wiseErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		wiseRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, fmt.Errorf("wise request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		wiseErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}

	wiseRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	return &rawResponse{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func (c *Client) sign(token string) (string, error) {
	if c.signer == nil {
		return "", signing.ErrNoKey
	}
	return c.signer.Sign(token)
}

// isSCAChallenge is the sole trigger of the SCA replay.
func isSCAChallenge(resp *rawResponse) bool {
	return resp.StatusCode == http.StatusForbidden &&
		resp.Header.Get(HeaderApprovalResult) == approvalRejected
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
