// Package backend provides the HTTP client for the funding API: deposit
// channel provisioning, currency conversion, and purchase submission.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fairfund/fairfund/internal/funding"
	"github.com/fairfund/fairfund/internal/metrics"
	funderr "github.com/fairfund/fairfund/pkg/errors"
)

// defaultTimeout is the default HTTP request timeout.
const defaultTimeout = 30 * time.Second

// API paths.
const (
	channelPath  = "/cryptopay/channel"
	convertPath  = "/currency/convert"
	purchasePath = "/purchase/crypto"
)

// ClientOptions contains optional configuration for the backend client.
type ClientOptions struct {
	// BaseURL overrides the default funding API URL.
	BaseURL string

	// APIKey is the optional bearer token for authenticated calls.
	APIKey string

	// Timeout overrides the default per-request timeout.
	Timeout time.Duration

	// RatePerSecond and Burst tune the per-endpoint rate limiter.
	// Zero values use the defaults (5 req/s, burst 10).
	RatePerSecond float64
	Burst         int

	// Retry overrides the default retry configuration.
	Retry *RetryConfig

	// Logger receives request diagnostics. Nil disables logging.
	Logger *zap.Logger
}

// Client calls the funding API over HTTP. It satisfies the funding package's
// ChannelProvisioner, ConversionService, and PurchaseSubmitter interfaces.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *RateLimiter
	retryCfg   RetryConfig
	logger     *zap.Logger
}

// NewClient creates a funding API client.
func NewClient(opts *ClientOptions) *Client {
	c := &Client{
		baseURL:  "https://api.fairfund.io",
		limiter:  DefaultRateLimiter(),
		retryCfg: DefaultRetryConfig(),
		logger:   zap.NewNop(),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	if opts != nil {
		c.applyOptions(opts)
	}

	return c
}

func (c *Client) applyOptions(opts *ClientOptions) {
	if opts.BaseURL != "" {
		c.baseURL = opts.BaseURL
	}
	if opts.APIKey != "" {
		c.apiKey = opts.APIKey
	}
	if opts.Timeout > 0 {
		c.httpClient.Timeout = opts.Timeout
	}
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = NewRateLimiter(opts.RatePerSecond, burst)
	}
	if opts.Retry != nil {
		c.retryCfg = *opts.Retry
	}
	if opts.Logger != nil {
		c.logger = opts.Logger
	}
}

// channelRequest is the deposit channel provisioning request body.
type channelRequest struct {
	Currency string `json:"currency"`
}

// channelResponse is the deposit channel provisioning response body.
type channelResponse struct {
	Address string `json:"address"`
	URI     string `json:"uri"`
}

// FetchDepositChannel provisions a deposit channel for the currency code.
func (c *Client) FetchDepositChannel(ctx context.Context, currencyCode string) (funding.Channel, error) {
	var out channelResponse

	_, err := RetryWithConfig(ctx, c.retryCfg, func() (struct{}, error) {
		return struct{}{}, c.post(ctx, channelPath, channelRequest{Currency: currencyCode}, &out)
	})
	if err != nil {
		return funding.Channel{}, fmt.Errorf("fetching deposit channel for %s: %w", currencyCode, err)
	}

	return funding.Channel{Address: out.Address, PaymentURI: out.URI}, nil
}

// convertRequest is the conversion request body.
type convertRequest struct {
	ConvertFrom string  `json:"convertFrom"`
	ConvertTo   string  `json:"convertTo"`
	Amount      float64 `json:"amount"`
}

// convertResponse is the conversion response body. ConvertedAmount is a
// pointer so an absent field is distinguishable from an explicit zero.
type convertResponse struct {
	ConvertedAmount *float64 `json:"convertedAmount"`
}

// Convert estimates how many destination tokens an amount of source currency
// buys. A nil result means the service returned no amount.
func (c *Client) Convert(ctx context.Context, from, to string, amount float64) (*float64, error) {
	var out convertResponse

	_, err := RetryWithConfig(ctx, c.retryCfg, func() (struct{}, error) {
		return struct{}{}, c.post(ctx, convertPath, convertRequest{
			ConvertFrom: from,
			ConvertTo:   to,
			Amount:      amount,
		}, &out)
	})
	if err != nil {
		return nil, fmt.Errorf("converting %s to %s: %w", from, to, err)
	}

	return out.ConvertedAmount, nil
}

// purchaseRequest is the purchase submission request body.
type purchaseRequest struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
	Estimate string  `json:"estimate"`
}

// SubmitPurchase submits a confirmed purchase. The intent ID is sent as an
// idempotency key so retried submissions are not double-counted.
func (c *Client) SubmitPurchase(ctx context.Context, intent funding.PurchaseIntent) error {
	body := purchaseRequest{
		Currency: intent.Currency,
		Amount:   intent.Amount,
		Estimate: intent.Estimate,
	}

	_, err := RetryWithConfig(ctx, c.retryCfg, func() (struct{}, error) {
		return struct{}{}, c.postWithHeaders(ctx, purchasePath, body, nil, map[string]string{
			"Idempotency-Key": intent.ID.String(),
		})
	})
	if err != nil {
		return fmt.Errorf("submitting purchase %s: %w", intent.ID, err)
	}

	return nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	return c.postWithHeaders(ctx, path, in, out, nil)
}

func (c *Client) postWithHeaders(ctx context.Context, path string, in, out any, headers map[string]string) error {
	if err := c.limiter.Wait(ctx, path); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.Global.RecordBackendCall(time.Since(start), err)
	if err != nil {
		return funderr.WrapRetryable(fmt.Errorf("%w: %w", funderr.ErrBackendUnavailable, err))
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		delay := ParseRetryAfter(resp.Header.Get("Retry-After"))
		c.logger.Debug("backend rate limited",
			zap.String("path", path), zap.Duration("retry_after", delay))
		return fmt.Errorf("%w: retry after %s", funderr.ErrRateLimited, delay)

	case resp.StatusCode >= http.StatusInternalServerError:
		return funderr.WrapRetryable(
			fmt.Errorf("%w: status %d", funderr.ErrBackendUnavailable, resp.StatusCode))

	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: status %d", funderr.ErrBackendUnavailable, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
