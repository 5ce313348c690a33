package qc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const clientUserAgent = "agentlink-service/1.0"

// providerResult is the raw outcome of one successful provider exchange.
type providerResult struct {
	Body       []byte
	StatusCode int
	StatusText string
}

// Client talks to the QC image provider, preferring the proxy endpoint
// (whitelisted egress IP) and falling back to the direct API within the
// same attempt. The retry loop is intentionally unbounded: token problems
// clear on the provider side, so the loop runs until they do or the
// caller cancels the context.
type Client struct {
	httpClient *http.Client
	proxyURL   string
	apiURL     string
	token      string
	logger     *zap.Logger
}

func NewClient(httpClient *http.Client, proxyURL, apiURL, token string, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		proxyURL:   proxyURL,
		apiURL:     apiURL,
		token:      token,
		logger:     logger,
	}
}

// FetchImages runs the bounded-per-attempt, unbounded-overall call loop.
// It returns the provider's response only when the exchange itself
// succeeded (HTTP OK); "no images found" terminates immediately as a
// definitive absence. Everything else backs off attempt*1s and retries.
// Callers must impose cancellation via ctx.
func (c *Client) FetchImages(ctx context.Context, goodsURL string) (*providerResult, *Error) {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, errInternal(err.Error())
		}

		res, err := c.attempt(ctx, goodsURL)
		if err != nil {
			c.logger.Warn("qc provider attempt failed",
				zap.Int("attempt", attempt), zap.Error(err))
			if qcErr := c.backoff(ctx, attempt); qcErr != nil {
				return nil, qcErr
			}
			continue
		}

		if res.StatusCode >= 200 && res.StatusCode < 300 {
			return res, nil
		}

		body := string(res.Body)
		if strings.Contains(body, "Invalid token") || strings.Contains(body, "token") {
			c.logger.Warn("qc provider reported token problem, retrying",
				zap.Int("attempt", attempt), zap.Int("status", res.StatusCode))
			if qcErr := c.backoff(ctx, attempt); qcErr != nil {
				return nil, qcErr
			}
			continue
		}

		// Images genuinely absent is not a transient condition.
		if strings.Contains(body, "No QC images found") {
			return nil, errNoImagesFound()
		}

		c.logger.Warn("qc provider returned non-success status, retrying",
			zap.Int("attempt", attempt), zap.Int("status", res.StatusCode))
		if qcErr := c.backoff(ctx, attempt); qcErr != nil {
			return nil, qcErr
		}
	}
}

// attempt performs one proxy-then-direct exchange.
func (c *Client) attempt(ctx context.Context, goodsURL string) (*providerResult, error) {
	if c.proxyURL != "" {
		res, err := c.callProxy(ctx, goodsURL)
		if err == nil && res.StatusCode >= 200 && res.StatusCode < 300 {
			return res, nil
		}
		if err != nil {
			c.logger.Debug("qc proxy call failed, falling back to direct API", zap.Error(err))
		}
	}
	return c.callDirect(ctx, goodsURL)
}

func (c *Client) callProxy(ctx context.Context, goodsURL string) (*providerResult, error) {
	endpoint := fmt.Sprintf("%s/api/qc?goodsUrl=%s", c.proxyURL, url.QueryEscape(goodsURL))
	return c.do(ctx, endpoint)
}

func (c *Client) callDirect(ctx context.Context, goodsURL string) (*providerResult, error) {
	endpoint, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid qc api url: %w", err)
	}
	q := endpoint.Query()
	q.Set("token", c.token)
	q.Set("goodsUrl", goodsURL)
	endpoint.RawQuery = q.Encode()
	return c.do(ctx, endpoint.String())
}

func (c *Client) do(ctx context.Context, endpoint string) (*providerResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", clientUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &providerResult{Body: body, StatusCode: resp.StatusCode, StatusText: resp.Status}, nil
}

// backoff waits attempt*1s (linear) or until the caller cancels.
func (c *Client) backoff(ctx context.Context, attempt int) *Error {
	select {
	case <-time.After(time.Duration(attempt) * time.Second):
		return nil
	case <-ctx.Done():
		return errInternal(ctx.Err().Error())
	}
}
