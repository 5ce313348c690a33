package links

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const resolveUserAgent = "agentlink-service/1.0"

// wrapperHost is the agent domain that re-wraps resolved destinations
// behind a `url` query parameter. Redirects landing there are unwrapped
// one more level.
const wrapperHost = "kakobuy.com"

// extraResolvableHosts are aggregator hosts that redirect to product
// pages but are not generic shorteners, so they sit outside the
// short-link allow-list used for input validation.
var extraResolvableHosts = []string{"k.youshop10.com", "hipobuy.cn"}

// ResolverCache remembers resolved destinations so repeat submissions of
// the same short link skip the network round trips. A nil cache disables
// caching.
type ResolverCache interface {
	GetResolvedLink(ctx context.Context, shortURL string) (string, bool)
	SetResolvedLink(ctx context.Context, shortURL, destination string)
}

// Resolver discovers the final destination of short links. Resolution is
// best-effort: any failure degrades to returning the input unchanged.
type Resolver struct {
	client *http.Client
	cache  ResolverCache
	logger *zap.Logger
}

func NewResolver(client *http.Client, cache ResolverCache, logger *zap.Logger) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	return &Resolver{client: client, cache: cache, logger: logger}
}

// ShouldResolve reports whether the URL's host warrants a resolution
// attempt before any further processing.
func (r *Resolver) ShouldResolve(rawURL string) bool {
	if IsShortLink(rawURL) {
		return true
	}
	for _, h := range extraResolvableHosts {
		if strings.Contains(rawURL, h) {
			return true
		}
	}
	return false
}

// Resolve follows a short link to its destination URL. Two strategies are
// tried in order: automatic redirect-following, then a manual read of the
// Location header. Some intermediate hosts only expose their redirect one
// way. If neither strategy moves the URL off its input host, the input is
// returned unchanged.
func (r *Resolver) Resolve(ctx context.Context, inputURL string) string {
	inputObj, err := url.Parse(inputURL)
	if err != nil {
		return inputURL
	}
	inputHost := inputObj.Hostname()

	if r.cache != nil {
		if dest, ok := r.cache.GetResolvedLink(ctx, inputURL); ok {
			return dest
		}
	}

	final, resolved := r.resolveFollow(ctx, inputURL, inputHost)
	if !resolved {
		final, resolved = r.resolveManual(ctx, inputURL)
	}
	if !resolved {
		return inputURL
	}

	if r.cache != nil {
		r.cache.SetResolvedLink(ctx, inputURL, final)
	}
	return final
}

func (r *Resolver) resolveFollow(ctx context.Context, inputURL, inputHost string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, inputURL, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", resolveUserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("short link follow failed", zap.String("url", inputURL), zap.Error(err))
		return "", false
	}
	defer resp.Body.Close()

	if resp.Request == nil || resp.Request.URL == nil {
		return "", false
	}
	finalURL := unwrapAgentRedirect(resp.Request.URL.String())

	finalObj, err := url.Parse(finalURL)
	if err != nil {
		return "", false
	}
	// Same host means the server never issued a host-changing redirect
	// (likely a client-side redirect); fall through to the manual pass.
	if strings.Contains(finalObj.Hostname(), inputHost) {
		return "", false
	}
	return finalURL, true
}

func (r *Resolver) resolveManual(ctx context.Context, inputURL string) (string, bool) {
	client := &http.Client{
		Transport: r.client.Transport,
		Timeout:   r.client.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, inputURL, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", resolveUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		r.logger.Debug("short link manual resolve failed", zap.String("url", inputURL), zap.Error(err))
		return "", false
	}
	defer resp.Body.Close()

	location := resp.Header.Get("Location")
	if location == "" {
		return "", false
	}
	return unwrapAgentRedirect(location), true
}

// unwrapAgentRedirect handles double-wrapping: a redirect that lands on
// the agent's own domain carrying the real destination in its `url`
// query parameter.
func unwrapAgentRedirect(rawURL string) string {
	obj, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if !strings.Contains(obj.Hostname(), wrapperHost) {
		return rawURL
	}
	embedded := obj.Query().Get("url")
	if embedded == "" {
		return rawURL
	}
	if decoded, err := url.QueryUnescape(embedded); err == nil {
		return decoded
	}
	return embedded
}
