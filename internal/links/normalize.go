package links

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Canonical URL templates for the three supported marketplaces.
func weidianURL(id string) string { return "https://weidian.com/item.html?itemID=" + id }
func taobaoURL(id string) string  { return "https://item.taobao.com/item.htm?id=" + id }
func alibabaURL(id string) string { return "https://detail.1688.com/offer/" + id + ".html" }

// marketplaceHosts are the product hosts a canonical URL may point at.
var marketplaceHosts = []string{
	"taobao.com",
	"tmall.com",
	"weidian.com",
	"1688.com",
	"jd.com",
	"suning.com",
	"kaola.com",
	"vip.com",
	"dangdang.com",
}

// IsMarketplaceHost reports whether a hostname belongs to a supported
// marketplace.
func IsMarketplaceHost(host string) bool {
	for _, h := range marketplaceHosts {
		if strings.Contains(host, h) {
			return true
		}
	}
	return false
}

// aggregatorRule rewrites one aggregator's URL dialect into a canonical
// product URL. rewrite returns "" when the host matched but no id could
// be extracted; by contract the normalizer then gives up for this
// aggregator rather than falling through to another rule.
type aggregatorRule struct {
	host    string
	rewrite func(u *url.URL) string
}

// aggregatorRules is tried in priority order; the first host match wins.
// The same id+platform pair is encoded in at least four structurally
// different schemes across aggregators, so each gets its own rule.
var aggregatorRules = []aggregatorRule{
	{host: "cnfans.com", rewrite: rewriteCnfans},
	{host: "hipobuy.com", rewrite: rewriteNumericPath},
	{host: "acbuy.com", rewrite: rewriteAcbuy},
	{host: "cssbuy.com", rewrite: rewriteCssbuy},
	{host: "oopbuy.com", rewrite: rewriteNumericPath},
	{host: "orientdig.com", rewrite: rewriteOrientdig},
	{host: "mulebuy.com", rewrite: rewriteMulebuy},
	{host: "allchinabuy.com", rewrite: rewriteAllchinabuy},
}

// cnfans: ?id=<id>&platform=WEIDIAN|TAOBAO|ALI_1688 (also shop_type /
// shoptype spellings and WD/TB/AL short tokens).
func rewriteCnfans(u *url.URL) string {
	id := u.Query().Get("id")
	if id == "" {
		return ""
	}
	platform := u.Query().Get("platform")
	if platform == "" {
		platform = u.Query().Get("shop_type")
	}
	if platform == "" {
		platform = u.Query().Get("shoptype")
	}
	platform = strings.ToUpper(platform)
	switch {
	case strings.Contains(platform, "WEIDIAN") || platform == "WD":
		return weidianURL(id)
	case strings.Contains(platform, "TAOBAO") || platform == "TB":
		return taobaoURL(id)
	case strings.Contains(platform, "ALI_1688") || strings.Contains(platform, "1688") || platform == "AL":
		return alibabaURL(id)
	}
	return ""
}

// hipobuy/oopbuy: numeric or named path segments
// /product/weidian/<id>, /product/1/<id> (taobao), /product/0/<id> (1688).
var (
	pathWeidianRe = regexp.MustCompile(`/product/weidian/(\d+)`)
	pathTaobaoRe  = regexp.MustCompile(`/product/1/(\d+)`)
	path1688Re    = regexp.MustCompile(`/product/0/(\d+)`)
)

func rewriteNumericPath(u *url.URL) string {
	path := u.Path
	if m := pathWeidianRe.FindStringSubmatch(path); m != nil {
		return weidianURL(m[1])
	}
	if m := pathTaobaoRe.FindStringSubmatch(path); m != nil {
		return taobaoURL(m[1])
	}
	if m := path1688Re.FindStringSubmatch(path); m != nil {
		return alibabaURL(m[1])
	}
	return ""
}

// acbuy: ?id=<id>&source=WD|TB|AL.
func rewriteAcbuy(u *url.URL) string {
	id := u.Query().Get("id")
	if id == "" {
		return ""
	}
	switch strings.ToUpper(u.Query().Get("source")) {
	case "WD":
		return weidianURL(id)
	case "TB":
		return taobaoURL(id)
	case "AL":
		return alibabaURL(id)
	}
	return ""
}

// cssbuy: dash-delimited path ids. item-micro- and item-1688- are checked
// before the generic item- form.
var (
	cssMicroRe   = regexp.MustCompile(`item-micro-(\d+)`)
	css1688Re    = regexp.MustCompile(`item-1688-(\d+)`)
	cssGenericRe = regexp.MustCompile(`item-(\d+)`)
)

func rewriteCssbuy(u *url.URL) string {
	path := u.Path
	if m := cssMicroRe.FindStringSubmatch(path); m != nil {
		return weidianURL(m[1])
	}
	if m := css1688Re.FindStringSubmatch(path); m != nil {
		return alibabaURL(m[1])
	}
	if m := cssGenericRe.FindStringSubmatch(path); m != nil {
		return taobaoURL(m[1])
	}
	return ""
}

// orientdig: ?id=<id>&shop_type=weidian|taobao|ali_1688.
func rewriteOrientdig(u *url.URL) string {
	id := u.Query().Get("id")
	if id == "" {
		return ""
	}
	switch strings.ToLower(u.Query().Get("shop_type")) {
	case "weidian":
		return weidianURL(id)
	case "taobao":
		return taobaoURL(id)
	case "ali_1688":
		return alibabaURL(id)
	}
	return ""
}

// mulebuy: ?id=<id>&platform=WEIDIAN|TAOBAO|ALI_1688.
func rewriteMulebuy(u *url.URL) string {
	id := u.Query().Get("id")
	if id == "" {
		return ""
	}
	platform := strings.ToUpper(u.Query().Get("platform"))
	switch {
	case strings.Contains(platform, "WEIDIAN"):
		return weidianURL(id)
	case strings.Contains(platform, "TAOBAO"):
		return taobaoURL(id)
	case strings.Contains(platform, "ALI_1688") || strings.Contains(platform, "1688"):
		return alibabaURL(id)
	}
	return ""
}

// allchinabuy: wraps the whole original URL percent-encoded in ?url=.
func rewriteAllchinabuy(u *url.URL) string {
	embedded := u.Query().Get("url")
	if embedded == "" {
		return ""
	}
	if decoded, err := url.QueryUnescape(embedded); err == nil {
		return decoded
	}
	return embedded
}

var embeddedURLRe = regexp.MustCompile(`https?://[^\s<>"]+`)

// Normalizer rewrites arbitrary operator-supplied URLs into canonical
// marketplace product URLs. All failures degrade to returning the
// most-processed URL reached; an imperfect canonical URL is validated
// again downstream before use.
type Normalizer struct {
	resolver *Resolver
	logger   *zap.Logger
}

func NewNormalizer(resolver *Resolver, logger *zap.Logger) *Normalizer {
	return &Normalizer{resolver: resolver, logger: logger}
}

// Normalize runs the full rewrite chain: unwrap the agent's own wrapper
// form, resolve short links, apply the first matching aggregator rule,
// and fall back to generic embedded-URL extraction.
func (n *Normalizer) Normalize(ctx context.Context, rawURL string) string {
	urlToUse := strings.TrimSpace(rawURL)

	// Unwrap "link to our own detail page" forms before resolution.
	urlToUse = unwrapAgentRedirect(urlToUse)

	if n.resolver.ShouldResolve(urlToUse) {
		urlToUse = n.resolver.Resolve(ctx, urlToUse)
	}

	if obj, err := url.Parse(urlToUse); err == nil {
		host := obj.Hostname()
		for _, rule := range aggregatorRules {
			if !strings.Contains(host, rule.host) {
				continue
			}
			if canonical := rule.rewrite(obj); canonical != "" {
				return canonical
			}
			// Host matched but nothing extracted: give up for this
			// aggregator, never fall through to another rule.
			return urlToUse
		}
	}

	if found := extractEmbeddedProductURL(urlToUse); found != "" {
		return found
	}

	return urlToUse
}

// extractEmbeddedProductURL tolerates aggregators not yet cataloged: it
// scans every query-parameter value (with up to two levels of percent
// decoding) for an embedded marketplace URL, then regex-scans the whole
// string as a last resort.
func extractEmbeddedProductURL(rawURL string) string {
	if obj, err := url.Parse(rawURL); err == nil {
		for _, values := range obj.Query() {
			for _, rawVal := range values {
				once := tryUnescape(rawVal)
				twice := tryUnescape(once)
				for _, cand := range []string{rawVal, once, twice} {
					if inner, err := url.Parse(cand); err == nil && inner.Scheme != "" && IsMarketplaceHost(inner.Hostname()) {
						return inner.String()
					}
				}
			}
		}
	}

	for _, m := range embeddedURLRe.FindAllString(rawURL, -1) {
		if inner, err := url.Parse(m); err == nil && IsMarketplaceHost(inner.Hostname()) {
			return inner.String()
		}
	}
	return ""
}

func tryUnescape(v string) string {
	if decoded, err := url.QueryUnescape(v); err == nil {
		return decoded
	}
	return v
}
