package links

import (
	"regexp"
	"strings"

	"github.com/user/agentlink-service/internal/domain"
)

// idPatterns are tried in order against the full URL string. Specific
// dash-delimited forms (item-micro-, item-1688-) come before the generic
// item-<id> form so they are never shadowed by it.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[?&]id=(\d+)`),
	regexp.MustCompile(`itemID=(\d+)`),
	regexp.MustCompile(`offer/(\d+)\.html`),
	regexp.MustCompile(`item-micro-(\d+)`),
	regexp.MustCompile(`item-1688-(\d+)`),
	regexp.MustCompile(`item-(\d+)`),
	regexp.MustCompile(`/product/\w+/(\d+)`),
	regexp.MustCompile(`/agent/\w+/(\d+)\.html`),
}

// ExtractID returns the numeric product id embedded in a URL, or "" if no
// known pattern matches. Pure string matching, no network access.
func ExtractID(url string) string {
	for _, p := range idPatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}

// DetectPlatform determines the source marketplace of a URL. Direct
// marketplace hostnames win; otherwise aggregator-specific query and path
// conventions are checked. Returns PlatformUnknown if nothing matches.
func DetectPlatform(url string) domain.Platform {
	if strings.Contains(url, "weidian.com") {
		return domain.PlatformWeidian
	}
	if strings.Contains(url, "taobao.com") || strings.Contains(url, "tmall.com") {
		return domain.PlatformTaobao
	}
	if strings.Contains(url, "1688.com") {
		return domain.PlatformAlibaba
	}

	switch {
	case strings.Contains(url, "shop_type=weidian"),
		strings.Contains(url, "platform=WEIDIAN"),
		strings.Contains(url, "source=WD"),
		strings.Contains(url, "/product/weidian/"),
		strings.Contains(url, "item-micro-"):
		return domain.PlatformWeidian
	case strings.Contains(url, "shop_type=taobao"),
		strings.Contains(url, "platform=TAOBAO"),
		strings.Contains(url, "source=TB"),
		strings.Contains(url, "/product/1/"),
		strings.Contains(url, "/product/taobao/"):
		return domain.PlatformTaobao
	case strings.Contains(url, "shop_type=ali_1688"),
		strings.Contains(url, "platform=ALI_1688"),
		strings.Contains(url, "source=AL"),
		strings.Contains(url, "/product/0/"),
		strings.Contains(url, "item-1688-"):
		return domain.PlatformAlibaba
	}

	return domain.PlatformUnknown
}

// shortLinkPatterns is the allow-list of shortener and aggregator
// short-link hosts. A URL on one of these hosts is considered a valid
// product URL pending resolution.
var shortLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`ikako\.vip`),
	regexp.MustCompile(`kakobuy\.com`),
	regexp.MustCompile(`allapp\.link`),
	regexp.MustCompile(`oopbuy\.cc`),
	regexp.MustCompile(`s\.spblk\.com`),
	regexp.MustCompile(`e\.tb\.cn`),
	regexp.MustCompile(`s\.click\.taobao\.com`),
	regexp.MustCompile(`m\.tb\.cn`),
	regexp.MustCompile(`link\.acbuy\.com`),
	regexp.MustCompile(`t\.cn`),
	regexp.MustCompile(`bit\.ly`),
	regexp.MustCompile(`tinyurl\.com`),
}

// IsShortLink reports whether the URL matches the short-link allow-list.
func IsShortLink(url string) bool {
	for _, p := range shortLinkPatterns {
		if p.MatchString(url) {
			return true
		}
	}
	return false
}

// IsValidProductURL reports whether a URL is usable as pipeline input:
// either a known short link (valid pending resolution) or a URL carrying
// an extractable product id.
func IsValidProductURL(url string) bool {
	if url == "" {
		return false
	}
	if IsShortLink(url) {
		return true
	}
	return ExtractID(url) != ""
}
