package links

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/user/agentlink-service/internal/domain"
)

// AgentKakoBuy is the only target agent with a registered deep-link
// scheme so far.
const AgentKakoBuy = "KakoBuy"

const agentDetailPrefix = "https://www.kakobuy.com/item/details?url="

var agentDetailRe = regexp.MustCompile(`https://(www\.)?kakobuy\.com/item/details\?url=([^&]+)`)

// canonicalURLFor builds the canonical product URL a given platform uses
// for a numeric id.
func canonicalURLFor(platform domain.Platform, id string) string {
	switch platform {
	case domain.PlatformWeidian:
		return weidianURL(id)
	case domain.PlatformTaobao:
		return taobaoURL(id)
	case domain.PlatformAlibaba:
		return alibabaURL(id)
	}
	return ""
}

// ConvertToAgent synthesizes the target agent's deep link for an original
// product URL, embedding the percent-encoded canonical URL and the
// affiliate code. Returns "" when no product id can be classified or the
// agent has no registered scheme: cannot-synthesize is a signal, not an
// error.
func ConvertToAgent(originalLink, agentCode, affCode string) string {
	if agentCode != AgentKakoBuy {
		return ""
	}
	platform := DetectPlatform(originalLink)
	id := ExtractID(originalLink)
	if id == "" {
		return ""
	}
	canonical := canonicalURLFor(platform, id)
	if canonical == "" {
		return ""
	}
	return agentDetailPrefix + url.QueryEscape(canonical) + "&affcode=" + affCode
}

// ExtractOriginalURL recovers the canonical product URL embedded in an
// agent deep link, or "" if the link does not match the agent's detail
// pattern. Inverse of ConvertToAgent.
func ExtractOriginalURL(agentLink string) string {
	m := agentDetailRe.FindStringSubmatch(agentLink)
	if m == nil {
		return ""
	}
	if decoded, err := url.QueryUnescape(m[2]); err == nil {
		return decoded
	}
	return m[2]
}

// ProcessAnyLink validates an input URL and produces the storefront's
// outbound affiliate link for it. Inputs that are already agent links are
// unwrapped and re-synthesized so stale or foreign affiliate codes are
// always overwritten with the target code.
func ProcessAnyLink(inputLink, agentCode, affCode string) domain.ProcessedLink {
	if inputLink == "" || !IsValidProductURL(inputLink) {
		return domain.ProcessedLink{}
	}

	if strings.Contains(inputLink, "kakobuy.com/item/details") {
		if originalURL := ExtractOriginalURL(inputLink); originalURL != "" {
			return domain.ProcessedLink{
				OriginalURL: originalURL,
				AgentLink:   ConvertToAgent(originalURL, agentCode, affCode),
			}
		}
	}

	return domain.ProcessedLink{
		OriginalURL: inputLink,
		AgentLink:   ConvertToAgent(inputLink, agentCode, affCode),
	}
}

// ProcessAnyLinkContext is the resolving variant of ProcessAnyLink: input
// on a short-link host is resolved to its destination first, then handed
// to the synchronous path.
func ProcessAnyLinkContext(ctx context.Context, resolver *Resolver, inputLink, agentCode, affCode string) domain.ProcessedLink {
	if IsShortLink(inputLink) {
		return ProcessAnyLink(resolver.Resolve(ctx, inputLink), agentCode, affCode)
	}
	return ProcessAnyLink(inputLink, agentCode, affCode)
}
