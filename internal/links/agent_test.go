package links

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/agentlink-service/internal/domain"
)

func TestConvertToAgentRoundTrip(t *testing.T) {
	// extractOriginalUrl(convertToAgent(canonical)) must recover the
	// canonical URL for every supported platform.
	platforms := []domain.Platform{
		domain.PlatformWeidian,
		domain.PlatformTaobao,
		domain.PlatformAlibaba,
	}

	for _, platform := range platforms {
		t.Run(string(platform), func(t *testing.T) {
			canonical := canonicalURLFor(platform, "123456")
			require.NotEmpty(t, canonical)

			agentLink := ConvertToAgent(canonical, AgentKakoBuy, "latam")
			require.NotEmpty(t, agentLink)
			assert.Contains(t, agentLink, "affcode=latam")

			assert.Equal(t, canonical, ExtractOriginalURL(agentLink))
		})
	}
}

func TestConvertToAgentTemplates(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"weidian",
			"https://weidian.com/item.html?itemID=42",
			"https://www.kakobuy.com/item/details?url=https%3A%2F%2Fweidian.com%2Fitem.html%3FitemID%3D42&affcode=latam",
		},
		{
			"taobao",
			"https://item.taobao.com/item.htm?id=42",
			"https://www.kakobuy.com/item/details?url=https%3A%2F%2Fitem.taobao.com%2Fitem.htm%3Fid%3D42&affcode=latam",
		},
		{
			"1688",
			"https://detail.1688.com/offer/42.html",
			"https://www.kakobuy.com/item/details?url=https%3A%2F%2Fdetail.1688.com%2Foffer%2F42.html&affcode=latam",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConvertToAgent(tt.in, AgentKakoBuy, "latam"))
		})
	}
}

func TestConvertToAgentCannotSynthesize(t *testing.T) {
	assert.Empty(t, ConvertToAgent("https://example.com/no-id", AgentKakoBuy, "latam"))
	assert.Empty(t, ConvertToAgent("https://weidian.com/item.html?itemID=42", "UnknownAgent", "latam"))
}

func TestExtractOriginalURLNoWWW(t *testing.T) {
	link := "https://kakobuy.com/item/details?url=https%3A%2F%2Fweidian.com%2Fitem.html%3FitemID%3D8&affcode=x"
	assert.Equal(t, "https://weidian.com/item.html?itemID=8", ExtractOriginalURL(link))
	assert.Empty(t, ExtractOriginalURL("https://other.com/item/details?url=x"))
	assert.Empty(t, ExtractOriginalURL(""))
}

func TestProcessAnyLinkOverwritesStaleAffCode(t *testing.T) {
	stale := ConvertToAgent("https://weidian.com/item.html?itemID=42", AgentKakoBuy, "oldcode")
	require.Contains(t, stale, "affcode=oldcode")

	result := ProcessAnyLink(stale, AgentKakoBuy, "newcode")
	assert.Equal(t, "https://weidian.com/item.html?itemID=42", result.OriginalURL)
	assert.Contains(t, result.AgentLink, "affcode=newcode")
	assert.NotContains(t, result.AgentLink, "oldcode")
	assert.Equal(t, "https://weidian.com/item.html?itemID=42", ExtractOriginalURL(result.AgentLink))
}

func TestProcessAnyLinkInvalidInput(t *testing.T) {
	assert.Equal(t, domain.ProcessedLink{}, ProcessAnyLink("", AgentKakoBuy, "latam"))
	assert.Equal(t, domain.ProcessedLink{}, ProcessAnyLink("https://example.com/garbage", AgentKakoBuy, "latam"))
}

func TestProcessAnyLinkDirectProductURL(t *testing.T) {
	result := ProcessAnyLink("https://item.taobao.com/item.htm?id=99", AgentKakoBuy, "latam")
	assert.Equal(t, "https://item.taobao.com/item.htm?id=99", result.OriginalURL)
	assert.True(t, strings.HasPrefix(result.AgentLink, "https://www.kakobuy.com/item/details?url="))
}

func TestProcessAnyLinkContextResolvesShortLinks(t *testing.T) {
	r := newStubResolver(nil, map[string]string{
		"https://bit.ly/abc": "https://weidian.com/item.html?itemID=77",
	})

	result := ProcessAnyLinkContext(context.Background(), r, "https://bit.ly/abc", AgentKakoBuy, "latam")
	assert.Equal(t, "https://weidian.com/item.html?itemID=77", result.OriginalURL)
	assert.Contains(t, result.AgentLink, "itemID%3D77")
}

func TestProcessAnyLinkContextNonShortLinkPassthrough(t *testing.T) {
	r := NewResolver(&http.Client{}, nil, zap.NewNop())
	result := ProcessAnyLinkContext(context.Background(), r, "https://weidian.com/item.html?itemID=3", AgentKakoBuy, "latam")
	assert.Equal(t, "https://weidian.com/item.html?itemID=3", result.OriginalURL)
}
