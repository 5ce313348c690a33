package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/agentlink-service/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

type recordedCall struct {
	Method  string
	Payload map[string]any
}

// stubTelegramAPI intercepts api.telegram.org calls, recording each method
// and payload, and answering with the given status per method.
func stubTelegramAPI(t *testing.T, statusByMethod map[string]int, calls *[]recordedCall) *http.Client {
	t.Helper()
	return &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		require.Equal(t, "api.telegram.org", req.URL.Host)

		parts := strings.Split(req.URL.Path, "/")
		method := parts[len(parts)-1]

		var payload map[string]any
		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &payload))
		*calls = append(*calls, recordedCall{Method: method, Payload: payload})

		status, ok := statusByMethod[method]
		if !ok {
			status = http.StatusOK
		}
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(`{"ok":true}`)),
			Header:     make(http.Header),
		}, nil
	})}
}

func sampleProduct() *domain.Product {
	return &domain.Product{
		Name:     "Vintage Washed Hoodie",
		Price:    128.50,
		Image:    "https://img.alicdn.com/hoodie.jpg",
		Category: "hoodies",
		Links:    map[string]string{"KakoBuy": "https://www.kakobuy.com/item/details?url=x&affcode=latam"},
	}
}

func TestNotifySendsPhotoWithCaption(t *testing.T) {
	var calls []recordedCall
	client := stubTelegramAPI(t, nil, &calls)
	tg := NewTelegram(client, "bot-token", "chat-1", 0.15, zap.NewNop())

	ok := tg.Notify(context.Background(), sampleProduct(), "https://weidian.com/item.html?itemID=42")
	require.True(t, ok)
	require.Len(t, calls, 1)
	assert.Equal(t, "sendPhoto", calls[0].Method)
	assert.Equal(t, "chat-1", calls[0].Payload["chat_id"])
	assert.Equal(t, "https://img.alicdn.com/hoodie.jpg", calls[0].Payload["photo"])

	caption, _ := calls[0].Payload["caption"].(string)
	assert.Contains(t, caption, "Vintage Washed Hoodie")
	assert.Contains(t, caption, "￥128.50")
	assert.Contains(t, caption, "≈ $19.2")
	assert.Contains(t, caption, "[Kakobuy Link](https://www.kakobuy.com/item/details?url=x&affcode=latam)")
	assert.Contains(t, caption, "[Weidian Link](https://weidian.com/item.html?itemID=42)")
}

func TestNotifyFallsBackToPlainMessage(t *testing.T) {
	var calls []recordedCall
	client := stubTelegramAPI(t, map[string]int{"sendPhoto": http.StatusBadRequest}, &calls)
	tg := NewTelegram(client, "bot-token", "chat-1", 0.15, zap.NewNop())

	ok := tg.Notify(context.Background(), sampleProduct(), "")
	require.True(t, ok)
	require.Len(t, calls, 2)
	assert.Equal(t, "sendPhoto", calls[0].Method)
	assert.Equal(t, "sendMessage", calls[1].Method)

	text, _ := calls[1].Payload["text"].(string)
	assert.NotContains(t, text, "Weidian Link")
}

func TestNotifySkipsPhotoWhenImageMissing(t *testing.T) {
	var calls []recordedCall
	client := stubTelegramAPI(t, nil, &calls)
	tg := NewTelegram(client, "bot-token", "chat-1", 0.15, zap.NewNop())

	product := sampleProduct()
	product.Image = ""
	ok := tg.Notify(context.Background(), product, "")
	require.True(t, ok)
	require.Len(t, calls, 1)
	assert.Equal(t, "sendMessage", calls[0].Method)
}

func TestNotifyUnconfigured(t *testing.T) {
	var calls []recordedCall
	client := stubTelegramAPI(t, nil, &calls)
	tg := NewTelegram(client, "", "", 0.15, zap.NewNop())

	assert.False(t, tg.Configured())
	assert.False(t, tg.Notify(context.Background(), sampleProduct(), ""))
	assert.Empty(t, calls)
}

func TestNotifyReportsFailure(t *testing.T) {
	var calls []recordedCall
	client := stubTelegramAPI(t, map[string]int{
		"sendPhoto":   http.StatusBadGateway,
		"sendMessage": http.StatusBadGateway,
	}, &calls)
	tg := NewTelegram(client, "bot-token", "chat-1", 0.15, zap.NewNop())

	assert.False(t, tg.Notify(context.Background(), sampleProduct(), ""))
	require.Len(t, calls, 2)
}

func TestLinkLabel(t *testing.T) {
	assert.Equal(t, "Weidian Link", linkLabel("https://weidian.com/item.html?itemID=1"))
	assert.Equal(t, "Taobao Link", linkLabel("https://item.taobao.com/item.htm?id=1"))
	assert.Equal(t, "Taobao Link", linkLabel("https://detail.tmall.com/item.htm?id=1"))
	assert.Equal(t, "1688 Link", linkLabel("https://detail.1688.com/offer/1.html"))
	assert.Equal(t, "Kakobuy Link", linkLabel("https://www.kakobuy.com/item/details?url=x"))
	assert.Equal(t, "Original Link", linkLabel("https://example.com/p/1"))
}
