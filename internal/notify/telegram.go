package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/user/agentlink-service/internal/domain"
)

const telegramAPIBase = "https://api.telegram.org"

// Telegram announces finished products to the storefront's channel.
// Notification failure is logged and reported as a boolean; it must
// never block product persistence.
type Telegram struct {
	httpClient *http.Client
	botToken   string
	chatID     string
	cnyUSDRate float64
	logger     *zap.Logger
}

func NewTelegram(httpClient *http.Client, botToken, chatID string, cnyUSDRate float64, logger *zap.Logger) *Telegram {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Telegram{
		httpClient: httpClient,
		botToken:   botToken,
		chatID:     chatID,
		cnyUSDRate: cnyUSDRate,
		logger:     logger,
	}
}

// Configured reports whether credentials are present.
func (t *Telegram) Configured() bool {
	return t.botToken != "" && t.chatID != ""
}

// Notify sends one product announcement. A photo message with caption is
// tried first when an image is present; a plain message is the fallback.
func (t *Telegram) Notify(ctx context.Context, product *domain.Product, originalURL string) bool {
	if !t.Configured() {
		t.logger.Error("telegram credentials not configured")
		return false
	}

	message := t.formatMessage(product, originalURL)

	if strings.TrimSpace(product.Image) != "" {
		ok, err := t.send(ctx, "sendPhoto", map[string]any{
			"chat_id":                  t.chatID,
			"photo":                    product.Image,
			"caption":                  message,
			"parse_mode":               "Markdown",
			"disable_web_page_preview": false,
		})
		if ok {
			return true
		}
		t.logger.Warn("telegram photo send failed, retrying without image", zap.Error(err))
	}

	ok, err := t.send(ctx, "sendMessage", map[string]any{
		"chat_id":                  t.chatID,
		"text":                     message,
		"parse_mode":               "Markdown",
		"disable_web_page_preview": false,
	})
	if !ok {
		t.logger.Error("telegram send failed", zap.Error(err))
	}
	return ok
}

func (t *Telegram) formatMessage(product *domain.Product, originalURL string) string {
	usdPrice := product.Price * t.cnyUSDRate
	agentLink := product.Links["KakoBuy"]

	var b strings.Builder
	fmt.Fprintf(&b, "🔥 %s\n", product.Name)
	fmt.Fprintf(&b, "💰 CNY ￥%.2f ≈ $%.2f\n", product.Price, usdPrice)
	fmt.Fprintf(&b, "🛒 [Kakobuy Link](%s)\n", agentLink)
	if originalURL != "" {
		fmt.Fprintf(&b, "\n🔗 [%s](%s)\n", linkLabel(originalURL), originalURL)
	}
	return b.String()
}

// linkLabel picks the channel-facing label for the original link by its
// marketplace host.
func linkLabel(url string) string {
	switch {
	case strings.Contains(url, "1688.com"):
		return "1688 Link"
	case strings.Contains(url, "taobao.com"), strings.Contains(url, "tmall.com"):
		return "Taobao Link"
	case strings.Contains(url, "weidian.com"):
		return "Weidian Link"
	case strings.Contains(url, "kakobuy.com"):
		return "Kakobuy Link"
	}
	return "Original Link"
}

func (t *Telegram) send(ctx context.Context, method string, payload map[string]any) (bool, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return false, err
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", telegramAPIBase, t.botToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("telegram api status %d", resp.StatusCode)
	}
	return true, nil
}
