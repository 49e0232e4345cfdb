package line

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"

	"recipe-assistant/internal/infrastructure/config"

	"github.com/go-resty/resty/v2"
)

// defaultBaseURL LINE Messaging API 端點
const defaultBaseURL = "https://api.line.me/v2/bot"

// Client LINE Messaging API 客戶端
type Client struct {
	client        *resty.Client
	channelSecret string
}

// textMessage 純文字訊息
type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// flexMessage Flex 訊息
type flexMessage struct {
	Type     string                 `json:"type"`
	AltText  string                 `json:"altText"`
	Contents map[string]interface{} `json:"contents"`
}

// replyRequest 回覆訊息請求
type replyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []interface{} `json:"messages"`
}

// pushRequest 推播訊息請求
type pushRequest struct {
	To       string        `json:"to"`
	Messages []interface{} `json:"messages"`
}

// NewClient 建立 LINE Messaging API 客戶端
func NewClient(cfg *config.LineConfig) *Client {
	client := resty.New().
		SetBaseURL(defaultBaseURL).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.AccessToken)).
		SetHeader("Content-Type", "application/json")

	return &Client{
		client:        client,
		channelSecret: cfg.ChannelSecret,
	}
}

// SetBaseURL 覆寫 API 端點（測試用）
func (c *Client) SetBaseURL(url string) {
	c.client.SetBaseURL(url)
}

// ValidateSignature 驗證 X-Line-Signature 簽章
// 以 channel secret 對原始請求本體計算 HMAC-SHA256 後做 base64 比對
func (c *Client) ValidateSignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.channelSecret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ReplyText 以 reply token 回覆純文字訊息
func (c *Client) ReplyText(ctx context.Context, replyToken, text string) error {
	return c.send(ctx, "/message/reply", replyRequest{
		ReplyToken: replyToken,
		Messages:   []interface{}{textMessage{Type: "text", Text: text}},
	})
}

// ReplyFlex 以 reply token 回覆 Flex 訊息
func (c *Client) ReplyFlex(ctx context.Context, replyToken, altText string, contents map[string]interface{}) error {
	return c.send(ctx, "/message/reply", replyRequest{
		ReplyToken: replyToken,
		Messages:   []interface{}{flexMessage{Type: "flex", AltText: altText, Contents: contents}},
	})
}

// PushText 主動推播純文字訊息給使用者
func (c *Client) PushText(ctx context.Context, to, text string) error {
	return c.send(ctx, "/message/push", pushRequest{
		To:       to,
		Messages: []interface{}{textMessage{Type: "text", Text: text}},
	})
}

// PushFlex 主動推播 Flex 訊息給使用者
func (c *Client) PushFlex(ctx context.Context, to, altText string, contents map[string]interface{}) error {
	return c.send(ctx, "/message/push", pushRequest{
		To:       to,
		Messages: []interface{}{flexMessage{Type: "flex", AltText: altText, Contents: contents}},
	})
}

// send 送出訊息請求
func (c *Client) send(ctx context.Context, path string, body interface{}) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(path)

	if err != nil {
		return fmt.Errorf("failed to send request to LINE API: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("LINE API returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
