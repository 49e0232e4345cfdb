package webhook

import (
	"io"
	"net/http"

	"recipe-assistant/internal/core/assistant"
	"recipe-assistant/internal/core/line"
	"recipe-assistant/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler LINE webhook 處理器
type Handler struct {
	client    *line.Client
	assistant *assistant.Assistant
}

// NewHandler 創建 webhook 處理器
func NewHandler(client *line.Client, asst *assistant.Assistant) *Handler {
	return &Handler{
		client:    client,
		assistant: asst,
	}
}

// HandleCallback 處理 LINE webhook 回調
// 驗證簽章後逐一分派事件；回傳給 LINE 平台的狀態碼永遠是 200 或 400
func (h *Handler) HandleCallback(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		common.LogError("Failed to read webhook body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid body",
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}

	// 驗證 X-Line-Signature
	signature := c.GetHeader("X-Line-Signature")
	if !h.client.ValidateSignature(body, signature) {
		common.LogWarn("Webhook 簽章驗證失敗",
			zap.String("client_ip", c.ClientIP()),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid signature",
			"code":  common.ErrCodeBadSignature,
		})
		return
	}

	var req line.WebhookRequest
	if err := common.ParseJSONBytes(body, &req); err != nil {
		common.LogError("Failed to parse webhook body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid payload",
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}

	for _, event := range req.Events {
		h.dispatchEvent(c, event)
	}

	c.String(http.StatusOK, "OK")
}

// dispatchEvent 分派單一事件
func (h *Handler) dispatchEvent(c *gin.Context, event line.Event) {
	switch event.Type {
	case line.EventTypeFollow:
		h.handleFollow(c, event)
	case line.EventTypeMessage:
		if event.Message != nil && event.Message.Type == line.MessageTypeText {
			h.handleTextMessage(c, event)
		}
	default:
		common.LogDebug("忽略未支援的事件類型",
			zap.String("type", event.Type),
		)
	}
}

// handleFollow 首次加入好友的歡迎訊息
func (h *Handler) handleFollow(c *gin.Context, event line.Event) {
	if err := h.client.ReplyText(c.Request.Context(), event.ReplyToken, h.assistant.WelcomeMessage()); err != nil {
		common.LogError("歡迎訊息回覆失敗", zap.Error(err))
	}
}

// handleTextMessage 處理文字訊息
func (h *Handler) handleTextMessage(c *gin.Context, event line.Event) {
	ctx := c.Request.Context()
	userID := event.Source.UserID
	text := event.Message.Text

	reply, err := h.assistant.HandleText(ctx, userID, text)
	if err != nil {
		// 業務錯誤已轉成使用者可讀的訊息，直接回覆
		common.LogInfo("對話處理回覆錯誤訊息",
			zap.String("user_id", userID),
			zap.String("code", errorCode(err)),
		)
	}

	if err := h.client.ReplyText(ctx, event.ReplyToken, reply.Text); err != nil {
		common.LogError("訊息回覆失敗", zap.Error(err))
		return
	}

	// 有推薦結果時另外推播卡片輪播
	if len(reply.Cards) > 0 {
		contents := line.CarouselContents(reply.Cards)
		if err := h.client.PushFlex(ctx, userID, reply.AltText, contents); err != nil {
			common.LogError("卡片推播失敗", zap.Error(err))
		}
	}
}

// errorCode 取出自定義錯誤代碼
func errorCode(err error) string {
	if ce, ok := err.(*common.CustomError); ok {
		return ce.Code
	}
	return common.ErrCodeInternalError
}
