package assistant

import (
	"net/http"

	coreAssistant "recipe-assistant/internal/core/assistant"
	"recipe-assistant/internal/core/recipe"
	"recipe-assistant/internal/core/session"
	"recipe-assistant/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 推薦 REST API 處理器
type Handler struct {
	assistant *coreAssistant.Assistant
	sessions  session.Store
}

// NewHandler 創建推薦 API 處理器
func NewHandler(asst *coreAssistant.Assistant, sessions session.Store) *Handler {
	return &Handler{
		assistant: asst,
		sessions:  sessions,
	}
}

// RecommendRequest 推薦請求
type RecommendRequest struct {
	UserID string `json:"user_id" binding:"required"` // 使用者識別
	Text   string `json:"text" binding:"required"`    // 描述食材的句子
}

// RecommendResponse 推薦響應
type RecommendResponse struct {
	Detected []string                 `json:"detected"` // 偵測到的食材
	Results  []recipe.ScoredCandidate `json:"results"`  // 排序後的推薦結果
	Summary  string                   `json:"summary"`  // 文字摘要
	Cards    []recipe.Card            `json:"cards"`    // 卡片清單
}

// RecipeRequest 做法查詢請求
type RecipeRequest struct {
	UserID string `json:"user_id" binding:"required"` // 使用者識別
	Rank   int    `json:"rank" binding:"required"`    // 推薦清單中的編號（從 1 起算）
}

// RecipeResponse 做法查詢響應
type RecipeResponse struct {
	Name         string   `json:"name"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
	Source       string   `json:"source"`
}

// HandleRecommend 依使用者句子推薦食譜
func (h *Handler) HandleRecommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: common.ErrInvalidRequest.Message,
			Details: err.Error(),
		})
		return
	}

	reply, err := h.assistant.HandleText(c.Request.Context(), req.UserID, req.Text)
	if err != nil {
		writeCustomError(c, err, reply.Text)
		return
	}

	c.JSON(http.StatusOK, RecommendResponse{
		Detected: reply.Detected,
		Results:  reply.Results,
		Summary:  reply.Text,
		Cards:    reply.Cards,
	})
}

// HandleRecipeByRank 依推薦編號查詢完整做法
func (h *Handler) HandleRecipeByRank(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: common.ErrInvalidRequest.Message,
			Details: err.Error(),
		})
		return
	}

	r, err := h.sessions.Get(c.Request.Context(), req.UserID, req.Rank)
	if err != nil {
		writeCustomError(c, err, "")
		return
	}

	common.LogInfo("做法查詢成功",
		zap.String("user_id", req.UserID),
		zap.Int("rank", req.Rank),
	)

	c.JSON(http.StatusOK, RecipeResponse{
		Name:         r.Name,
		Ingredients:  r.RawIngredients,
		Instructions: r.Instructions,
		Source:       r.SourceURL,
	})
}

// writeCustomError 將自定義錯誤轉為 API 錯誤響應
func writeCustomError(c *gin.Context, err error, details string) {
	if ce, ok := err.(*common.CustomError); ok {
		c.JSON(ce.Status, common.ErrorResponse{
			Code:    ce.Code,
			Message: ce.Message,
			Details: details,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, common.ErrorResponse{
		Code:    common.ErrCodeInternalError,
		Message: common.ErrInternalError.Message,
	})
}
