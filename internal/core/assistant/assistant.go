package assistant

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"recipe-assistant/internal/core/ner"
	"recipe-assistant/internal/core/recipe"
	"recipe-assistant/internal/core/session"
	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"

	"go.uber.org/zap"
)

// detailKeyword 查詢做法指令的關鍵字
const detailKeyword = "做法"

// welcomeText 首次加入好友的歡迎訊息
const welcomeText = "嗨～我是料理小幫手！\n" +
	"告訴我你冰箱有哪些食材，例如：\n" +
	"「我剩下白醋、雞蛋跟培根」\n" +
	"我就會推薦可以做的料理給你 :D"

// ordinalPattern 從做法指令中取出編號
var ordinalPattern = regexp.MustCompile(`\d+`)

// Reply 一次對話處理的回覆內容
type Reply struct {
	Text     string                   `json:"text"`
	AltText  string                   `json:"alt_text,omitempty"`
	Cards    []recipe.Card            `json:"cards,omitempty"`
	Detected []string                 `json:"detected,omitempty"`
	Results  []recipe.ScoredCandidate `json:"results,omitempty"`
}

// Assistant 對話協調器
// 負責路由做法指令與食材推薦流程，並把錯誤轉成使用者可讀的訊息
type Assistant struct {
	engine    *recipe.Engine
	extractor ner.Extractor
	sessions  session.Store
	opts      recipe.Options
}

// New 建立對話協調器
func New(engine *recipe.Engine, extractor ner.Extractor, sessions session.Store, cfg *config.RecommendConfig) *Assistant {
	return &Assistant{
		engine:    engine,
		extractor: extractor,
		sessions:  sessions,
		opts: recipe.Options{
			TopK:         cfg.TopK,
			AllowMissing: cfg.AllowMissing,
			MaxMissing:   cfg.MaxMissing,
			MinOverlap:   cfg.MinOverlap,
		},
	}
}

// WelcomeMessage 首次加入好友的歡迎訊息
func (a *Assistant) WelcomeMessage() string {
	return welcomeText
}

// HandleText 處理一則使用者文字訊息
// 回傳的 Reply 一定可以直接回覆給使用者；error 只用來分類錯誤情境
func (a *Assistant) HandleText(ctx context.Context, userID, text string) (*Reply, error) {
	text = strings.TrimSpace(text)
	traceID := common.GenerateUUID()

	// 「做法 + 編號」指令走推薦紀錄查詢，不重新推薦
	if strings.HasPrefix(text, detailKeyword) {
		return a.handleDetail(ctx, userID, text, traceID)
	}

	return a.handleRecommend(ctx, userID, text, traceID)
}

// handleDetail 查詢先前推薦清單中的完整做法
// 查無紀錄或編號超出範圍時明確回覆錯誤，不會退回成食材辨識查詢
func (a *Assistant) handleDetail(ctx context.Context, userID, text, traceID string) (*Reply, error) {
	m := ordinalPattern.FindString(text)
	if m == "" {
		common.LogWarn("做法指令缺少編號",
			zap.String("trace_id", traceID),
			zap.String("user_id", userID),
		)
		return &Reply{Text: "要查哪一道呢？請輸入「做法 + 編號」，例如「做法 1」。"}, common.ErrInvalidSelection
	}

	ordinal, err := strconv.Atoi(m)
	if err != nil {
		return &Reply{Text: "要查哪一道呢？請輸入「做法 + 編號」，例如「做法 1」。"}, common.ErrInvalidSelection
	}

	r, err := a.sessions.Get(ctx, userID, ordinal)
	if err != nil {
		common.LogInfo("做法編號查詢失敗",
			zap.String("trace_id", traceID),
			zap.String("user_id", userID),
			zap.Int("ordinal", ordinal),
		)
		return &Reply{Text: "找不到這個編號的食譜喔～先告訴我你有哪些食材，我再推薦給你！"}, common.ErrInvalidSelection
	}

	return &Reply{Text: recipe.DetailText(r)}, nil
}

// handleRecommend 食材辨識與推薦流程
func (a *Assistant) handleRecommend(ctx context.Context, userID, text, traceID string) (*Reply, error) {
	entities, err := a.extractor.Extract(ctx, text)
	if err != nil {
		common.LogError("食材辨識服務呼叫失敗",
			zap.String("trace_id", traceID),
			zap.Error(err),
		)
		return &Reply{Text: "食材辨識服務暫時無法使用，請稍後再試一次～"}, common.ErrNERService
	}

	detected := ner.SurfaceSet(entities)
	if len(detected) == 0 {
		return &Reply{Text: "我沒有在句子裡偵測到可用食材喔～再描述一次看看？"}, common.ErrNoIngredients
	}

	results := a.engine.Recommend(detected, a.opts)

	sortedDetected := make([]string, len(detected))
	copy(sortedDetected, detected)
	sort.Strings(sortedDetected)

	if len(results) == 0 {
		return &Reply{
			Text: fmt.Sprintf("資料庫找不到適合「%s」的食譜 😢\n歡迎換個食材組合再試試！",
				common.StringSliceToString(sortedDetected)),
			Detected: sortedDetected,
		}, common.ErrNoMatch
	}

	// 暫存推薦清單給「做法 + 編號」查詢用；寫入失敗不影響本次回覆
	recipes := make([]*recipe.Recipe, 0, len(results))
	for _, sc := range results {
		recipes = append(recipes, sc.Recipe)
	}
	if err := a.sessions.Put(ctx, userID, recipes); err != nil {
		common.LogError("推薦紀錄寫入失敗",
			zap.String("trace_id", traceID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}

	common.LogInfo("推薦完成",
		zap.String("trace_id", traceID),
		zap.String("user_id", userID),
		zap.Int("偵測食材數", len(detected)),
		zap.Int("推薦數", len(results)),
	)

	return &Reply{
		Text:     recipe.Summary(sortedDetected, results),
		AltText:  "推薦料理",
		Cards:    recipe.Cards(results),
		Detected: sortedDetected,
		Results:  results,
	}, nil
}
