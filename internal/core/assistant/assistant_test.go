package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"recipe-assistant/internal/core/ner"
	"recipe-assistant/internal/core/recipe"
	"recipe-assistant/internal/core/session"
	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExtractor 測試用的食材辨識服務
type fakeExtractor struct {
	entities []ner.Entity
	err      error
}

func (f *fakeExtractor) Extract(ctx context.Context, text string) ([]ner.Entity, error) {
	return f.entities, f.err
}

func entitiesOf(words ...string) []ner.Entity {
	out := make([]ner.Entity, 0, len(words))
	for _, w := range words {
		out = append(out, ner.Entity{Text: w, Score: 0.99})
	}
	return out
}

func newTestAssistant(t *testing.T, extractor ner.Extractor) (*Assistant, session.Store) {
	t.Helper()

	normalizer := recipe.NewNormalizer(recipe.DefaultStripTokens())
	recipes := []*recipe.Recipe{
		{
			ID:             0,
			Name:           "蛋炒飯",
			RawIngredients: []string{"白飯 1碗", "雞蛋 2顆", "蔥 適量"},
			NormalizedIngredients: map[string]struct{}{
				"白飯": {}, "雞蛋": {}, "蔥": {},
			},
			Instructions: "熱鍋下蛋，加入白飯拌炒，起鍋前撒蔥花。",
			SourceURL:    "https://example.com/fried-rice",
		},
		{
			ID:             1,
			Name:           "番茄炒蛋",
			RawIngredients: []string{"番茄 2顆", "雞蛋 3顆"},
			NormalizedIngredients: map[string]struct{}{
				"番茄": {}, "雞蛋": {},
			},
			Instructions: "番茄切塊，與蛋液同炒至熟。",
			SourceURL:    "https://example.com/tomato-egg",
		},
	}
	engine := recipe.NewEngine(recipe.BuildIndex(recipes), normalizer, recipe.DefaultWeights())

	store := session.NewMemoryStore(&config.SessionConfig{
		Store:           "memory",
		MaxUsers:        10,
		TTL:             time.Hour,
		CleanupInterval: time.Hour,
	})
	t.Cleanup(func() { _ = store.Close() })

	a := New(engine, extractor, store, &config.RecommendConfig{
		TopK:         5,
		AllowMissing: true,
		MaxMissing:   10,
		MinOverlap:   1,
	})
	return a, store
}

func TestHandleTextRecommend(t *testing.T) {
	a, _ := newTestAssistant(t, &fakeExtractor{entities: entitiesOf("雞蛋", "白飯")})

	reply, err := a.HandleText(context.Background(), "u1", "我冰箱剩白飯跟雞蛋")
	require.NoError(t, err)

	assert.Equal(t, []string{"白飯", "雞蛋"}, reply.Detected)
	require.Len(t, reply.Results, 2)
	assert.Equal(t, "蛋炒飯", reply.Results[0].Recipe.Name)
	assert.Equal(t, "番茄炒蛋", reply.Results[1].Recipe.Name)

	require.Len(t, reply.Cards, 2)
	assert.Equal(t, "1. 蛋炒飯", reply.Cards[0].Title)
	assert.Contains(t, reply.Text, "偵測到的食材")
	assert.Contains(t, reply.Text, "白飯、雞蛋")
}

func TestHandleTextStoresRecommendation(t *testing.T) {
	a, store := newTestAssistant(t, &fakeExtractor{entities: entitiesOf("雞蛋", "白飯")})
	ctx := context.Background()

	_, err := a.HandleText(ctx, "u1", "我冰箱剩白飯跟雞蛋")
	require.NoError(t, err)

	// 推薦清單已暫存，可用編號取回
	second, err := store.Get(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Equal(t, "番茄炒蛋", second.Name)
}

func TestHandleTextDetailCommand(t *testing.T) {
	a, _ := newTestAssistant(t, &fakeExtractor{entities: entitiesOf("雞蛋", "白飯")})
	ctx := context.Background()

	_, err := a.HandleText(ctx, "u1", "我冰箱剩白飯跟雞蛋")
	require.NoError(t, err)

	reply, err := a.HandleText(ctx, "u1", "做法 1")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "《蛋炒飯》")
	assert.Contains(t, reply.Text, "熱鍋下蛋")
}

func TestHandleTextDetailInvalidOrdinal(t *testing.T) {
	a, _ := newTestAssistant(t, &fakeExtractor{entities: entitiesOf("雞蛋", "白飯")})
	ctx := context.Background()

	_, err := a.HandleText(ctx, "u1", "我冰箱剩白飯跟雞蛋")
	require.NoError(t, err)

	reply, err := a.HandleText(ctx, "u1", "做法 9")
	assert.ErrorIs(t, err, common.ErrInvalidSelection)
	assert.Contains(t, reply.Text, "找不到這個編號")
}

func TestHandleTextDetailWithoutHistory(t *testing.T) {
	// 沒有先推薦就查做法：明確回覆錯誤，不退回食材辨識流程
	extractor := &fakeExtractor{entities: entitiesOf("雞蛋")}
	a, _ := newTestAssistant(t, extractor)

	reply, err := a.HandleText(context.Background(), "u-new", "做法 1")
	assert.ErrorIs(t, err, common.ErrInvalidSelection)
	assert.Contains(t, reply.Text, "找不到這個編號")
}

func TestHandleTextDetailMissingOrdinal(t *testing.T) {
	a, _ := newTestAssistant(t, &fakeExtractor{})

	reply, err := a.HandleText(context.Background(), "u1", "做法")
	assert.ErrorIs(t, err, common.ErrInvalidSelection)
	assert.Contains(t, reply.Text, "做法 + 編號")
}

func TestHandleTextNoIngredients(t *testing.T) {
	a, _ := newTestAssistant(t, &fakeExtractor{entities: nil})

	reply, err := a.HandleText(context.Background(), "u1", "今天天氣真好")
	assert.ErrorIs(t, err, common.ErrNoIngredients)
	assert.Contains(t, reply.Text, "沒有在句子裡偵測到可用食材")
}

func TestHandleTextNoMatch(t *testing.T) {
	a, _ := newTestAssistant(t, &fakeExtractor{entities: entitiesOf("榴槤")})

	reply, err := a.HandleText(context.Background(), "u1", "我只有榴槤")
	assert.ErrorIs(t, err, common.ErrNoMatch)
	assert.Contains(t, reply.Text, "榴槤")
	assert.Equal(t, []string{"榴槤"}, reply.Detected)
}

func TestHandleTextExtractorFailure(t *testing.T) {
	a, _ := newTestAssistant(t, &fakeExtractor{err: errors.New("connection refused")})

	reply, err := a.HandleText(context.Background(), "u1", "我有雞蛋")
	assert.ErrorIs(t, err, common.ErrNERService)
	assert.Contains(t, reply.Text, "稍後再試")
}

func TestWelcomeMessage(t *testing.T) {
	a, _ := newTestAssistant(t, &fakeExtractor{})

	msg := a.WelcomeMessage()
	assert.Contains(t, msg, "料理小幫手")
	assert.Contains(t, msg, "食材")
}
