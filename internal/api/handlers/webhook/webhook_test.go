package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"recipe-assistant/internal/core/assistant"
	"recipe-assistant/internal/core/line"
	"recipe-assistant/internal/core/ner"
	"recipe-assistant/internal/core/recipe"
	"recipe-assistant/internal/core/session"
	"recipe-assistant/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChannelSecret = "test-channel-secret"

// lineAPIRecorder 紀錄送往 LINE API 的請求
type lineAPIRecorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

type recordedRequest struct {
	path string
	body map[string]interface{}
}

func (r *lineAPIRecorder) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		raw, _ := io.ReadAll(req.Body)
		var body map[string]interface{}
		_ = json.Unmarshal(raw, &body)

		r.mu.Lock()
		r.requests = append(r.requests, recordedRequest{path: req.URL.Path, body: body})
		r.mu.Unlock()

		w.WriteHeader(http.StatusOK)
	}
}

func (r *lineAPIRecorder) all() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]recordedRequest, len(r.requests))
	copy(out, r.requests)
	return out
}

type fakeExtractor struct {
	entities []ner.Entity
}

func (f *fakeExtractor) Extract(ctx context.Context, text string) ([]ner.Entity, error) {
	return f.entities, nil
}

func newTestHandler(t *testing.T, extractor ner.Extractor) (*Handler, *lineAPIRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recorder := &lineAPIRecorder{}
	srv := httptest.NewServer(recorder.handler())
	t.Cleanup(srv.Close)

	client := line.NewClient(&config.LineConfig{
		ChannelSecret: testChannelSecret,
		AccessToken:   "test-token",
	})
	client.SetBaseURL(srv.URL)

	normalizer := recipe.NewNormalizer(recipe.DefaultStripTokens())
	recipes := []*recipe.Recipe{
		{
			ID:             0,
			Name:           "蛋炒飯",
			RawIngredients: []string{"白飯 1碗", "雞蛋 2顆"},
			NormalizedIngredients: map[string]struct{}{
				"白飯": {}, "雞蛋": {},
			},
			Instructions: "熱鍋下蛋，加入白飯拌炒。",
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

	asst := assistant.New(engine, extractor, store, &config.RecommendConfig{
		TopK:         5,
		AllowMissing: true,
		MaxMissing:   10,
		MinOverlap:   1,
	})

	return NewHandler(client, asst), recorder
}

func newCallbackRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.POST("/callback", h.HandleCallback)
	return r
}

func signWebhookBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testChannelSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func postCallback(router *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/callback", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Line-Signature", signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func webhookBody(t *testing.T, events ...line.Event) []byte {
	t.Helper()
	raw, err := json.Marshal(line.WebhookRequest{Destination: "bot-id", Events: events})
	require.NoError(t, err)
	return raw
}

func TestHandleCallbackRejectsBadSignature(t *testing.T) {
	h, recorder := newTestHandler(t, &fakeExtractor{})
	router := newCallbackRouter(h)

	body := webhookBody(t)

	w := postCallback(router, body, "invalid-signature")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid signature")

	w = postCallback(router, body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Empty(t, recorder.all())
}

func TestHandleCallbackEmptyEvents(t *testing.T) {
	h, recorder := newTestHandler(t, &fakeExtractor{})
	router := newCallbackRouter(h)

	body := webhookBody(t)
	w := postCallback(router, body, signWebhookBody(body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.Empty(t, recorder.all())
}

func TestHandleCallbackFollowEvent(t *testing.T) {
	h, recorder := newTestHandler(t, &fakeExtractor{})
	router := newCallbackRouter(h)

	body := webhookBody(t, line.Event{
		Type:       line.EventTypeFollow,
		ReplyToken: "reply-token-1",
		Source:     line.Source{Type: "user", UserID: "u1"},
	})
	w := postCallback(router, body, signWebhookBody(body))
	assert.Equal(t, http.StatusOK, w.Code)

	requests := recorder.all()
	require.Len(t, requests, 1)
	assert.Equal(t, "/message/reply", requests[0].path)
	assert.Equal(t, "reply-token-1", requests[0].body["replyToken"])

	msg := requests[0].body["messages"].([]interface{})[0].(map[string]interface{})
	assert.Contains(t, msg["text"], "料理小幫手")
}

func TestHandleCallbackTextMessageRecommends(t *testing.T) {
	h, recorder := newTestHandler(t, &fakeExtractor{entities: []ner.Entity{
		{Text: "白飯", Score: 0.95},
		{Text: "雞蛋", Score: 0.92},
	}})
	router := newCallbackRouter(h)

	body := webhookBody(t, line.Event{
		Type:       line.EventTypeMessage,
		ReplyToken: "reply-token-2",
		Source:     line.Source{Type: "user", UserID: "u1"},
		Message:    &line.Message{ID: "m1", Type: line.MessageTypeText, Text: "我冰箱剩白飯跟雞蛋"},
	})
	w := postCallback(router, body, signWebhookBody(body))
	assert.Equal(t, http.StatusOK, w.Code)

	// 先回覆文字摘要，再推播卡片輪播
	requests := recorder.all()
	require.Len(t, requests, 2)

	assert.Equal(t, "/message/reply", requests[0].path)
	replyMsg := requests[0].body["messages"].([]interface{})[0].(map[string]interface{})
	assert.Contains(t, replyMsg["text"], "蛋炒飯")

	assert.Equal(t, "/message/push", requests[1].path)
	assert.Equal(t, "u1", requests[1].body["to"])
	pushMsg := requests[1].body["messages"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "flex", pushMsg["type"])
	contents := pushMsg["contents"].(map[string]interface{})
	assert.Equal(t, "carousel", contents["type"])
}

func TestHandleCallbackDetailCommand(t *testing.T) {
	h, recorder := newTestHandler(t, &fakeExtractor{entities: []ner.Entity{
		{Text: "白飯", Score: 0.95},
		{Text: "雞蛋", Score: 0.92},
	}})
	router := newCallbackRouter(h)

	recommend := webhookBody(t, line.Event{
		Type:       line.EventTypeMessage,
		ReplyToken: "reply-token-3",
		Source:     line.Source{Type: "user", UserID: "u1"},
		Message:    &line.Message{ID: "m1", Type: line.MessageTypeText, Text: "我冰箱剩白飯跟雞蛋"},
	})
	w := postCallback(router, recommend, signWebhookBody(recommend))
	require.Equal(t, http.StatusOK, w.Code)

	detail := webhookBody(t, line.Event{
		Type:       line.EventTypeMessage,
		ReplyToken: "reply-token-4",
		Source:     line.Source{Type: "user", UserID: "u1"},
		Message:    &line.Message{ID: "m2", Type: line.MessageTypeText, Text: "做法 1"},
	})
	w = postCallback(router, detail, signWebhookBody(detail))
	require.Equal(t, http.StatusOK, w.Code)

	requests := recorder.all()
	last := requests[len(requests)-1]
	assert.Equal(t, "/message/reply", last.path)
	msg := last.body["messages"].([]interface{})[0].(map[string]interface{})
	assert.Contains(t, msg["text"], "《蛋炒飯》")
}

func TestHandleCallbackIgnoresUnsupportedEvents(t *testing.T) {
	h, recorder := newTestHandler(t, &fakeExtractor{})
	router := newCallbackRouter(h)

	body := webhookBody(t,
		line.Event{Type: "unfollow", Source: line.Source{UserID: "u1"}},
		line.Event{
			Type:       line.EventTypeMessage,
			ReplyToken: "reply-token-5",
			Source:     line.Source{Type: "user", UserID: "u1"},
			Message:    &line.Message{ID: "m3", Type: "sticker"},
		},
	)
	w := postCallback(router, body, signWebhookBody(body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, recorder.all())
}
