package ner

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

// Client 食材辨識服務的 HTTP 客戶端
type Client struct {
	client   *resty.Client
	minScore float64
}

// extractRequest 辨識請求
type extractRequest struct {
	Text string `json:"text"`
}

// extractResponse 辨識回應
type extractResponse struct {
	Entities []struct {
		Word  string  `json:"word"`
		Score float64 `json:"score"`
		Start int     `json:"start"`
		End   int     `json:"end"`
	} `json:"entities"`
}

// NewClient 建立食材辨識服務客戶端
func NewClient(cfg *config.NERConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{
		client:   client,
		minScore: cfg.MinScore,
	}
}

// Extract 從一段句子中辨識食材
// surface text 去除所有空白後回傳，低於 minScore 的實體會被過濾
func (c *Client) Extract(ctx context.Context, text string) ([]Entity, error) {
	start := time.Now()

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(extractRequest{Text: text}).
		SetResult(&extractResponse{}).
		Post("/extract")

	if err != nil {
		common.LogNERCall(0, time.Since(start), err)
		return nil, fmt.Errorf("failed to send request to NER service: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		err := fmt.Errorf("NER service returned status %d: %s", resp.StatusCode(), resp.String())
		common.LogNERCall(0, time.Since(start), err)
		return nil, err
	}

	result, ok := resp.Result().(*extractResponse)
	if !ok || result == nil {
		err := fmt.Errorf("unexpected NER service response")
		common.LogNERCall(0, time.Since(start), err)
		return nil, err
	}

	entities := make([]Entity, 0, len(result.Entities))
	for _, ent := range result.Entities {
		if ent.Score < c.minScore {
			continue
		}
		word := strings.Join(strings.Fields(ent.Word), "")
		if word == "" {
			continue
		}
		entities = append(entities, Entity{
			Text:  word,
			Score: ent.Score,
			Start: ent.Start,
			End:   ent.End,
		})
	}

	common.LogNERCall(len(entities), time.Since(start), nil)
	return entities, nil
}
