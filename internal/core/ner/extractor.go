package ner

import (
	"context"
)

// Entity 辨識出的一個食材片段
type Entity struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
	Start int     `json:"start"`
	End   int     `json:"end"`
}

// Extractor 食材辨識服務介面
// 配對演算法只使用去重後的 surface text；信心分數與位置保留給後續過濾使用
type Extractor interface {
	Extract(ctx context.Context, text string) ([]Entity, error)
}

// SurfaceSet 取出不重複的食材名稱（已去空白）
func SurfaceSet(entities []Entity) []string {
	seen := make(map[string]struct{}, len(entities))
	out := make([]string, 0, len(entities))
	for _, ent := range entities {
		if ent.Text == "" {
			continue
		}
		if _, ok := seen[ent.Text]; ok {
			continue
		}
		seen[ent.Text] = struct{}{}
		out = append(out, ent.Text)
	}
	return out
}
