package recipe

import (
	"fmt"
	"os"
	"strings"

	"recipe-assistant/internal/pkg/common"
)

// corpusRecord 食譜資料檔中的一筆紀錄（爬蟲輸出格式）
type corpusRecord struct {
	Name         string   `json:"name"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
	Source       string   `json:"source"`
}

// LoadCorpus 載入食譜資料檔並推導正規化食材集合
// 資料檔缺失或格式錯誤視為啟動失敗，不提供部分服務
func LoadCorpus(path string, normalizer *Normalizer) ([]*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus file %s: %w", path, err)
	}

	var records []corpusRecord
	if err := common.ParseJSONBytes(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse corpus file %s: %w", path, err)
	}

	recipes := make([]*Recipe, 0, len(records))
	for i, rec := range records {
		recipes = append(recipes, &Recipe{
			ID:                    i,
			Name:                  rec.Name,
			RawIngredients:        rec.Ingredients,
			NormalizedIngredients: normalizeIngredientLines(rec.Ingredients, normalizer),
			Instructions:          rec.Instructions,
			SourceURL:             rec.Source,
		})
	}

	return recipes, nil
}

// normalizeIngredientLines 由食材行推導正規化集合
// 每行只取第一個空白分隔欄位（食材名稱），後面的份量敘述不參與配對
func normalizeIngredientLines(lines []string, normalizer *Normalizer) map[string]struct{} {
	set := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		token := normalizer.Normalize(fields[0])
		if token == "" {
			continue
		}
		set[token] = struct{}{}
	}
	return set
}
