package recipe

// Recipe 一筆食譜資料
// NormalizedIngredients 於載入時由 RawIngredients 推導，載入後不再變動
type Recipe struct {
	ID                    int                 `json:"id"`
	Name                  string              `json:"name"`
	RawIngredients        []string            `json:"ingredients"`
	NormalizedIngredients map[string]struct{} `json:"-"`
	Instructions          string              `json:"instructions"`
	SourceURL             string              `json:"source"`
}

// ScoredCandidate 一筆配對結果
// Overlap 與 Missing 互斥，聯集等於該食譜的正規化食材集合
type ScoredCandidate struct {
	Recipe  *Recipe  `json:"recipe"`
	Score   float64  `json:"score"`
	Overlap []string `json:"overlap"` // 已排序
	Missing []string `json:"missing"` // 已排序
}

// TokenSet 將字串切片轉為集合
func TokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
