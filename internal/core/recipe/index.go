package recipe

// Index 正規化食材 token 到食譜的反向索引
// 於載入時建立一次，之後唯讀，可安全地被多個請求共用
type Index struct {
	byToken map[string]map[int]struct{}
	byID    map[int]*Recipe
}

// BuildIndex 由食譜集合建立反向索引
// 不變量：食譜 r 出現在 token t 之下，若且唯若 t 屬於 r 的正規化食材集合
func BuildIndex(recipes []*Recipe) *Index {
	idx := &Index{
		byToken: make(map[string]map[int]struct{}),
		byID:    make(map[int]*Recipe, len(recipes)),
	}

	for _, r := range recipes {
		idx.byID[r.ID] = r
		for token := range r.NormalizedIngredients {
			ids, ok := idx.byToken[token]
			if !ok {
				ids = make(map[int]struct{})
				idx.byToken[token] = ids
			}
			ids[r.ID] = struct{}{}
		}
	}

	return idx
}

// Lookup 查詢包含指定 token 的食譜，未知 token 回傳空集合
func (idx *Index) Lookup(token string) map[int]struct{} {
	ids, ok := idx.byToken[token]
	if !ok {
		return map[int]struct{}{}
	}

	out := make(map[int]struct{}, len(ids))
	for id := range ids {
		out[id] = struct{}{}
	}
	return out
}

// Candidates 回傳包含任一指定 token 的食譜集合
// 空的 token 集合直接回傳空集合
func (idx *Index) Candidates(tokens map[string]struct{}) map[int]struct{} {
	out := make(map[int]struct{})
	if len(tokens) == 0 {
		return out
	}

	for token := range tokens {
		for id := range idx.byToken[token] {
			out[id] = struct{}{}
		}
	}
	return out
}

// Recipe 依 ID 取得食譜
func (idx *Index) Recipe(id int) (*Recipe, bool) {
	r, ok := idx.byID[id]
	return r, ok
}

// RecipeCount 食譜筆數
func (idx *Index) RecipeCount() int {
	return len(idx.byID)
}

// TokenCount 索引中的不重複 token 數
func (idx *Index) TokenCount() int {
	return len(idx.byToken)
}
