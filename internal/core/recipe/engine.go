package recipe

import (
	"sort"
)

// ScoringWeights 配對分數的權重設定
// 對應公式：|overlap|*OverlapWeight − |missing|*MissingPenalty + (|overlap|/total)*RatioWeight
type ScoringWeights struct {
	OverlapWeight  float64
	MissingPenalty float64
	RatioWeight    float64
}

// DefaultWeights 預設權重
func DefaultWeights() ScoringWeights {
	return ScoringWeights{
		OverlapWeight:  10,
		MissingPenalty: 1,
		RatioWeight:    200,
	}
}

// Options 單次推薦的參數
type Options struct {
	TopK         int
	AllowMissing bool
	MaxMissing   int
	MinOverlap   int
}

// Engine 推薦引擎
// 除了呼叫端自行寫入推薦紀錄外，每次呼叫皆為無副作用的純計算
type Engine struct {
	index      *Index
	normalizer *Normalizer
	weights    ScoringWeights
}

// NewEngine 建立推薦引擎
func NewEngine(index *Index, normalizer *Normalizer, weights ScoringWeights) *Engine {
	return &Engine{
		index:      index,
		normalizer: normalizer,
		weights:    weights,
	}
}

// Normalizer 回傳引擎使用的正規化器
func (e *Engine) Normalizer() *Normalizer {
	return e.normalizer
}

// Index 回傳引擎使用的索引
func (e *Engine) Index() *Index {
	return e.index
}

// Recommend 對原始食材詞彙做正規化後進行推薦
// 所有退化輸入（無食材、無候選、全被過濾）都回傳空結果而非錯誤
func (e *Engine) Recommend(rawIngredients []string, opts Options) []ScoredCandidate {
	return e.RecommendTokens(e.normalizer.NormalizeAll(rawIngredients), opts)
}

// RecommendTokens 以正規化 token 集合進行推薦
func (e *Engine) RecommendTokens(userTokens map[string]struct{}, opts Options) []ScoredCandidate {
	candidates := e.index.Candidates(userTokens)
	if len(candidates) == 0 {
		return []ScoredCandidate{}
	}

	scored := make([]ScoredCandidate, 0, len(candidates))
	for id := range candidates {
		r, ok := e.index.Recipe(id)
		if !ok {
			continue
		}

		overlap, missing := partition(userTokens, r.NormalizedIngredients)

		// 過濾條件
		if len(overlap) < opts.MinOverlap {
			continue
		}
		if !opts.AllowMissing && len(missing) > 0 {
			continue
		}
		if len(missing) > opts.MaxMissing {
			continue
		}

		scored = append(scored, ScoredCandidate{
			Recipe:  r,
			Score:   e.score(len(overlap), len(missing), len(r.NormalizedIngredients)),
			Overlap: overlap,
			Missing: missing,
		})
	}

	// 排序：分數高者在前，缺少食材少者在前，同分同缺依名稱遞增。
	// 名稱也相同時退回 ID，確保排序為嚴格全序
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if len(scored[i].Missing) != len(scored[j].Missing) {
			return len(scored[i].Missing) < len(scored[j].Missing)
		}
		if scored[i].Recipe.Name != scored[j].Recipe.Name {
			return scored[i].Recipe.Name < scored[j].Recipe.Name
		}
		return scored[i].Recipe.ID < scored[j].Recipe.ID
	})

	if opts.TopK > 0 && len(scored) > opts.TopK {
		scored = scored[:opts.TopK]
	}
	return scored
}

// score 計算配對分數，食材數為零的食譜比例項以 0 計
func (e *Engine) score(overlap, missing, total int) float64 {
	s := float64(overlap)*e.weights.OverlapWeight - float64(missing)*e.weights.MissingPenalty
	if total > 0 {
		s += float64(overlap) / float64(total) * e.weights.RatioWeight
	}
	return s
}

// partition 將食譜食材切分為 overlap 與 missing 兩個已排序切片
func partition(userTokens, recipeTokens map[string]struct{}) (overlap, missing []string) {
	overlap = make([]string, 0, len(recipeTokens))
	missing = make([]string, 0, len(recipeTokens))
	for token := range recipeTokens {
		if _, ok := userTokens[token]; ok {
			overlap = append(overlap, token)
		} else {
			missing = append(missing, token)
		}
	}
	sort.Strings(overlap)
	sort.Strings(missing)
	return overlap, missing
}
