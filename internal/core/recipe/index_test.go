package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// buildTestRecipes 建立測試用食譜集合
func buildTestRecipes(t *testing.T, raw map[string][]string) []*Recipe {
	t.Helper()
	n := NewNormalizer(DefaultStripTokens())

	recipes := make([]*Recipe, 0, len(raw))
	id := 0
	for name, ingredients := range raw {
		recipes = append(recipes, &Recipe{
			ID:                    id,
			Name:                  name,
			RawIngredients:        ingredients,
			NormalizedIngredients: normalizeIngredientLines(ingredients, n),
			Instructions:          "步驟略",
		})
		id++
	}
	return recipes
}

func TestIndexCompleteness(t *testing.T) {
	recipes := buildTestRecipes(t, map[string][]string{
		"蛋炒飯": {"雞蛋 2顆", "白飯 1碗", "蔥 少許"},
		"番茄炒蛋": {"番茄 2顆", "雞蛋 3顆", "糖 適量"},
	})
	idx := BuildIndex(recipes)

	// 每個食譜的每個正規化 token 都查得到該食譜
	for _, r := range recipes {
		for token := range r.NormalizedIngredients {
			ids := idx.Lookup(token)
			_, ok := ids[r.ID]
			assert.True(t, ok, "token %q 應包含食譜 %d", token, r.ID)
		}
	}

	assert.Equal(t, 2, idx.RecipeCount())
}

func TestIndexLookupUnknownToken(t *testing.T) {
	recipes := buildTestRecipes(t, map[string][]string{
		"蛋炒飯": {"雞蛋 2顆"},
	})
	idx := BuildIndex(recipes)

	assert.Empty(t, idx.Lookup("牛肉"))
}

func TestIndexCandidates(t *testing.T) {
	recipes := buildTestRecipes(t, map[string][]string{
		"蛋炒飯": {"雞蛋 2顆", "白飯 1碗"},
		"滷肉飯": {"豬肉 300克", "白飯 1碗"},
		"牛肉麵": {"牛肉 200克", "麵條 1包"},
	})
	idx := BuildIndex(recipes)

	got := idx.Candidates(TokenSet([]string{"白飯", "牛肉"}))
	assert.Len(t, got, 3)

	got = idx.Candidates(TokenSet([]string{"雞蛋"}))
	assert.Len(t, got, 1)
}

func TestIndexCandidatesEmptyInput(t *testing.T) {
	recipes := buildTestRecipes(t, map[string][]string{
		"蛋炒飯": {"雞蛋 2顆"},
	})
	idx := BuildIndex(recipes)

	// 空集合必須直接回傳空候選，不可出錯
	assert.Empty(t, idx.Candidates(nil))
	assert.Empty(t, idx.Candidates(map[string]struct{}{}))
}

func TestIndexLookupReturnsCopy(t *testing.T) {
	recipes := buildTestRecipes(t, map[string][]string{
		"蛋炒飯": {"雞蛋 2顆"},
	})
	idx := BuildIndex(recipes)

	ids := idx.Lookup("雞蛋")
	delete(ids, 0)

	// 呼叫端修改回傳值不影響索引
	assert.Len(t, idx.Lookup("雞蛋"), 1)
}
