package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"recipe-assistant/internal/core/recipe"
)

// corpus-check 驗證爬蟲輸出的食譜資料檔並輸出索引統計
// 部署前先跑一次，確認資料檔能被服務載入
func main() {
	path := flag.String("corpus", "data/icook_data.json", "食譜資料檔路徑")
	top := flag.Int("top", 10, "列出最常出現的食材 token 數量")
	flag.Parse()

	normalizer := recipe.NewNormalizer(recipe.DefaultStripTokens())
	recipes, err := recipe.LoadCorpus(*path, normalizer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "corpus check failed: %v\n", err)
		os.Exit(1)
	}

	index := recipe.BuildIndex(recipes)

	empty := 0
	counts := make(map[string]int)
	for _, r := range recipes {
		if len(r.NormalizedIngredients) == 0 {
			empty++
		}
		for token := range r.NormalizedIngredients {
			counts[token]++
		}
	}

	fmt.Printf("corpus: %s\n", *path)
	fmt.Printf("recipes: %d\n", index.RecipeCount())
	fmt.Printf("unique tokens: %d\n", index.TokenCount())
	fmt.Printf("recipes without ingredients: %d\n", empty)

	tokens := make([]string, 0, len(counts))
	for token := range counts {
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if counts[tokens[i]] != counts[tokens[j]] {
			return counts[tokens[i]] > counts[tokens[j]]
		}
		return tokens[i] < tokens[j]
	})

	if *top > len(tokens) {
		*top = len(tokens)
	}
	fmt.Printf("top %d tokens:\n", *top)
	for _, token := range tokens[:*top] {
		fmt.Printf("  %-12s %d\n", token, counts[token])
	}
}
