package recipe

import (
	"fmt"
	"sort"
	"strings"

	"recipe-assistant/internal/pkg/common"
)

// emptyPlaceholder 清單為空時顯示的佔位符號
const emptyPlaceholder = "—"

// Card 一張推薦結果卡片，由外部傳輸層負責實際渲染
type Card struct {
	Rank        int    `json:"rank"`
	Title       string `json:"title"`        // "{rank}. {name}"
	Have        string `json:"have"`         // 已排序、頓號分隔的 overlap
	Missing     string `json:"missing"`      // 已排序、頓號分隔的 missing
	ActionLabel string `json:"action_label"` // 按鈕文字
	ActionText  string `json:"action_text"`  // 按鈕送出的訊息："做法 {rank}"
}

// Summary 將推薦結果組成純文字摘要
func Summary(detected []string, results []ScoredCandidate) string {
	sorted := make([]string, len(detected))
	copy(sorted, detected)
	sort.Strings(sorted)

	lines := []string{fmt.Sprintf("偵測到的食材： %s", common.StringSliceToString(sorted))}
	for i, sc := range results {
		have := common.StringSliceToString(sc.Overlap)
		if have == "" {
			have = emptyPlaceholder
		}
		lack := "｜無額外食材"
		if len(sc.Missing) > 0 {
			lack = fmt.Sprintf("｜缺：%s", common.StringSliceToString(sc.Missing))
		}
		lines = append(lines, fmt.Sprintf("%d. %s  (已有：%s%s)", i+1, sc.Recipe.Name, have, lack))
	}
	lines = append(lines, "\n輸入「做法 + 編號」可查看完整步驟喔！")

	return strings.Join(lines, "\n")
}

// Cards 將推薦結果轉為卡片清單，編號從 1 開始
func Cards(results []ScoredCandidate) []Card {
	cards := make([]Card, 0, len(results))
	for i, sc := range results {
		rank := i + 1
		have := common.StringSliceToString(sc.Overlap)
		if have == "" {
			have = emptyPlaceholder
		}
		missing := common.StringSliceToString(sc.Missing)
		if missing == "" {
			missing = emptyPlaceholder
		}
		cards = append(cards, Card{
			Rank:        rank,
			Title:       fmt.Sprintf("%d. %s", rank, sc.Recipe.Name),
			Have:        have,
			Missing:     missing,
			ActionLabel: fmt.Sprintf("看做法(%d)", rank),
			ActionText:  fmt.Sprintf("做法 %d", rank),
		})
	}
	return cards
}

// DetailText 完整做法的文字回覆
func DetailText(r *Recipe) string {
	return fmt.Sprintf("《%s》\n\n%s", r.Name, r.Instructions)
}
