package recipe

import (
	"strings"
)

// fullWidthSpace 全形空白字元
const fullWidthSpace = "　"

// DefaultStripTokens 預設的量詞／單位詞彙表
func DefaultStripTokens() []string {
	return []string{
		"顆", "條", "片", "絲", "克", "g", "kg",
		"匙", "茶匙", "大匙", "杯", "罐", "包", "塊",
		"少許", "適量", "些許",
	}
}

// Normalizer 食材名稱正規化器
// 將食材字串去除量詞／單位詞彙、空白與大小寫差異後，作為配對用 token。
// 索引食譜與處理使用者輸入必須使用同一個 Normalizer，否則配對會靜默失效。
type Normalizer struct {
	stripTokens []string
	replacer    *strings.Replacer
}

// NewNormalizer 依量詞詞彙表建立正規化器
// stripTokens 依序套用；詞彙表為資料驅動設定，可獨立擴充與測試
func NewNormalizer(stripTokens []string) *Normalizer {
	pairs := make([]string, 0, len(stripTokens)*2+2)
	kept := make([]string, 0, len(stripTokens))
	for _, tok := range stripTokens {
		tok = strings.ToLower(tok)
		if tok == "" {
			continue
		}
		kept = append(kept, tok)
		pairs = append(pairs, tok, "")
	}
	pairs = append(pairs, fullWidthSpace, "")

	return &Normalizer{
		stripTokens: kept,
		replacer:    strings.NewReplacer(pairs...),
	}
}

// Normalize 正規化食材字串
// 轉小寫後反覆移除量詞與空白直到穩定，因此 Normalize(Normalize(x)) == Normalize(x)。
// 對任何輸入皆不會失敗，無法處理的部分原樣保留。
func (n *Normalizer) Normalize(raw string) string {
	s := strings.ToLower(raw)
	for {
		next := n.replacer.Replace(s)
		// 移除所有空白（含全形空白）
		next = strings.Join(strings.Fields(next), "")
		if next == s {
			return s
		}
		s = next
	}
}

// NormalizeAll 正規化多個食材字串並去除重複與空值
func (n *Normalizer) NormalizeAll(raws []string) map[string]struct{} {
	set := make(map[string]struct{}, len(raws))
	for _, raw := range raws {
		token := n.Normalize(raw)
		if token == "" {
			continue
		}
		set[token] = struct{}{}
	}
	return set
}

// StripTokens 回傳目前使用的量詞詞彙表
func (n *Normalizer) StripTokens() []string {
	out := make([]string, len(n.stripTokens))
	copy(out, n.stripTokens)
	return out
}
