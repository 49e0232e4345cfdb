package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer(DefaultStripTokens())

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"量詞在後", "雞蛋2顆", "雞蛋2"},
		{"單位在後", "白飯1杯", "白飯1"},
		{"少許", "蔥少許", "蔥"},
		{"適量", "鹽適量", "鹽"},
		{"半形空白", "雞 蛋", "雞蛋"},
		{"全形空白", "雞　蛋", "雞蛋"},
		{"大寫單位", "sugar 10G", "sugar10"},
		{"公斤單位", "豬肉1kg", "豬肉1"},
		{"無可移除內容", "牛肉", "牛肉"},
		{"空字串", "", ""},
		{"只有量詞", "少許", ""},
		{"英文大小寫", "Tomato", "tomato"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer(DefaultStripTokens())

	inputs := []string{
		"雞蛋2顆",
		"白飯 1碗",
		"蔥　少許",
		"豬肉1kg",
		// 單次移除後片段重新相鄰的案例
		"適適量量",
		"少少許許",
		"k g",
		"",
		"牛肉",
	}

	for _, in := range inputs {
		once := n.Normalize(in)
		twice := n.Normalize(once)
		assert.Equal(t, once, twice, "Normalize 必須冪等: %q", in)
	}
}

func TestNormalizeAll(t *testing.T) {
	n := NewNormalizer(DefaultStripTokens())

	set := n.NormalizeAll([]string{"雞蛋2顆", "雞蛋", "少許", ""})

	assert.Equal(t, map[string]struct{}{
		"雞蛋2": {},
		"雞蛋":  {},
	}, set)
}

func TestNewNormalizerSkipsEmptyTokens(t *testing.T) {
	n := NewNormalizer([]string{"", "顆"})

	assert.Equal(t, []string{"顆"}, n.StripTokens())
	assert.Equal(t, "蛋1", n.Normalize("蛋1顆"))
}
