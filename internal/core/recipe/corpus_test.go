package recipe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCorpusFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCorpus(t *testing.T) {
	path := writeCorpusFile(t, `[
		{
			"name": "蛋炒飯",
			"ingredients": ["雞蛋 2顆", "白飯 1碗", "蔥 少許"],
			"instructions": "1. 打蛋 2. 炒飯",
			"source": "https://icook.tw/recipes/1"
		},
		{
			"name": "白切肉",
			"ingredients": ["豬肉 300克"],
			"instructions": "1. 水煮",
			"source": "https://icook.tw/recipes/2"
		}
	]`)

	n := NewNormalizer(DefaultStripTokens())
	recipes, err := LoadCorpus(path, n)
	require.NoError(t, err)
	require.Len(t, recipes, 2)

	assert.Equal(t, 0, recipes[0].ID)
	assert.Equal(t, "蛋炒飯", recipes[0].Name)
	assert.Equal(t, []string{"雞蛋 2顆", "白飯 1碗", "蔥 少許"}, recipes[0].RawIngredients)
	assert.Equal(t, map[string]struct{}{
		"雞蛋": {},
		"白飯": {},
		"蔥":  {},
	}, recipes[0].NormalizedIngredients)
	assert.Equal(t, "https://icook.tw/recipes/1", recipes[0].SourceURL)

	assert.Equal(t, 1, recipes[1].ID)
	assert.Equal(t, map[string]struct{}{"豬肉": {}}, recipes[1].NormalizedIngredients)
}

func TestLoadCorpusIngredientLineUsesFirstField(t *testing.T) {
	path := writeCorpusFile(t, `[
		{"name": "測試", "ingredients": ["雞蛋 2顆 打散備用", "  ", "少許"], "instructions": "", "source": ""}
	]`)

	recipes, err := LoadCorpus(path, NewNormalizer(DefaultStripTokens()))
	require.NoError(t, err)
	require.Len(t, recipes, 1)

	// 只取每行第一個欄位；空白行與正規化後為空的 token 略過
	assert.Equal(t, map[string]struct{}{"雞蛋": {}}, recipes[0].NormalizedIngredients)
}

func TestLoadCorpusMissingFile(t *testing.T) {
	_, err := LoadCorpus(filepath.Join(t.TempDir(), "nope.json"), NewNormalizer(nil))
	assert.Error(t, err)
}

func TestLoadCorpusMalformed(t *testing.T) {
	path := writeCorpusFile(t, `{"not": "an array"`)

	_, err := LoadCorpus(path, NewNormalizer(nil))
	assert.Error(t, err)
}
