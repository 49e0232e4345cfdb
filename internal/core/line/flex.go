package line

import (
	"fmt"

	"recipe-assistant/internal/core/recipe"
)

// CarouselContents 將推薦卡片轉為 Flex 輪播內容
func CarouselContents(cards []recipe.Card) map[string]interface{} {
	bubbles := make([]interface{}, 0, len(cards))
	for _, card := range cards {
		bubbles = append(bubbles, cardToBubble(card))
	}
	return map[string]interface{}{
		"type":     "carousel",
		"contents": bubbles,
	}
}

// cardToBubble 單張卡片的 bubble 結構
func cardToBubble(card recipe.Card) map[string]interface{} {
	return map[string]interface{}{
		"type": "bubble",
		"size": "mega",
		"body": map[string]interface{}{
			"type":    "box",
			"layout":  "vertical",
			"spacing": "md",
			"contents": []interface{}{
				// 料理名稱
				map[string]interface{}{
					"type":   "text",
					"text":   card.Title,
					"wrap":   true,
					"weight": "bold",
					"size":   "lg",
					"margin": "none",
				},
				map[string]interface{}{
					"type":   "text",
					"text":   fmt.Sprintf("⭕ 🈶：%s", card.Have),
					"wrap":   true,
					"size":   "sm",
					"margin": "md",
				},
				map[string]interface{}{
					"type": "text",
					"text": fmt.Sprintf("❌ 🈚：%s", card.Missing),
					"wrap": true,
					"size": "sm",
				},
			},
		},
		// 按鈕回覆「做法 + 編號」
		"footer": map[string]interface{}{
			"type":   "box",
			"layout": "vertical",
			"contents": []interface{}{
				map[string]interface{}{
					"type":  "button",
					"style": "primary",
					"color": "#1DB446",
					"action": map[string]interface{}{
						"type":  "message",
						"label": card.ActionLabel,
						"text":  card.ActionText,
					},
				},
			},
		},
	}
}
