package session

import (
	"context"
	"encoding/json"
	"fmt"

	"recipe-assistant/internal/core/recipe"
	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisStore 以 Redis 為後端的推薦紀錄存放區
// 多個服務實例共用同一份紀錄時使用；TTL 由 Redis 管理
type RedisStore struct {
	client *redis.Client
	config *config.SessionConfig
}

// storedRecipe 寫入 Redis 的食譜欄位，只保留回覆做法時需要的部分
type storedRecipe struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
	Source       string   `json:"source"`
}

// NewRedisStore 建立 Redis 推薦紀錄存放區
func NewRedisStore(cfg *config.SessionConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("推薦紀錄存放區已初始化",
		zap.String("類型", "redis"),
		zap.String("addr", cfg.RedisAddr),
		zap.Duration("存活時間", cfg.TTL),
	)

	return &RedisStore{
		client: client,
		config: cfg,
	}, nil
}

// Put 覆寫該使用者的推薦紀錄
func (s *RedisStore) Put(ctx context.Context, userID string, recipes []*recipe.Recipe) error {
	stored := make([]storedRecipe, 0, len(recipes))
	for _, r := range recipes {
		stored = append(stored, storedRecipe{
			ID:           r.ID,
			Name:         r.Name,
			Ingredients:  r.RawIngredients,
			Instructions: r.Instructions,
			Source:       r.SourceURL,
		})
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal session entry: %w", err)
	}

	if err := s.client.Set(ctx, s.key(userID), data, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set session entry: %w", err)
	}
	return nil
}

// Get 以 1 起算的編號取回食譜
func (s *RedisStore) Get(ctx context.Context, userID string, ordinal int) (*recipe.Recipe, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, common.ErrInvalidSelection
		}
		return nil, fmt.Errorf("failed to get session entry: %w", err)
	}

	var stored []storedRecipe
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session entry: %w", err)
	}

	if ordinal < 1 || ordinal > len(stored) {
		return nil, common.ErrInvalidSelection
	}

	r := stored[ordinal-1]
	return &recipe.Recipe{
		ID:             r.ID,
		Name:           r.Name,
		RawIngredients: r.Ingredients,
		Instructions:   r.Instructions,
		SourceURL:      r.Source,
	}, nil
}

// key 生成使用者紀錄的快取鍵
func (s *RedisStore) key(userID string) string {
	return fmt.Sprintf("session:recent:%s", userID)
}

// Stats 存放區統計資訊
func (s *RedisStore) Stats() map[string]interface{} {
	return map[string]interface{}{
		"type": "redis",
		"addr": s.config.RedisAddr,
	}
}

// Close 關閉存放區
func (s *RedisStore) Close() error {
	return s.client.Close()
}
