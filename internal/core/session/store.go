package session

import (
	"context"
	"fmt"

	"recipe-assistant/internal/core/recipe"
	"recipe-assistant/internal/infrastructure/config"
)

// Store 使用者最近一次推薦清單的存取介面
// Put 完全覆寫該使用者先前的紀錄（last-write-wins）；
// Get 以 1 起算的編號取回食譜，超出範圍或查無紀錄回傳 common.ErrInvalidSelection
type Store interface {
	Put(ctx context.Context, userID string, recipes []*recipe.Recipe) error
	Get(ctx context.Context, userID string, ordinal int) (*recipe.Recipe, error)
	Stats() map[string]interface{}
	Close() error
}

// NewStore 依設定建立推薦紀錄存放區
func NewStore(cfg *config.SessionConfig) (Store, error) {
	switch cfg.Store {
	case "memory":
		return NewMemoryStore(cfg), nil
	case "redis":
		return NewRedisStore(cfg)
	default:
		return nil, fmt.Errorf("unknown session store: %s", cfg.Store)
	}
}
