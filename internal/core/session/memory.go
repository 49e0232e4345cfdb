package session

import (
	"context"
	"sync"
	"time"

	"recipe-assistant/internal/core/recipe"
	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"

	"go.uber.org/zap"
)

// MemoryStore 行程內的推薦紀錄存放區
// 容量與存活時間皆有上限，避免以使用者為鍵的紀錄無限成長
type MemoryStore struct {
	config  *config.SessionConfig
	mu      sync.RWMutex
	entries map[string]memoryEntry
	stats   storeStats
	done    chan struct{}
	once    sync.Once
}

// memoryEntry 單一使用者的推薦紀錄
type memoryEntry struct {
	recipes    []*recipe.Recipe
	expiresAt  time.Time
	createdAt  time.Time
	lastAccess time.Time
}

// storeStats 存放區統計
type storeStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewMemoryStore 建立記憶體推薦紀錄存放區
func NewMemoryStore(cfg *config.SessionConfig) *MemoryStore {
	s := &MemoryStore{
		config:  cfg,
		entries: make(map[string]memoryEntry),
		done:    make(chan struct{}),
	}

	// 啟動清理過期紀錄的協程
	go s.startCleanup()

	common.LogInfo("推薦紀錄存放區已初始化",
		zap.String("類型", "memory"),
		zap.Int("最大使用者數", cfg.MaxUsers),
		zap.Duration("存活時間", cfg.TTL),
		zap.Duration("清理間隔", cfg.CleanupInterval),
	)

	return s
}

// Put 覆寫該使用者的推薦紀錄
func (s *MemoryStore) Put(ctx context.Context, userID string, recipes []*recipe.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 容量已滿且為新使用者時，先清過期再做 LRU 淘汰
	if _, exists := s.entries[userID]; !exists && len(s.entries) >= s.config.MaxUsers {
		if s.cleanupLocked() == 0 {
			s.evictLRULocked()
		}
	}

	now := time.Now()
	s.entries[userID] = memoryEntry{
		recipes:    recipes,
		expiresAt:  now.Add(s.config.TTL),
		createdAt:  now,
		lastAccess: now,
	}

	common.LogDebug("推薦紀錄已儲存",
		zap.String("user_id", userID),
		zap.Int("食譜數", len(recipes)),
	)
	return nil
}

// Get 以 1 起算的編號取回食譜
func (s *MemoryStore) Get(ctx context.Context, userID string, ordinal int) (*recipe.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.entries[userID]
	if !exists {
		s.stats.misses++
		return nil, common.ErrInvalidSelection
	}

	if time.Now().After(entry.expiresAt) {
		delete(s.entries, userID)
		s.stats.evictions++
		s.stats.misses++
		return nil, common.ErrInvalidSelection
	}

	if ordinal < 1 || ordinal > len(entry.recipes) {
		s.stats.misses++
		return nil, common.ErrInvalidSelection
	}

	entry.lastAccess = time.Now()
	s.entries[userID] = entry
	s.stats.hits++
	return entry.recipes[ordinal-1], nil
}

// startCleanup 啟動清理過期紀錄的協程
func (s *MemoryStore) startCleanup() {
	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			count := s.cleanupLocked()
			s.mu.Unlock()
			if count > 0 {
				common.LogInfo("過期推薦紀錄已清理",
					zap.Int("清理數量", count),
				)
			}
		case <-s.done:
			return
		}
	}
}

// cleanupLocked 清理過期紀錄，呼叫端須持有寫鎖
func (s *MemoryStore) cleanupLocked() int {
	now := time.Now()
	count := 0
	for userID, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, userID)
			s.stats.evictions++
			count++
		}
	}
	return count
}

// evictLRULocked 淘汰最久未存取的使用者，呼叫端須持有寫鎖
func (s *MemoryStore) evictLRULocked() {
	var oldestUser string
	var oldestAccess time.Time

	for userID, entry := range s.entries {
		if oldestUser == "" || entry.lastAccess.Before(oldestAccess) {
			oldestUser = userID
			oldestAccess = entry.lastAccess
		}
	}

	if oldestUser != "" {
		delete(s.entries, oldestUser)
		s.stats.evictions++
		common.LogInfo("推薦紀錄已淘汰(LRU)",
			zap.String("user_id", oldestUser),
		)
	}
}

// Stats 存放區統計資訊
func (s *MemoryStore) Stats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"type":      "memory",
		"size":      len(s.entries),
		"max_users": s.config.MaxUsers,
		"hits":      s.stats.hits,
		"misses":    s.stats.misses,
		"evictions": s.stats.evictions,
	}
}

// Close 關閉存放區
func (s *MemoryStore) Close() error {
	s.once.Do(func() {
		close(s.done)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]memoryEntry)

	common.LogInfo("推薦紀錄存放區已關閉",
		zap.Int64("命中次數", s.stats.hits),
		zap.Int64("未命中次數", s.stats.misses),
		zap.Int64("淘汰次數", s.stats.evictions),
	)
	return nil
}
