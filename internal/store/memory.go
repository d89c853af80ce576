package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/brbranch/ncbi_mcp/internal/model"
)

// MemoryStore はインメモリStore実装
// cache.type=memory のほか、テストでも使用する
type MemoryStore struct {
	mu          sync.RWMutex
	cache       map[string]*model.CacheEntry // key: db + "\x00" + key + "\x00" + retType
	history     []*model.HistoryEntry        // 追加順
	initialized bool
}

// NewMemoryStore はMemoryStoreを作成する
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: make(map[string]*model.CacheEntry),
	}
}

// Initialize はストアを初期化する
func (s *MemoryStore) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	return nil
}

// Close はストアをクローズする
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache = make(map[string]*model.CacheEntry)
	s.history = nil
	s.initialized = false
	return nil
}

// cacheKey はキャッシュのマップキーを生成する
func cacheKey(db, key, retType string) string {
	return db + "\x00" + key + "\x00" + retType
}

// CacheGet はキャッシュからエントリを取得する（期限切れは返さない）
func (s *MemoryStore) CacheGet(ctx context.Context, db, key, retType string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return "", false, ErrNotInitialized
	}

	entry, ok := s.cache[cacheKey(db, key, retType)]
	if !ok {
		return "", false, nil
	}

	if expired(entry.ExpiresAt) {
		return "", false, nil
	}

	return entry.Body, true, nil
}

// CachePut はキャッシュにエントリを保存する（同キーは上書き）
func (s *MemoryStore) CachePut(ctx context.Context, entry *model.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}

	copied := *entry
	s.cache[cacheKey(entry.DB, entry.Key, entry.RetType)] = &copied
	return nil
}

// AddHistory は履歴を追加する
func (s *MemoryStore) AddHistory(ctx context.Context, entry *model.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}

	copied := *entry
	s.history = append(s.history, &copied)
	return nil
}

// ListHistory は履歴をcreatedAt降順で返す
func (s *MemoryStore) ListHistory(ctx context.Context, limit int) ([]*model.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}

	entries := make([]*model.HistoryEntry, len(s.history))
	copy(entries, s.history)

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt > entries[j].CreatedAt
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return entries, nil
}

// Purge は期限切れキャッシュ（と指定時は履歴）を削除する
func (s *MemoryStore) Purge(ctx context.Context, clearHistory bool) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return 0, 0, ErrNotInitialized
	}

	cachePurged := 0
	for key, entry := range s.cache {
		if expired(entry.ExpiresAt) {
			delete(s.cache, key)
			cachePurged++
		}
	}

	historyPurged := 0
	if clearHistory {
		historyPurged = len(s.history)
		s.history = nil
	}

	return cachePurged, historyPurged, nil
}

// expired はRFC3339の期限を過ぎているかを判定する
// パース不能なエントリは期限切れ扱い
func expired(expiresAt string) bool {
	t, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil {
		return true
	}
	return !time.Now().UTC().Before(t)
}
