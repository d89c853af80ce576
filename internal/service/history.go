package service

import (
	"context"
	"fmt"

	"github.com/brbranch/ncbi_mcp/internal/store"
)

// defaultHistoryLimit はlimit未指定時の履歴件数
const defaultHistoryLimit = 20

// historyService はHistoryServiceの実装
type historyService struct {
	store store.Store
}

// NewHistoryService はHistoryServiceの新しいインスタンスを作成
func NewHistoryService(s store.Store) HistoryService {
	return &historyService{store: s}
}

// ListRecent は最近の取得履歴を新しい順で返す
func (s *historyService) ListRecent(ctx context.Context, req *ListRecentRequest) (*ListRecentResponse, error) {
	limit := defaultHistoryLimit
	if req.Limit != nil {
		limit = *req.Limit
		// 明示的な0件要求
		if limit == 0 {
			return &ListRecentResponse{Items: []HistoryItem{}}, nil
		}
	}

	entries, err := s.store.ListHistory(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	items := make([]HistoryItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, HistoryItem{
			ID:        entry.ID,
			Tool:      entry.Tool,
			DB:        entry.DB,
			Term:      entry.Term,
			CacheHit:  entry.CacheHit,
			CreatedAt: entry.CreatedAt,
		})
	}

	return &ListRecentResponse{Items: items}, nil
}

// Purge は期限切れキャッシュ（と指定時は履歴）を削除する
func (s *historyService) Purge(ctx context.Context, req *PurgeRequest) (*PurgeResponse, error) {
	cachePurged, historyPurged, err := s.store.Purge(ctx, req.ClearHistory)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	return &PurgeResponse{
		CachePurged:   cachePurged,
		HistoryPurged: historyPurged,
	}, nil
}
