// Package store provides response cache and fetch history storage.
package store

import (
	"context"
	"errors"

	"github.com/brbranch/ncbi_mcp/internal/model"
)

// Store はキャッシュと履歴の抽象インターフェース
type Store interface {
	// キャッシュ操作
	// CacheGetは有効期限切れのエントリを返さない（found=false）
	CacheGet(ctx context.Context, db, key, retType string) (string, bool, error)
	CachePut(ctx context.Context, entry *model.CacheEntry) error

	// 履歴操作
	AddHistory(ctx context.Context, entry *model.HistoryEntry) error
	ListHistory(ctx context.Context, limit int) ([]*model.HistoryEntry, error)

	// Purgeは期限切れキャッシュを削除し、clearHistory指定時は履歴も消す
	// 戻り値は削除したキャッシュ件数と履歴件数
	Purge(ctx context.Context, clearHistory bool) (int, int, error)

	// 初期化・終了
	Initialize(ctx context.Context) error
	Close() error
}

// エラー定義
var (
	ErrNotInitialized = errors.New("store not initialized")
)
