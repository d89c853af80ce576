package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/brbranch/ncbi_mcp/internal/model"
	_ "modernc.org/sqlite"
)

// SQLiteStore はSQLiteを使用したStore実装
type SQLiteStore struct {
	mu          sync.RWMutex
	db          *sql.DB
	dbPath      string
	initialized bool
}

// NewSQLiteStore はSQLiteStoreを作成する
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WALモードを有効化
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Initialize はストアを初期化する
func (s *SQLiteStore) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// cacheテーブル作成
	cacheSQL := `
	CREATE TABLE IF NOT EXISTS cache (
		db TEXT NOT NULL,
		key TEXT NOT NULL,
		rettype TEXT NOT NULL,
		body TEXT NOT NULL,
		expires_at TEXT NOT NULL,
		PRIMARY KEY (db, key, rettype)
	);
	CREATE INDEX IF NOT EXISTS idx_cache_expires_at ON cache(expires_at);
	`

	if _, err := s.db.ExecContext(ctx, cacheSQL); err != nil {
		return fmt.Errorf("failed to create cache table: %w", err)
	}

	// historyテーブル作成
	historySQL := `
	CREATE TABLE IF NOT EXISTS history (
		id TEXT PRIMARY KEY,
		tool TEXT NOT NULL,
		db TEXT NOT NULL,
		term TEXT NOT NULL,
		cache_hit INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_history_created_at ON history(created_at);
	`

	if _, err := s.db.ExecContext(ctx, historySQL); err != nil {
		return fmt.Errorf("failed to create history table: %w", err)
	}

	s.initialized = true
	return nil
}

// Close はストアをクローズする
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = false
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CacheGet はキャッシュからエントリを取得する（期限切れは返さない）
func (s *SQLiteStore) CacheGet(ctx context.Context, db, key, retType string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return "", false, ErrNotInitialized
	}

	var body, expiresAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT body, expires_at FROM cache
		WHERE db = ? AND key = ? AND rettype = ?
	`, db, key, retType).Scan(&body, &expiresAt)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get cache entry: %w", err)
	}

	// expires_atはRFC3339（UTC）なので文字列比較では判定せずパースする
	if expired(expiresAt) {
		return "", false, nil
	}

	return body, true, nil
}

// CachePut はキャッシュにエントリを保存する（同キーは上書き）
func (s *SQLiteStore) CachePut(ctx context.Context, entry *model.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache (db, key, rettype, body, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(db, key, rettype) DO UPDATE SET
			body = excluded.body,
			expires_at = excluded.expires_at
	`, entry.DB, entry.Key, entry.RetType, entry.Body, entry.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to upsert cache entry: %w", err)
	}

	return nil
}

// AddHistory は履歴を追加する
func (s *SQLiteStore) AddHistory(ctx context.Context, entry *model.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}

	cacheHit := 0
	if entry.CacheHit {
		cacheHit = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history (id, tool, db, term, cache_hit, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Tool, entry.DB, entry.Term, cacheHit, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}

	return nil
}

// ListHistory は履歴をcreatedAt降順で返す
func (s *SQLiteStore) ListHistory(ctx context.Context, limit int) ([]*model.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}

	query := `
		SELECT id, tool, db, term, cache_hit, created_at
		FROM history
		ORDER BY created_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []*model.HistoryEntry

	for rows.Next() {
		var (
			entry    model.HistoryEntry
			cacheHit int
		)

		if err := rows.Scan(&entry.ID, &entry.Tool, &entry.DB, &entry.Term, &cacheHit, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		entry.CacheHit = cacheHit != 0
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, nil
}

// Purge は期限切れキャッシュ（と指定時は履歴）を削除する
func (s *SQLiteStore) Purge(ctx context.Context, clearHistory bool) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return 0, 0, ErrNotInitialized
	}

	now := time.Now().UTC().Format(time.RFC3339)
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM cache WHERE expires_at <= ?
	`, now)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to purge cache: %w", err)
	}

	cachePurged, err := result.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	var historyPurged int64
	if clearHistory {
		result, err := s.db.ExecContext(ctx, `DELETE FROM history`)
		if err != nil {
			return int(cachePurged), 0, fmt.Errorf("failed to clear history: %w", err)
		}
		historyPurged, err = result.RowsAffected()
		if err != nil {
			return int(cachePurged), 0, fmt.Errorf("failed to get rows affected: %w", err)
		}
	}

	return int(cachePurged), int(historyPurged), nil
}
