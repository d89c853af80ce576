package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/brbranch/ncbi_mcp/internal/eutils"
	"github.com/brbranch/ncbi_mcp/internal/model"
	"github.com/brbranch/ncbi_mcp/internal/store"
	"github.com/google/uuid"
)

const (
	// defaultSearchLimit は設定にretMaxが無い場合の取得件数
	defaultSearchLimit = 10

	// searchRetType は検索結果キャッシュのrettype識別子
	searchRetType = "search"
)

// searchService はSearchServiceの実装
type searchService struct {
	client       eutils.Client
	store        store.Store
	ttl          time.Duration // 0以下ならキャッシュしない
	defaultLimit int           // limit未指定時の取得件数（設定のretMax）
}

// NewSearchService はSearchServiceの新しいインスタンスを作成
// retMaxが0以下の場合はdefaultSearchLimitを使用
func NewSearchService(client eutils.Client, s store.Store, ttl time.Duration, retMax int) SearchService {
	if retMax <= 0 {
		retMax = defaultSearchLimit
	}
	return &searchService{
		client:       client,
		store:        s,
		ttl:          ttl,
		defaultLimit: retMax,
	}
}

// searchPayload は検索結果のキャッシュ形式
type searchPayload struct {
	Count   int            `json:"count"`
	Results []SearchResult `json:"results"`
}

// Search はesearch+esummaryでNCBIを検索する
func (s *searchService) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	// バリデーション
	if req.Query == "" {
		return nil, ErrQueryRequired
	}

	db := req.DB
	if db == "" {
		db = model.DBNucleotide
	}
	if !model.ValidSearchDB(db) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDatabase, db)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}

	// limitが違えば結果も違うのでキャッシュキーに含める
	cacheKey := req.Query + "#" + strconv.Itoa(limit)

	// キャッシュ確認
	if s.ttl > 0 {
		body, found, err := s.store.CacheGet(ctx, db, cacheKey, searchRetType)
		if err != nil {
			slog.Warn("cache lookup failed", "db", db, "query", req.Query, "error", err)
		} else if found {
			var payload searchPayload
			if err := json.Unmarshal([]byte(body), &payload); err == nil {
				s.recordHistory(ctx, db, req.Query, true)
				return &SearchResponse{
					DB:       db,
					Query:    req.Query,
					Count:    payload.Count,
					Results:  payload.Results,
					CacheHit: true,
				}, nil
			}
			// 壊れたエントリは無視して再取得
			slog.Warn("discarding malformed cache entry", "db", db, "query", req.Query)
		}
	}

	// esearchでUID一覧を取得
	searchResult, err := s.client.Search(ctx, db, req.Query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	// ヒット0件はエラーではなく空の結果
	if len(searchResult.IDs) == 0 {
		return &SearchResponse{
			DB:      db,
			Query:   req.Query,
			Count:   0,
			Results: []SearchResult{},
		}, nil
	}

	// esummaryで要約を取得
	summary, err := s.client.Summary(ctx, db, searchResult.IDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch summaries: %w", err)
	}

	results := make([]SearchResult, 0, len(summary.Docs))
	for _, doc := range summary.Docs {
		results = append(results, SearchResult{
			UID:       doc.UID,
			Accession: doc.Accession,
			Title:     doc.Title,
		})
	}

	// キャッシュ保存
	if s.ttl > 0 {
		payload, err := json.Marshal(searchPayload{
			Count:   searchResult.Count,
			Results: results,
		})
		if err == nil {
			entry := &model.CacheEntry{
				DB:        db,
				Key:       cacheKey,
				RetType:   searchRetType,
				Body:      string(payload),
				ExpiresAt: time.Now().UTC().Add(s.ttl).Format(time.RFC3339),
			}
			if err := s.store.CachePut(ctx, entry); err != nil {
				slog.Warn("cache write failed", "db", db, "query", req.Query, "error", err)
			}
		}
	}

	s.recordHistory(ctx, db, req.Query, false)

	return &SearchResponse{
		DB:       db,
		Query:    req.Query,
		Count:    searchResult.Count,
		Results:  results,
		CacheHit: false,
	}, nil
}

// recordHistory は検索履歴を記録する（失敗してもリクエストは成功扱い）
func (s *searchService) recordHistory(ctx context.Context, db, term string, cacheHit bool) {
	entry := &model.HistoryEntry{
		ID:        uuid.New().String(),
		Tool:      ToolSearchNCBI,
		DB:        db,
		Term:      term,
		CacheHit:  cacheHit,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.store.AddHistory(ctx, entry); err != nil {
		slog.Warn("history write failed", "tool", ToolSearchNCBI, "term", term, "error", err)
	}
}

// FormatSearchText は検索結果をツール出力用のテキストに整形する
func FormatSearchText(resp *SearchResponse) string {
	if len(resp.Results) == 0 {
		return fmt.Sprintf("No results found for '%s' in %s database", resp.Query, resp.DB)
	}

	text := fmt.Sprintf("Found %d results for '%s' in %s database:\n\n", resp.Count, resp.Query, resp.DB)
	for _, r := range resp.Results {
		text += fmt.Sprintf("ID: %s, Accession: %s, Title: %s\n", r.UID, r.Accession, r.Title)
	}
	return text
}
