package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/brbranch/ncbi_mcp/internal/eutils"
	"github.com/brbranch/ncbi_mcp/internal/model"
	"github.com/brbranch/ncbi_mcp/internal/store"
	"github.com/google/uuid"
)

// sequenceService はSequenceServiceの実装
type sequenceService struct {
	client eutils.Client
	store  store.Store
	ttl    time.Duration // 0以下ならキャッシュしない
}

// NewSequenceService はSequenceServiceの新しいインスタンスを作成
func NewSequenceService(client eutils.Client, s store.Store, ttl time.Duration) SequenceService {
	return &sequenceService{
		client: client,
		store:  s,
		ttl:    ttl,
	}
}

// FetchSequence はアクセッション番号で配列を取得する
func (s *sequenceService) FetchSequence(ctx context.Context, req *FetchSequenceRequest) (*FetchSequenceResponse, error) {
	// バリデーション
	if !model.ValidSequenceDB(req.DB) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDatabase, req.DB)
	}

	retType := req.RetType
	if retType == "" {
		retType = model.RetTypeFASTA
	}
	// DBごとに許容rettypeが異なる: nucleotideはfasta/gb、proteinはfasta/gp
	if retType != model.RetTypeFASTA && retType != model.MetadataRetType(req.DB) {
		return nil, fmt.Errorf("%w: %s for %s", ErrInvalidRetType, retType, req.DB)
	}

	tool := ToolGetNucleotideSequence
	if req.DB == model.DBProtein {
		tool = ToolGetProteinSequence
	}

	return s.fetch(ctx, tool, req.DB, req.Accession, retType)
}

// FetchMetadata はアクセッション番号でメタデータ（GenBank/GenPeptフラットファイル）を取得する
func (s *sequenceService) FetchMetadata(ctx context.Context, req *FetchMetadataRequest) (*FetchSequenceResponse, error) {
	if !model.ValidSequenceDB(req.DB) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDatabase, req.DB)
	}

	// nucleotideはgb、proteinはgp
	retType := model.MetadataRetType(req.DB)

	return s.fetch(ctx, ToolGetSequenceMetadata, req.DB, req.Accession, retType)
}

// fetch はキャッシュ→esearch→efetchの共通パイプライン
func (s *sequenceService) fetch(ctx context.Context, tool, db, accession, retType string) (*FetchSequenceResponse, error) {
	if accession == "" {
		return nil, ErrAccessionRequired
	}
	// ネットワークアクセス前に構文を検証する
	if !model.ValidAccession(accession) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAccession, accession)
	}

	// キャッシュ確認
	if s.ttl > 0 {
		body, found, err := s.store.CacheGet(ctx, db, accession, retType)
		if err != nil {
			// キャッシュ障害はネットワーク取得に切り替えて続行
			slog.Warn("cache lookup failed", "db", db, "accession", accession, "error", err)
		} else if found {
			s.recordHistory(ctx, tool, db, accession, true)
			return &FetchSequenceResponse{
				Accession: accession,
				DB:        db,
				RetType:   retType,
				Body:      body,
				CacheHit:  true,
			}, nil
		}
	}

	// アクセッションをUIDに解決
	searchResult, err := s.client.Search(ctx, db, accession+"[accn]", 1)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve accession: %w", err)
	}
	if len(searchResult.IDs) == 0 {
		return nil, &NotFoundError{DB: db, Accession: accession}
	}

	// 本文を取得
	body, err := s.client.Fetch(ctx, db, searchResult.IDs[:1], retType)
	if err != nil {
		if errors.Is(err, eutils.ErrEmptyResult) {
			return nil, &NotFoundError{DB: db, Accession: accession}
		}
		return nil, fmt.Errorf("failed to fetch sequence: %w", err)
	}

	// キャッシュ保存
	if s.ttl > 0 {
		entry := &model.CacheEntry{
			DB:        db,
			Key:       accession,
			RetType:   retType,
			Body:      body,
			ExpiresAt: time.Now().UTC().Add(s.ttl).Format(time.RFC3339),
		}
		if err := s.store.CachePut(ctx, entry); err != nil {
			slog.Warn("cache write failed", "db", db, "accession", accession, "error", err)
		}
	}

	s.recordHistory(ctx, tool, db, accession, false)

	return &FetchSequenceResponse{
		Accession: accession,
		DB:        db,
		RetType:   retType,
		Body:      body,
		CacheHit:  false,
	}, nil
}

// recordHistory は取得履歴を記録する（失敗してもリクエストは成功扱い）
func (s *sequenceService) recordHistory(ctx context.Context, tool, db, term string, cacheHit bool) {
	entry := &model.HistoryEntry{
		ID:        uuid.New().String(),
		Tool:      tool,
		DB:        db,
		Term:      term,
		CacheHit:  cacheHit,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.store.AddHistory(ctx, entry); err != nil {
		slog.Warn("history write failed", "tool", tool, "term", term, "error", err)
	}
}
