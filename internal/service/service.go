package service

import (
	"context"
	"errors"
	"fmt"
)

// SequenceService は配列取得のビジネスロジックを提供
type SequenceService interface {
	FetchSequence(ctx context.Context, req *FetchSequenceRequest) (*FetchSequenceResponse, error)
	FetchMetadata(ctx context.Context, req *FetchMetadataRequest) (*FetchSequenceResponse, error)
}

// SearchService はNCBI検索を提供
type SearchService interface {
	Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error)
}

// HistoryService は取得履歴の参照とメンテナンスを提供
type HistoryService interface {
	ListRecent(ctx context.Context, req *ListRecentRequest) (*ListRecentResponse, error)
	Purge(ctx context.Context, req *PurgeRequest) (*PurgeResponse, error)
}

// ConfigService は設定の取得・変更を提供
type ConfigService interface {
	GetConfig(ctx context.Context) (*GetConfigResponse, error)
	SetConfig(ctx context.Context, req *SetConfigRequest) (*SetConfigResponse, error)
}

// エラー定義
var (
	ErrAccessionRequired = errors.New("accession is required")
	ErrInvalidAccession  = errors.New("invalid accession format")
	ErrInvalidDatabase   = errors.New("invalid database")
	ErrInvalidRetType    = errors.New("invalid rettype")
	ErrQueryRequired     = errors.New("query is required")
	ErrRecordNotFound    = errors.New("record not found")
	ErrStoreFailure      = errors.New("store operation failed")
)

// NotFoundError はデータベースとアクセッションを保持するrecord not found
type NotFoundError struct {
	DB        string
	Accession string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no records found for accession %s in %s database", e.Accession, e.DB)
}

// Is はErrRecordNotFoundとのerrors.Is比較を可能にする
func (e *NotFoundError) Is(target error) bool {
	return target == ErrRecordNotFound
}
