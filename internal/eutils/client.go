// Package eutils implements an NCBI Entrez E-utilities client for mcp-ncbi.
package eutils

import (
	"context"
	"errors"
	"fmt"
)

// Client はNCBI E-utilitiesへのアクセスを提供するインターフェース
type Client interface {
	// Search はesearchでデータベースを検索し、UIDリストを返す
	Search(ctx context.Context, db, term string, retMax int) (*SearchResult, error)

	// Fetch はefetchでUIDのレコード本文（FASTA/GenBank等）を取得する
	Fetch(ctx context.Context, db string, ids []string, retType string) (string, error)

	// Summary はesummaryでUIDのドキュメント要約を取得する
	Summary(ctx context.Context, db string, ids []string) (*SummaryResult, error)
}

// SearchResult はesearchの結果
type SearchResult struct {
	Count int      // ヒット総数
	IDs   []string // 返却されたUIDリスト（retMaxまで）
}

// SummaryResult はesummaryの結果
type SummaryResult struct {
	Docs []DocSummary // UID順のドキュメント要約
}

// DocSummary は1件のドキュメント要約
type DocSummary struct {
	UID       string // Entrez UID
	Accession string // 抽出済みアクセッション（不明時は "Unknown"）
	Title     string // タイトル（無い場合は "No title available"）
}

// エラー定義
var (
	ErrAPIRequestFailed = errors.New("E-utilities request failed")
	ErrInvalidResponse  = errors.New("invalid E-utilities response")
	ErrRateLimited      = errors.New("rate limited by E-utilities")
	ErrEmptyResult      = errors.New("empty E-utilities result")
)

// APIError は詳細なAPIエラー情報を保持
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("E-utilities error (status %d): %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	if target == ErrAPIRequestFailed {
		return true
	}
	// 429はリトライ後もErrRateLimitedとして扱う
	if target == ErrRateLimited && e.StatusCode == 429 {
		return true
	}
	return false
}
