package service

import "github.com/brbranch/ncbi_mcp/internal/model"

// 履歴に記録する操作名
const (
	ToolGetNucleotideSequence = "get_nucleotide_sequence"
	ToolGetProteinSequence    = "get_protein_sequence"
	ToolGetSequenceMetadata   = "get_sequence_metadata"
	ToolSearchNCBI            = "search_ncbi"
)

// FetchSequenceRequest は配列取得リクエスト
type FetchSequenceRequest struct {
	DB        string // nucleotide | protein
	Accession string
	RetType   string // 空ならfasta
}

// FetchSequenceResponse は配列取得レスポンス
type FetchSequenceResponse struct {
	Accession string
	DB        string
	RetType   string
	Body      string // efetchの生テキスト（FASTA/GenBank/GenPept）
	CacheHit  bool
}

// FetchMetadataRequest はメタデータ取得リクエスト
type FetchMetadataRequest struct {
	DB        string // nucleotide | protein
	Accession string
}

// SearchRequest は検索リクエスト
type SearchRequest struct {
	DB    string // nucleotide | protein | gene、空ならnucleotide
	Query string
	Limit int // 0ならデフォルト10
}

// SearchResponse は検索レスポンス
type SearchResponse struct {
	DB       string
	Query    string
	Count    int // NCBI側の総ヒット数（取得件数より大きいことがある）
	Results  []SearchResult
	CacheHit bool
}

// SearchResult は検索結果の1件
type SearchResult struct {
	UID       string `json:"uid"`
	Accession string `json:"accession"`
	Title     string `json:"title"`
}

// ListRecentRequest は履歴取得リクエスト
type ListRecentRequest struct {
	Limit *int // nilならデフォルト20
}

// ListRecentResponse は履歴取得レスポンス
type ListRecentResponse struct {
	Items []HistoryItem
}

// HistoryItem は履歴の1件
type HistoryItem struct {
	ID        string
	Tool      string
	DB        string
	Term      string
	CacheHit  bool
	CreatedAt string
}

// PurgeRequest はメンテナンスリクエスト
type PurgeRequest struct {
	ClearHistory bool
}

// PurgeResponse はメンテナンスレスポンス
type PurgeResponse struct {
	CachePurged   int
	HistoryPurged int
}

// GetConfigResponse は設定取得レスポンス
// APIキーの値そのものは返さない（APIKeySetのみ）
type GetConfigResponse struct {
	TransportDefaults model.TransportDefaults
	Eutils            EutilsView
	Cache             model.CacheConfig
	Paths             model.PathsConfig
}

// EutilsView はAPIキーを伏せたE-utilities設定ビュー
type EutilsView struct {
	BaseURL        string
	Tool           string
	Email          *string
	APIKeySet      bool
	RetMax         int
	TimeoutSeconds int
}

// SetConfigRequest は設定変更リクエスト
type SetConfigRequest struct {
	Eutils *EutilsPatch
	Cache  *CachePatch
}

// EutilsPatch はE-utilities設定パッチ
type EutilsPatch struct {
	APIKey *string // 空文字でクリア
	Email  *string // 空文字でクリア
	RetMax *int
}

// CachePatch はキャッシュ設定パッチ
type CachePatch struct {
	TTLSeconds *int
}

// SetConfigResponse は設定変更レスポンス
type SetConfigResponse struct {
	OK        bool
	APIKeySet bool
}
