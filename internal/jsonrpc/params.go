package jsonrpc

import (
	"github.com/brbranch/ncbi_mcp/internal/model"
	"github.com/brbranch/ncbi_mcp/internal/service"
)

// FetchSequenceParams は ncbi.get_nucleotide_sequence / ncbi.get_protein_sequence のパラメータ
type FetchSequenceParams struct {
	Accession string `json:"accession"`
	RetType   string `json:"rettype,omitempty"`
}

// ToRequest はサービスリクエストに変換
func (p *FetchSequenceParams) ToRequest(db string) *service.FetchSequenceRequest {
	return &service.FetchSequenceRequest{
		DB:        db,
		Accession: p.Accession,
		RetType:   p.RetType,
	}
}

// MetadataParams は ncbi.get_sequence_metadata のパラメータ
type MetadataParams struct {
	Accession string `json:"accession"`
	DB        string `json:"db,omitempty"` // 省略時はnucleotide
}

// ToRequest はサービスリクエストに変換
func (p *MetadataParams) ToRequest() *service.FetchMetadataRequest {
	db := p.DB
	if db == "" {
		db = model.DBNucleotide
	}
	return &service.FetchMetadataRequest{
		DB:        db,
		Accession: p.Accession,
	}
}

// SearchParams は ncbi.search のパラメータ
type SearchParams struct {
	Query string `json:"query"`
	DB    string `json:"db,omitempty"`         // 省略時はnucleotide
	Limit int    `json:"max_results,omitempty"` // 省略時は10
}

// ToRequest はサービスリクエストに変換
func (p *SearchParams) ToRequest() *service.SearchRequest {
	return &service.SearchRequest{
		DB:    p.DB,
		Query: p.Query,
		Limit: p.Limit,
	}
}

// ListRecentParams は ncbi.list_recent のパラメータ
type ListRecentParams struct {
	Limit *int `json:"limit"`
}

// ToRequest はサービスリクエストに変換
func (p *ListRecentParams) ToRequest() *service.ListRecentRequest {
	return &service.ListRecentRequest{
		Limit: p.Limit,
	}
}

// SetConfigParams は ncbi.set_config のパラメータ
type SetConfigParams struct {
	Eutils *EutilsParams `json:"eutils"`
	Cache  *CacheParams  `json:"cache"`
}

// EutilsParams はE-utilities設定のパラメータ
type EutilsParams struct {
	APIKey *string `json:"apiKey"`
	Email  *string `json:"email"`
	RetMax *int    `json:"retmax"`
}

// CacheParams はキャッシュ設定のパラメータ
type CacheParams struct {
	TTLSeconds *int `json:"ttlSeconds"`
}

// ToRequest はサービスリクエストに変換
func (p *SetConfigParams) ToRequest() *service.SetConfigRequest {
	req := &service.SetConfigRequest{}
	if p.Eutils != nil {
		req.Eutils = &service.EutilsPatch{
			APIKey: p.Eutils.APIKey,
			Email:  p.Eutils.Email,
			RetMax: p.Eutils.RetMax,
		}
	}
	if p.Cache != nil {
		req.Cache = &service.CachePatch{
			TTLSeconds: p.Cache.TTLSeconds,
		}
	}
	return req
}

// PurgeParams は ncbi.purge のパラメータ
type PurgeParams struct {
	ClearHistory bool `json:"clearHistory"`
}
