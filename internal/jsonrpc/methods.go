package jsonrpc

import (
	"context"
	"encoding/json"

	"github.com/brbranch/ncbi_mcp/internal/model"
	"github.com/brbranch/ncbi_mcp/internal/service"
)

// handleGetNucleotideSequence は ncbi.get_nucleotide_sequence を処理
func (h *Handler) handleGetNucleotideSequence(ctx context.Context, params any) (any, error) {
	return h.handleFetchSequence(ctx, params, model.DBNucleotide)
}

// handleGetProteinSequence は ncbi.get_protein_sequence を処理
func (h *Handler) handleGetProteinSequence(ctx context.Context, params any) (any, error) {
	return h.handleFetchSequence(ctx, params, model.DBProtein)
}

// handleFetchSequence は配列取得の共通処理
func (h *Handler) handleFetchSequence(ctx context.Context, params any, db string) (any, error) {
	var p FetchSequenceParams
	if err := mapParams(params, &p); err != nil {
		return nil, err
	}

	resp, err := h.sequenceService.FetchSequence(ctx, p.ToRequest(db))
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"accession": resp.Accession,
		"db":        resp.DB,
		"rettype":   resp.RetType,
		"sequence":  resp.Body,
		"cacheHit":  resp.CacheHit,
	}, nil
}

// handleGetSequenceMetadata は ncbi.get_sequence_metadata を処理
func (h *Handler) handleGetSequenceMetadata(ctx context.Context, params any) (any, error) {
	var p MetadataParams
	if err := mapParams(params, &p); err != nil {
		return nil, err
	}

	resp, err := h.sequenceService.FetchMetadata(ctx, p.ToRequest())
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"accession": resp.Accession,
		"db":        resp.DB,
		"rettype":   resp.RetType,
		"metadata":  resp.Body,
		"cacheHit":  resp.CacheHit,
	}, nil
}

// handleSearch は ncbi.search を処理
func (h *Handler) handleSearch(ctx context.Context, params any) (any, error) {
	var p SearchParams
	if err := mapParams(params, &p); err != nil {
		return nil, err
	}

	resp, err := h.searchService.Search(ctx, p.ToRequest())
	if err != nil {
		return nil, err
	}

	results := make([]map[string]any, len(resp.Results))
	for i, r := range resp.Results {
		results[i] = map[string]any{
			"uid":       r.UID,
			"accession": r.Accession,
			"title":     r.Title,
		}
	}

	return map[string]any{
		"db":       resp.DB,
		"query":    resp.Query,
		"count":    resp.Count,
		"results":  results,
		"text":     service.FormatSearchText(resp),
		"cacheHit": resp.CacheHit,
	}, nil
}

// handleListRecent は ncbi.list_recent を処理
func (h *Handler) handleListRecent(ctx context.Context, params any) (any, error) {
	var p ListRecentParams
	if err := mapParams(params, &p); err != nil {
		return nil, err
	}

	resp, err := h.historyService.ListRecent(ctx, p.ToRequest())
	if err != nil {
		return nil, err
	}

	items := make([]map[string]any, len(resp.Items))
	for i, item := range resp.Items {
		items[i] = map[string]any{
			"id":        item.ID,
			"tool":      item.Tool,
			"db":        item.DB,
			"term":      item.Term,
			"cacheHit":  item.CacheHit,
			"createdAt": item.CreatedAt,
		}
	}

	return map[string]any{
		"items": items,
	}, nil
}

// handleGetConfig は ncbi.get_config を処理
func (h *Handler) handleGetConfig(ctx context.Context) (any, error) {
	resp, err := h.configService.GetConfig(ctx)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"transportDefaults": map[string]any{
			"defaultTransport": resp.TransportDefaults.DefaultTransport,
		},
		"eutils": map[string]any{
			"baseUrl":        resp.Eutils.BaseURL,
			"tool":           resp.Eutils.Tool,
			"email":          resp.Eutils.Email,
			"apiKeySet":      resp.Eutils.APIKeySet,
			"retmax":         resp.Eutils.RetMax,
			"timeoutSeconds": resp.Eutils.TimeoutSeconds,
		},
		"cache": map[string]any{
			"type":       resp.Cache.Type,
			"path":       resp.Cache.Path,
			"ttlSeconds": resp.Cache.TTLSeconds,
		},
		"paths": map[string]any{
			"configPath": resp.Paths.ConfigPath,
			"dataDir":    resp.Paths.DataDir,
		},
	}, nil
}

// handleSetConfig は ncbi.set_config を処理
func (h *Handler) handleSetConfig(ctx context.Context, params any) (any, error) {
	var p SetConfigParams
	if err := mapParams(params, &p); err != nil {
		return nil, err
	}

	resp, err := h.configService.SetConfig(ctx, p.ToRequest())
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"ok":        resp.OK,
		"apiKeySet": resp.APIKeySet,
	}, nil
}

// handlePurge は ncbi.purge を処理
func (h *Handler) handlePurge(ctx context.Context, params any) (any, error) {
	var p PurgeParams
	if err := mapParams(params, &p); err != nil {
		return nil, err
	}

	resp, err := h.historyService.Purge(ctx, &service.PurgeRequest{
		ClearHistory: p.ClearHistory,
	})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"cachePurged":   resp.CachePurged,
		"historyPurged": resp.HistoryPurged,
	}, nil
}

// handleHelp は ncbi.help を処理
func (h *Handler) handleHelp(ctx context.Context) (any, error) {
	return map[string]any{
		"text": helpText,
	}, nil
}

// mapParams はanyをターゲット構造体にマッピング
func mapParams(params any, target any) error {
	if params == nil {
		return nil
	}

	// anyをJSONに変換してから構造体にアンマーシャル
	b, err := json.Marshal(params)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, target)
}
