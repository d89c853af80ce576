// Package jsonrpc implements JSON-RPC 2.0 handlers for mcp-ncbi.
package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/brbranch/ncbi_mcp/internal/eutils"
	"github.com/brbranch/ncbi_mcp/internal/model"
	"github.com/brbranch/ncbi_mcp/internal/service"
)

// Handler はJSON-RPCリクエストを処理する
type Handler struct {
	sequenceService service.SequenceService
	searchService   service.SearchService
	historyService  service.HistoryService
	configService   service.ConfigService
}

// New は新しいHandlerを生成
func New(
	sequenceService service.SequenceService,
	searchService service.SearchService,
	historyService service.HistoryService,
	configService service.ConfigService,
) *Handler {
	return &Handler{
		sequenceService: sequenceService,
		searchService:   searchService,
		historyService:  historyService,
		configService:   configService,
	}
}

// Handle はJSON-RPCリクエストをパースしてディスパッチ
// 戻り値は *model.Response または *model.ErrorResponse のJSON bytes
// 通知（IDなし）はnilを返す
func (h *Handler) Handle(ctx context.Context, requestBytes []byte) []byte {
	// 1. パース
	var req model.Request
	if err := json.Unmarshal(requestBytes, &req); err != nil {
		return h.encodeError(model.NewParseError(err.Error()))
	}

	// 2. バージョン確認
	if req.JSONRPC != "2.0" {
		return h.encodeError(model.NewInvalidRequest(req.ID, "jsonrpc must be 2.0"))
	}

	// 3. method確認
	if req.Method == "" {
		return h.encodeError(model.NewInvalidRequest(req.ID, "method is required"))
	}

	// 4. ディスパッチ
	result, err := h.dispatch(ctx, req.ID, req.Method, req.Params)

	// IDなしは通知なのでレスポンスを返さない（JSON-RPC 2.0）
	if req.ID == nil {
		return nil
	}

	if err != nil {
		return h.encodeError(h.mapError(req.ID, err))
	}

	// 5. 成功レスポンス
	return h.encodeResponse(model.NewResponse(req.ID, result))
}

// dispatch はメソッドに応じて適切なハンドラーを呼び出す
func (h *Handler) dispatch(ctx context.Context, id any, method string, params any) (any, error) {
	switch method {
	case "initialize":
		return h.handleInitialize(ctx, params)
	case "notifications/initialized":
		// クライアントの初期化完了通知。処理は不要
		return nil, nil
	case "tools/list":
		return h.handleToolsList(ctx, params)
	case "tools/call":
		return h.handleToolsCall(ctx, id, params)
	default:
		return h.dispatchInternal(ctx, method, params)
	}
}

// dispatchInternal は内部メソッドを呼び出す（直接呼び出しとtools/call共用）
func (h *Handler) dispatchInternal(ctx context.Context, method string, params any) (any, error) {
	switch method {
	case "ncbi.get_nucleotide_sequence":
		return h.handleGetNucleotideSequence(ctx, params)
	case "ncbi.get_protein_sequence":
		return h.handleGetProteinSequence(ctx, params)
	case "ncbi.get_sequence_metadata":
		return h.handleGetSequenceMetadata(ctx, params)
	case "ncbi.search":
		return h.handleSearch(ctx, params)
	case "ncbi.list_recent":
		return h.handleListRecent(ctx, params)
	case "ncbi.get_config":
		return h.handleGetConfig(ctx)
	case "ncbi.set_config":
		return h.handleSetConfig(ctx, params)
	case "ncbi.purge":
		return h.handlePurge(ctx, params)
	case "ncbi.help":
		return h.handleHelp(ctx)
	default:
		return nil, &methodNotFoundError{method: method}
	}
}

// mapError はサービスエラーをJSON-RPCエラーに変換
func (h *Handler) mapError(id any, err error) *model.ErrorResponse {
	// method not found
	var mnfErr *methodNotFoundError
	if errors.As(err, &mnfErr) {
		return model.NewMethodNotFound(id, mnfErr.method)
	}

	// invalid params
	if errors.Is(err, service.ErrAccessionRequired) ||
		errors.Is(err, service.ErrInvalidAccession) ||
		errors.Is(err, service.ErrInvalidDatabase) ||
		errors.Is(err, service.ErrInvalidRetType) ||
		errors.Is(err, service.ErrQueryRequired) {
		return model.NewInvalidParams(id, err.Error())
	}

	// record not found
	if errors.Is(err, service.ErrRecordNotFound) {
		return model.NewErrorResponse(id, model.ErrCodeRecordNotFound, err.Error(), nil)
	}

	// NCBIレート制限（429優先、ErrAPIRequestFailedより先に判定）
	if errors.Is(err, eutils.ErrRateLimited) {
		return model.NewErrorResponse(id, model.ErrCodeRateLimited, err.Error(), nil)
	}

	// E-utilities上流エラー
	if errors.Is(err, eutils.ErrAPIRequestFailed) ||
		errors.Is(err, eutils.ErrInvalidResponse) {
		return model.NewErrorResponse(id, model.ErrCodeEutilsError, err.Error(), nil)
	}

	// ストアエラー
	if errors.Is(err, service.ErrStoreFailure) {
		return model.NewErrorResponse(id, model.ErrCodeStoreError, err.Error(), nil)
	}

	// internal error
	return model.NewInternalError(id, err.Error())
}

func (h *Handler) encodeResponse(resp *model.Response) []byte {
	b, _ := json.Marshal(resp)
	return b
}

func (h *Handler) encodeError(resp *model.ErrorResponse) []byte {
	b, _ := json.Marshal(resp)
	return b
}

// methodNotFoundError はメソッド未検出エラー
type methodNotFoundError struct {
	method string
}

func (e *methodNotFoundError) Error() string {
	return "method not found: " + e.method
}
