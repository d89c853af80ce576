package jsonrpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/brbranch/ncbi_mcp/internal/model"
)

// ServerVersion はサーバーのバージョン（ビルド時に設定可能）
var ServerVersion = "0.1.0"

// handleInitialize は initialize メソッドを処理
func (h *Handler) handleInitialize(ctx context.Context, params any) (any, error) {
	// パラメータをパース（検証は最小限）
	var p model.InitializeParams
	if err := mapParams(params, &p); err != nil {
		return nil, err
	}

	return &model.InitializeResult{
		ProtocolVersion: "2024-11-05",
		ServerInfo: model.ServerInfo{
			Name:    "mcp-ncbi",
			Version: ServerVersion,
		},
		Capabilities: model.Capabilities{
			Tools: &model.ToolsCapability{},
		},
	}, nil
}

// handleToolsList は tools/list メソッドを処理
func (h *Handler) handleToolsList(ctx context.Context, params any) (any, error) {
	return &model.ToolsListResult{
		Tools: mcpTools,
	}, nil
}

// handleToolsCall は tools/call メソッドを処理
func (h *Handler) handleToolsCall(ctx context.Context, id any, params any) (any, error) {
	var p model.ToolsCallParams
	if err := mapParams(params, &p); err != nil {
		return nil, err
	}

	// ツール名必須チェック
	if p.Name == "" {
		return &model.ToolsCallResult{
			Content: []model.ContentItem{
				model.NewTextContent("Error: tool name is required"),
			},
			IsError: true,
		}, nil
	}

	// ツール名から内部メソッド名を取得
	internalMethod, ok := toolNameToMethod[p.Name]
	if !ok {
		// ツールが見つからない場合はエラーをcontentに含める
		return &model.ToolsCallResult{
			Content: []model.ContentItem{
				model.NewTextContent(fmt.Sprintf("Tool not found: %s", p.Name)),
			},
			IsError: true,
		}, nil
	}

	// 内部メソッドを呼び出す
	result, err := h.dispatchInternal(ctx, internalMethod, p.Arguments)
	if err != nil {
		// エラーをcontentに含める（MCP仕様、JSON-RPCエラーにはしない）
		return &model.ToolsCallResult{
			Content: []model.ContentItem{
				model.NewTextContent(fmt.Sprintf("Error: %s", err.Error())),
			},
			IsError: true,
		}, nil
	}

	return &model.ToolsCallResult{
		Content: []model.ContentItem{
			model.NewTextContent(renderToolText(result)),
		},
	}, nil
}

// renderToolText はツール結果をcontent用テキストに変換する
// 配列本文・整形済みテキストはそのまま、構造化結果はJSONで返す
func renderToolText(result any) string {
	if m, ok := result.(map[string]any); ok {
		for _, key := range []string{"sequence", "metadata", "text"} {
			if s, ok := m[key].(string); ok {
				return s
			}
		}
	}

	b, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("Error serializing result: %s", err.Error())
	}
	return string(b)
}
