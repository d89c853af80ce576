package jsonrpc

import (
	"context"
	"strings"
	"testing"

	"github.com/brbranch/ncbi_mcp/internal/service"
)

// === initialize ===

func TestHandle_Initialize(t *testing.T) {
	h := newTestHandler()
	result := h.Handle(context.Background(), makeRequest("initialize", map[string]any{
		"protocolVersion": "2024-11-05",
		"clientInfo":      map[string]any{"name": "test-client", "version": "1.0.0"},
	}))
	resp := parseResponse(t, result)

	if resp["error"] != nil {
		t.Fatalf("unexpected error: %v", resp["error"])
	}

	res := resp["result"].(map[string]any)
	if res["protocolVersion"] != "2024-11-05" {
		t.Errorf("unexpected protocol version: %v", res["protocolVersion"])
	}

	serverInfo := res["serverInfo"].(map[string]any)
	if serverInfo["name"] != "mcp-ncbi" {
		t.Errorf("unexpected server name: %v", serverInfo["name"])
	}

	capabilities := res["capabilities"].(map[string]any)
	if _, ok := capabilities["tools"]; !ok {
		t.Error("expected tools capability")
	}
}

// === tools/list ===

func TestHandle_ToolsList(t *testing.T) {
	h := newTestHandler()
	result := h.Handle(context.Background(), makeRequest("tools/list", nil))
	resp := parseResponse(t, result)

	res := resp["result"].(map[string]any)
	tools := res["tools"].([]any)

	if len(tools) != len(mcpTools) {
		t.Fatalf("expected %d tools, got %d", len(mcpTools), len(tools))
	}

	// 全ツール名が内部メソッドに解決できること
	names := map[string]bool{}
	for _, tool := range tools {
		name := tool.(map[string]any)["name"].(string)
		names[name] = true
		if _, ok := toolNameToMethod[name]; !ok {
			t.Errorf("tool %q has no internal method mapping", name)
		}
	}

	for _, want := range []string{
		"ncbi_get_nucleotide_sequence",
		"ncbi_get_protein_sequence",
		"ncbi_get_sequence_metadata",
		"ncbi_search",
		"ncbi_help",
	} {
		if !names[want] {
			t.Errorf("expected tool %q in tools/list", want)
		}
	}
}

// === tools/call ===

func callTool(t *testing.T, h *Handler, name string, args map[string]any) map[string]any {
	t.Helper()
	result := h.Handle(context.Background(), makeRequest("tools/call", map[string]any{
		"name":      name,
		"arguments": args,
	}))
	resp := parseResponse(t, result)
	if resp["error"] != nil {
		t.Fatalf("unexpected JSON-RPC error: %v", resp["error"])
	}
	return resp["result"].(map[string]any)
}

func contentText(t *testing.T, res map[string]any) string {
	t.Helper()
	content := res["content"].([]any)
	if len(content) == 0 {
		t.Fatal("expected non-empty content")
	}
	item := content[0].(map[string]any)
	if item["type"] != "text" {
		t.Errorf("expected text content, got %v", item["type"])
	}
	return item["text"].(string)
}

func TestHandle_ToolsCall_SequenceReturnsRawText(t *testing.T) {
	h := newTestHandler()
	res := callTool(t, h, "ncbi_get_nucleotide_sequence", map[string]any{
		"accession": "NM_000546",
	})

	if res["isError"] == true {
		t.Fatalf("unexpected tool error: %v", res)
	}

	text := contentText(t, res)
	// 配列本文はJSONに包まずそのまま返す
	if !strings.HasPrefix(text, ">NM_000546.6") {
		t.Errorf("expected raw FASTA text, got %q", text)
	}
}

func TestHandle_ToolsCall_SearchReturnsFormattedText(t *testing.T) {
	h := newTestHandler()
	res := callTool(t, h, "ncbi_search", map[string]any{
		"query": "TP53",
	})

	text := contentText(t, res)
	if !strings.Contains(text, "ID: 1798174254, Accession: NM_000546.6, Title: tumor protein p53") {
		t.Errorf("expected formatted search line, got %q", text)
	}
}

func TestHandle_ToolsCall_HelpReturnsUsage(t *testing.T) {
	h := newTestHandler()
	res := callTool(t, h, "ncbi_help", nil)

	text := contentText(t, res)
	if !strings.Contains(text, "NCBI Sequence Fetcher") {
		t.Errorf("expected help text, got %q", text)
	}
}

func TestHandle_ToolsCall_UnknownTool(t *testing.T) {
	h := newTestHandler()
	res := callTool(t, h, "ncbi_unknown", nil)

	if res["isError"] != true {
		t.Error("expected isError true for unknown tool")
	}
	text := contentText(t, res)
	if !strings.Contains(text, "Tool not found") {
		t.Errorf("expected tool not found message, got %q", text)
	}
}

func TestHandle_ToolsCall_MissingName(t *testing.T) {
	h := newTestHandler()
	result := h.Handle(context.Background(), makeRequest("tools/call", map[string]any{}))
	resp := parseResponse(t, result)

	res := resp["result"].(map[string]any)
	if res["isError"] != true {
		t.Error("expected isError true for missing tool name")
	}
}

func TestHandle_ToolsCall_ServiceErrorInContent(t *testing.T) {
	h := New(
		&mockSequenceService{
			fetchSequenceFunc: func(ctx context.Context, req *service.FetchSequenceRequest) (*service.FetchSequenceResponse, error) {
				return nil, &service.NotFoundError{DB: "nucleotide", Accession: "NM_999999"}
			},
		},
		&mockSearchService{}, &mockHistoryService{}, &mockConfigService{},
	)

	// ツールレベルの失敗はJSON-RPCエラーではなくcontentで返す
	res := callTool(t, h, "ncbi_get_nucleotide_sequence", map[string]any{
		"accession": "NM_999999",
	})

	if res["isError"] != true {
		t.Fatal("expected isError true")
	}
	text := contentText(t, res)
	if !strings.Contains(text, "no records found") {
		t.Errorf("expected not-found message, got %q", text)
	}
}
