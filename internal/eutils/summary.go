package eutils

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// accessionFallbackPattern はdocsumフィールドからアクセッションらしき値を拾う際の構文
var accessionFallbackPattern = regexp.MustCompile(`^[A-Z]{1,3}_?[0-9]+`)

// esummaryResponse はesummary.fcgiのJSONレスポンス
// resultはuids配列と、UIDをキーとするdocsumオブジェクトの混在
type esummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

// rawDocSum はdocsumの関心フィールドのみ
// accessionversionはNCBI側の形式揺れがあるためRawMessageで受ける
type rawDocSum struct {
	UID              string          `json:"uid"`
	Caption          string          `json:"caption"`
	Title            string          `json:"title"`
	Accession        string          `json:"accession"`
	AccessionVersion json.RawMessage `json:"accessionversion"`
}

// parseSummaryResponse はesummaryレスポンスをパースし、UID順のDocSummaryを返す
func parseSummaryResponse(body []byte, ids []string) (*SummaryResult, error) {
	var resp esummaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if resp.Result == nil {
		return nil, fmt.Errorf("%w: missing result object", ErrInvalidResponse)
	}

	docs := make([]DocSummary, 0, len(ids))
	for _, id := range ids {
		raw, ok := resp.Result[id]
		if !ok {
			// docsumが欠けているUIDはスキップ
			continue
		}

		var ds rawDocSum
		if err := json.Unmarshal(raw, &ds); err != nil {
			// 1件のパース失敗で全体を落とさない
			continue
		}

		title := ds.Title
		if title == "" {
			title = "No title available"
		}

		docs = append(docs, DocSummary{
			UID:       id,
			Accession: extractAccession(&ds),
			Title:     title,
		})
	}

	return &SummaryResult{Docs: docs}, nil
}

// extractAccession はdocsumからアクセッションを抽出する
// accessionversionを優先し、無ければcaption→title→accessionの順で
// アクセッション構文にマッチする値を探す
func extractAccession(ds *rawDocSum) string {
	if acc := parseAccessionVersion(ds.AccessionVersion); acc != "" {
		return acc
	}

	for _, candidate := range []string{ds.Caption, ds.Title, ds.Accession} {
		if candidate != "" && accessionFallbackPattern.MatchString(candidate) {
			return candidate
		}
	}

	return "Unknown"
}

// parseAccessionVersion はaccessionversionフィールドをパースする
// 通常は文字列だが、[{"content": "..."}] 形式で返るケースにも対応
func parseAccessionVersion(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	// 文字列形式
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	// [{"content": "..."}] 形式
	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err == nil {
		for _, item := range items {
			if content, ok := item["content"].(string); ok && content != "" {
				return content
			}
		}
	}

	return ""
}
