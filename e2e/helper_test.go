//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brbranch/ncbi_mcp/internal/config"
	"github.com/brbranch/ncbi_mcp/internal/eutils"
	"github.com/brbranch/ncbi_mcp/internal/jsonrpc"
	"github.com/brbranch/ncbi_mcp/internal/model"
	"github.com/brbranch/ncbi_mcp/internal/service"
	"github.com/brbranch/ncbi_mcp/internal/store"
)

// stubRecord はスタブE-utilitiesが返す1レコード
type stubRecord struct {
	UID       string
	Accession string
	Title     string
	FASTA     string
	GenBank   string
}

// stubNCBI はE-utilitiesのスタブサーバー
// esearch/efetch/esummaryをフィクスチャから応答する
type stubNCBI struct {
	srv *httptest.Server

	mu            sync.Mutex
	esearchCalls  int
	efetchCalls   int
	esummaryCalls int

	records map[string]stubRecord // accession → record
	queries map[string][]string   // 検索語 → UIDリスト
}

func newStubNCBI(t *testing.T) *stubNCBI {
	t.Helper()

	s := &stubNCBI{
		records: map[string]stubRecord{
			"NM_000546": {
				UID:       "1798174254",
				Accession: "NM_000546.6",
				Title:     "Homo sapiens tumor protein p53 (TP53), transcript variant 1, mRNA",
				FASTA:     ">NM_000546.6 Homo sapiens tumor protein p53 (TP53), transcript variant 1, mRNA\nATGGAGGAGCCGCAGTCAGATCCTAGC\n",
				GenBank:   "LOCUS       NM_000546               2512 bp    mRNA    linear   PRI\nDEFINITION  Homo sapiens tumor protein p53 (TP53), transcript variant 1, mRNA.\n//\n",
			},
			"NP_000537": {
				UID:       "120407068",
				Accession: "NP_000537.3",
				Title:     "cellular tumor antigen p53 isoform a [Homo sapiens]",
				FASTA:     ">NP_000537.3 cellular tumor antigen p53 isoform a [Homo sapiens]\nMEEPQSDPSVEPPLSQETFSDLWKLLPEN\n",
				GenBank:   "LOCUS       NP_000537                393 aa            linear   PRI\nDEFINITION  cellular tumor antigen p53 isoform a [Homo sapiens].\n//\n",
			},
		},
		queries: map[string][]string{
			"TP53 human": {"1798174254"},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/esearch.fcgi", s.handleESearch)
	mux.HandleFunc("/efetch.fcgi", s.handleEFetch)
	mux.HandleFunc("/esummary.fcgi", s.handleESummary)
	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)

	return s
}

func (s *stubNCBI) handleESearch(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.esearchCalls++
	s.mu.Unlock()

	term := r.URL.Query().Get("term")

	var ids []string
	if acc, ok := strings.CutSuffix(term, "[accn]"); ok {
		// アクセッション検索
		if rec, found := s.lookupAccession(acc); found {
			ids = []string{rec.UID}
		}
	} else {
		ids = s.queries[term]
	}

	if ids == nil {
		ids = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"esearchresult": map[string]any{
			"count":  fmt.Sprintf("%d", len(ids)),
			"idlist": ids,
		},
	})
}

func (s *stubNCBI) handleEFetch(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.efetchCalls++
	s.mu.Unlock()

	uid := r.URL.Query().Get("id")
	retType := r.URL.Query().Get("rettype")

	rec, found := s.lookupUID(uid)
	if !found {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "unknown id")
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	switch retType {
	case "fasta":
		fmt.Fprint(w, rec.FASTA)
	default:
		fmt.Fprint(w, rec.GenBank)
	}
}

func (s *stubNCBI) handleESummary(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.esummaryCalls++
	s.mu.Unlock()

	ids := strings.Split(r.URL.Query().Get("id"), ",")

	result := map[string]any{"uids": ids}
	for _, uid := range ids {
		rec, found := s.lookupUID(uid)
		if !found {
			continue
		}
		result[uid] = map[string]any{
			"uid":              uid,
			"title":            rec.Title,
			"accessionversion": rec.Accession,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"result": result})
}

func (s *stubNCBI) lookupAccession(acc string) (stubRecord, bool) {
	rec, ok := s.records[acc]
	return rec, ok
}

func (s *stubNCBI) lookupUID(uid string) (stubRecord, bool) {
	for _, rec := range s.records {
		if rec.UID == uid {
			return rec, true
		}
	}
	return stubRecord{}, false
}

// calls はエンドポイント別の呼び出し回数を返す
func (s *stubNCBI) calls() (esearch, efetch, esummary int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.esearchCalls, s.efetchCalls, s.esummaryCalls
}

// setupTestHandler はスタブE-utilitiesに接続したHandlerを構築
func setupTestHandler(t *testing.T) (*jsonrpc.Handler, *stubNCBI) {
	t.Helper()

	stub := newStubNCBI(t)

	// 1. スタブに向けたE-utilitiesクライアント作成
	client := eutils.NewHTTPClient(
		eutils.WithBaseURL(stub.srv.URL),
		eutils.WithAPIKey("test-key"),
		eutils.WithTool("mcp-ncbi-e2e"),
	)

	// 2. MemoryStore作成・初期化
	st := store.NewMemoryStore()
	if err := st.Initialize(context.Background()); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	// 3. Services作成
	ttl := time.Hour
	sequenceService := service.NewSequenceService(client, st, ttl)
	searchService := service.NewSearchService(client, st, ttl, 0)
	historyService := service.NewHistoryService(st)

	configManager, err := config.NewManager(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("failed to create config manager: %v", err)
	}
	if err := configManager.Load(); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	configService := service.NewConfigService(configManager)

	// 4. Handler作成
	return jsonrpc.New(sequenceService, searchService, historyService, configService), stub
}

// call は任意のメソッドを呼び出して生のレスポンスを返す
func call(t *testing.T, h *jsonrpc.Handler, method string, params any) *RawResponse {
	t.Helper()

	reqBytes, err := json.Marshal(model.Request{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	respBytes := h.Handle(context.Background(), reqBytes)

	var resp RawResponse
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	return &resp
}

// callOK はメソッドを呼び出し、成功resultを指定型にデコードする
func callOK(t *testing.T, h *jsonrpc.Handler, method string, params any, out any) {
	t.Helper()

	resp := call(t, h, method, params)
	if resp.Error != nil {
		t.Fatalf("%s failed: %v", method, resp.Error)
	}

	resultBytes, _ := json.Marshal(resp.Result)
	if err := json.Unmarshal(resultBytes, out); err != nil {
		t.Fatalf("failed to unmarshal result: %v", err)
	}
}

// mustMarshal はJSONへのマーシャルに失敗したらテストを落とす
func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	return b
}

// mustUnmarshal はJSONからのアンマーシャルに失敗したらテストを落とす
func mustUnmarshal(t *testing.T, b []byte, out any) {
	t.Helper()

	if err := json.Unmarshal(b, out); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
}

// レスポンス型定義

type FetchResult struct {
	Accession string `json:"accession"`
	DB        string `json:"db"`
	RetType   string `json:"rettype"`
	Sequence  string `json:"sequence"`
	Metadata  string `json:"metadata"`
	CacheHit  bool   `json:"cacheHit"`
}

type SearchResultBody struct {
	DB       string           `json:"db"`
	Query    string           `json:"query"`
	Count    int              `json:"count"`
	Results  []SearchHitEntry `json:"results"`
	Text     string           `json:"text"`
	CacheHit bool             `json:"cacheHit"`
}

type SearchHitEntry struct {
	UID       string `json:"uid"`
	Accession string `json:"accession"`
	Title     string `json:"title"`
}

type ListRecentResult struct {
	Items []HistoryItemEntry `json:"items"`
}

type HistoryItemEntry struct {
	ID        string `json:"id"`
	Tool      string `json:"tool"`
	DB        string `json:"db"`
	Term      string `json:"term"`
	CacheHit  bool   `json:"cacheHit"`
	CreatedAt string `json:"createdAt"`
}

type PurgeResult struct {
	CachePurged   int `json:"cachePurged"`
	HistoryPurged int `json:"historyPurged"`
}

type RawResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *model.RPCError `json:"error,omitempty"`
}
