package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/brbranch/ncbi_mcp/internal/eutils"
	"github.com/brbranch/ncbi_mcp/internal/model"
)

func TestSearchService_Search_Success(t *testing.T) {
	client := &mockClient{
		searchFunc: func(ctx context.Context, db, term string, retMax int) (*eutils.SearchResult, error) {
			return &eutils.SearchResult{Count: 2, IDs: []string{"1798174254", "1519311738"}}, nil
		},
		summaryFunc: func(ctx context.Context, db string, ids []string) (*eutils.SummaryResult, error) {
			return &eutils.SummaryResult{
				Docs: []eutils.DocSummary{
					{UID: "1798174254", Accession: "NM_000546.6", Title: "Homo sapiens tumor protein p53"},
					{UID: "1519311738", Accession: "NM_001126112.3", Title: "transcript variant 2"},
				},
			}, nil
		},
	}
	svc := NewSearchService(client, newTestStore(t), time.Hour, 0)

	resp, err := svc.Search(context.Background(), &SearchRequest{
		DB:    model.DBNucleotide,
		Query: "TP53 human",
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if resp.Count != 2 {
		t.Errorf("expected count 2, got %d", resp.Count)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
	if resp.Results[0].Accession != "NM_000546.6" {
		t.Errorf("unexpected first accession: %q", resp.Results[0].Accession)
	}
}

func TestSearchService_Search_DefaultDBAndLimit(t *testing.T) {
	var gotDB string
	var gotRetMax int
	client := &mockClient{
		searchFunc: func(ctx context.Context, db, term string, retMax int) (*eutils.SearchResult, error) {
			gotDB = db
			gotRetMax = retMax
			return &eutils.SearchResult{Count: 0, IDs: []string{}}, nil
		},
	}
	svc := NewSearchService(client, newTestStore(t), time.Hour, 0)

	if _, err := svc.Search(context.Background(), &SearchRequest{Query: "BRCA1"}); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if gotDB != model.DBNucleotide {
		t.Errorf("expected default db nucleotide, got %q", gotDB)
	}
	if gotRetMax != 10 {
		t.Errorf("expected default limit 10, got %d", gotRetMax)
	}
}

func TestSearchService_Search_ConfiguredRetMax(t *testing.T) {
	var gotRetMax int
	client := &mockClient{
		searchFunc: func(ctx context.Context, db, term string, retMax int) (*eutils.SearchResult, error) {
			gotRetMax = retMax
			return &eutils.SearchResult{Count: 0, IDs: []string{}}, nil
		},
	}
	// 設定のretMaxがlimit未指定時のデフォルトになる
	svc := NewSearchService(client, newTestStore(t), time.Hour, 50)

	if _, err := svc.Search(context.Background(), &SearchRequest{Query: "BRCA1"}); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if gotRetMax != 50 {
		t.Errorf("expected configured retmax 50, got %d", gotRetMax)
	}

	// リクエストのlimit指定は設定より優先
	if _, err := svc.Search(context.Background(), &SearchRequest{Query: "BRCA1", Limit: 3}); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if gotRetMax != 3 {
		t.Errorf("expected explicit limit 3, got %d", gotRetMax)
	}
}

func TestSearchService_Search_QueryRequired(t *testing.T) {
	svc := NewSearchService(&mockClient{}, newTestStore(t), time.Hour, 0)

	_, err := svc.Search(context.Background(), &SearchRequest{DB: model.DBGene})
	if !errors.Is(err, ErrQueryRequired) {
		t.Errorf("expected ErrQueryRequired, got %v", err)
	}
}

func TestSearchService_Search_InvalidDatabase(t *testing.T) {
	svc := NewSearchService(&mockClient{}, newTestStore(t), time.Hour, 0)

	_, err := svc.Search(context.Background(), &SearchRequest{DB: "pubmed", Query: "BRCA1"})
	if !errors.Is(err, ErrInvalidDatabase) {
		t.Errorf("expected ErrInvalidDatabase, got %v", err)
	}
}

func TestSearchService_Search_GeneDBAllowed(t *testing.T) {
	client := &mockClient{
		searchFunc: func(ctx context.Context, db, term string, retMax int) (*eutils.SearchResult, error) {
			if db != model.DBGene {
				t.Errorf("expected gene db, got %q", db)
			}
			return &eutils.SearchResult{Count: 0, IDs: []string{}}, nil
		},
	}
	svc := NewSearchService(client, newTestStore(t), time.Hour, 0)

	if _, err := svc.Search(context.Background(), &SearchRequest{DB: model.DBGene, Query: "TP53"}); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
}

func TestSearchService_Search_NoHitsIsNotError(t *testing.T) {
	client := &mockClient{
		searchFunc: func(ctx context.Context, db, term string, retMax int) (*eutils.SearchResult, error) {
			return &eutils.SearchResult{Count: 0, IDs: []string{}}, nil
		},
	}
	svc := NewSearchService(client, newTestStore(t), time.Hour, 0)

	resp, err := svc.Search(context.Background(), &SearchRequest{
		DB:    model.DBProtein,
		Query: "zzzznonexistent",
	})
	if err != nil {
		t.Fatalf("expected no error for zero hits, got %v", err)
	}

	if resp.Count != 0 || len(resp.Results) != 0 {
		t.Errorf("expected empty response, got %+v", resp)
	}
	// esummaryは呼ばれない
	if client.summaryCalls != 0 {
		t.Errorf("expected no summary calls, got %d", client.summaryCalls)
	}
}

func TestSearchService_Search_CacheHit(t *testing.T) {
	client := &mockClient{
		searchFunc: func(ctx context.Context, db, term string, retMax int) (*eutils.SearchResult, error) {
			return &eutils.SearchResult{Count: 1, IDs: []string{"42"}}, nil
		},
		summaryFunc: func(ctx context.Context, db string, ids []string) (*eutils.SummaryResult, error) {
			return &eutils.SummaryResult{
				Docs: []eutils.DocSummary{{UID: "42", Accession: "NM_000001.1", Title: "t"}},
			}, nil
		},
	}
	svc := NewSearchService(client, newTestStore(t), time.Hour, 0)

	req := &SearchRequest{DB: model.DBNucleotide, Query: "TP53"}

	if _, err := svc.Search(context.Background(), req); err != nil {
		t.Fatalf("first Search failed: %v", err)
	}

	resp, err := svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("second Search failed: %v", err)
	}

	if !resp.CacheHit {
		t.Error("expected cache hit on second call")
	}
	if resp.Count != 1 || len(resp.Results) != 1 || resp.Results[0].UID != "42" {
		t.Errorf("cached response mismatch: %+v", resp)
	}
	if client.searchCalls != 1 {
		t.Errorf("expected 1 network search, got %d", client.searchCalls)
	}
}

func TestSearchService_Search_LimitPartOfCacheKey(t *testing.T) {
	client := &mockClient{
		searchFunc: func(ctx context.Context, db, term string, retMax int) (*eutils.SearchResult, error) {
			return &eutils.SearchResult{Count: 1, IDs: []string{"42"}}, nil
		},
		summaryFunc: func(ctx context.Context, db string, ids []string) (*eutils.SummaryResult, error) {
			return &eutils.SummaryResult{
				Docs: []eutils.DocSummary{{UID: "42", Accession: "NM_000001.1", Title: "t"}},
			}, nil
		},
	}
	svc := NewSearchService(client, newTestStore(t), time.Hour, 0)

	if _, err := svc.Search(context.Background(), &SearchRequest{Query: "TP53", Limit: 5}); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if _, err := svc.Search(context.Background(), &SearchRequest{Query: "TP53", Limit: 20}); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	// limit違いは別キャッシュエントリ
	if client.searchCalls != 2 {
		t.Errorf("expected 2 network searches for different limits, got %d", client.searchCalls)
	}
}

func TestFormatSearchText_Results(t *testing.T) {
	text := FormatSearchText(&SearchResponse{
		DB:    model.DBNucleotide,
		Query: "TP53",
		Count: 2,
		Results: []SearchResult{
			{UID: "1", Accession: "NM_000546.6", Title: "tumor protein p53"},
			{UID: "2", Accession: "NM_001126112.3", Title: "variant 2"},
		},
	})

	if !strings.Contains(text, "Found 2 results for 'TP53' in nucleotide database") {
		t.Errorf("missing header: %q", text)
	}
	if !strings.Contains(text, "ID: 1, Accession: NM_000546.6, Title: tumor protein p53") {
		t.Errorf("missing result line: %q", text)
	}
}

func TestFormatSearchText_NoResults(t *testing.T) {
	text := FormatSearchText(&SearchResponse{
		DB:      model.DBProtein,
		Query:   "zzz",
		Results: []SearchResult{},
	})

	want := "No results found for 'zzz' in protein database"
	if text != want {
		t.Errorf("expected %q, got %q", want, text)
	}
}
