package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/brbranch/ncbi_mcp/internal/service"
)

// TestParseFetchFlags tests flag parsing for the fetch command
func TestParseFetchFlags(t *testing.T) {
	tests := []struct {
		name          string
		args          []string
		wantDB        string
		wantRetType   string
		wantFormat    string
		wantAccession string
		wantErr       bool
	}{
		{
			name:          "accession only",
			args:          []string{"NM_000546"},
			wantDB:        "nucleotide",
			wantRetType:   "",
			wantFormat:    "text",
			wantAccession: "NM_000546",
		},
		{
			name:          "all short flags",
			args:          []string{"-d", "protein", "-r", "gp", "-f", "json", "NP_000537"},
			wantDB:        "protein",
			wantRetType:   "gp",
			wantFormat:    "json",
			wantAccession: "NP_000537",
		},
		{
			name:          "long flags",
			args:          []string{"--db", "nucleotide", "--rettype", "gb", "--format", "text", "NG_005905"},
			wantDB:        "nucleotide",
			wantRetType:   "gb",
			wantFormat:    "text",
			wantAccession: "NG_005905",
		},
		{
			name:    "missing accession",
			args:    []string{"-d", "nucleotide"},
			wantErr: true,
		},
		{
			name:    "invalid db",
			args:    []string{"-d", "gene", "NM_000546"},
			wantErr: true,
		},
		{
			name:    "invalid format",
			args:    []string{"-f", "yaml", "NM_000546"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseFetchFlags(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if opts.DB != tt.wantDB {
				t.Errorf("DB = %q, want %q", opts.DB, tt.wantDB)
			}
			if opts.RetType != tt.wantRetType {
				t.Errorf("RetType = %q, want %q", opts.RetType, tt.wantRetType)
			}
			if opts.Format != tt.wantFormat {
				t.Errorf("Format = %q, want %q", opts.Format, tt.wantFormat)
			}
			if opts.Accession != tt.wantAccession {
				t.Errorf("Accession = %q, want %q", opts.Accession, tt.wantAccession)
			}
		})
	}
}

// mockSequenceService is a mock implementation for testing
type mockSequenceService struct {
	fetchFunc func(ctx context.Context, req *service.FetchSequenceRequest) (*service.FetchSequenceResponse, error)
}

func (m *mockSequenceService) FetchSequence(ctx context.Context, req *service.FetchSequenceRequest) (*service.FetchSequenceResponse, error) {
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, req)
	}
	return &service.FetchSequenceResponse{}, nil
}

func (m *mockSequenceService) FetchMetadata(ctx context.Context, req *service.FetchMetadataRequest) (*service.FetchSequenceResponse, error) {
	return nil, nil
}

// TestExecuteFetch tests the fetch execution logic
func TestExecuteFetch(t *testing.T) {
	mockService := &mockSequenceService{
		fetchFunc: func(ctx context.Context, req *service.FetchSequenceRequest) (*service.FetchSequenceResponse, error) {
			if req.DB != "nucleotide" {
				t.Errorf("expected db nucleotide, got %q", req.DB)
			}
			if req.Accession != "NM_000546" {
				t.Errorf("expected accession NM_000546, got %q", req.Accession)
			}
			return &service.FetchSequenceResponse{
				Accession: "NM_000546",
				DB:        "nucleotide",
				RetType:   "fasta",
				Body:      ">NM_000546.6 Homo sapiens tumor protein p53\nATGGAGGAG\n",
			}, nil
		},
	}

	ctx := context.Background()
	resp, err := executeFetchWithService(ctx, mockService, "nucleotide", "NM_000546", "")
	if err != nil {
		t.Fatalf("executeFetchWithService failed: %v", err)
	}

	if !strings.HasPrefix(resp.Body, ">NM_000546.6") {
		t.Errorf("unexpected body: %q", resp.Body)
	}
}

// TestFormatFetchTextOutput tests text format output
func TestFormatFetchTextOutput(t *testing.T) {
	resp := &service.FetchSequenceResponse{
		Accession: "NM_000546",
		DB:        "nucleotide",
		RetType:   "fasta",
		Body:      ">NM_000546.6 Homo sapiens tumor protein p53\nATGGAGGAG",
	}

	var buf bytes.Buffer
	formatFetchTextOutput(&buf, resp)

	// 本文そのまま + 末尾改行
	want := ">NM_000546.6 Homo sapiens tumor protein p53\nATGGAGGAG\n"
	if buf.String() != want {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

// TestFormatFetchTextOutput_TrailingNewline は末尾改行が重複しないことをテスト
func TestFormatFetchTextOutput_TrailingNewline(t *testing.T) {
	resp := &service.FetchSequenceResponse{Body: ">seq\nATG\n"}

	var buf bytes.Buffer
	formatFetchTextOutput(&buf, resp)

	if buf.String() != ">seq\nATG\n" {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

// TestFormatFetchJSONOutput tests JSON format output
func TestFormatFetchJSONOutput(t *testing.T) {
	resp := &service.FetchSequenceResponse{
		Accession: "NP_000537",
		DB:        "protein",
		RetType:   "gp",
		Body:      "LOCUS       NP_000537                393 aa",
		CacheHit:  true,
	}

	var buf bytes.Buffer
	if err := formatFetchJSONOutput(&buf, resp); err != nil {
		t.Fatalf("formatFetchJSONOutput failed: %v", err)
	}

	var output FetchJSONOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}

	if output.Accession != "NP_000537" {
		t.Errorf("expected accession NP_000537, got %q", output.Accession)
	}
	if output.RetType != "gp" {
		t.Errorf("expected rettype gp, got %q", output.RetType)
	}
	if !output.CacheHit {
		t.Error("expected cacheHit true")
	}
	if !strings.Contains(output.Sequence, "LOCUS") {
		t.Errorf("unexpected sequence: %q", output.Sequence)
	}
}
