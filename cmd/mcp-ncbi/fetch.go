package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/brbranch/ncbi_mcp/internal/bootstrap"
	"github.com/brbranch/ncbi_mcp/internal/model"
	"github.com/brbranch/ncbi_mcp/internal/service"
)

// FetchOptions holds parsed fetch command options
type FetchOptions struct {
	DB         string
	RetType    string
	Format     string
	ConfigPath string
	Accession  string
}

// FetchJSONOutput represents the JSON output format
type FetchJSONOutput struct {
	Accession string `json:"accession"`
	DB        string `json:"db"`
	RetType   string `json:"rettype"`
	Sequence  string `json:"sequence"`
	CacheHit  bool   `json:"cacheHit"`
}

// parseFetchFlags parses command line arguments for the fetch command
func parseFetchFlags(args []string) (*FetchOptions, error) {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	fs.SetOutput(io.Discard) // suppress default error output

	opts := &FetchOptions{}

	// Long flags
	fs.StringVar(&opts.DB, "db", model.DBNucleotide, "Database: nucleotide|protein")
	fs.StringVar(&opts.RetType, "rettype", "", "Return type: fasta|gb|gp")
	fs.StringVar(&opts.Format, "format", "text", "Output format: text|json")
	fs.StringVar(&opts.ConfigPath, "config", "", "Config file path")

	// Short flags
	fs.StringVar(&opts.DB, "d", model.DBNucleotide, "Database: nucleotide|protein")
	fs.StringVar(&opts.RetType, "r", "", "Return type: fasta|gb|gp")
	fs.StringVar(&opts.Format, "f", "text", "Output format: text|json")
	fs.StringVar(&opts.ConfigPath, "c", "", "Config file path")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if opts.Format == "" {
		opts.Format = "text"
	}

	// Accession from remaining args
	opts.Accession = strings.TrimSpace(strings.Join(fs.Args(), " "))

	// Validation
	if opts.Accession == "" {
		return nil, fmt.Errorf("accession is required")
	}
	if !model.ValidSequenceDB(opts.DB) {
		return nil, fmt.Errorf("invalid db: %s (must be nucleotide or protein)", opts.DB)
	}
	if opts.Format != "text" && opts.Format != "json" {
		return nil, fmt.Errorf("invalid format: %s (must be text or json)", opts.Format)
	}

	return opts, nil
}

// runFetchCmd is the entry point for the fetch command
func runFetchCmd(args []string) error {
	opts, err := parseFetchFlags(args)
	if err != nil {
		return err
	}

	// Initialize services
	ctx := context.Background()
	services, cleanup, err := bootstrap.Initialize(ctx, opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer cleanup()

	// Execute fetch
	resp, err := executeFetchWithService(ctx, services.SequenceService, opts.DB, opts.Accession, opts.RetType)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	// Output results
	switch opts.Format {
	case "json":
		if err := formatFetchJSONOutput(os.Stdout, resp); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
	default:
		formatFetchTextOutput(os.Stdout, resp)
	}

	return nil
}

// executeFetchWithService executes a fetch using the provided SequenceService
func executeFetchWithService(ctx context.Context, sequenceService service.SequenceService, db, accession, retType string) (*service.FetchSequenceResponse, error) {
	req := &service.FetchSequenceRequest{
		DB:        db,
		Accession: accession,
		RetType:   retType,
	}
	return sequenceService.FetchSequence(ctx, req)
}

// formatFetchTextOutput writes the raw sequence body
func formatFetchTextOutput(w io.Writer, resp *service.FetchSequenceResponse) {
	fmt.Fprint(w, resp.Body)
	if !strings.HasSuffix(resp.Body, "\n") {
		fmt.Fprintln(w)
	}
}

// formatFetchJSONOutput writes the result in JSON format
func formatFetchJSONOutput(w io.Writer, resp *service.FetchSequenceResponse) error {
	output := FetchJSONOutput{
		Accession: resp.Accession,
		DB:        resp.DB,
		RetType:   resp.RetType,
		Sequence:  resp.Body,
		CacheHit:  resp.CacheHit,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
