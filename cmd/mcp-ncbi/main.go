package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/brbranch/ncbi_mcp/internal/bootstrap"
	"github.com/brbranch/ncbi_mcp/internal/jsonrpc"
	"github.com/brbranch/ncbi_mcp/internal/transport/http"
	"github.com/brbranch/ncbi_mcp/internal/transport/stdio"
)

// ビルド時変数（-ldflags で変更可能）
var (
	defaultTransport = "stdio"
	version          = "0.1.0"
)

// Options はCLI引数オプション
type Options struct {
	Transport  string
	Host       string
	Port       int
	ConfigPath string
}

func main() {
	var err error

	// 引数なしの場合はserveをデフォルト実行
	if len(os.Args) < 2 {
		err = run([]string{})
	} else {
		switch os.Args[1] {
		case "serve":
			err = run(os.Args[1:])
		case "fetch":
			err = runFetchCmd(os.Args[2:])
		case "version", "-v", "--version":
			printVersion()
			return
		case "help", "-h", "--help":
			printUsage()
			return
		default:
			fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
			printUsage()
			os.Exit(1)
		}
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// printUsage prints the usage information
func printUsage() {
	fmt.Println(`mcp-ncbi - NCBI Sequence MCP Server

Usage:
  mcp-ncbi <command> [options]

Commands:
  serve     Start the MCP server (stdio or HTTP)
  fetch     Fetch a sequence record (oneshot command)
  version   Print version information
  help      Print this help message

Serve Options:
  -t, --transport string   Transport type: stdio, http (default: stdio)
  --host string            HTTP host (default: 127.0.0.1)
  -p, --port int           HTTP port (default: 8000)
  -c, --config string      Config file path

Fetch Options:
  -d, --db string          Database: nucleotide, protein (default: nucleotide)
  -r, --rettype string     Return type: fasta, gb, gp (default: fasta)
  -f, --format string      Output format: text, json (default: text)
  -c, --config string      Config file path

Examples:
  mcp-ncbi serve
  mcp-ncbi serve -t http -p 8080
  mcp-ncbi fetch NM_000546
  mcp-ncbi fetch -d protein -r gp NP_000537
  mcp-ncbi fetch -f json NM_000546`)
}

// printVersion prints the version information
func printVersion() {
	fmt.Printf("mcp-ncbi version %s\n", version)
}

// run は実際の処理を行う（テスト容易性のため分離）
func run(args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := setupSignalHandler()
	defer cancel()

	return runServe(ctx, opts)
}

// parseFlags は引数をパースしてOptionsを返す
func parseFlags(args []string) (*Options, error) {
	fs := flag.NewFlagSet("mcp-ncbi", flag.ContinueOnError)

	opts := &Options{}
	fs.StringVar(&opts.Transport, "transport", defaultTransport, "Transport type: stdio, http")
	fs.StringVar(&opts.Transport, "t", defaultTransport, "Transport type (shorthand)")
	fs.StringVar(&opts.Host, "host", "127.0.0.1", "HTTP host")
	fs.IntVar(&opts.Port, "port", 8000, "HTTP port")
	fs.IntVar(&opts.Port, "p", 8000, "HTTP port (shorthand)")
	fs.StringVar(&opts.ConfigPath, "config", "", "Config file path")
	fs.StringVar(&opts.ConfigPath, "c", "", "Config file path (shorthand)")

	// 空配列の場合はserveをデフォルトとして扱う
	var flagArgs []string
	if len(args) == 0 {
		flagArgs = []string{}
	} else if args[0] == "serve" {
		flagArgs = args[1:]
	} else {
		return nil, fmt.Errorf("usage: mcp-ncbi serve [options]")
	}

	if err := fs.Parse(flagArgs); err != nil {
		return nil, err
	}

	// バリデーション
	if opts.Transport != "stdio" && opts.Transport != "http" {
		return nil, fmt.Errorf("invalid transport: %s (must be stdio or http)", opts.Transport)
	}
	if opts.Port < 1 || opts.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d (must be 1-65535)", opts.Port)
	}

	return opts, nil
}

// setupSignalHandler はSIGINT/SIGTERMを受けてcontextをキャンセルする
func setupSignalHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	return ctx, cancel
}

// runServe はserveコマンドを実行
func runServe(ctx context.Context, opts *Options) error {
	// bootstrap.Initializeを使用して共通初期化ロジックを実行
	services, cleanup, err := bootstrap.Initialize(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}
	defer cleanup()

	// JSON-RPC Handler初期化
	handler := jsonrpc.New(services.SequenceService, services.SearchService, services.HistoryService, services.ConfigService)

	// transport起動
	switch opts.Transport {
	case "stdio":
		server := stdio.New(handler)
		return server.Run(ctx)
	case "http":
		httpConfig := http.Config{
			Addr: fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		}
		server := http.New(handler, httpConfig)
		return server.Run(ctx)
	default:
		return fmt.Errorf("unknown transport: %s", opts.Transport)
	}
}
