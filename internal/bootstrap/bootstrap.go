// Package bootstrap provides common initialization logic for mcp-ncbi.
package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/brbranch/ncbi_mcp/internal/config"
	"github.com/brbranch/ncbi_mcp/internal/eutils"
	"github.com/brbranch/ncbi_mcp/internal/model"
	"github.com/brbranch/ncbi_mcp/internal/service"
	"github.com/brbranch/ncbi_mcp/internal/store"
)

// Services は初期化されたサービス群を保持
type Services struct {
	SequenceService service.SequenceService
	SearchService   service.SearchService
	HistoryService  service.HistoryService
	ConfigService   service.ConfigService
	Config          *model.Config
}

// Initialize は設定を読み込み、必要なサービスを初期化する
func Initialize(ctx context.Context, configPath string) (*Services, func(), error) {
	// 設定マネージャーの作成
	configManager, err := config.NewManager(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	// 設定ファイルの読み込み（環境変数の上書き込み）
	if err := configManager.Load(); err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg := configManager.GetConfig()

	// 1. E-utilitiesクライアント初期化
	opts := []eutils.Option{
		eutils.WithBaseURL(cfg.Eutils.BaseURL),
		eutils.WithTool(cfg.Eutils.Tool),
		eutils.WithTimeout(time.Duration(cfg.Eutils.TimeoutSeconds) * time.Second),
	}
	if cfg.Eutils.APIKey != nil && *cfg.Eutils.APIKey != "" {
		opts = append(opts, eutils.WithAPIKey(*cfg.Eutils.APIKey))
	}
	if cfg.Eutils.Email != nil && *cfg.Eutils.Email != "" {
		opts = append(opts, eutils.WithEmail(*cfg.Eutils.Email))
	}
	client := eutils.NewHTTPClient(opts...)

	// 2. Store初期化
	var st store.Store
	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	switch cfg.Cache.Type {
	case model.CacheTypeSQLite:
		// SQLiteのDBパスを決定
		dbPath := cfg.Paths.DataDir + "/ncbi.db"
		if cfg.Cache.Path != nil && *cfg.Cache.Path != "" {
			dbPath = *cfg.Cache.Path
		}
		// DBファイルの親ディレクトリを作成
		if err := config.EnsureDir(filepath.Dir(dbPath)); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		st, err = store.NewSQLiteStore(dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create sqlite store: %w", err)
		}
	case model.CacheTypeNone:
		// キャッシュ無効。履歴はインメモリでプロセス生存中のみ保持
		st = store.NewMemoryStore()
		ttl = 0
	default:
		st = store.NewMemoryStore()
	}

	if err := st.Initialize(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	// 3. Services初期化
	sequenceService := service.NewSequenceService(client, st, ttl)
	searchService := service.NewSearchService(client, st, ttl, cfg.Eutils.RetMax)
	historyService := service.NewHistoryService(st)
	configService := service.NewConfigService(configManager)

	cleanup := func() {
		st.Close()
	}

	return &Services{
		SequenceService: sequenceService,
		SearchService:   searchService,
		HistoryService:  historyService,
		ConfigService:   configService,
		Config:          cfg,
	}, cleanup, nil
}
