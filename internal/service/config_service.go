package service

import (
	"context"
	"fmt"

	"github.com/brbranch/ncbi_mcp/internal/config"
)

// configService はConfigServiceの実装
type configService struct {
	manager *config.Manager
}

// NewConfigService はConfigServiceの新しいインスタンスを作成
func NewConfigService(manager *config.Manager) ConfigService {
	return &configService{manager: manager}
}

// GetConfig は現在の設定を返す
// APIキーの値は返さず、設定済みかどうかのみ返す
func (s *configService) GetConfig(ctx context.Context) (*GetConfigResponse, error) {
	cfg := s.manager.GetConfig()

	return &GetConfigResponse{
		TransportDefaults: cfg.TransportDefaults,
		Eutils: EutilsView{
			BaseURL:        cfg.Eutils.BaseURL,
			Tool:           cfg.Eutils.Tool,
			Email:          cfg.Eutils.Email,
			APIKeySet:      cfg.Eutils.APIKey != nil && *cfg.Eutils.APIKey != "",
			RetMax:         cfg.Eutils.RetMax,
			TimeoutSeconds: cfg.Eutils.TimeoutSeconds,
		},
		Cache: cfg.Cache,
		Paths: cfg.Paths,
	}, nil
}

// SetConfig は設定を部分更新して保存する
func (s *configService) SetConfig(ctx context.Context, req *SetConfigRequest) (*SetConfigResponse, error) {
	if req.Eutils != nil {
		patch := &config.EutilsPatch{
			APIKey: req.Eutils.APIKey,
			Email:  req.Eutils.Email,
			RetMax: req.Eutils.RetMax,
		}
		if err := s.manager.UpdateEutils(patch); err != nil {
			return nil, fmt.Errorf("failed to update eutils config: %w", err)
		}
	}

	if req.Cache != nil {
		patch := &config.CachePatch{
			TTLSeconds: req.Cache.TTLSeconds,
		}
		if err := s.manager.UpdateCache(patch); err != nil {
			return nil, fmt.Errorf("failed to update cache config: %w", err)
		}
	}

	cfg := s.manager.GetConfig()

	return &SetConfigResponse{
		OK:        true,
		APIKeySet: cfg.Eutils.APIKey != nil && *cfg.Eutils.APIKey != "",
	}, nil
}
