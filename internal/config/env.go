package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/brbranch/ncbi_mcp/internal/model"
)

// 環境変数名の定数
const (
	EnvNCBIAPIKey = "NCBI_API_KEY"
	EnvNCBIEmail  = "NCBI_EMAIL"
	EnvBaseURL    = "NCBI_EUTILS_BASE_URL"
)

// envOverrides は環境変数から読み込む設定
type envOverrides struct {
	APIKey  string `env:"NCBI_API_KEY"`
	Email   string `env:"NCBI_EMAIL"`
	BaseURL string `env:"NCBI_EUTILS_BASE_URL"`
}

// ApplyEnvOverrides は環境変数による設定上書きを適用する
// config を直接変更する。環境変数は設定ファイルより優先
func ApplyEnvOverrides(config *model.Config) error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	if overrides.APIKey != "" {
		apiKey := overrides.APIKey
		config.Eutils.APIKey = &apiKey
	}
	if overrides.Email != "" {
		email := overrides.Email
		config.Eutils.Email = &email
	}
	if overrides.BaseURL != "" {
		config.Eutils.BaseURL = overrides.BaseURL
	}

	return nil
}
