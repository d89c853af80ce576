package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/brbranch/ncbi_mcp/internal/model"
)

// Manager は設定の読み書きを管理する
type Manager struct {
	mu         sync.RWMutex
	config     *model.Config
	configPath string
}

// NewManager は新しいManagerを作成する
// configPathが空文字の場合、デフォルトパス（~/.mcp-ncbi/config.json）を使用
func NewManager(configPath string) (*Manager, error) {
	// configPathが空の場合はデフォルトパスを使用
	if configPath == "" {
		defaultPath, err := GetDefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get default config path: %w", err)
		}
		configPath = defaultPath
	}

	// デフォルトのデータディレクトリを取得
	dataDir, err := GetDefaultDataDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get default data dir: %w", err)
	}

	// デフォルト設定で初期化
	config := DefaultConfig(configPath, dataDir)

	return &Manager{
		config:     config,
		configPath: configPath,
	}, nil
}

// DefaultConfig はデフォルト設定を生成する
func DefaultConfig(configPath, dataDir string) *model.Config {
	return &model.Config{
		TransportDefaults: model.TransportDefaults{
			DefaultTransport: model.TransportStdio,
		},
		Eutils: model.EutilsConfig{
			BaseURL:        model.DefaultEutilsBaseURL,
			Tool:           model.DefaultEutilsTool,
			RetMax:         model.DefaultRetMax,
			TimeoutSeconds: model.DefaultTimeout,
		},
		Cache: model.CacheConfig{
			Type:       model.CacheTypeSQLite,
			TTLSeconds: model.DefaultCacheTTL,
		},
		Paths: model.PathsConfig{
			ConfigPath: configPath,
			DataDir:    dataDir,
		},
	}
}

// Load は設定ファイルを読み込み、環境変数の上書きを適用する
// ファイルが存在しない場合はデフォルト設定を使用（エラーなし）
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// ファイルが存在しない場合はデフォルト設定＋環境変数のみ
	if _, err := os.Stat(m.configPath); os.IsNotExist(err) {
		return ApplyEnvOverrides(m.config)
	}

	// ファイルを読み込み
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// JSONをパース
	var config model.Config
	if err := json.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	// ファイルに無い値はデフォルトで補完
	fillDefaults(&config, m.config)

	m.config = &config

	// 環境変数はファイルより優先
	return ApplyEnvOverrides(m.config)
}

// fillDefaults はゼロ値のフィールドをデフォルトで埋める
func fillDefaults(config, defaults *model.Config) {
	if config.TransportDefaults.DefaultTransport == "" {
		config.TransportDefaults.DefaultTransport = defaults.TransportDefaults.DefaultTransport
	}
	if config.Eutils.BaseURL == "" {
		config.Eutils.BaseURL = defaults.Eutils.BaseURL
	}
	if config.Eutils.Tool == "" {
		config.Eutils.Tool = defaults.Eutils.Tool
	}
	if config.Eutils.RetMax == 0 {
		config.Eutils.RetMax = defaults.Eutils.RetMax
	}
	if config.Eutils.TimeoutSeconds == 0 {
		config.Eutils.TimeoutSeconds = defaults.Eutils.TimeoutSeconds
	}
	if config.Cache.Type == "" {
		config.Cache.Type = defaults.Cache.Type
	}
	if config.Cache.TTLSeconds == 0 {
		config.Cache.TTLSeconds = defaults.Cache.TTLSeconds
	}
	if config.Paths.ConfigPath == "" {
		config.Paths.ConfigPath = defaults.Paths.ConfigPath
	}
	if config.Paths.DataDir == "" {
		config.Paths.DataDir = defaults.Paths.DataDir
	}
}

// Save は設定ファイルを保存する
func (m *Manager) Save() error {
	// Update系が同じ構造体を書き換えるため、エンコードまでロック内で行う
	m.mu.RLock()
	data, err := json.MarshalIndent(m.config, "", "  ")
	m.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// ディレクトリを作成
	configDir := filepath.Dir(m.configPath)
	if err := EnsureDir(configDir); err != nil {
		return err
	}

	// 一時ファイルに書き込み（atomicな保存のため）
	tmpFile := m.configPath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp config file: %w", err)
	}

	// 一時ファイルを本番ファイルにリネーム
	if err := os.Rename(tmpFile, m.configPath); err != nil {
		os.Remove(tmpFile) // クリーンアップ
		return fmt.Errorf("failed to rename config file: %w", err)
	}

	return nil
}

// GetConfig は現在の設定を返す（ロード済みの場合）
func (m *Manager) GetConfig() *model.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// GetConfigPath は設定ファイルパスを返す
func (m *Manager) GetConfigPath() string {
	return m.configPath
}

// EutilsPatch はE-utilities設定の部分更新
type EutilsPatch struct {
	APIKey *string
	Email  *string
	RetMax *int
}

// CachePatch はキャッシュ設定の部分更新
type CachePatch struct {
	TTLSeconds *int
}

// UpdateEutils はeutils設定のみを更新して保存する
func (m *Manager) UpdateEutils(patch *EutilsPatch) error {
	m.mu.Lock()
	if patch.APIKey != nil {
		if *patch.APIKey == "" {
			m.config.Eutils.APIKey = nil
		} else {
			m.config.Eutils.APIKey = patch.APIKey
		}
	}
	if patch.Email != nil {
		if *patch.Email == "" {
			m.config.Eutils.Email = nil
		} else {
			m.config.Eutils.Email = patch.Email
		}
	}
	if patch.RetMax != nil && *patch.RetMax > 0 {
		m.config.Eutils.RetMax = *patch.RetMax
	}
	m.mu.Unlock()

	return m.Save()
}

// UpdateCache はキャッシュ設定のみを更新して保存する
func (m *Manager) UpdateCache(patch *CachePatch) error {
	m.mu.Lock()
	if patch.TTLSeconds != nil && *patch.TTLSeconds > 0 {
		m.config.Cache.TTLSeconds = *patch.TTLSeconds
	}
	m.mu.Unlock()

	return m.Save()
}
