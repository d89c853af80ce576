package model

// Config はサーバー全体の設定を表す
type Config struct {
	TransportDefaults TransportDefaults `json:"transportDefaults"`
	Eutils            EutilsConfig      `json:"eutils"`
	Cache             CacheConfig       `json:"cache"`
	Paths             PathsConfig       `json:"paths"`
}

// TransportDefaults はtransportのデフォルト設定
type TransportDefaults struct {
	DefaultTransport string `json:"defaultTransport"` // "stdio" | "http"
}

// EutilsConfig はNCBI E-utilitiesクライアント設定
type EutilsConfig struct {
	BaseURL        string  `json:"baseUrl"`           // E-utilitiesベースURL
	APIKey         *string `json:"apiKey,omitempty"`  // nullable、省略可（セキュリティ注意）
	Email          *string `json:"email,omitempty"`   // NCBI連絡先（推奨）
	Tool           string  `json:"tool"`              // toolパラメータに載せる識別子
	RetMax         int     `json:"retMax"`            // 検索結果の最大件数
	TimeoutSeconds int     `json:"timeoutSeconds"`    // HTTPタイムアウト（秒）
}

// CacheConfig はレスポンスキャッシュ設定
type CacheConfig struct {
	Type       string  `json:"type"`           // "sqlite" | "memory" | "none"
	Path       *string `json:"path,omitempty"` // nullable（SQLite用）
	TTLSeconds int     `json:"ttlSeconds"`     // キャッシュ有効期間（秒）
}

// PathsConfig はファイルパス設定
type PathsConfig struct {
	ConfigPath string `json:"configPath"` // 設定ファイルパス
	DataDir    string `json:"dataDir"`    // データディレクトリ
}

// Transport定数
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Cache Type定数
const (
	CacheTypeSQLite = "sqlite"
	CacheTypeMemory = "memory"
	CacheTypeNone   = "none"
)

// E-utilitiesデフォルト値
const (
	DefaultEutilsBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	DefaultEutilsTool    = "mcp-ncbi"
	DefaultRetMax        = 10
	DefaultTimeout       = 30
	DefaultCacheTTL      = 24 * 60 * 60
)
