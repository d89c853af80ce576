package model

import "regexp"

// NCBIデータベース定数
const (
	DBNucleotide = "nucleotide"
	DBProtein    = "protein"
	DBGene       = "gene"
)

// rettype定数（efetch用）
const (
	RetTypeFASTA   = "fasta"
	RetTypeGenBank = "gb"
	RetTypeGenPept = "gp"
)

// accessionPattern はNCBIアクセッション番号の構文
// 例: NM_000546, NG_005905.2, NP_000537, P53_HUMAN は別途UniProt形式として許容
var accessionPattern = regexp.MustCompile(`^[A-Za-z]{1,3}_?[0-9]+(\.[0-9]+)?$`)

// uniprotPattern はUniProt由来のエントリ名（例: P53_HUMAN）
// proteinデータベースではこの形式のアクセッションも通る
var uniprotPattern = regexp.MustCompile(`^[A-Za-z0-9]{1,10}_[A-Za-z0-9]{1,10}$`)

// ValidAccession はアクセッション番号の構文を検証する
// ネットワークアクセス前の簡易チェックであり、実在確認はしない
func ValidAccession(accession string) bool {
	if accession == "" {
		return false
	}
	return accessionPattern.MatchString(accession) || uniprotPattern.MatchString(accession)
}

// ValidSequenceDB はefetch対象のデータベース名かを判定
func ValidSequenceDB(db string) bool {
	return db == DBNucleotide || db == DBProtein
}

// ValidSearchDB はesearch対象のデータベース名かを判定
// 検索はgeneデータベースも許容する
func ValidSearchDB(db string) bool {
	return db == DBNucleotide || db == DBProtein || db == DBGene
}

// MetadataRetType はメタデータ取得時のrettypeを返す
// nucleotideはGenBank形式、proteinはGenPept形式
func MetadataRetType(db string) string {
	if db == DBProtein {
		return RetTypeGenPept
	}
	return RetTypeGenBank
}

// HistoryEntry は取得履歴の1件
type HistoryEntry struct {
	ID        string `json:"id"`        // UUID
	Tool      string `json:"tool"`      // 実行した操作（例: get_nucleotide_sequence）
	DB        string `json:"db"`        // 対象データベース
	Term      string `json:"term"`      // アクセッションまたは検索クエリ
	CacheHit  bool   `json:"cacheHit"`  // キャッシュから返したか
	CreatedAt string `json:"createdAt"` // RFC3339
}

// CacheEntry はキャッシュの1件
type CacheEntry struct {
	DB        string // 対象データベース
	Key       string // アクセッションまたは正規化済みクエリ
	RetType   string // rettype（検索結果は "search"）
	Body      string // レスポンス本文
	ExpiresAt string // RFC3339、これ以降は無効
}
