package eutils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/siderolabs/go-retry/retry"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL はNCBI E-utilitiesのベースURL
	DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// NCBIのレート制限ポリシー: APIキー無しは3req/s、有りは10req/s
	rpsWithoutKey = 3
	rpsWithKey    = 10

	// 一時的エラーのリトライ設定
	retryTimeout  = 6 * time.Second
	retryInterval = 500 * time.Millisecond
)

// HTTPClient はE-utilitiesのHTTP実装
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	email      string
	tool       string
	limiter    *rate.Limiter
}

// Option はHTTPClientのオプション
type Option func(*HTTPClient)

// WithBaseURL はベースURLを設定
func WithBaseURL(url string) Option {
	return func(c *HTTPClient) {
		if url != "" {
			c.baseURL = strings.TrimSuffix(url, "/")
		}
	}
}

// WithAPIKey はNCBI APIキーを設定（レート上限が10req/sに上がる）
func WithAPIKey(key string) Option {
	return func(c *HTTPClient) {
		c.apiKey = key
	}
}

// WithEmail はemailパラメータを設定（NCBI推奨）
func WithEmail(email string) Option {
	return func(c *HTTPClient) {
		c.email = email
	}
}

// WithTool はtoolパラメータを設定
func WithTool(tool string) Option {
	return func(c *HTTPClient) {
		if tool != "" {
			c.tool = tool
		}
	}
}

// WithHTTPClient はHTTPクライアントを設定
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = client
	}
}

// WithTimeout はHTTPタイムアウトを設定
func WithTimeout(timeout time.Duration) Option {
	return func(c *HTTPClient) {
		c.httpClient = &http.Client{Timeout: timeout}
	}
}

// NewHTTPClient は新しいHTTPClientを作成
func NewHTTPClient(opts ...Option) *HTTPClient {
	c := &HTTPClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
		tool:       "mcp-ncbi",
	}

	for _, opt := range opts {
		opt(c)
	}

	// APIキーの有無でレート上限が変わる
	rps := rpsWithoutKey
	if c.apiKey != "" {
		rps = rpsWithKey
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), rps)

	return c
}

// esearchResponse はesearch.fcgiのJSONレスポンス
type esearchResponse struct {
	ESearchResult esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	Count  string   `json:"count"` // NCBIは件数を文字列で返す
	IDList []string `json:"idlist"`
}

// Search はesearchでデータベースを検索する
func (c *HTTPClient) Search(ctx context.Context, db, term string, retMax int) (*SearchResult, error) {
	params := c.commonParams(db)
	params.Set("term", term)
	params.Set("retmode", "json")
	if retMax > 0 {
		params.Set("retmax", strconv.Itoa(retMax))
	}

	body, err := c.get(ctx, "esearch.fcgi", params)
	if err != nil {
		return nil, err
	}

	var resp esearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	// countは文字列なので変換（欠落時は0のまま）
	count, _ := strconv.Atoi(resp.ESearchResult.Count)

	return &SearchResult{
		Count: count,
		IDs:   resp.ESearchResult.IDList,
	}, nil
}

// Fetch はefetchでレコード本文を取得する
func (c *HTTPClient) Fetch(ctx context.Context, db string, ids []string, retType string) (string, error) {
	if len(ids) == 0 {
		return "", ErrEmptyResult
	}

	params := c.commonParams(db)
	params.Set("id", strings.Join(ids, ","))
	params.Set("rettype", retType)
	params.Set("retmode", "text")

	body, err := c.get(ctx, "efetch.fcgi", params)
	if err != nil {
		return "", err
	}

	text := string(body)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResult
	}

	return text, nil
}

// Summary はesummaryでドキュメント要約を取得する
func (c *HTTPClient) Summary(ctx context.Context, db string, ids []string) (*SummaryResult, error) {
	if len(ids) == 0 {
		return nil, ErrEmptyResult
	}

	params := c.commonParams(db)
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "json")

	body, err := c.get(ctx, "esummary.fcgi", params)
	if err != nil {
		return nil, err
	}

	return parseSummaryResponse(body, ids)
}

// commonParams は全リクエスト共通のパラメータを生成
// NCBI利用規約に従い、tool/email/api_keyを常に付与する
func (c *HTTPClient) commonParams(db string) url.Values {
	params := url.Values{}
	params.Set("db", db)
	if c.tool != "" {
		params.Set("tool", c.tool)
	}
	if c.email != "" {
		params.Set("email", c.email)
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	return params
}

// get はレート制限とリトライ付きでGETリクエストを実行する
// 429/5xxおよびネットワークエラーは一時的エラーとしてリトライする
func (c *HTTPClient) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + "/" + endpoint + "?" + params.Encode()

	var body []byte
	var lastErr error
	err := retry.Constant(retryTimeout, retry.WithUnits(retryInterval)).
		RetryWithContext(ctx, func(ctx context.Context) error {
			// クライアント側レート制限（NCBIポリシー準拠）
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrAPIRequestFailed, err)
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				// context.Canceledやcontext.DeadlineExceededはそのまま返す
				if ctx.Err() != nil {
					return ctx.Err()
				}
				lastErr = fmt.Errorf("%w: %v", ErrAPIRequestFailed, err)
				return retry.ExpectedError(lastErr)
			}
			defer resp.Body.Close()

			data, err := io.ReadAll(resp.Body)
			if err != nil {
				lastErr = fmt.Errorf("%w: failed to read response: %v", ErrAPIRequestFailed, err)
				return retry.ExpectedError(lastErr)
			}

			// 429と5xxは一時的エラーとしてリトライ
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				lastErr = &APIError{
					StatusCode: resp.StatusCode,
					Message:    truncate(string(data), 200),
				}
				return retry.ExpectedError(lastErr)
			}

			if resp.StatusCode != http.StatusOK {
				return &APIError{
					StatusCode: resp.StatusCode,
					Message:    truncate(string(data), 200),
				}
			}

			body = data
			return nil
		})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// リトライ枯渇時はタイムアウトではなく最後の失敗理由を返す
		var apiErr *APIError
		if !errors.As(err, &apiErr) && !errors.Is(err, ErrAPIRequestFailed) && lastErr != nil {
			return nil, lastErr
		}
		return nil, err
	}

	return body, nil
}

// truncate はエラーメッセージ用に文字列を切り詰める
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
