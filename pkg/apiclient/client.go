package apiclient

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nao1215/hotelops/pkg/tokenstore"
)

// DefaultRedirectPath は認証拒否時に通知する遷移先。
const DefaultRedirectPath = "/"

// Client はバックエンドAPIと通信するクライアント。
// プロセスごとに1つ生成し、利用者に注入して使う。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL はバックエンドのベースURL（例: "http://localhost:5000/api"）。
	baseURL string
	// store はセッショントークンの永続ストア。
	store tokenstore.Store
	// navigator は認証拒否やダウンロード時の遷移先を受け取る。
	navigator Navigator
	// logger は通信失敗などの診断ログを出力する。
	logger *zap.Logger
	// retry はトランスポート失敗時の再試行ポリシー。
	retry RetryPolicy
	// redirectPath は401応答時に通知する遷移先。
	redirectPath string
	// timeout はリクエスト全体のタイムアウト。0はタイムアウトなし。
	timeout time.Duration
	// metrics はリクエストメトリクス。nilの場合は記録しない。
	metrics *metrics

	// mu はトークンキャッシュを保護する。
	mu sync.Mutex
	// cachedToken はメモリ上のトークンキャッシュ。空文字列は未設定を表す。
	cachedToken string
	// loaded はcachedTokenが確定済みであることを表す。falseの間だけ永続ストアを読む。
	loaded bool
}

// Option はClientの設定を変更する関数。
type Option func(*Client)

// WithStore はセッショントークンの永続ストアを設定する。
func WithStore(store tokenstore.Store) Option {
	return func(c *Client) {
		if store != nil {
			c.store = store
		}
	}
}

// WithNavigator は遷移通知先を設定する。
func WithNavigator(n Navigator) Option {
	return func(c *Client) {
		if n != nil {
			c.navigator = n
		}
	}
}

// WithLogger はロガーを設定する。
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient は内部で使用するHTTPクライアントを差し替える。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout はリクエスト全体のタイムアウトを設定する。
// 0の場合はタイムアウトを設けず、トランスポート層の既定値に従う。
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRetry はトランスポート失敗時の再試行ポリシーを設定する。
func WithRetry(p RetryPolicy) Option {
	return func(c *Client) {
		c.retry = p.normalize()
	}
}

// WithRedirectPath は401応答時に通知する遷移先を設定する。
func WithRedirectPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.redirectPath = path
		}
	}
}

// New は新しいAPIクライアントを生成する。
// baseURLにはバックエンドのベースURL（例: "http://localhost:5000/api"）を指定する。
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{},
		baseURL:      strings.TrimRight(baseURL, "/"),
		store:        tokenstore.NewMemory(),
		navigator:    nopNavigator{},
		logger:       zap.NewNop(),
		retry:        RetryPolicy{MaxAttempts: 1},
		redirectPath: DefaultRedirectPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// BaseURL はバックエンドのベースURLを返す。
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL はベースURLとエンドポイントを連結した完全なURLを返す。
func (c *Client) URL(endpoint string) string {
	return c.baseURL + endpoint
}

// SetToken はセッショントークンをメモリキャッシュと永続ストアの両方に保存する。
// 永続ストアへの書き込みに失敗してもメモリキャッシュには保持される。
func (c *Client) SetToken(ctx context.Context, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cachedToken = token
	c.loaded = true
	if err := c.store.Save(ctx, token); err != nil {
		c.logger.Warn("トークンの永続化に失敗", zap.Error(err))
	}
}

// Token は現在のセッショントークンを返す。トークンがない場合は空文字列を返す。
// SetTokenかClearTokenが呼ばれるか、永続ストアからトークンを一度読み込むまでは永続ストアを参照する。
// それ以降はメモリキャッシュだけを返すため、ClearToken後に永続ストアの古い値が戻ることはない。
func (c *Client) Token(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.cachedToken
	}
	token, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn("トークンの読み込みに失敗", zap.Error(err))
		return ""
	}
	c.cachedToken = token
	c.loaded = token != ""
	return token
}

// HasToken はセッショントークンが存在するかを返す。
func (c *Client) HasToken(ctx context.Context) bool {
	return c.Token(ctx) != ""
}

// ClearToken はセッショントークンをメモリキャッシュと永続ストアの両方から削除する。
// 永続ストアからの削除に失敗しても、このClientは以後トークンなしとして振る舞う。
func (c *Client) ClearToken(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cachedToken = ""
	c.loaded = true
	if err := c.store.Delete(ctx); err != nil {
		c.logger.Warn("トークンの削除に失敗", zap.Error(err))
	}
}
