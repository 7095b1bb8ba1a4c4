// Package config は環境変数と.envファイルからhotelopsの設定を読み込む。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// TokenStoreKind はセッショントークンの保存先の種類。
type TokenStoreKind string

const (
	// TokenStoreFile はJSONファイルに保存する。
	TokenStoreFile TokenStoreKind = "file"
	// TokenStoreSQLite はSQLiteデータベースに保存する。
	TokenStoreSQLite TokenStoreKind = "sqlite"
	// TokenStoreRedis はRedisに保存する。
	TokenStoreRedis TokenStoreKind = "redis"
	// TokenStoreMemory はプロセス内にのみ保持する。
	TokenStoreMemory TokenStoreKind = "memory"
)

// Config はクライアント側の設定。
type Config struct {
	// APIBaseURL はバックエンドAPIのベースURL。
	APIBaseURL string
	// TokenStore はセッショントークンの保存先。
	TokenStore TokenStoreKind
	// TokenFile はTokenStoreFileの保存先パス。空の場合は既定の場所を使う。
	TokenFile string
	// SQLitePath はTokenStoreSQLiteのデータベースパス。
	SQLitePath string
	// RedisURL はTokenStoreRedisの接続先。
	RedisURL string
	// RedisPrefix はRedisキーのプレフィックス。
	RedisPrefix string
	// Timeout はリクエストのタイムアウト。0はタイムアウトなし。
	Timeout time.Duration
	// RetryMax はトランスポート失敗時の最大試行回数。
	RetryMax int
	// RetryBackoff は再試行までの待機時間。
	RetryBackoff time.Duration
	// RedirectPath は認証拒否時の遷移先。
	RedirectPath string
	// DownloadDir はレポートのダウンロード先ディレクトリ。
	DownloadDir string
	// LogLevel はログレベル（debug, info, warn, error）。
	LogLevel string
	// LogFormat はログ形式（json, console）。
	LogFormat string
}

// SandboxConfig はサンドボックスバックエンドの設定。
type SandboxConfig struct {
	// Port はリッスンポート。
	Port string
	// JWTSecret はトークン署名用の秘密鍵。
	JWTSecret string
	// FrontendURL はCORSで許可するオリジン。
	FrontendURL string
	// DatabasePath はSQLiteのデータベースパス。":memory:"の場合はプロセス終了で消える。
	DatabasePath string
	// Seed がtrueの場合、空のデータベースに開発用の初期データを投入する。
	Seed bool
	// LogLevel はログレベル。
	LogLevel string
	// LogFormat はログ形式。
	LogFormat string
}

// LoadDotEnv はpathの.envファイルを読み込む。既に設定済みの環境変数は上書きしない。
// ファイルが存在しない場合は何もしない。
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%sの読み込みに失敗: %w", path, err)
	}
	return nil
}

// Load は環境変数からクライアント設定を読み込む。
func Load() (*Config, error) {
	cfg := &Config{
		APIBaseURL:   getEnvOr("HOTELOPS_API_BASE_URL", "http://localhost:5000/api"),
		TokenStore:   TokenStoreKind(strings.ToLower(getEnvOr("HOTELOPS_TOKEN_STORE", string(TokenStoreFile)))),
		TokenFile:    os.Getenv("HOTELOPS_TOKEN_FILE"),
		SQLitePath:   getEnvOr("HOTELOPS_SQLITE_PATH", "hotelops.db"),
		RedisURL:     getEnvOr("HOTELOPS_REDIS_URL", "redis://localhost:6379/0"),
		RedisPrefix:  getEnvOr("HOTELOPS_REDIS_PREFIX", "hotelops:"),
		RedirectPath: getEnvOr("HOTELOPS_REDIRECT_PATH", "/"),
		DownloadDir:  getEnvOr("HOTELOPS_DOWNLOAD_DIR", "."),
		LogLevel:     getEnvOr("HOTELOPS_LOG_LEVEL", "warn"),
		LogFormat:    getEnvOr("HOTELOPS_LOG_FORMAT", "console"),
	}

	var err error
	if cfg.Timeout, err = durationEnv("HOTELOPS_TIMEOUT", 0); err != nil {
		return nil, err
	}
	if cfg.RetryBackoff, err = durationEnv("HOTELOPS_RETRY_BACKOFF", 200*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.RetryMax, err = intEnv("HOTELOPS_RETRY_MAX", 1); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate は設定値の整合性を検証する。
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("HOTELOPS_API_BASE_URLはhttp(s)のURLである必要があります: %q", c.APIBaseURL)
	}
	switch c.TokenStore {
	case TokenStoreFile, TokenStoreSQLite, TokenStoreRedis, TokenStoreMemory:
	default:
		return fmt.Errorf("HOTELOPS_TOKEN_STOREが不正です: %q", c.TokenStore)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("HOTELOPS_TIMEOUTは0以上である必要があります: %v", c.Timeout)
	}
	if c.RetryMax < 1 {
		return fmt.Errorf("HOTELOPS_RETRY_MAXは1以上である必要があります: %d", c.RetryMax)
	}
	return nil
}

// LoadSandbox は環境変数からサンドボックスバックエンドの設定を読み込む。
func LoadSandbox() (*SandboxConfig, error) {
	cfg := &SandboxConfig{
		Port:         getEnvOr("PORT", "5000"),
		JWTSecret:    getEnvOr("JWT_SECRET", "dev-secret-key"),
		FrontendURL:  getEnvOr("FRONTEND_URL", "http://localhost:3000"),
		DatabasePath: getEnvOr("HOTELOPS_SANDBOX_DB", ":memory:"),
		LogLevel:     getEnvOr("HOTELOPS_LOG_LEVEL", "info"),
		LogFormat:    getEnvOr("HOTELOPS_LOG_FORMAT", "json"),
	}

	var err error
	if cfg.Seed, err = boolEnv("HOTELOPS_SANDBOX_SEED", true); err != nil {
		return nil, err
	}
	return cfg, nil
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func durationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%sのパースに失敗: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%sのパースに失敗: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, defaultValue bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%sのパースに失敗: %w", key, err)
	}
	return b, nil
}
