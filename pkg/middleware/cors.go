package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CORSConfig はCORSミドルウェアの設定。
type CORSConfig struct {
	// AllowedOrigins は許可するオリジン。"*"を含む場合はすべてのオリジンを許可する。
	AllowedOrigins []string
	// AllowedMethods はプリフライトで許可するメソッド。空の場合はDefaultCORSMethods。
	AllowedMethods []string
	// AllowedHeaders はプリフライトで許可するリクエストヘッダー。空の場合はDefaultCORSHeaders。
	AllowedHeaders []string
	// ExposedHeaders はブラウザのスクリプトに公開するレスポンスヘッダー。
	ExposedHeaders []string
	// MaxAge はプリフライト結果のキャッシュ期間。0の場合はヘッダーを付けない。
	MaxAge time.Duration
}

var (
	// DefaultCORSMethods はAllowedMethodsの既定値。
	DefaultCORSMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	// DefaultCORSHeaders はAllowedHeadersの既定値。
	DefaultCORSHeaders = []string{"Authorization", "Content-Type", "X-Request-ID"}
)

// CORS はcfgに従ってクロスオリジンリクエストを許可するGinミドルウェアを返す。
// ブラウザのフロントエンドからサンドボックスのAPIを呼び出し、レポートをダウンロードするために使う。
func CORS(cfg CORSConfig) gin.HandlerFunc {
	allowAll := false
	origins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			allowAll = true
		}
		origins[strings.TrimRight(o, "/")] = struct{}{}
	}
	methods := cfg.AllowedMethods
	if len(methods) == 0 {
		methods = DefaultCORSMethods
	}
	headers := cfg.AllowedHeaders
	if len(headers) == 0 {
		headers = DefaultCORSHeaders
	}
	allowMethods := strings.Join(methods, ", ")
	allowHeaders := strings.Join(headers, ", ")
	exposeHeaders := strings.Join(cfg.ExposedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}
		c.Header("Vary", "Origin")

		_, ok := origins[origin]
		if !ok && !allowAll {
			// 許可されていないオリジンにはヘッダーを付けず、ブラウザに拒否させる
			c.Next()
			return
		}
		c.Header("Access-Control-Allow-Origin", origin)
		if exposeHeaders != "" {
			c.Header("Access-Control-Expose-Headers", exposeHeaders)
		}

		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			c.Header("Access-Control-Allow-Methods", allowMethods)
			c.Header("Access-Control-Allow-Headers", allowHeaders)
			if cfg.MaxAge > 0 {
				c.Header("Access-Control-Max-Age", strconv.Itoa(int(cfg.MaxAge/time.Second)))
			}
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
