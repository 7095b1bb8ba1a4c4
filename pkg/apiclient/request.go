package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Envelope はバックエンドが返すJSONオブジェクト。
// ペイロードの形は検証せず、そのまま呼び出し側に渡す。
type Envelope map[string]any

// String は指定キーの文字列値を返す。存在しないか文字列でない場合は空文字列を返す。
func (e Envelope) String(key string) string {
	s, _ := e[key].(string)
	return s
}

// Bool は指定キーの真偽値を返す。
func (e Envelope) Bool(key string) bool {
	b, _ := e[key].(bool)
	return b
}

// Object は指定キーのオブジェクトを返す。
func (e Envelope) Object(key string) Envelope {
	m, _ := e[key].(map[string]any)
	return Envelope(m)
}

// RetryPolicy はトランスポート失敗時の再試行ポリシー。
// HTTPステータスによる失敗は再試行しない。
type RetryPolicy struct {
	// MaxAttempts は最大試行回数。1以下は再試行なし。
	MaxAttempts int
	// Backoff は再試行までの待機時間。
	Backoff time.Duration
}

func (p RetryPolicy) normalize() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Backoff < 0 {
		p.Backoff = 0
	}
	return p
}

// Request はバックエンドにリクエストを送信し、レスポンスボディをEnvelopeとして返す。
// endpointはベースURLからの相対パス（例: "/sales/record"）。payloadがnilでなければJSONボディとして送る。
//
// 2xx以外の応答は*APIErrorを返す。401の場合はトークンを破棄してからNavigatorに遷移を通知する。
// 通信失敗とレスポンスのデコード失敗はログに出力した上でErrTransportでラップして返す。
// 2xxのボディがJSONオブジェクトでない場合（配列やスカラー）もデコード失敗として扱う。
// オブジェクト以外を受け取りうるエンドポイントにはRequestIntoに*anyを渡す。
func (c *Client) Request(ctx context.Context, method, endpoint string, payload any) (Envelope, error) {
	var env Envelope
	if err := c.RequestInto(ctx, method, endpoint, payload, &env); err != nil {
		return nil, err
	}
	if env == nil {
		env = Envelope{}
	}
	return env, nil
}

// RequestInto はRequestと同じ契約で、成功時のレスポンスボディをoutにデシリアライズする。
// outがnilの場合はボディを読み捨てる。
func (c *Client) RequestInto(ctx context.Context, method, endpoint string, payload any, out any) error {
	requestID := requestIDFrom(ctx)
	url := c.URL(endpoint)
	log := c.logger.With(
		zap.String("method", method),
		zap.String("url", url),
		zap.String("request_id", requestID),
	)

	var reqBody []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			log.Error("リクエストボディのシリアライズに失敗", zap.Error(err))
			return transportError("encode request", err)
		}
		reqBody = b
	}

	start := time.Now()
	status, respBody, err := c.send(ctx, log, method, url, requestID, reqBody)
	if err != nil {
		c.metrics.observe(method, "transport_error", time.Since(start))
		log.Error("APIリクエストに失敗", zap.Error(err))
		return transportError("send request", err)
	}
	c.metrics.observe(method, strconv.Itoa(status), time.Since(start))

	if status < 200 || status >= 300 {
		apiErr := newAPIError(status, respBody)
		if status == http.StatusUnauthorized {
			c.ClearToken(ctx)
			c.navigator.Navigate(ctx, c.redirectPath)
		}
		log.Debug("APIがエラーを返却", zap.Int("status", status), zap.String("error", apiErr.Message))
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		log.Error("レスポンスボディのデシリアライズに失敗", zap.Int("status", status), zap.Error(err))
		return transportError("decode response", err)
	}
	return nil
}

// send はリクエストを送信し、ステータスコードとボディを返す。
// 冪等なメソッドのみ、再試行ポリシーに従ってトランスポート失敗を再試行する。
func (c *Client) send(ctx context.Context, log *zap.Logger, method, url, requestID string, body []byte) (int, []byte, error) {
	attempts := 1
	if isIdempotent(method) {
		attempts = c.retry.MaxAttempts
	}
	token := c.Token(ctx)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		status, respBody, err := c.roundTrip(ctx, method, url, requestID, token, body)
		if err == nil {
			return status, respBody, nil
		}
		lastErr = err
		if attempt == attempts || ctx.Err() != nil {
			break
		}
		log.Warn("APIリクエストを再試行", zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-time.After(c.retry.Backoff):
		case <-ctx.Done():
			return 0, nil, errors.Join(lastErr, ctx.Err())
		}
	}
	return 0, nil, lastErr
}

// roundTrip は1回分のHTTPリクエストを実行する。
func (c *Client) roundTrip(ctx context.Context, method, url, requestID, token string, body []byte) (int, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerKeyRequestID, requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("HTTPリクエストの送信に失敗: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("レスポンスボディの読み取りに失敗: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

// decodeEnvelope はボディをEnvelopeとしてデコードする。
func decodeEnvelope(body []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	return env, nil
}

// isIdempotent はHTTPメソッドが冪等かを返す。
func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions:
		return true
	default:
		return false
	}
}

// headerKeyRequestID はリクエストIDを伝播するためのHTTPヘッダーキー。
const headerKeyRequestID = "X-Request-ID"

// contextKey はコンテキストキーの型。
type contextKey string

// contextKeyRequestID はコンテキストにリクエストIDを格納するためのキー。
const contextKeyRequestID contextKey = "request_id"

// WithRequestID はコンテキストにリクエストIDを設定する。
// 設定されていない場合は呼び出しごとに新しいUUIDを採番する。
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(contextKeyRequestID).(string); ok && id != "" {
		return id
	}
	return uuid.New().String()
}
