package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// fallbackErrorMessage はエラーレスポンスにerrorフィールドがない場合のメッセージ。
const fallbackErrorMessage = "API Error"

var (
	// ErrTransport はネットワーク到達不能や不正なレスポンスボディなど、通信レベルの失敗を表す。
	ErrTransport = errors.New("apiclient: transport failure")
	// ErrUnauthorized はバックエンドが認証を拒否した（401）ことを表す。
	ErrUnauthorized = errors.New("apiclient: authentication rejected")
)

// APIError はバックエンドが2xx以外のステータスを返した場合のエラー。
type APIError struct {
	// StatusCode はHTTPステータスコード。
	StatusCode int
	// Message はレスポンスのerrorフィールド、なければ汎用メッセージ。
	Message string
	// Envelope はパースできた場合のレスポンスボディ。パース不能ならnil。
	Envelope Envelope
}

// Error はエラーメッセージを返す。呼び出し側がそのまま表示できるようにメッセージのみを返す。
func (e *APIError) Error() string {
	return e.Message
}

// Is は401の場合にErrUnauthorizedと一致する。
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// IsUnauthorized はerrが認証拒否を表すかを返す。
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// StatusCode はerrがAPIErrorであればそのステータスコードを、そうでなければ0を返す。
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// transportError はErrTransportでラップしたエラーを生成する。
func transportError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTransport, op, err)
}

// newAPIError は失敗レスポンスのボディからAPIErrorを生成する。
// ボディが空またはJSONとして解釈できない場合も汎用メッセージで生成する。
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: fallbackErrorMessage}
	env, err := decodeEnvelope(body)
	if err != nil {
		return apiErr
	}
	apiErr.Envelope = env
	if msg, ok := env["error"].(string); ok && msg != "" {
		apiErr.Message = msg
	}
	return apiErr
}
