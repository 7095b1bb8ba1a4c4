package apiclient

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaqueToken はトークンがJWTとして解釈できないことを表す。
var ErrOpaqueToken = errors.New("apiclient: token is not a JWT")

// TokenClaims はバックエンドが発行するトークンのクレーム。
// 表示用であり、署名は検証しない。
type TokenClaims struct {
	jwt.RegisteredClaims
	// UserID はユーザーの識別子。
	UserID int64 `json:"user_id"`
	// Role はユーザーの役割（Employee, Manager, Admin）。
	Role string `json:"role"`
	// Username はログイン名。
	Username string `json:"username"`
}

// Expired はnow時点で有効期限が切れているかを返す。期限がない場合はfalse。
func (c *TokenClaims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}

// InspectToken はトークンのクレームを署名検証なしで取り出す。
// クライアント側ではトークンを不透明な値として扱うため、結果は表示にのみ使うこと。
func InspectToken(token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpaqueToken, err)
	}
	return claims, nil
}
