package middleware

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL は発行するトークンの有効期間。
const TokenTTL = 24 * time.Hour

// 役割の名前。
const (
	RoleEmployee = "Employee"
	RoleManager  = "Manager"
	RoleAdmin    = "Admin"
)

// JWTClaims はJWTトークンのクレーム（ペイロード）を表す。
type JWTClaims struct {
	jwt.RegisteredClaims
	// UserID は認証済みユーザーのID。
	UserID int64 `json:"user_id"`
	// Role はユーザーの役割（Employee / Manager / Admin）。
	Role string `json:"role"`
	// Username はログイン名。
	Username string `json:"username"`
}

// コンテキストキー。
const (
	contextKeyUserID   = "user_id"
	contextKeyRole     = "role"
	contextKeyUsername = "username"
)

// GenerateJWT はユーザー情報からHS256で署名したJWTトークンを生成する。
func GenerateJWT(secret string, userID int64, role, username string) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:   userID,
		Role:     role,
		Username: username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("JWTトークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// ParseJWT はトークンの署名と有効期限を検証してクレームを返す。
func ParseJWT(secret, tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// Fail はエラーエンベロープを返してリクエストを中断する。
func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}

// JWTAuth はJWTトークンを検証するGinミドルウェアを返す。
// 検証に成功した場合、コンテキストに "user_id"・"role"・"username" を設定する。
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			Fail(c, http.StatusUnauthorized, "Token is missing")
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenString == "" {
			Fail(c, http.StatusUnauthorized, "Invalid token format")
			return
		}

		claims, err := ParseJWT(secret, tokenString)
		if err != nil {
			Fail(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(contextKeyUserID, claims.UserID)
		c.Set(contextKeyRole, claims.Role)
		c.Set(contextKeyUsername, claims.Username)
		c.Next()
	}
}

// RequireRole はユーザーの役割がrolesのいずれかであることを要求するGinミドルウェアを返す。
// JWTAuthの後に適用する。
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get(contextKeyRole)
		if !ok {
			Fail(c, http.StatusUnauthorized, "User not authenticated")
			return
		}
		if r, _ := role.(string); !slices.Contains(roles, r) {
			Fail(c, http.StatusForbidden, "Insufficient permissions")
			return
		}
		c.Next()
	}
}

// GetUserID はGinコンテキストからユーザーIDを取得する。
// JWTAuthミドルウェアが事前に適用されている必要がある。
func GetUserID(c *gin.Context) int64 {
	userID, _ := c.Get(contextKeyUserID)
	if id, ok := userID.(int64); ok {
		return id
	}
	return 0
}

// GetRole はGinコンテキストからユーザーの役割を取得する。
func GetRole(c *gin.Context) string {
	return c.GetString(contextKeyRole)
}

// GetUsername はGinコンテキストからログイン名を取得する。
func GetUsername(c *gin.Context) string {
	return c.GetString(contextKeyUsername)
}
