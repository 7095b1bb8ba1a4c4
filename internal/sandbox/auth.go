package sandbox

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/hotelops/pkg/middleware"
)

// loginRequest はログインリクエストのJSON構造。
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// userRequest はユーザー登録・従業員作成リクエストのJSON構造。
type userRequest struct {
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
	Email      string `json:"email" binding:"required"`
	FullName   string `json:"full_name" binding:"required"`
	Role       string `json:"role" binding:"required,oneof=Employee Manager Admin"`
	Department string `json:"department"`
	Phone      string `json:"phone"`
}

// sessionUser はログイン応答に含めるユーザー情報。
type sessionUser struct {
	UserID     int64  `json:"user_id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

// handleLogin はログインを処理し、トークンとユーザー情報を返すハンドラを返す。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
			middleware.Fail(c, http.StatusBadRequest, "Username and password required")
			return
		}

		u, err := s.store.UserByUsername(c.Request.Context(), req.Username)
		if errors.Is(err, ErrNotFound) || (err == nil && !checkPassword(u.PasswordHash, req.Password)) {
			middleware.Fail(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		if err != nil {
			s.internalError(c, "ユーザーの取得に失敗しました", err)
			return
		}
		if !u.IsActive {
			middleware.Fail(c, http.StatusUnauthorized, "User account is inactive")
			return
		}

		token, err := middleware.GenerateJWT(s.jwtSecret, u.UserID, u.Role, u.Username)
		if err != nil {
			s.internalError(c, "トークンの生成に失敗しました", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"token":   token,
			"user": sessionUser{
				UserID:     u.UserID,
				Username:   u.Username,
				Email:      u.Email,
				FullName:   u.FullName,
				Role:       u.Role,
				Department: u.Department,
			},
		})
	}
}

// createUser はuserRequestからユーザーを作成する。失敗時は応答を書き込みfalseを返す。
func (s *Server) createUser(c *gin.Context) (int64, bool) {
	var req userRequest
	if !bindJSON(c, &req) {
		return 0, false
	}
	hash, err := hashPassword(req.Password, s.passwordCost)
	if err != nil {
		s.internalError(c, "パスワードのハッシュ化に失敗しました", err)
		return 0, false
	}
	id, err := s.store.CreateUser(c.Request.Context(), User{
		Username:     req.Username,
		PasswordHash: hash,
		Email:        req.Email,
		FullName:     req.FullName,
		Role:         req.Role,
		Department:   req.Department,
		Phone:        req.Phone,
	})
	if errors.Is(err, ErrConflict) {
		middleware.Fail(c, http.StatusBadRequest, "Username or email already exists")
		return 0, false
	}
	if err != nil {
		s.internalError(c, "ユーザーの作成に失敗しました", err)
		return 0, false
	}
	return id, true
}

// handleRegister はユーザー登録を処理するハンドラを返す。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := s.createUser(c)
		if !ok {
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "User created successfully",
			"user_id": id,
		})
	}
}

// handleVerifyToken はトークンのクレームを返すハンドラを返す。
func (s *Server) handleVerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"user": gin.H{
				"user_id":  middleware.GetUserID(c),
				"role":     middleware.GetRole(c),
				"username": middleware.GetUsername(c),
			},
		})
	}
}

// handleProfile はログイン中のユーザーのプロフィールを返すハンドラを返す。
func (s *Server) handleProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := s.store.UserByID(c.Request.Context(), middleware.GetUserID(c))
		if errors.Is(err, ErrNotFound) {
			middleware.Fail(c, http.StatusNotFound, "User not found")
			return
		}
		if err != nil {
			s.internalError(c, "ユーザーの取得に失敗しました", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"user": gin.H{
				"user_id":    u.UserID,
				"username":   u.Username,
				"email":      u.Email,
				"full_name":  u.FullName,
				"role":       u.Role,
				"department": u.Department,
				"phone":      u.Phone,
			},
		})
	}
}

// handleLogout はログアウトを処理するハンドラを返す。トークンの破棄はクライアントが行う。
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Logged out successfully",
		})
	}
}
