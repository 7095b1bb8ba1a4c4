package hotel

import (
	"context"

	"github.com/nao1215/hotelops/pkg/apiclient"
)

// Credentials はログイン要求のペイロード。
type Credentials struct {
	// Username はログイン名。
	Username string `json:"username"`
	// Password はパスワード。
	Password string `json:"password"`
}

// Registration はユーザー登録要求のペイロード。
type Registration struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// Login はPOST /auth/login を呼び出す。トークンの保存は呼び出し側（SignIn）が行う。
func (s *Service) Login(ctx context.Context, username, password string) (apiclient.Envelope, error) {
	return s.post(ctx, "/auth/login", Credentials{Username: username, Password: password})
}

// Register はPOST /auth/register を呼び出す。
func (s *Service) Register(ctx context.Context, r Registration) (apiclient.Envelope, error) {
	return s.post(ctx, "/auth/register", r)
}

// Logout はPOST /auth/logout を呼び出す。
func (s *Service) Logout(ctx context.Context) (apiclient.Envelope, error) {
	return s.post(ctx, "/auth/logout", nil)
}

// VerifyToken はPOST /auth/verify-token を呼び出す。
func (s *Service) VerifyToken(ctx context.Context) (apiclient.Envelope, error) {
	return s.post(ctx, "/auth/verify-token", nil)
}

// Profile はGET /auth/profile を呼び出す。
func (s *Service) Profile(ctx context.Context) (apiclient.Envelope, error) {
	return s.get(ctx, "/auth/profile")
}
