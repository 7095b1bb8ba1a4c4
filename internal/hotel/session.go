package hotel

import (
	"context"
	"errors"

	"github.com/nao1215/hotelops/pkg/apiclient"
)

// ErrInvalidCredentials はログイン応答にトークンが含まれなかったことを表す。
var ErrInvalidCredentials = errors.New("hotel: invalid credentials")

// ErrNoSession は保存済みのセッションがないことを表す。
var ErrNoSession = errors.New("hotel: no active session")

// SignIn はログインし、成功した場合にトークンを保存してユーザー情報を返す。
// 応答がsuccess=trueかつtokenを含まない場合はErrInvalidCredentialsを返す。
func (s *Service) SignIn(ctx context.Context, username, password string) (apiclient.Envelope, error) {
	env, err := s.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	token := env.String("token")
	if !env.Bool("success") || token == "" {
		return nil, ErrInvalidCredentials
	}
	s.client.SetToken(ctx, token)
	return env.Object("user"), nil
}

// SignOut はバックエンドにログアウトを通知し、結果にかかわらずトークンを破棄する。
// ログアウト通知の失敗は戻り値で返すが、トークンは必ず破棄される。
func (s *Service) SignOut(ctx context.Context) error {
	_, err := s.Logout(ctx)
	s.client.ClearToken(ctx)
	return err
}

// Resume は保存済みのトークンでプロフィールを取得し、セッションが有効であればユーザー情報を返す。
// トークンがない場合はErrNoSessionを返す。取得に失敗した場合はトークンを破棄する。
func (s *Service) Resume(ctx context.Context) (apiclient.Envelope, error) {
	if !s.client.HasToken(ctx) {
		return nil, ErrNoSession
	}
	env, err := s.Profile(ctx)
	if err != nil {
		s.client.ClearToken(ctx)
		return nil, err
	}
	if !env.Bool("success") {
		s.client.ClearToken(ctx)
		return nil, ErrNoSession
	}
	return env.Object("user"), nil
}
