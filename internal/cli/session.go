package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nao1215/hotelops/internal/hotel"
	"github.com/nao1215/hotelops/pkg/apiclient"
)

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := a.newFlagSet("login")
	username := fs.String("u", "", "ユーザー名")
	password := fs.String("p", "", "パスワード")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireFlags(fs, "u", "p"); err != nil {
		return err
	}

	user, err := a.svc.SignIn(ctx, *username, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s (%s) としてログインしました\n", user.String("full_name"), user.String("role"))
	return nil
}

func runLogout(ctx context.Context, a *app, _ []string) error {
	if !a.client.HasToken(ctx) {
		return hotel.ErrNoSession
	}
	if err := a.svc.SignOut(ctx); err != nil {
		// トークンはSignOutで破棄済み
		fmt.Fprintf(a.stderr, "ログアウトの通知に失敗しました: %v\n", err)
	}
	fmt.Fprintln(a.stdout, "ログアウトしました")
	return nil
}

// runWhoami はトークンのクレームとプロフィールを表示する。
// クレームは署名を検証せずに読むため表示にのみ使い、セッションの有効性はプロフィール取得で確かめる。
func runWhoami(ctx context.Context, a *app, _ []string) error {
	token := a.client.Token(ctx)
	if token == "" {
		return hotel.ErrNoSession
	}
	claims, claimsErr := apiclient.InspectToken(token)

	user, err := a.svc.Resume(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "user:       %s (%s)\n", user.String("username"), user.String("full_name"))
	fmt.Fprintf(a.stdout, "role:       %s\n", user.String("role"))
	if dept := user.String("department"); dept != "" {
		fmt.Fprintf(a.stdout, "department: %s\n", dept)
	}
	if claimsErr == nil && claims.ExpiresAt != nil {
		fmt.Fprintf(a.stdout, "expires:    %s\n", claims.ExpiresAt.Time.Local().Format(time.RFC3339))
	}
	return nil
}

func runToken(ctx context.Context, a *app, args []string) error {
	if len(args) < 1 {
		return subcommandError("token", "show", "clear")
	}
	switch args[0] {
	case "show":
		token := a.client.Token(ctx)
		if token == "" {
			return hotel.ErrNoSession
		}
		fmt.Fprintln(a.stdout, token)
		return nil
	case "clear":
		a.client.ClearToken(ctx)
		fmt.Fprintln(a.stdout, "トークンを破棄しました")
		return nil
	default:
		return subcommandError("token", "show", "clear")
	}
}

// runRequest は任意のエンドポイントを呼び出し、レスポンスをそのまま出力する。
func runRequest(ctx context.Context, a *app, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: hotelctl request METHOD ENDPOINT [JSON]", ErrUsage)
	}

	var payload any
	if len(args) > 2 {
		if err := json.Unmarshal([]byte(args[2]), &payload); err != nil {
			return fmt.Errorf("リクエストボディのパースに失敗: %w", err)
		}
	}

	env, err := a.client.Request(ctx, strings.ToUpper(args[0]), args[1], payload)
	if err != nil {
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.Envelope != nil {
			_ = printJSON(a.stdout, apiErr.Envelope)
		}
		return err
	}
	return printJSON(a.stdout, env)
}
