// Package cli はhotelctlのサブコマンドを実装する。
// 各コマンドはinternal/hotelのServiceを通してバックエンドを呼び出し、結果をJSONで出力する。
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/nao1215/hotelops/internal/config"
	"github.com/nao1215/hotelops/internal/hotel"
	"github.com/nao1215/hotelops/internal/logging"
	"github.com/nao1215/hotelops/pkg/apiclient"
)

// ErrUsage はコマンドライン引数が不正であることを表す。
var ErrUsage = errors.New("usage")

// app は1回のコマンド実行で共有する依存をまとめたもの。
type app struct {
	stdout io.Writer
	stderr io.Writer
	cfg    *config.Config
	logger *zap.Logger
	client *apiclient.Client
	svc    *hotel.Service
	nav    *terminalNavigator
}

// command はサブコマンドの実装。
type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"login":     runLogin,
	"logout":    runLogout,
	"whoami":    runWhoami,
	"token":     runToken,
	"request":   runRequest,
	"dashboard": runDashboard,
	"sales":     runSales,
	"rooms":     runRooms,
	"employees": runEmployees,
	"report":    runReport,
	"export":    runExport,
}

// Execute はargsの先頭をサブコマンド名として実行する。
// 設定は環境変数から読み込む（.envの読み込みは呼び出し側で行う）。
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		return usageError()
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return usageError()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("トークンストアのクローズに失敗", zap.Error(err))
		}
	}()

	nav := &terminalNavigator{
		out:          stderr,
		redirectPath: cfg.RedirectPath,
		dir:          cfg.DownloadDir,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		logger:       logger,
	}
	client := apiclient.New(cfg.APIBaseURL,
		apiclient.WithStore(store),
		apiclient.WithNavigator(nav),
		apiclient.WithLogger(logger),
		apiclient.WithTimeout(cfg.Timeout),
		apiclient.WithRetry(apiclient.RetryPolicy{MaxAttempts: cfg.RetryMax, Backoff: cfg.RetryBackoff}),
		apiclient.WithRedirectPath(cfg.RedirectPath),
	)
	nav.token = client.Token
	nav.hadSession = client.HasToken(ctx)

	a := &app{
		stdout: stdout,
		stderr: stderr,
		cfg:    cfg,
		logger: logger,
		client: client,
		svc:    hotel.New(client),
		nav:    nav,
	}
	return cmd(ctx, a, args[1:])
}

// PrintUsage はコマンドの一覧をwに出力する。
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: hotelctl <command> [flags]

Commands:
  login -u USER -p PASSWORD           ログインしてトークンを保存する
  logout                              ログアウトしてトークンを破棄する
  whoami                              ログイン中のユーザーを表示する
  token show|clear                    保存済みのトークンを表示・破棄する
  request METHOD ENDPOINT [JSON]      任意のエンドポイントを呼び出す
  dashboard [-trend N] [-leaders N]   ダッシュボードの概要を表示する
  sales record|daily|monthly|summary|performance|categories|methods
  rooms list|available|active|occupancy|create|checkin|checkout
  employees list|department|get|create|update|deactivate
  report daily|monthly|yearly|employee [-xlsx PATH]
  export daily|monthly [-format excel|pdf]
`)
}

func usageError() error {
	return fmt.Errorf("%w: hotelctl <command> [...]", ErrUsage)
}

// subcommandError はサブコマンド名が不正な場合のエラーを返す。
func subcommandError(cmd string, subs ...string) error {
	return fmt.Errorf("%w: hotelctl %s <%s> [...]", ErrUsage, cmd, strings.Join(subs, "|"))
}
