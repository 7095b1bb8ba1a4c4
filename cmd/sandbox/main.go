// サンドボックスバックエンドのエントリポイント。
// 本番バックエンドと同じHTTP契約をSQLite上で再現し、クライアントの開発と結合テストに使う。
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/nao1215/hotelops/internal/config"
	"github.com/nao1215/hotelops/internal/logging"
	"github.com/nao1215/hotelops/internal/sandbox"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatalf(".envの読み込みに失敗: %v", err)
	}
	cfg, err := config.LoadSandbox()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	logger, err := logging.New(nil, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("ロガーの初期化に失敗: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server, err := sandbox.NewServer(ctx, sandbox.Options{
		JWTSecret:   cfg.JWTSecret,
		FrontendURL: cfg.FrontendURL,
		DSN:         cfg.DatabasePath,
		Seed:        cfg.Seed,
	}, logger)
	if err != nil {
		logger.Fatal("サンドボックスの初期化に失敗", zap.Error(err))
	}
	defer func() { _ = server.Close() }()

	if err := server.Run(ctx, ":"+cfg.Port); err != nil {
		logger.Error("サンドボックスの起動に失敗", zap.Error(err))
	}
}
