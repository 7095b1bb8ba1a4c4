// hotelctlのエントリポイント。
// ホテル業務バックエンドへのログイン、売上・客室・従業員の操作、レポートの取得を端末から行う。
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/hotelops/internal/cli"
	"github.com/nao1215/hotelops/internal/config"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatalf(".envの読み込みに失敗: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprintln(os.Stderr)
			cli.PrintUsage(os.Stderr)
			cancel()
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "エラー:", err)
		cancel()
		os.Exit(1)
	}
}
