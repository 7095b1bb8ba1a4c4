package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nao1215/hotelops/internal/config"
	"github.com/nao1215/hotelops/pkg/tokenstore"
)

// openStore は設定に従ってトークンストアを開き、クローズ関数とともに返す。
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (tokenstore.Store, func() error, error) {
	nop := func() error { return nil }

	switch cfg.TokenStore {
	case config.TokenStoreMemory:
		return tokenstore.NewMemory(), nop, nil
	case config.TokenStoreFile:
		path := cfg.TokenFile
		if path == "" {
			p, err := tokenstore.DefaultFilePath()
			if err != nil {
				return nil, nil, err
			}
			path = p
		}
		return tokenstore.NewFile(path), nop, nil
	case config.TokenStoreSQLite:
		s, err := tokenstore.OpenSQLite(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.TokenStoreRedis:
		s, err := tokenstore.OpenRedis(ctx, cfg.RedisURL, cfg.RedisPrefix, 0)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("未対応のトークンストアです: %q", cfg.TokenStore)
	}
}
