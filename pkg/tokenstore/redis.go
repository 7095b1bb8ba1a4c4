package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis はRedisのキーにトークンを保存するStore。
// 複数端末で同じセッションを共有する場合に使う。
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedis はclientを使うRedisストアを生成する。キーは prefix + "authToken"。
// ttlが0の場合は有効期限を設定しない。
func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	return &Redis{
		client: client,
		key:    prefix + Key,
		ttl:    ttl,
	}
}

// OpenRedis はURL（例: "redis://localhost:6379/0"）から接続してRedisストアを生成する。
func OpenRedis(ctx context.Context, rawURL, prefix string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("Redis URLのパースに失敗: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("Redisへの接続に失敗: %w", err)
	}
	return NewRedis(client, prefix, ttl), nil
}

// Load はRedisからトークンを読み込む。
func (r *Redis) Load(ctx context.Context) (string, error) {
	token, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("トークンの取得に失敗: %w", err)
	}
	return token, nil
}

// Save はトークンをRedisに書き込む。
func (r *Redis) Save(ctx context.Context, token string) error {
	if err := r.client.Set(ctx, r.key, token, r.ttl).Err(); err != nil {
		return fmt.Errorf("トークンの保存に失敗: %w", err)
	}
	return nil
}

// Delete はRedisからトークンを削除する。
func (r *Redis) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("トークンの削除に失敗: %w", err)
	}
	return nil
}

// Close はRedis接続を閉じる。
func (r *Redis) Close() error {
	return r.client.Close()
}
