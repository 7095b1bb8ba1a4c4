package tokenstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/nao1215/hotelops/pkg/migration"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLite はSQLiteデータベースのclient_storageテーブルにトークンを保存するStore。
type SQLite struct {
	db *sql.DB
}

// OpenSQLite はdsnのSQLiteデータベースを開き、マイグレーションを適用したStoreを返す。
// dsnにはファイルパス、またはテスト用に ":memory:" を指定する。
func OpenSQLite(ctx context.Context, dsn string, logger *zap.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	// インメモリDBは接続ごとに別のDBになるため、接続を1本に制限する
	db.SetMaxOpenConns(1)

	s, err := NewSQLite(ctx, db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLite は既存の接続にマイグレーションを適用したStoreを返す。
func NewSQLite(ctx context.Context, db *sql.DB, logger *zap.Logger) (*SQLite, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := migration.Run(ctx, db, migrationsFS, "migrations", logger); err != nil {
		return nil, fmt.Errorf("マイグレーションに失敗: %w", err)
	}
	s := &SQLite{db: db}
	version, err := s.SchemaVersion(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug("トークンストアを開きました", zap.Int("schema_version", version))
	return s, nil
}

// SchemaVersion は適用済みのスキーマバージョンを返す。
func (s *SQLite) SchemaVersion(ctx context.Context) (int, error) {
	return migration.Version(ctx, s.db)
}

// Load はclient_storageからトークンを読み込む。
func (s *SQLite) Load(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM client_storage WHERE key = ?", Key).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("トークンの取得に失敗: %w", err)
	}
	return token, nil
}

// Save はトークンをclient_storageにupsertする。
func (s *SQLite) Save(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO client_storage (key, value, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, Key, token)
	if err != nil {
		return fmt.Errorf("トークンの保存に失敗: %w", err)
	}
	return nil
}

// Delete はclient_storageからトークンを削除する。
func (s *SQLite) Delete(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM client_storage WHERE key = ?", Key); err != nil {
		return fmt.Errorf("トークンの削除に失敗: %w", err)
	}
	return nil
}

// Close はデータベース接続を閉じる。
func (s *SQLite) Close() error {
	return s.db.Close()
}
