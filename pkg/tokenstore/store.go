package tokenstore

import (
	"context"
	"sync"
)

// Key は永続ストア上でセッショントークンを保持するキー名。
const Key = "authToken"

// Store はセッショントークンの永続ストア。
type Store interface {
	// Load は保存されているトークンを返す。存在しない場合は空文字列とnilを返す。
	Load(ctx context.Context) (string, error)
	// Save はトークンを保存する。既存の値は上書きする。
	Save(ctx context.Context, token string) error
	// Delete はトークンを削除する。存在しない場合もエラーにしない。
	Delete(ctx context.Context) error
}

// Memory はプロセス内でのみ保持するStore。テストや永続化が不要な場合に使う。
type Memory struct {
	mu    sync.Mutex
	token string
}

// NewMemory は空のMemoryストアを生成する。
func NewMemory() *Memory {
	return &Memory{}
}

// Load は保持しているトークンを返す。
func (m *Memory) Load(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

// Save はトークンを保持する。
func (m *Memory) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

// Delete は保持しているトークンを破棄する。
func (m *Memory) Delete(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
