package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File はJSONファイルにトークンを保存するStore。
// ファイル形式は {"authToken": "..."}。
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile はpathに保存するFileストアを生成する。ファイルは初回保存時に作成される。
func NewFile(path string) *File {
	return &File{path: path}
}

// DefaultFilePath はユーザー設定ディレクトリ配下の既定の保存先を返す。
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("設定ディレクトリの取得に失敗: %w", err)
	}
	return filepath.Join(dir, "hotelops", "session.json"), nil
}

// Path は保存先のファイルパスを返す。
func (f *File) Path() string {
	return f.path
}

// Load はファイルからトークンを読み込む。ファイルがない場合は空文字列を返す。
func (f *File) Load(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("トークンファイルの読み込みに失敗: %w", err)
	}

	doc := map[string]string{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("トークンファイルのパースに失敗: %w", err)
	}
	return doc[Key], nil
}

// Save はトークンをファイルに書き込む。一時ファイルを経由して置き換える。
func (f *File) Save(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(map[string]string{Key: token})
	if err != nil {
		return fmt.Errorf("トークンのシリアライズに失敗: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("保存先ディレクトリの作成に失敗: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*.json")
	if err != nil {
		return fmt.Errorf("一時ファイルの作成に失敗: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("一時ファイルへの書き込みに失敗: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("パーミッションの設定に失敗: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("一時ファイルのクローズに失敗: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("トークンファイルの置き換えに失敗: %w", err)
	}
	return nil
}

// Delete はトークンファイルを削除する。
func (f *File) Delete(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("トークンファイルの削除に失敗: %w", err)
	}
	return nil
}
