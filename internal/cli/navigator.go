package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// sessionExpiredMessage はセッション失効時に表示する案内。
const sessionExpiredMessage = "セッションの有効期限が切れました。hotelctl login で再度ログインしてください。"

// terminalNavigator はブラウザの画面遷移の代わりに端末で遷移を処理するNavigator。
// リダイレクト先のパスには再ログインの案内を出力し、URLはファイルとしてダウンロードする。
type terminalNavigator struct {
	out          io.Writer
	redirectPath string
	dir          string
	httpClient   *http.Client
	token        func(ctx context.Context) string
	logger       *zap.Logger

	// hadSession はコマンド開始時にトークンを保持していたか。
	// falseの場合、401は誤った認証情報によるものなので案内を出さない。
	hadSession bool

	mu       sync.Mutex
	lastFile string
	lastErr  error
}

// Navigate はtargetへの遷移を処理する。
func (n *terminalNavigator) Navigate(ctx context.Context, target string) {
	if target == n.redirectPath || !strings.Contains(target, "://") {
		if n.hadSession {
			fmt.Fprintln(n.out, sessionExpiredMessage)
		}
		return
	}

	file, err := n.download(ctx, target)
	if err != nil {
		n.logger.Warn("ダウンロードに失敗", zap.String("url", target), zap.Error(err))
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.lastFile, n.lastErr = file, err
}

// result は直前のダウンロード結果を返し、記録を消去する。
func (n *terminalNavigator) result() (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	file, err := n.lastFile, n.lastErr
	n.lastFile, n.lastErr = "", nil
	return file, err
}

// download はtargetをトークン付きで取得し、保存先のファイルパスを返す。
func (n *terminalNavigator) download(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("リクエストの生成に失敗: %w", err)
	}
	if n.token != nil {
		if token := n.token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ダウンロードに失敗: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", downloadError(resp)
	}

	name := attachmentName(resp.Header.Get("Content-Disposition"), target)
	if err := os.MkdirAll(n.dir, 0o755); err != nil {
		return "", fmt.Errorf("保存先ディレクトリの作成に失敗: %w", err)
	}
	dst := filepath.Join(n.dir, name)
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("ファイルの作成に失敗: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("ファイルの書き込みに失敗: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("ファイルのクローズに失敗: %w", err)
	}
	return dst, nil
}

// downloadError は失敗レスポンスのerrorフィールドからエラーを生成する。
func downloadError(resp *http.Response) error {
	var env struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil || env.Error == "" {
		return fmt.Errorf("ダウンロードに失敗: %s", resp.Status)
	}
	return errors.New(env.Error)
}

// attachmentName はContent-Dispositionのファイル名を返す。なければURLのパスの末尾を使う。
func attachmentName(disposition, target string) string {
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if name := filepath.Base(params["filename"]); name != "." && name != "/" && params["filename"] != "" {
			return name
		}
	}
	if u, err := url.Parse(target); err == nil {
		if name := path.Base(u.Path); name != "." && name != "/" {
			return name
		}
	}
	return "download"
}
