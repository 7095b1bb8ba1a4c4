package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nao1215/hotelops/pkg/tokenstore"
)

// testRequest はテストサーバーが受け取ったリクエスト情報を保持する構造体。
type testRequest struct {
	// Method はHTTPメソッド。
	Method string
	// Path はリクエストパス。
	Path string
	// RawQuery はクエリ文字列。
	RawQuery string
	// Body はリクエストボディ。
	Body []byte
	// Headers はリクエストヘッダー。
	Headers http.Header
}

// countingStore はLoadの呼び出し回数を数えるStore。
type countingStore struct {
	tokenstore.Store
	loads atomic.Int32
}

func (s *countingStore) Load(ctx context.Context) (string, error) {
	s.loads.Add(1)
	return s.Store.Load(ctx)
}

// brokenStore は常に失敗するStore。永続ストアが使えない状況を再現する。
type brokenStore struct{}

var errBrokenStore = errors.New("storage unavailable")

func (brokenStore) Load(context.Context) (string, error) { return "", errBrokenStore }
func (brokenStore) Save(context.Context, string) error { return errBrokenStore }
func (brokenStore) Delete(context.Context) error { return errBrokenStore }

// undeletableStore はDeleteだけが失敗するStore。削除できずに古いトークンが残る状況を再現する。
type undeletableStore struct {
	*tokenstore.Memory
}

func (undeletableStore) Delete(context.Context) error { return errBrokenStore }

// recordingNavigator は通知された遷移先を記録するNavigator。
type recordingNavigator struct {
	mu      sync.Mutex
	targets []string
}

func (n *recordingNavigator) Navigate(_ context.Context, target string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.targets = append(n.targets, target)
}

func (n *recordingNavigator) Targets() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.targets...)
}

// newRecordingServer はリクエストを記録し、status と body を返すテストサーバーを生成する。
func newRecordingServer(t *testing.T, status int, body string) (*httptest.Server, *testRequest) {
	t.Helper()

	var mu sync.Mutex
	received := &testRequest{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		received.Method = r.Method
		received.Path = r.URL.Path
		received.RawQuery = r.URL.RawQuery
		received.Body, _ = io.ReadAll(r.Body)
		received.Headers = r.Header.Clone()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts, received
}

// TestNew はNew関数でクライアントが正しく生成されることを検証する。
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("既定値でクライアントが生成されること", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:5000/api/")
		if client.BaseURL() != "http://localhost:5000/api" {
			t.Errorf("BaseURL() = %q, want %q", client.BaseURL(), "http://localhost:5000/api")
		}
		if client.httpClient.Timeout != 0 {
			t.Errorf("Timeout = %v, want 0", client.httpClient.Timeout)
		}
		if client.retry.MaxAttempts != 1 {
			t.Errorf("MaxAttempts = %d, want 1", client.retry.MaxAttempts)
		}
		if client.redirectPath != "/" {
			t.Errorf("redirectPath = %q, want %q", client.redirectPath, "/")
		}
	})

	t.Run("WithTimeoutが渡したHTTPクライアントを変更しないこと", func(t *testing.T) {
		t.Parallel()

		hc := &http.Client{}
		client := New("http://localhost", WithHTTPClient(hc), WithTimeout(5*time.Second))
		if client.httpClient.Timeout != 5*time.Second {
			t.Errorf("Timeout = %v, want 5s", client.httpClient.Timeout)
		}
		if hc.Timeout != 0 {
			t.Errorf("元のHTTPクライアントのTimeout = %v, want 0", hc.Timeout)
		}
	})

	t.Run("URLがベースURLとエンドポイントの連結になること", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:5000/api")
		if got := client.URL("/rooms/available"); got != "http://localhost:5000/api/rooms/available" {
			t.Errorf("URL() = %q", got)
		}
	})
}

// TestTokenLifecycle はセッショントークンのキャッシュと永続ストアの整合性を検証する。
func TestTokenLifecycle(t *testing.T) {
	t.Parallel()

	t.Run("SetToken直後のTokenが同じ値を返すこと", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := tokenstore.NewMemory()
		client := New("http://localhost", WithStore(store))

		for _, token := range []string{"first", "second", "third"} {
			client.SetToken(ctx, token)
			if got := client.Token(ctx); got != token {
				t.Errorf("Token() = %q, want %q", got, token)
			}
			if got, _ := store.Load(ctx); got != token {
				t.Errorf("永続ストアの値 = %q, want %q", got, token)
			}
		}
	})

	t.Run("ClearToken後はキャッシュと永続ストアの両方が空になること", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := tokenstore.NewMemory()
		client := New("http://localhost", WithStore(store))

		client.SetToken(ctx, "to-be-cleared")
		client.ClearToken(ctx)

		if got := client.Token(ctx); got != "" {
			t.Errorf("Token() = %q, want empty", got)
		}
		if got, _ := store.Load(ctx); got != "" {
			t.Errorf("永続ストアの値 = %q, want empty", got)
		}
		if client.HasToken(ctx) {
			t.Error("HasToken() = true, want false")
		}
	})

	t.Run("新しいプロセスでは永続ストアから一度だけ読み込むこと", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		mem := tokenstore.NewMemory()
		if err := mem.Save(ctx, "previous-session"); err != nil {
			t.Fatalf("Save()でエラーが発生: %v", err)
		}
		store := &countingStore{Store: mem}
		client := New("http://localhost", WithStore(store))

		for i := 0; i < 3; i++ {
			if got := client.Token(ctx); got != "previous-session" {
				t.Errorf("Token() = %q, want %q", got, "previous-session")
			}
		}
		if loads := store.loads.Load(); loads != 1 {
			t.Errorf("Load呼び出し回数 = %d, want 1", loads)
		}
	})

	t.Run("永続ストアが使えなくてもメモリキャッシュにトークンが残ること", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		client := New("http://localhost", WithStore(brokenStore{}))

		if got := client.Token(ctx); got != "" {
			t.Errorf("初期状態のToken() = %q, want empty", got)
		}
		client.SetToken(ctx, "in-memory-only")
		if got := client.Token(ctx); got != "in-memory-only" {
			t.Errorf("Token() = %q, want %q", got, "in-memory-only")
		}
		client.ClearToken(ctx)
		if got := client.Token(ctx); got != "" {
			t.Errorf("ClearToken後のToken() = %q, want empty", got)
		}
	})

	t.Run("永続ストアの削除に失敗してもClearToken後に古いトークンが戻らないこと", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := undeletableStore{Memory: tokenstore.NewMemory()}
		client := New("http://localhost", WithStore(store))

		client.SetToken(ctx, "old")
		client.ClearToken(ctx)
		if got, _ := store.Load(ctx); got != "old" {
			t.Fatalf("永続ストアの値 = %q, want %q", got, "old")
		}
		if got := client.Token(ctx); got != "" {
			t.Errorf("ClearToken後のToken() = %q, want empty", got)
		}
		if client.HasToken(ctx) {
			t.Error("HasToken() = true, want false")
		}
	})
}

// TestRequest はRequest関数を検証する。
func TestRequest(t *testing.T) {
	t.Parallel()

	t.Run("200応答のJSONオブジェクトをそのまま返すこと", func(t *testing.T) {
		t.Parallel()

		ts, _ := newRecordingServer(t, http.StatusOK, `{"success": true, "value": 42}`)
		client := New(ts.URL)

		got, err := client.Request(context.Background(), http.MethodGet, "/dashboard/overview", nil)
		if err != nil {
			t.Fatalf("Request()でエラーが発生: %v", err)
		}
		want := Envelope{"success": true, "value": float64(42)}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Request() = %#v, want %#v", got, want)
		}
	})

	t.Run("URL・メソッド・ヘッダー・ボディが正しく送信されること", func(t *testing.T) {
		t.Parallel()

		ts, received := newRecordingServer(t, http.StatusCreated, `{"success": true, "sale_id": 7}`)
		client := New(ts.URL + "/api")
		client.SetToken(context.Background(), "secret-token")

		payload := map[string]any{"category": "Food", "amount": 12.5}
		if _, err := client.Request(context.Background(), http.MethodPost, "/sales/record", payload); err != nil {
			t.Fatalf("Request()でエラーが発生: %v", err)
		}

		if received.Method != http.MethodPost {
			t.Errorf("Method = %q, want %q", received.Method, http.MethodPost)
		}
		if received.Path != "/api/sales/record" {
			t.Errorf("Path = %q, want %q", received.Path, "/api/sales/record")
		}
		if got := received.Headers.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want %q", got, "application/json")
		}
		if got := received.Headers.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer secret-token")
		}
		if got := received.Headers.Get("X-Request-ID"); got == "" {
			t.Error("X-Request-IDが設定されていない")
		}

		var sent map[string]any
		if err := json.Unmarshal(received.Body, &sent); err != nil {
			t.Fatalf("リクエストボディのパースに失敗: %v", err)
		}
		if !reflect.DeepEqual(sent, map[string]any{"category": "Food", "amount": 12.5}) {
			t.Errorf("送信ボディ = %#v", sent)
		}
	})

	t.Run("ペイロードが変更されないこと", func(t *testing.T) {
		t.Parallel()

		ts, _ := newRecordingServer(t, http.StatusOK, `{"success": true}`)
		client := New(ts.URL)

		payload := map[string]any{"room": 101, "guests": []any{"a", "b"}}
		snapshot := map[string]any{"room": 101, "guests": []any{"a", "b"}}
		if _, err := client.Request(context.Background(), http.MethodPost, "/rooms/1/check-in", payload); err != nil {
			t.Fatalf("Request()でエラーが発生: %v", err)
		}
		if !reflect.DeepEqual(payload, snapshot) {
			t.Errorf("ペイロードが変更された: %#v", payload)
		}
	})

	t.Run("トークンもペイロードもない場合はAuthorizationもボディも送らないこと", func(t *testing.T) {
		t.Parallel()

		ts, received := newRecordingServer(t, http.StatusOK, `{}`)
		client := New(ts.URL)

		if _, err := client.Request(context.Background(), http.MethodGet, "/sales/categories", nil); err != nil {
			t.Fatalf("Request()でエラーが発生: %v", err)
		}
		if got := received.Headers.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want empty", got)
		}
		if len(received.Body) != 0 {
			t.Errorf("ボディが送信された: %q", received.Body)
		}
		if got := received.Headers.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want %q", got, "application/json")
		}
	})

	t.Run("エンドポイントのクエリ文字列が保持されること", func(t *testing.T) {
		t.Parallel()

		ts, received := newRecordingServer(t, http.StatusOK, `{}`)
		client := New(ts.URL)

		if _, err := client.Request(context.Background(), http.MethodGet, "/employees/?role=Manager", nil); err != nil {
			t.Fatalf("Request()でエラーが発生: %v", err)
		}
		if received.RawQuery != "role=Manager" {
			t.Errorf("RawQuery = %q, want %q", received.RawQuery, "role=Manager")
		}
	})

	t.Run("WithRequestIDのIDが伝播されること", func(t *testing.T) {
		t.Parallel()

		ts, received := newRecordingServer(t, http.StatusOK, `{}`)
		client := New(ts.URL)

		ctx := WithRequestID(context.Background(), "req-123")
		if _, err := client.Request(ctx, http.MethodGet, "/auth/profile", nil); err != nil {
			t.Fatalf("Request()でエラーが発生: %v", err)
		}
		if got := received.Headers.Get("X-Request-ID"); got != "req-123" {
			t.Errorf("X-Request-ID = %q, want %q", got, "req-123")
		}
	})

	t.Run("空の2xx応答は空のEnvelopeになること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		t.Cleanup(ts.Close)
		client := New(ts.URL)

		got, err := client.Request(context.Background(), http.MethodDelete, "/employees/3", nil)
		if err != nil {
			t.Fatalf("Request()でエラーが発生: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("Request() = %#v, want empty Envelope", got)
		}
	})
}

// TestRequest_Failures は失敗応答の扱いを検証する。
func TestRequest_Failures(t *testing.T) {
	t.Parallel()

	t.Run("500応答のerrorフィールドがメッセージになること", func(t *testing.T) {
		t.Parallel()

		ts, _ := newRecordingServer(t, http.StatusInternalServerError, `{"error": "db down"}`)
		client := New(ts.URL)

		_, err := client.Request(context.Background(), http.MethodGet, "/reports/daily/2024-01-01", nil)
		if err == nil {
			t.Fatal("Request()がエラーを返すべきだが、nilが返った")
		}
		if err.Error() != "db down" {
			t.Errorf("エラーメッセージ = %q, want %q", err.Error(), "db down")
		}
		if StatusCode(err) != http.StatusInternalServerError {
			t.Errorf("StatusCode() = %d, want 500", StatusCode(err))
		}
		if IsUnauthorized(err) {
			t.Error("500応答がErrUnauthorizedと判定された")
		}
		if errors.Is(err, ErrTransport) {
			t.Error("500応答がErrTransportと判定された")
		}
	})

	t.Run("パースできない404応答は汎用メッセージになること", func(t *testing.T) {
		t.Parallel()

		for _, body := range []string{"", "<html>not found</html>", `{"error": ""}`, `{"error": 5}`, `[1,2]`} {
			ts, _ := newRecordingServer(t, http.StatusNotFound, body)
			client := New(ts.URL)

			_, err := client.Request(context.Background(), http.MethodGet, "/employees/999", nil)
			if err == nil {
				t.Fatalf("body=%q: Request()がエラーを返すべきだが、nilが返った", body)
			}
			if err.Error() != "API Error" {
				t.Errorf("body=%q: エラーメッセージ = %q, want %q", body, err.Error(), "API Error")
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
				t.Errorf("body=%q: APIError(404)ではない: %#v", body, err)
			}
		}
	})

	t.Run("401応答でトークンを破棄してルートへの遷移を通知すること", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		ts, _ := newRecordingServer(t, http.StatusUnauthorized, `{"success": false, "error": "Invalid or expired token"}`)
		store := tokenstore.NewMemory()
		nav := &recordingNavigator{}
		client := New(ts.URL, WithStore(store), WithNavigator(nav))
		client.SetToken(ctx, "expired")

		_, err := client.Request(ctx, http.MethodGet, "/auth/profile", nil)
		if err == nil {
			t.Fatal("Request()がエラーを返すべきだが、nilが返った")
		}
		if !errors.Is(err, ErrUnauthorized) {
			t.Errorf("errors.Is(err, ErrUnauthorized) = false: %v", err)
		}
		if err.Error() != "Invalid or expired token" {
			t.Errorf("エラーメッセージ = %q", err.Error())
		}
		if got := client.Token(ctx); got != "" {
			t.Errorf("Token() = %q, want empty", got)
		}
		if got, _ := store.Load(ctx); got != "" {
			t.Errorf("永続ストアの値 = %q, want empty", got)
		}
		if got := nav.Targets(); !reflect.DeepEqual(got, []string{"/"}) {
			t.Errorf("遷移先 = %v, want [/]", got)
		}
	})

	t.Run("401で拒否されたトークンは削除に失敗しても次のリクエストで送られないこと", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		ts, received := newRecordingServer(t, http.StatusUnauthorized, `{"success": false, "error": "Invalid or expired token"}`)
		client := New(ts.URL, WithStore(undeletableStore{Memory: tokenstore.NewMemory()}))
		client.SetToken(ctx, "rejected")

		if _, err := client.Request(ctx, http.MethodGet, "/auth/profile", nil); !IsUnauthorized(err) {
			t.Fatalf("IsUnauthorized() = false: %v", err)
		}
		if got := client.Token(ctx); got != "" {
			t.Errorf("Token() = %q, want empty", got)
		}
		if _, err := client.Request(ctx, http.MethodGet, "/auth/profile", nil); !IsUnauthorized(err) {
			t.Fatalf("IsUnauthorized() = false: %v", err)
		}
		if got := received.Headers.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want empty", got)
		}
	})

	t.Run("401の遷移先を変更できること", func(t *testing.T) {
		t.Parallel()

		ts, _ := newRecordingServer(t, http.StatusUnauthorized, `{}`)
		nav := &recordingNavigator{}
		client := New(ts.URL, WithNavigator(nav), WithRedirectPath("/login"))

		_, err := client.Request(context.Background(), http.MethodGet, "/auth/profile", nil)
		if !IsUnauthorized(err) {
			t.Fatalf("IsUnauthorized() = false: %v", err)
		}
		if err.Error() != "API Error" {
			t.Errorf("エラーメッセージ = %q, want %q", err.Error(), "API Error")
		}
		if got := nav.Targets(); !reflect.DeepEqual(got, []string{"/login"}) {
			t.Errorf("遷移先 = %v, want [/login]", got)
		}
	})

	t.Run("401以外の失敗では遷移を通知しないこと", func(t *testing.T) {
		t.Parallel()

		ts, _ := newRecordingServer(t, http.StatusForbidden, `{"error": "Insufficient permissions"}`)
		nav := &recordingNavigator{}
		client := New(ts.URL, WithNavigator(nav))
		client.SetToken(context.Background(), "still-valid")

		_, err := client.Request(context.Background(), http.MethodGet, "/employees/", nil)
		if err == nil || err.Error() != "Insufficient permissions" {
			t.Fatalf("Request() error = %v", err)
		}
		if len(nav.Targets()) != 0 {
			t.Errorf("遷移が通知された: %v", nav.Targets())
		}
		if got := client.Token(context.Background()); got != "still-valid" {
			t.Errorf("Token() = %q, want %q", got, "still-valid")
		}
	})

	t.Run("2xxの不正なJSONはErrTransportになること", func(t *testing.T) {
		t.Parallel()

		ts, _ := newRecordingServer(t, http.StatusOK, `{invalid json}`)
		client := New(ts.URL)

		_, err := client.Request(context.Background(), http.MethodGet, "/rooms/", nil)
		if !errors.Is(err, ErrTransport) {
			t.Fatalf("errors.Is(err, ErrTransport) = false: %v", err)
		}
	})

	t.Run("2xxのオブジェクト以外のJSONはRequestではErrTransportになりRequestIntoでは受け取れること", func(t *testing.T) {
		t.Parallel()

		ts, _ := newRecordingServer(t, http.StatusOK, `[1,2]`)
		client := New(ts.URL)

		_, err := client.Request(context.Background(), http.MethodGet, "/rooms/", nil)
		if !errors.Is(err, ErrTransport) {
			t.Fatalf("errors.Is(err, ErrTransport) = false: %v", err)
		}

		var out any
		if err := client.RequestInto(context.Background(), http.MethodGet, "/rooms/", nil, &out); err != nil {
			t.Fatalf("RequestInto()でエラーが発生: %v", err)
		}
		if !reflect.DeepEqual(out, []any{float64(1), float64(2)}) {
			t.Errorf("RequestInto() = %#v, want [1 2]", out)
		}
	})

	t.Run("接続できないサーバーに対してErrTransportが返ること", func(t *testing.T) {
		t.Parallel()

		client := New("http://127.0.0.1:1")
		_, err := client.Request(context.Background(), http.MethodGet, "/rooms/", nil)
		if !errors.Is(err, ErrTransport) {
			t.Fatalf("errors.Is(err, ErrTransport) = false: %v", err)
		}
		if StatusCode(err) != 0 {
			t.Errorf("StatusCode() = %d, want 0", StatusCode(err))
		}
	})

	t.Run("シリアライズできないペイロードはErrTransportになり送信されないこと", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
		}))
		t.Cleanup(ts.Close)
		client := New(ts.URL)

		_, err := client.Request(context.Background(), http.MethodPost, "/sales/record", make(chan int))
		if !errors.Is(err, ErrTransport) {
			t.Fatalf("errors.Is(err, ErrTransport) = false: %v", err)
		}
		if calls.Load() != 0 {
			t.Errorf("サーバー呼び出し回数 = %d, want 0", calls.Load())
		}
	})

	t.Run("キャンセルされたコンテキストでエラーが返ること", func(t *testing.T) {
		t.Parallel()

		ts, _ := newRecordingServer(t, http.StatusOK, `{}`)
		client := New(ts.URL)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := client.Request(ctx, http.MethodGet, "/rooms/", nil); err == nil {
			t.Fatal("Request()がエラーを返すべきだが、nilが返った")
		}
	})
}

// TestRequest_Retry は再試行ポリシーを検証する。
func TestRequest_Retry(t *testing.T) {
	t.Parallel()

	// flakyServer は最初のfailures回だけ接続を切断するサーバーを生成する。
	flakyServer := func(t *testing.T, failures int32, status int) (*httptest.Server, *atomic.Int32) {
		t.Helper()
		var calls atomic.Int32
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) <= failures {
				hj, ok := w.(http.Hijacker)
				if !ok {
					t.Error("Hijackerに対応していない")
					return
				}
				conn, _, _ := hj.Hijack()
				conn.Close()
				return
			}
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"success": true}`))
		}))
		t.Cleanup(ts.Close)
		return ts, &calls
	}

	t.Run("既定では一度だけ試行すること", func(t *testing.T) {
		t.Parallel()

		ts, calls := flakyServer(t, 1, http.StatusOK)
		client := New(ts.URL)

		if _, err := client.Request(context.Background(), http.MethodGet, "/rooms/", nil); !errors.Is(err, ErrTransport) {
			t.Fatalf("errors.Is(err, ErrTransport) = false: %v", err)
		}
		if calls.Load() != 1 {
			t.Errorf("試行回数 = %d, want 1", calls.Load())
		}
	})

	t.Run("冪等なメソッドはトランスポート失敗を再試行すること", func(t *testing.T) {
		t.Parallel()

		ts, calls := flakyServer(t, 2, http.StatusOK)
		client := New(ts.URL, WithRetry(RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond}))

		got, err := client.Request(context.Background(), http.MethodGet, "/rooms/", nil)
		if err != nil {
			t.Fatalf("Request()でエラーが発生: %v", err)
		}
		if !got.Bool("success") {
			t.Errorf("Request() = %#v", got)
		}
		if calls.Load() != 3 {
			t.Errorf("試行回数 = %d, want 3", calls.Load())
		}
	})

	t.Run("POSTは再試行しないこと", func(t *testing.T) {
		t.Parallel()

		ts, calls := flakyServer(t, 1, http.StatusOK)
		client := New(ts.URL, WithRetry(RetryPolicy{MaxAttempts: 3}))

		if _, err := client.Request(context.Background(), http.MethodPost, "/sales/record", map[string]any{}); err == nil {
			t.Fatal("Request()がエラーを返すべきだが、nilが返った")
		}
		if calls.Load() != 1 {
			t.Errorf("試行回数 = %d, want 1", calls.Load())
		}
	})

	t.Run("HTTPステータスの失敗は再試行しないこと", func(t *testing.T) {
		t.Parallel()

		ts, calls := flakyServer(t, 0, http.StatusServiceUnavailable)
		client := New(ts.URL, WithRetry(RetryPolicy{MaxAttempts: 3}))

		if _, err := client.Request(context.Background(), http.MethodGet, "/rooms/", nil); StatusCode(err) != http.StatusServiceUnavailable {
			t.Fatalf("StatusCode() = %d, want 503", StatusCode(err))
		}
		if calls.Load() != 1 {
			t.Errorf("試行回数 = %d, want 1", calls.Load())
		}
	})
}

// TestRequestInto は型付きデコードを検証する。
func TestRequestInto(t *testing.T) {
	t.Parallel()

	ts, _ := newRecordingServer(t, http.StatusOK, `{"success": true, "categories": ["Room", "Food"]}`)
	client := New(ts.URL)

	var out struct {
		Success    bool     `json:"success"`
		Categories []string `json:"categories"`
	}
	if err := client.RequestInto(context.Background(), http.MethodGet, "/sales/categories", nil, &out); err != nil {
		t.Fatalf("RequestInto()でエラーが発生: %v", err)
	}
	if !out.Success || !reflect.DeepEqual(out.Categories, []string{"Room", "Food"}) {
		t.Errorf("RequestInto() = %#v", out)
	}
}

// TestNavigate はダウンロードURLへの遷移通知を検証する。
func TestNavigate(t *testing.T) {
	t.Parallel()

	nav := &recordingNavigator{}
	client := New("http://localhost:5000/api", WithNavigator(nav))

	got := client.Navigate(context.Background(), "/reports/export/daily/2024-03-01", url.Values{"format": {"excel"}})
	want := "http://localhost:5000/api/reports/export/daily/2024-03-01?format=excel"
	if got != want {
		t.Errorf("Navigate() = %q, want %q", got, want)
	}
	if targets := nav.Targets(); !reflect.DeepEqual(targets, []string{want}) {
		t.Errorf("遷移先 = %v, want [%s]", targets, want)
	}
}

// TestConcurrentRequests は並行呼び出しが互いに干渉しないことを検証する。
func TestConcurrentRequests(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"path": r.URL.Path})
	}))
	t.Cleanup(ts.Close)
	client := New(ts.URL)
	client.SetToken(context.Background(), "shared")

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			endpoint := "/rooms/" + strings.Repeat("x", i+1)
			env, err := client.Request(context.Background(), http.MethodGet, endpoint, nil)
			if err != nil {
				errs <- err
				return
			}
			if env.String("path") != endpoint {
				errs <- errors.New("レスポンスが別のリクエストと混在した: " + env.String("path"))
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

// TestMetrics はリクエストメトリクスの記録を検証する。
func TestMetrics(t *testing.T) {
	t.Parallel()

	ok, _ := newRecordingServer(t, http.StatusOK, `{}`)
	reg := prometheus.NewRegistry()
	client := New(ok.URL, WithMetrics(reg))

	for i := 0; i < 2; i++ {
		if _, err := client.Request(context.Background(), http.MethodGet, "/rooms/", nil); err != nil {
			t.Fatalf("Request()でエラーが発生: %v", err)
		}
	}
	unreachable := New("http://127.0.0.1:1", WithMetrics(reg))
	_, _ = unreachable.Request(context.Background(), http.MethodGet, "/rooms/", nil)

	if got := testutil.ToFloat64(client.metrics.requests.WithLabelValues(http.MethodGet, "200")); got != 2 {
		t.Errorf("requests_total{code=200} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(client.metrics.requests.WithLabelValues(http.MethodGet, "transport_error")); got != 1 {
		t.Errorf("requests_total{code=transport_error} = %v, want 1", got)
	}
	if client.metrics.requests != unreachable.metrics.requests {
		t.Error("同じレジストリで別のコレクタが生成された")
	}
}
