package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// TestNew はNew関数を検証する。
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("JSON形式で出力されること", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger, err := New(&buf, "info", "json")
		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}
		logger.Info("hello")
		_ = logger.Sync()

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("ログのパースに失敗: %v (%s)", err, buf.String())
		}
		if entry["message"] != "hello" || entry["level"] != "info" {
			t.Errorf("ログエントリ = %v", entry)
		}
	})

	t.Run("レベル未満のログは出力されないこと", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger, err := New(&buf, "WARN", "console")
		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}
		logger.Info("hidden")
		logger.Warn("shown")
		_ = logger.Sync()

		if strings.Contains(buf.String(), "hidden") {
			t.Errorf("infoログが出力された: %s", buf.String())
		}
		if !strings.Contains(buf.String(), "shown") {
			t.Errorf("warnログが出力されていない: %s", buf.String())
		}
	})

	t.Run("不正なレベルや形式はエラーになること", func(t *testing.T) {
		t.Parallel()

		if _, err := New(nil, "verbose", "json"); err == nil {
			t.Error("不正なレベルでエラーが返らない")
		}
		if _, err := New(nil, "info", "xml"); err == nil {
			t.Error("不正な形式でエラーが返らない")
		}
	})
}
