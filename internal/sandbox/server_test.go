package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testToday はテストで使う現在日時。初期データの売上はこの日付で登録される。
var testToday = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

// setupTestServer はテスト用のサンドボックスをインメモリSQLiteで構築する。
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	s, err := NewServer(context.Background(), Options{
		JWTSecret:    "test-secret",
		Seed:         true,
		PasswordCost: bcrypt.MinCost,
		Now:          func() time.Time { return testToday },
	}, nil)
	if err != nil {
		t.Fatalf("サーバーの生成に失敗: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// doJSON はJSONリクエストを送り、ステータスコードとパース済みのボディを返す。
func doJSON(t *testing.T, s *Server, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("リクエストボディの生成に失敗: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("レスポンスボディのパースに失敗: %v: %s", err, w.Body.String())
		}
	}
	return w.Code, out
}

// login はユーザー名とパスワードでログインし、トークンを返す。
func login(t *testing.T, s *Server, username, password string) string {
	t.Helper()

	code, body := doJSON(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if code != http.StatusOK {
		t.Fatalf("ログインのステータスコード = %d, want %d: %v", code, http.StatusOK, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("トークンが返らない: %v", body)
	}
	return token
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()

	s := setupTestServer(t)

	code, body := doJSON(t, s, http.MethodGet, "/health", "", nil)
	if code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("GET /health = %d, %v", code, body)
	}
	if v, _ := body["schema_version"].(float64); v < 1 {
		t.Errorf("schema_version = %v, want >= 1", body["schema_version"])
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /metrics のステータスコード = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `hotelops_sandbox_http_requests_total{code="200",method="GET",route="/health"} 1`) {
		t.Errorf("リクエスト数が記録されていない:\n%s", w.Body.String())
	}
}

func TestAuth(t *testing.T) {
	t.Parallel()

	s := setupTestServer(t)

	t.Run("ログインに成功するとトークンとユーザー情報が返ること", func(t *testing.T) {
		t.Parallel()

		code, body := doJSON(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{
			"username": "manager1", "password": "manager123",
		})
		if code != http.StatusOK || body["success"] != true {
			t.Fatalf("ログイン = %d, %v", code, body)
		}
		user, _ := body["user"].(map[string]any)
		if user["role"] != "Manager" || user["department"] != "Management" {
			t.Errorf("user = %v", user)
		}
	})

	tests := []struct {
		name     string
		body     map[string]string
		wantCode int
		wantErr  string
	}{
		{name: "パスワード誤り", body: map[string]string{"username": "admin", "password": "wrong"}, wantCode: http.StatusUnauthorized, wantErr: "Invalid credentials"},
		{name: "存在しないユーザー", body: map[string]string{"username": "ghost", "password": "x"}, wantCode: http.StatusUnauthorized, wantErr: "Invalid credentials"},
		{name: "パスワード未指定", body: map[string]string{"username": "admin"}, wantCode: http.StatusBadRequest, wantErr: "Username and password required"},
	}
	for _, tt := range tests {
		t.Run(tt.name+"はログインに失敗すること", func(t *testing.T) {
			t.Parallel()

			code, body := doJSON(t, s, http.MethodPost, "/api/auth/login", "", tt.body)
			if code != tt.wantCode || body["success"] != false || body["error"] != tt.wantErr {
				t.Errorf("ログイン = %d, %v, want %d, %q", code, body, tt.wantCode, tt.wantErr)
			}
		})
	}

	t.Run("トークンなしの要求は401になること", func(t *testing.T) {
		t.Parallel()

		code, body := doJSON(t, s, http.MethodGet, "/api/auth/profile", "", nil)
		if code != http.StatusUnauthorized || body["error"] != "Token is missing" {
			t.Errorf("GET /api/auth/profile = %d, %v", code, body)
		}
	})

	t.Run("プロフィールとトークン検証がログイン中のユーザーを返すこと", func(t *testing.T) {
		t.Parallel()

		token := login(t, s, "waiter1", "waiter123")

		code, body := doJSON(t, s, http.MethodGet, "/api/auth/profile", token, nil)
		user, _ := body["user"].(map[string]any)
		if code != http.StatusOK || user["username"] != "waiter1" || user["full_name"] != "James Smith" {
			t.Errorf("GET /api/auth/profile = %d, %v", code, body)
		}

		code, body = doJSON(t, s, http.MethodPost, "/api/auth/verify-token", token, nil)
		user, _ = body["user"].(map[string]any)
		if code != http.StatusOK || user["role"] != "Employee" {
			t.Errorf("POST /api/auth/verify-token = %d, %v", code, body)
		}

		code, body = doJSON(t, s, http.MethodPost, "/api/auth/logout", token, nil)
		if code != http.StatusOK || body["success"] != true {
			t.Errorf("POST /api/auth/logout = %d, %v", code, body)
		}
	})

	t.Run("登録したユーザーでログインできること", func(t *testing.T) {
		t.Parallel()

		code, body := doJSON(t, s, http.MethodPost, "/api/auth/register", "", map[string]string{
			"username": "newbie", "password": "pw", "email": "newbie@hotel.com",
			"full_name": "New Bie", "role": "Employee",
		})
		if code != http.StatusCreated || body["user_id"] == nil {
			t.Fatalf("POST /api/auth/register = %d, %v", code, body)
		}
		login(t, s, "newbie", "pw")

		code, body = doJSON(t, s, http.MethodPost, "/api/auth/register", "", map[string]string{
			"username": "newbie", "password": "pw", "email": "other@hotel.com",
			"full_name": "Dup", "role": "Employee",
		})
		if code != http.StatusBadRequest {
			t.Errorf("重複登録 = %d, %v", code, body)
		}
	})
}

func TestSales(t *testing.T) {
	t.Parallel()

	t.Run("Employeeの売上は本人の売上として登録されること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		token := login(t, s, "waiter2", "waiter123")

		code, body := doJSON(t, s, http.MethodPost, "/api/sales/record", token, map[string]any{
			"employee_id": 1, "sale_date": "2024-05-10", "category": "Food", "amount": 20, "payment_method": "Cash",
		})
		if code != http.StatusCreated {
			t.Fatalf("POST /api/sales/record = %d, %v", code, body)
		}

		code, body = doJSON(t, s, http.MethodGet, "/api/sales/daily/4/2024-05-10", token, nil)
		sales, _ := body["sales"].([]any)
		if code != http.StatusOK || len(sales) != 2 {
			t.Errorf("GET /api/sales/daily/4/2024-05-10 = %d, %v", code, body)
		}
	})

	t.Run("ManagerはEmployee IDを指定しなければ登録できないこと", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		token := login(t, s, "manager1", "manager123")

		code, body := doJSON(t, s, http.MethodPost, "/api/sales/record", token, map[string]any{
			"sale_date": "2024-05-10", "category": "Food", "amount": 20,
		})
		if code != http.StatusBadRequest || body["error"] != "Employee ID required" {
			t.Errorf("POST /api/sales/record = %d, %v", code, body)
		}
	})

	t.Run("必須項目が欠けている場合は400になること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		token := login(t, s, "waiter1", "waiter123")

		code, body := doJSON(t, s, http.MethodPost, "/api/sales/record", token, map[string]any{"category": "Food"})
		if code != http.StatusBadRequest || body["error"] != "Missing required fields" {
			t.Errorf("POST /api/sales/record = %d, %v", code, body)
		}
	})

	t.Run("日次集計が担当者ごとに返ること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		token := login(t, s, "waiter1", "waiter123")

		code, body := doJSON(t, s, http.MethodGet, "/api/sales/daily-summary/2024-05-10", token, nil)
		summary, _ := body["summary"].([]any)
		if code != http.StatusOK || len(summary) != 3 {
			t.Fatalf("GET /api/sales/daily-summary = %d, %v", code, body)
		}
		first, _ := summary[0].(map[string]any)
		if first["employee_name"] != "James Smith" || first["total_sales"] != 57.5 || first["transactions"] != float64(2) {
			t.Errorf("summary[0] = %v", first)
		}
	})

	t.Run("月次売上はManager以上のみ取得できること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)

		code, _ := doJSON(t, s, http.MethodGet, "/api/sales/monthly/2024/5", login(t, s, "waiter1", "waiter123"), nil)
		if code != http.StatusForbidden {
			t.Errorf("Employeeの GET /api/sales/monthly = %d, want %d", code, http.StatusForbidden)
		}

		code, body := doJSON(t, s, http.MethodGet, "/api/sales/monthly/2024/5?employee_id=3", login(t, s, "manager1", "manager123"), nil)
		sales, _ := body["sales"].([]any)
		if code != http.StatusOK || len(sales) != 2 {
			t.Errorf("GET /api/sales/monthly/2024/5?employee_id=3 = %d, %v", code, body)
		}
	})

	t.Run("区分と支払方法の一覧が返ること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		token := login(t, s, "waiter1", "waiter123")

		_, body := doJSON(t, s, http.MethodGet, "/api/sales/categories", token, nil)
		if got, _ := body["categories"].([]any); len(got) != len(saleCategories) {
			t.Errorf("categories = %v", body)
		}
		_, body = doJSON(t, s, http.MethodGet, "/api/sales/payment-methods", token, nil)
		if got, _ := body["methods"].([]any); len(got) != len(paymentMethods) {
			t.Errorf("methods = %v", body)
		}
	})
}

func TestEmployees(t *testing.T) {
	t.Parallel()

	s := setupTestServer(t)
	admin := login(t, s, "admin", "admin123")
	employee := login(t, s, "waiter1", "waiter123")

	t.Run("Employeeは一覧を取得できないこと", func(t *testing.T) {
		t.Parallel()

		code, body := doJSON(t, s, http.MethodGet, "/api/employees/", employee, nil)
		if code != http.StatusForbidden || body["error"] != "Insufficient permissions" {
			t.Errorf("GET /api/employees/ = %d, %v", code, body)
		}
	})

	t.Run("役割と部署で絞り込めること", func(t *testing.T) {
		t.Parallel()

		_, body := doJSON(t, s, http.MethodGet, "/api/employees/?role=Manager", admin, nil)
		if got, _ := body["employees"].([]any); len(got) != 1 {
			t.Errorf("role=Manager = %v", body)
		}
		_, body = doJSON(t, s, http.MethodGet, "/api/employees/by-department/Front%20Desk", admin, nil)
		if got, _ := body["employees"].([]any); len(got) != 1 {
			t.Errorf("by-department = %v", body)
		}
	})

	t.Run("Employeeは本人の情報のみ取得できること", func(t *testing.T) {
		t.Parallel()

		if code, _ := doJSON(t, s, http.MethodGet, "/api/employees/3", employee, nil); code != http.StatusOK {
			t.Errorf("本人の取得 = %d", code)
		}
		if code, _ := doJSON(t, s, http.MethodGet, "/api/employees/4", employee, nil); code != http.StatusForbidden {
			t.Errorf("他人の取得 = %d", code)
		}
		if code, _ := doJSON(t, s, http.MethodGet, "/api/employees/999", admin, nil); code != http.StatusNotFound {
			t.Errorf("存在しない従業員 = %d", code)
		}
	})

	t.Run("更新可能な項目がなければ400になること", func(t *testing.T) {
		t.Parallel()

		code, body := doJSON(t, s, http.MethodPut, "/api/employees/3", admin, map[string]any{"role": "Admin"})
		if code != http.StatusBadRequest || body["error"] != "No valid fields to update" {
			t.Errorf("PUT /api/employees/3 = %d, %v", code, body)
		}
		code, body = doJSON(t, s, http.MethodPut, "/api/employees/3", admin, map[string]any{"phone": "555-0100"})
		if code != http.StatusOK {
			t.Errorf("PUT /api/employees/3 = %d, %v", code, body)
		}
	})

	t.Run("作成した従業員を無効化するとログインできなくなること", func(t *testing.T) {
		t.Parallel()

		code, body := doJSON(t, s, http.MethodPost, "/api/employees/", admin, map[string]any{
			"username": "temp", "password": "temp123", "email": "temp@hotel.com",
			"full_name": "Temp Staff", "role": "Employee", "department": "Dining",
		})
		if code != http.StatusCreated {
			t.Fatalf("POST /api/employees/ = %d, %v", code, body)
		}
		id := int64(body["user_id"].(float64))
		login(t, s, "temp", "temp123")

		if code, _ := doJSON(t, s, http.MethodPut, "/api/employees/"+itoa(id)+"/deactivate", admin, nil); code != http.StatusOK {
			t.Fatalf("無効化 = %d", code)
		}
		code, body = doJSON(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "temp", "password": "temp123"})
		if code != http.StatusUnauthorized || body["error"] != "User account is inactive" {
			t.Errorf("無効化後のログイン = %d, %v", code, body)
		}
	})
}

func TestRooms(t *testing.T) {
	t.Parallel()

	s := setupTestServer(t)
	manager := login(t, s, "manager1", "manager123")
	employee := login(t, s, "receptionist1", "recept123")

	countRooms := func(path string) int {
		t.Helper()
		_, body := doJSON(t, s, http.MethodGet, path, employee, nil)
		rooms, _ := body["rooms"].([]any)
		return len(rooms)
	}

	if got := countRooms("/api/rooms/"); got != 6 {
		t.Fatalf("客室数 = %d, want 6", got)
	}

	code, body := doJSON(t, s, http.MethodPost, "/api/rooms/1/check-in", employee, map[string]any{
		"guest_name": "Guest One", "check_in_date": "2024-05-10", "check_out_date": "2024-05-12", "number_of_guests": 2,
	})
	if code != http.StatusCreated {
		t.Fatalf("チェックイン = %d, %v", code, body)
	}
	checkInID := body["check_in_id"]

	code, body = doJSON(t, s, http.MethodPost, "/api/rooms/1/check-in", employee, map[string]any{
		"guest_name": "Guest Two", "check_in_date": "2024-05-10", "check_out_date": "2024-05-11",
	})
	if code != http.StatusBadRequest || body["error"] != "Room is not available" {
		t.Errorf("使用中の客室へのチェックイン = %d, %v", code, body)
	}

	if got := countRooms("/api/rooms/available"); got != 5 {
		t.Errorf("空室数 = %d, want 5", got)
	}

	_, body = doJSON(t, s, http.MethodGet, "/api/rooms/active-check-ins", employee, nil)
	checkIns, _ := body["check_ins"].([]any)
	if len(checkIns) != 1 {
		t.Fatalf("check_ins = %v", body)
	}
	if ci, _ := checkIns[0].(map[string]any); ci["room_number"] != "101" || ci["employee_name"] != "Emma Davis" {
		t.Errorf("check_ins[0] = %v", ci)
	}

	if code, _ := doJSON(t, s, http.MethodGet, "/api/rooms/occupancy-report", employee, nil); code != http.StatusForbidden {
		t.Errorf("Employeeの稼働状況取得 = %d, want %d", code, http.StatusForbidden)
	}
	_, body = doJSON(t, s, http.MethodGet, "/api/rooms/occupancy-report", manager, nil)
	occ, _ := body["occupancy"].(map[string]any)
	if occ["occupied_rooms"] != float64(1) || occ["available_rooms"] != float64(5) || occ["report_date"] != "2024-05-10" {
		t.Errorf("occupancy = %v", occ)
	}

	code, body = doJSON(t, s, http.MethodPost, "/api/rooms/1/check-out", employee, map[string]any{"check_in_id": checkInID})
	if code != http.StatusOK {
		t.Fatalf("チェックアウト = %d, %v", code, body)
	}
	if got := countRooms("/api/rooms/available"); got != 6 {
		t.Errorf("チェックアウト後の空室数 = %d, want 6", got)
	}
	if code, _ := doJSON(t, s, http.MethodPost, "/api/rooms/1/check-out", employee, map[string]any{"check_in_id": checkInID}); code != http.StatusNotFound {
		t.Errorf("二重チェックアウト = %d, want %d", code, http.StatusNotFound)
	}

	if code, _ := doJSON(t, s, http.MethodPost, "/api/rooms/", employee, map[string]any{
		"room_number": "401", "room_type": "Suite", "capacity": 4, "price_per_night": 200,
	}); code != http.StatusForbidden {
		t.Errorf("Employeeの客室作成 = %d, want %d", code, http.StatusForbidden)
	}
}

func TestDashboard(t *testing.T) {
	t.Parallel()

	s := setupTestServer(t)
	manager := login(t, s, "manager1", "manager123")

	if code, body := doJSON(t, s, http.MethodPost, "/api/sales/record", manager, map[string]any{
		"employee_id": 4, "sale_date": "2024-05-09", "category": "Services", "amount": 100, "payment_method": "Card",
	}); code != http.StatusCreated {
		t.Fatalf("前日の売上登録 = %d, %v", code, body)
	}

	_, body := doJSON(t, s, http.MethodGet, "/api/dashboard/overview", manager, nil)
	overview, _ := body["overview"].(map[string]any)
	if overview["today_sales"] != 237.5 || overview["total_transactions"] != float64(4) || overview["total_rooms"] != float64(6) {
		t.Errorf("overview = %v", overview)
	}

	_, body = doJSON(t, s, http.MethodGet, "/api/dashboard/sales-trend/3", manager, nil)
	trend, _ := body["trend"].([]any)
	if len(trend) != 3 {
		t.Fatalf("trend = %v", body)
	}
	last, _ := trend[2].(map[string]any)
	if first, _ := trend[0].(map[string]any); first["date"] != "2024-05-07" || last["date"] != "2024-05-09" || last["total_sales"] != float64(100) {
		t.Errorf("trend = %v", trend)
	}

	_, body = doJSON(t, s, http.MethodGet, "/api/dashboard/employee-leaderboard?days=7", manager, nil)
	board, _ := body["leaderboard"].([]any)
	if len(board) != 1 || body["period_days"] != float64(7) {
		t.Fatalf("leaderboard = %v", body)
	}
	if top, _ := board[0].(map[string]any); top["name"] != "Sarah Johnson" || top["total"] != float64(100) {
		t.Errorf("leaderboard[0] = %v", top)
	}

	_, body = doJSON(t, s, http.MethodGet, "/api/dashboard/category-breakdown/2024-05-10", manager, nil)
	if got, _ := body["breakdown"].([]any); len(got) != 3 {
		t.Errorf("category breakdown = %v", body)
	}
	_, body = doJSON(t, s, http.MethodGet, "/api/dashboard/payment-method-breakdown/2024-05-10", manager, nil)
	breakdown, _ := body["breakdown"].([]any)
	if len(breakdown) != 2 {
		t.Fatalf("payment breakdown = %v", body)
	}
	if card, _ := breakdown[0].(map[string]any); card["payment_method"] != "Card" || card["count"] != float64(3) {
		t.Errorf("payment breakdown[0] = %v", card)
	}
}

func TestReports(t *testing.T) {
	t.Parallel()

	s := setupTestServer(t)
	manager := login(t, s, "manager1", "manager123")

	t.Run("日次・月次・年次レポートが集計されること", func(t *testing.T) {
		t.Parallel()

		_, body := doJSON(t, s, http.MethodGet, "/api/reports/daily/2024-05-10", manager, nil)
		report, _ := body["report"].(map[string]any)
		if report["total_sales"] != 237.5 || report["total_transactions"] != float64(4) {
			t.Errorf("daily report = %v", report)
		}

		_, body = doJSON(t, s, http.MethodGet, "/api/reports/monthly/2024/5", manager, nil)
		report, _ = body["report"].(map[string]any)
		if employees, _ := report["employees"].([]any); report["total_sales"] != 237.5 || len(employees) != 3 {
			t.Errorf("monthly report = %v", report)
		}

		_, body = doJSON(t, s, http.MethodGet, "/api/reports/yearly/2024", manager, nil)
		report, _ = body["report"].(map[string]any)
		months, _ := report["monthly_breakdown"].([]any)
		if len(months) != 12 {
			t.Fatalf("yearly report = %v", report)
		}
		if may, _ := months[4].(map[string]any); may["total"] != 237.5 {
			t.Errorf("monthly_breakdown[4] = %v", may)
		}
	})

	t.Run("担当者の実績レポートが返ること", func(t *testing.T) {
		t.Parallel()

		_, body := doJSON(t, s, http.MethodGet, "/api/reports/employee-performance/3/monthly", manager, nil)
		report, _ := body["report"].(map[string]any)
		if report["total_sales"] != 57.5 || report["avg_daily_sales"] != 57.5 || report["period"] != "monthly" {
			t.Errorf("employee report = %v", report)
		}
	})

	t.Run("Employeeはレポートを取得できないこと", func(t *testing.T) {
		t.Parallel()

		employee := login(t, s, "waiter1", "waiter123")
		if code, _ := doJSON(t, s, http.MethodGet, "/api/reports/daily/2024-05-10", employee, nil); code != http.StatusForbidden {
			t.Errorf("GET /api/reports/daily = %d, want %d", code, http.StatusForbidden)
		}
	})

	t.Run("日次レポートをExcelでダウンロードできること", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/api/reports/export/daily/2024-05-10?format=excel", nil)
		req.Header.Set("Authorization", "Bearer "+manager)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d: %s", w.Code, w.Body.String())
		}
		if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="daily_report_2024-05-10.xlsx"` {
			t.Errorf("Content-Disposition = %q", got)
		}

		f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
		if err != nil {
			t.Fatalf("ワークブックの読み込みに失敗: %v", err)
		}
		defer func() { _ = f.Close() }()
		rows, err := f.GetRows(f.GetSheetName(0))
		if err != nil {
			t.Fatalf("行の取得に失敗: %v", err)
		}
		if len(rows) != 7 || rows[0][0] != "Daily Sales Report - 2024-05-10" || rows[3][0] != "Employee" || rows[4][0] != "James Smith" {
			t.Errorf("rows = %v", rows)
		}
	})

	t.Run("PDFでのエクスポートは400になること", func(t *testing.T) {
		t.Parallel()

		code, body := doJSON(t, s, http.MethodGet, "/api/reports/export/monthly/2024/5?format=pdf", manager, nil)
		if code != http.StatusBadRequest || body["error"] != "PDF export is not supported" {
			t.Errorf("PDFエクスポート = %d, %v", code, body)
		}
	})
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	s, err := NewServer(context.Background(), Options{
		JWTSecret:   "test-secret",
		FrontendURL: "http://localhost:3000",
	}, nil)
	if err != nil {
		t.Fatalf("サーバーの生成に失敗: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Expose-Headers"); got != "Content-Disposition" {
		t.Errorf("Access-Control-Expose-Headers = %q, want %q", got, "Content-Disposition")
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
