package sandbox

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/nao1215/hotelops/pkg/migration"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound は対象の行が存在しないことを表す。
var ErrNotFound = errors.New("sandbox: not found")

// ErrConflict は一意制約に違反したことを表す。
var ErrConflict = errors.New("sandbox: already exists")

// ErrNoFields は更新可能な項目が指定されなかったことを表す。
var ErrNoFields = errors.New("sandbox: no valid fields to update")

// ErrRoomUnavailable は客室が空室でないことを表す。
var ErrRoomUnavailable = errors.New("sandbox: room is not available")

// Store はサンドボックスのデータをSQLiteに保存する。
type Store struct {
	db *sql.DB
}

// OpenStore はdsnのSQLiteデータベースを開き、マイグレーションを適用する。
func OpenStore(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	// インメモリDBは接続ごとに別のDBになるため、接続を1本に制限する
	db.SetMaxOpenConns(1)

	if err := migration.Run(ctx, db, migrationsFS, "migrations", logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("マイグレーションに失敗: %w", err)
	}
	return &Store{db: db}, nil
}

// SchemaVersion は適用済みのスキーマバージョンを返す。
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	return migration.Version(ctx, s.db)
}

// Close はデータベース接続を閉じる。
func (s *Store) Close() error {
	return s.db.Close()
}

// conflictOr は一意制約違反をErrConflictに変換する。
func conflictOr(err error, msg string) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %s", ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// nullString は空文字列をNULLとして扱う。
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// User はusersテーブルの1行。
type User struct {
	UserID       int64  `json:"user_id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
	Role         string `json:"role"`
	Department   string `json:"department"`
	Phone        string `json:"phone"`
	IsActive     bool   `json:"is_active"`
}

const userColumns = "user_id, username, password_hash, email, full_name, role, department, phone, is_active"

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var (
		u           User
		dept, phone sql.NullString
	)
	if err := row.Scan(&u.UserID, &u.Username, &u.PasswordHash, &u.Email, &u.FullName, &u.Role, &dept, &phone, &u.IsActive); err != nil {
		return User{}, err
	}
	u.Department = dept.String
	u.Phone = phone.String
	return u, nil
}

// CreateUser はユーザーを作成してIDを返す。passwordHashはハッシュ化済みの値。
func (s *Store) CreateUser(ctx context.Context, u User) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, email, full_name, role, department, phone)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.PasswordHash, u.Email, u.FullName, u.Role, nullString(u.Department), nullString(u.Phone))
	if err != nil {
		return 0, conflictOr(err, "ユーザーの作成に失敗")
	}
	return res.LastInsertId()
}

// UserByUsername はログイン名でユーザーを取得する。
func (s *Store) UserByUsername(ctx context.Context, username string) (User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

// UserByID はIDでユーザーを取得する。
func (s *Store) UserByID(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE user_id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

// ActiveUsers は有効なユーザーを返す。roleが空でなければ役割で絞り込む。
func (s *Store) ActiveUsers(ctx context.Context, role string) ([]User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE is_active = 1"
	args := []any{}
	if role != "" {
		query += " AND role = ?"
		args = append(args, role)
	}
	rows, err := s.db.QueryContext(ctx, query+" ORDER BY user_id", args...)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// updatableUserFields はUpdateUserで変更できる列。
var updatableUserFields = map[string]bool{
	"email":      true,
	"full_name":  true,
	"department": true,
	"phone":      true,
	"is_active":  true,
}

// UpdateUser はfieldsのうち変更可能な列のみを更新する。変更可能な列がなければエラーを返す。
func (s *Store) UpdateUser(ctx context.Context, id int64, fields map[string]any) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if updatableUserFields[k] {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ErrNoFields
	}
	sort.Strings(keys)

	sets := make([]string, len(keys))
	args := make([]any, 0, len(keys)+1)
	for i, k := range keys {
		sets[i] = k + " = ?"
		args = append(args, fields[k])
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, "UPDATE users SET "+strings.Join(sets, ", ")+" WHERE user_id = ?", args...)
	if err != nil {
		return conflictOr(err, "ユーザーの更新に失敗")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateUser はユーザーを無効化する。
func (s *Store) DeactivateUser(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE users SET is_active = 0 WHERE user_id = ?", id); err != nil {
		return fmt.Errorf("ユーザーの無効化に失敗: %w", err)
	}
	return nil
}

// Sale はsalesテーブルの1行。
type Sale struct {
	SaleID        int64   `json:"sale_id"`
	EmployeeID    int64   `json:"employee_id"`
	SaleDate      string  `json:"sale_date"`
	Category      string  `json:"category"`
	Description   string  `json:"description,omitempty"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method,omitempty"`
	TransactionID string  `json:"-"`
	Notes         string  `json:"-"`
}

// RecordSale は売上を登録してIDを返す。
func (s *Store) RecordSale(ctx context.Context, sale Sale) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO sales (employee_id, sale_date, category, description, amount, payment_method, transaction_id, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sale.EmployeeID, sale.SaleDate, sale.Category, nullString(sale.Description), sale.Amount,
		nullString(sale.PaymentMethod), nullString(sale.TransactionID), nullString(sale.Notes))
	if err != nil {
		return 0, conflictOr(err, "売上の登録に失敗")
	}
	return res.LastInsertId()
}

func (s *Store) querySales(ctx context.Context, where string, args ...any) ([]Sale, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sale_id, employee_id, sale_date, category, description, amount, payment_method
		FROM sales WHERE `+where+` ORDER BY sale_id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("売上の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sales := []Sale{}
	for rows.Next() {
		var (
			sale          Sale
			desc, payment sql.NullString
		)
		if err := rows.Scan(&sale.SaleID, &sale.EmployeeID, &sale.SaleDate, &sale.Category, &desc, &sale.Amount, &payment); err != nil {
			return nil, err
		}
		sale.Description = desc.String
		sale.PaymentMethod = payment.String
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

// DailySales は担当者の指定日の売上を返す。
func (s *Store) DailySales(ctx context.Context, employeeID int64, date string) ([]Sale, error) {
	return s.querySales(ctx, "employee_id = ? AND sale_date = ?", employeeID, date)
}

// MonthlySales は指定月の売上を返す。employeeIDが0の場合は全員分。
func (s *Store) MonthlySales(ctx context.Context, year, month int, employeeID int64) ([]Sale, error) {
	prefix := fmt.Sprintf("%04d-%02d-%%", year, month)
	if employeeID != 0 {
		return s.querySales(ctx, "sale_date LIKE ? AND employee_id = ?", prefix, employeeID)
	}
	return s.querySales(ctx, "sale_date LIKE ?", prefix)
}

// EmployeeTotal は担当者ごとの売上合計。
type EmployeeTotal struct {
	UserID       int64   `json:"user_id"`
	EmployeeName string  `json:"employee_name"`
	TotalSales   float64 `json:"total_sales"`
	Transactions int64   `json:"transactions"`
}

// DailyTotals は指定日の担当者ごとの売上合計を返す。
func (s *Store) DailyTotals(ctx context.Context, date string) ([]EmployeeTotal, error) {
	return s.employeeTotals(ctx, "s.sale_date = ?", date)
}

// TotalsBetween はfrom以上to以下の期間の担当者ごとの売上合計を売上の多い順に返す。
func (s *Store) TotalsBetween(ctx context.Context, from, to string) ([]EmployeeTotal, error) {
	totals, err := s.employeeTotals(ctx, "s.sale_date BETWEEN ? AND ?", from, to)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(totals, func(i, j int) bool { return totals[i].TotalSales > totals[j].TotalSales })
	return totals, nil
}

func (s *Store) employeeTotals(ctx context.Context, where string, args ...any) ([]EmployeeTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.user_id, u.full_name, SUM(s.amount), COUNT(*)
		FROM sales s JOIN users u ON s.employee_id = u.user_id
		WHERE `+where+`
		GROUP BY u.user_id, u.full_name
		ORDER BY u.user_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("売上集計に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	totals := []EmployeeTotal{}
	for rows.Next() {
		var t EmployeeTotal
		if err := rows.Scan(&t.UserID, &t.EmployeeName, &t.TotalSales, &t.Transactions); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// CategoryTotals は区分ごとの売上合計。
type CategoryTotals struct {
	TotalSales       float64 `json:"total_sales"`
	RoomSales        float64 `json:"room_sales"`
	FoodSales        float64 `json:"food_sales"`
	BeverageSales    float64 `json:"beverage_sales"`
	ServiceSales     float64 `json:"service_sales"`
	TransactionCount int64   `json:"transaction_count"`
}

const categoryTotalsColumns = `
	SUM(amount),
	SUM(CASE WHEN category = 'Room' THEN amount ELSE 0 END),
	SUM(CASE WHEN category = 'Food' THEN amount ELSE 0 END),
	SUM(CASE WHEN category = 'Beverage' THEN amount ELSE 0 END),
	SUM(CASE WHEN category = 'Services' THEN amount ELSE 0 END),
	COUNT(*)`

// DailyPerformance は担当者の1日分の実績。
type DailyPerformance struct {
	EmployeeID int64  `json:"employee_id"`
	SaleDate   string `json:"sale_date"`
	CategoryTotals
}

// EmployeePerformance は担当者の日ごとの実績を新しい順に最大30日分返す。
func (s *Store) EmployeePerformance(ctx context.Context, employeeID int64) ([]DailyPerformance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, sale_date,`+categoryTotalsColumns+`
		FROM sales WHERE employee_id = ?
		GROUP BY employee_id, sale_date
		ORDER BY sale_date DESC
		LIMIT 30`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("実績の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	perf := []DailyPerformance{}
	for rows.Next() {
		var p DailyPerformance
		if err := rows.Scan(&p.EmployeeID, &p.SaleDate, &p.TotalSales, &p.RoomSales, &p.FoodSales, &p.BeverageSales, &p.ServiceSales, &p.TransactionCount); err != nil {
			return nil, err
		}
		perf = append(perf, p)
	}
	return perf, rows.Err()
}

// MonthlyEmployeeSummary は担当者の1か月分の集計。
type MonthlyEmployeeSummary struct {
	EmployeeID   int64  `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	CategoryTotals
}

// MonthlySummary は指定月の担当者ごとの区分別集計を返す。
func (s *Store) MonthlySummary(ctx context.Context, year, month int) ([]MonthlyEmployeeSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.user_id, u.full_name,`+strings.ReplaceAll(categoryTotalsColumns, "amount", "s.amount")+`
		FROM sales s JOIN users u ON s.employee_id = u.user_id
		WHERE s.sale_date LIKE ?
		GROUP BY u.user_id, u.full_name
		ORDER BY u.user_id`, fmt.Sprintf("%04d-%02d-%%", year, month))
	if err != nil {
		return nil, fmt.Errorf("月次集計に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summary := []MonthlyEmployeeSummary{}
	for rows.Next() {
		var m MonthlyEmployeeSummary
		if err := rows.Scan(&m.EmployeeID, &m.EmployeeName, &m.TotalSales, &m.RoomSales, &m.FoodSales, &m.BeverageSales, &m.ServiceSales, &m.TransactionCount); err != nil {
			return nil, err
		}
		summary = append(summary, m)
	}
	return summary, rows.Err()
}

// Breakdown はキーごとの件数と合計。
type Breakdown struct {
	Key   string
	Count int64
	Total float64
}

// BreakdownBy は指定日の売上を列column（category または payment_method）ごとに集計する。
func (s *Store) BreakdownBy(ctx context.Context, column, date string) ([]Breakdown, error) {
	if column != "category" && column != "payment_method" {
		return nil, fmt.Errorf("集計できない列です: %s", column)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(`+column+`, ''), COUNT(*), SUM(amount)
		FROM sales WHERE sale_date = ?
		GROUP BY `+column+`
		ORDER BY `+column, date)
	if err != nil {
		return nil, fmt.Errorf("内訳の集計に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []Breakdown{}
	for rows.Next() {
		var b Breakdown
		if err := rows.Scan(&b.Key, &b.Count, &b.Total); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Room はroomsテーブルの1行。
type Room struct {
	RoomID        int64   `json:"room_id"`
	RoomNumber    string  `json:"room_number"`
	RoomType      string  `json:"room_type"`
	Capacity      int64   `json:"capacity"`
	PricePerNight float64 `json:"price_per_night"`
	Status        string  `json:"status"`
}

// Rooms は客室を部屋番号順に返す。availableOnlyがtrueの場合は空室のみ。
func (s *Store) Rooms(ctx context.Context, availableOnly bool) ([]Room, error) {
	query := "SELECT room_id, room_number, room_type, capacity, price_per_night, status FROM rooms"
	if availableOnly {
		query += " WHERE status = 'Available'"
	}
	rows, err := s.db.QueryContext(ctx, query+" ORDER BY room_number")
	if err != nil {
		return nil, fmt.Errorf("客室の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	rooms := []Room{}
	for rows.Next() {
		var r Room
		if err := rows.Scan(&r.RoomID, &r.RoomNumber, &r.RoomType, &r.Capacity, &r.PricePerNight, &r.Status); err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

// CreateRoom は客室を作成してIDを返す。
func (s *Store) CreateRoom(ctx context.Context, r Room) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO rooms (room_number, room_type, capacity, price_per_night) VALUES (?, ?, ?, ?)",
		r.RoomNumber, r.RoomType, r.Capacity, r.PricePerNight)
	if err != nil {
		return 0, conflictOr(err, "客室の作成に失敗")
	}
	return res.LastInsertId()
}

// CheckIn はチェックインの1件。
type CheckIn struct {
	CheckInID      int64  `json:"check_in_id"`
	RoomID         int64  `json:"room_id"`
	GuestName      string `json:"guest_name"`
	GuestEmail     string `json:"guest_email"`
	GuestPhone     string `json:"guest_phone"`
	CheckInDate    string `json:"check_in_date"`
	CheckOutDate   string `json:"check_out_date"`
	NumberOfGuests int64  `json:"number_of_guests"`
	EmployeeID     int64  `json:"-"`
	Notes          string `json:"-"`
	RoomNumber     string `json:"room_number"`
	EmployeeName   string `json:"employee_name"`
}

// CheckInGuest はチェックインを記録し、客室を使用中にする。
func (s *Store) CheckInGuest(ctx context.Context, c CheckIn) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var status string
	err = tx.QueryRowContext(ctx, "SELECT status FROM rooms WHERE room_id = ?", c.RoomID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("客室の取得に失敗: %w", err)
	}
	if status != "Available" {
		return 0, ErrRoomUnavailable
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO check_ins (room_id, guest_name, guest_email, guest_phone, check_in_date, check_out_date, number_of_guests, check_in_employee_id, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.RoomID, c.GuestName, nullString(c.GuestEmail), nullString(c.GuestPhone), c.CheckInDate, c.CheckOutDate,
		c.NumberOfGuests, c.EmployeeID, nullString(c.Notes))
	if err != nil {
		return 0, fmt.Errorf("チェックインの記録に失敗: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE rooms SET status = 'Occupied' WHERE room_id = ?", c.RoomID); err != nil {
		return 0, fmt.Errorf("客室状態の更新に失敗: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

// CheckOutGuest はチェックインを完了にし、客室を空室に戻す。
func (s *Store) CheckOutGuest(ctx context.Context, roomID, checkInID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		"UPDATE check_ins SET status = 'Completed' WHERE check_in_id = ? AND room_id = ? AND status = 'Active'",
		checkInID, roomID)
	if err != nil {
		return fmt.Errorf("チェックアウトの記録に失敗: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, "UPDATE rooms SET status = 'Available' WHERE room_id = ?", roomID); err != nil {
		return fmt.Errorf("客室状態の更新に失敗: %w", err)
	}
	return tx.Commit()
}

// ActiveCheckIns は滞在中のチェックインをチェックイン日順に返す。
func (s *Store) ActiveCheckIns(ctx context.Context) ([]CheckIn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.check_in_id, c.room_id, c.guest_name, c.guest_email, c.guest_phone,
		       c.check_in_date, c.check_out_date, c.number_of_guests, r.room_number, u.full_name
		FROM check_ins c
		JOIN rooms r ON c.room_id = r.room_id
		JOIN users u ON c.check_in_employee_id = u.user_id
		WHERE c.status = 'Active'
		ORDER BY c.check_in_date, c.check_in_id`)
	if err != nil {
		return nil, fmt.Errorf("チェックインの取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []CheckIn{}
	for rows.Next() {
		var (
			c            CheckIn
			email, phone sql.NullString
		)
		if err := rows.Scan(&c.CheckInID, &c.RoomID, &c.GuestName, &email, &phone, &c.CheckInDate, &c.CheckOutDate, &c.NumberOfGuests, &c.RoomNumber, &c.EmployeeName); err != nil {
			return nil, err
		}
		c.GuestEmail = email.String
		c.GuestPhone = phone.String
		out = append(out, c)
	}
	return out, rows.Err()
}

// Occupancy は客室の稼働状況。
type Occupancy struct {
	ReportDate       string  `json:"report_date"`
	TotalRooms       int64   `json:"total_rooms"`
	OccupiedRooms    int64   `json:"occupied_rooms"`
	AvailableRooms   int64   `json:"available_rooms"`
	MaintenanceRooms int64   `json:"maintenance_rooms"`
	OccupancyRate    float64 `json:"occupancy_rate"`
}

// Occupancy は現在の客室の稼働状況を集計する。
func (s *Store) Occupancy(ctx context.Context, date string) (Occupancy, error) {
	o := Occupancy{ReportDate: date}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'Occupied' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'Maintenance' THEN 1 ELSE 0 END), 0)
		FROM rooms`).Scan(&o.TotalRooms, &o.OccupiedRooms, &o.MaintenanceRooms)
	if err != nil {
		return Occupancy{}, fmt.Errorf("稼働状況の集計に失敗: %w", err)
	}
	o.AvailableRooms = o.TotalRooms - o.OccupiedRooms - o.MaintenanceRooms
	if o.TotalRooms > 0 {
		o.OccupancyRate = float64(o.OccupiedRooms) / float64(o.TotalRooms) * 100
	}
	return o, nil
}
