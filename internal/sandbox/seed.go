package sandbox

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// SeedUser は初期投入するユーザー。
type SeedUser struct {
	Username   string
	Password   string
	Email      string
	FullName   string
	Role       string
	Department string
}

// DefaultUsers は開発用の初期ユーザー。
var DefaultUsers = []SeedUser{
	{Username: "admin", Password: "admin123", Email: "admin@hotel.com", FullName: "Administrator", Role: "Admin"},
	{Username: "manager1", Password: "manager123", Email: "manager1@hotel.com", FullName: "John Manager", Role: "Manager", Department: "Management"},
	{Username: "waiter1", Password: "waiter123", Email: "waiter1@hotel.com", FullName: "James Smith", Role: "Employee", Department: "Dining"},
	{Username: "waiter2", Password: "waiter123", Email: "waiter2@hotel.com", FullName: "Sarah Johnson", Role: "Employee", Department: "Dining"},
	{Username: "receptionist1", Password: "recept123", Email: "recept1@hotel.com", FullName: "Emma Davis", Role: "Employee", Department: "Front Desk"},
}

// defaultRooms は開発用の初期客室。
var defaultRooms = []Room{
	{RoomNumber: "101", RoomType: "Single", Capacity: 1, PricePerNight: 50},
	{RoomNumber: "102", RoomType: "Double", Capacity: 2, PricePerNight: 75},
	{RoomNumber: "201", RoomType: "Suite", Capacity: 4, PricePerNight: 150},
	{RoomNumber: "202", RoomType: "Deluxe", Capacity: 2, PricePerNight: 100},
	{RoomNumber: "301", RoomType: "Single", Capacity: 1, PricePerNight: 50},
	{RoomNumber: "302", RoomType: "Double", Capacity: 2, PricePerNight: 75},
}

// hashPassword はパスワードをbcryptでハッシュ化する。costが0の場合はbcrypt.DefaultCost。
func hashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("パスワードのハッシュ化に失敗: %w", err)
	}
	return string(b), nil
}

// checkPassword はパスワードがハッシュと一致するかを返す。
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// seed はユーザーが1人もいない場合に初期データを投入する。
// 当日分の売上も数件登録し、ダッシュボードが空にならないようにする。
func (s *Store) seed(ctx context.Context, today string, cost int) error {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return fmt.Errorf("ユーザー数の取得に失敗: %w", err)
	}
	if n > 0 {
		return nil
	}

	ids := make(map[string]int64, len(DefaultUsers))
	for _, u := range DefaultUsers {
		hash, err := hashPassword(u.Password, cost)
		if err != nil {
			return err
		}
		id, err := s.CreateUser(ctx, User{
			Username:     u.Username,
			PasswordHash: hash,
			Email:        u.Email,
			FullName:     u.FullName,
			Role:         u.Role,
			Department:   u.Department,
		})
		if err != nil {
			return err
		}
		ids[u.Username] = id
	}

	for _, r := range defaultRooms {
		if _, err := s.CreateRoom(ctx, r); err != nil {
			return err
		}
	}

	sales := []Sale{
		{EmployeeID: ids["waiter1"], Category: "Food", Amount: 45.5, PaymentMethod: "Cash", Description: "Lunch set"},
		{EmployeeID: ids["waiter1"], Category: "Beverage", Amount: 12, PaymentMethod: "Card"},
		{EmployeeID: ids["waiter2"], Category: "Food", Amount: 30, PaymentMethod: "Card"},
		{EmployeeID: ids["receptionist1"], Category: "Room", Amount: 150, PaymentMethod: "Card", Description: "Suite 201"},
	}
	for _, sale := range sales {
		sale.SaleDate = today
		if _, err := s.RecordSale(ctx, sale); err != nil {
			return err
		}
	}
	return nil
}
