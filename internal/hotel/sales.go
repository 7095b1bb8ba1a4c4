package hotel

import (
	"context"
	"fmt"

	"github.com/nao1215/hotelops/pkg/apiclient"
)

// Sale は売上登録のペイロード。
type Sale struct {
	// EmployeeID は担当者のID。Employeeロールの場合はバックエンドが本人のIDで上書きする。
	EmployeeID    int64   `json:"employee_id,omitempty"`
	SaleDate      string  `json:"sale_date"`
	Category      string  `json:"category"`
	Amount        float64 `json:"amount"`
	Description   string  `json:"description,omitempty"`
	PaymentMethod string  `json:"payment_method,omitempty"`
	TransactionID string  `json:"transaction_id,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

// RecordSale はPOST /sales/record を呼び出す。
func (s *Service) RecordSale(ctx context.Context, sale Sale) (apiclient.Envelope, error) {
	return s.post(ctx, "/sales/record", sale)
}

// DailySales はGET /sales/daily/{employeeID}/{date} を呼び出す。
func (s *Service) DailySales(ctx context.Context, employeeID int64, date string) (apiclient.Envelope, error) {
	return s.get(ctx, "/sales/daily/"+id(employeeID)+"/"+segment(date))
}

// MonthlySales はGET /sales/monthly/{year}/{month} を呼び出す。employeeIDが0の場合は全員分。
func (s *Service) MonthlySales(ctx context.Context, year, month int, employeeID int64) (apiclient.Envelope, error) {
	endpoint := fmt.Sprintf("/sales/monthly/%d/%d", year, month)
	if employeeID != 0 {
		endpoint = withQuery(endpoint, "employee_id", id(employeeID))
	}
	return s.get(ctx, endpoint)
}

// DailySummary はGET /sales/daily-summary/{date} を呼び出す。
func (s *Service) DailySummary(ctx context.Context, date string) (apiclient.Envelope, error) {
	return s.get(ctx, "/sales/daily-summary/"+segment(date))
}

// EmployeePerformance はGET /sales/employee-performance/{employeeID} を呼び出す。
func (s *Service) EmployeePerformance(ctx context.Context, employeeID int64) (apiclient.Envelope, error) {
	return s.get(ctx, "/sales/employee-performance/"+id(employeeID))
}

// SaleCategories はGET /sales/categories を呼び出す。
func (s *Service) SaleCategories(ctx context.Context) (apiclient.Envelope, error) {
	return s.get(ctx, "/sales/categories")
}

// PaymentMethods はGET /sales/payment-methods を呼び出す。
func (s *Service) PaymentMethods(ctx context.Context) (apiclient.Envelope, error) {
	return s.get(ctx, "/sales/payment-methods")
}
