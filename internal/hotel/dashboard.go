package hotel

import (
	"context"
	"strconv"

	"github.com/nao1215/hotelops/pkg/apiclient"
)

// DefaultLeaderboardDays はランキングの既定集計日数。
const DefaultLeaderboardDays = 30

// Overview はGET /dashboard/overview を呼び出す。
func (s *Service) Overview(ctx context.Context) (apiclient.Envelope, error) {
	return s.get(ctx, "/dashboard/overview")
}

// SalesTrend はGET /dashboard/sales-trend/{days} を呼び出す。
func (s *Service) SalesTrend(ctx context.Context, days int) (apiclient.Envelope, error) {
	return s.get(ctx, "/dashboard/sales-trend/"+strconv.Itoa(days))
}

// EmployeeLeaderboard はGET /dashboard/employee-leaderboard?days= を呼び出す。
// daysが0以下の場合は既定の30日。
func (s *Service) EmployeeLeaderboard(ctx context.Context, days int) (apiclient.Envelope, error) {
	if days <= 0 {
		days = DefaultLeaderboardDays
	}
	return s.get(ctx, withQuery("/dashboard/employee-leaderboard", "days", strconv.Itoa(days)))
}

// CategoryBreakdown はGET /dashboard/category-breakdown/{date} を呼び出す。
func (s *Service) CategoryBreakdown(ctx context.Context, date string) (apiclient.Envelope, error) {
	return s.get(ctx, "/dashboard/category-breakdown/"+segment(date))
}

// PaymentBreakdown はGET /dashboard/payment-method-breakdown/{date} を呼び出す。
func (s *Service) PaymentBreakdown(ctx context.Context, date string) (apiclient.Envelope, error) {
	return s.get(ctx, "/dashboard/payment-method-breakdown/"+segment(date))
}
