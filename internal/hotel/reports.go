package hotel

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nao1215/hotelops/pkg/apiclient"
)

// ExportFormat はレポートのエクスポート形式。
type ExportFormat string

const (
	// FormatExcel はExcel（xlsx）形式。
	FormatExcel ExportFormat = "excel"
	// FormatPDF はPDF形式。
	FormatPDF ExportFormat = "pdf"
)

// ParseExportFormat は文字列をExportFormatに変換する。空文字列はFormatExcel。
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(s) {
	case "", FormatExcel:
		return FormatExcel, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("未対応のエクスポート形式です: %q", s)
	}
}

// DailyReport はGET /reports/daily/{date} を呼び出す。
func (s *Service) DailyReport(ctx context.Context, date string) (apiclient.Envelope, error) {
	return s.get(ctx, "/reports/daily/"+segment(date))
}

// MonthlyReport はGET /reports/monthly/{year}/{month} を呼び出す。
func (s *Service) MonthlyReport(ctx context.Context, year, month int) (apiclient.Envelope, error) {
	return s.get(ctx, fmt.Sprintf("/reports/monthly/%d/%d", year, month))
}

// YearlyReport はGET /reports/yearly/{year} を呼び出す。
func (s *Service) YearlyReport(ctx context.Context, year int) (apiclient.Envelope, error) {
	return s.get(ctx, fmt.Sprintf("/reports/yearly/%d", year))
}

// EmployeeReport はGET /reports/employee-performance/{employeeID}/{period} を呼び出す。
func (s *Service) EmployeeReport(ctx context.Context, employeeID int64, period string) (apiclient.Envelope, error) {
	return s.get(ctx, "/reports/employee-performance/"+id(employeeID)+"/"+segment(period))
}

// ExportDailyReport は日次レポートのダウンロードURLへの遷移を通知し、そのURLを返す。
// レスポンスはファイルであるため、JSONの契約は通らない。
func (s *Service) ExportDailyReport(ctx context.Context, date string, format ExportFormat) string {
	return s.client.Navigate(ctx, "/reports/export/daily/"+segment(date), url.Values{"format": {string(format)}})
}

// ExportMonthlyReport は月次レポートのダウンロードURLへの遷移を通知し、そのURLを返す。
func (s *Service) ExportMonthlyReport(ctx context.Context, year, month int, format ExportFormat) string {
	return s.client.Navigate(ctx, fmt.Sprintf("/reports/export/monthly/%d/%d", year, month), url.Values{"format": {string(format)}})
}
