package sandbox

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/hotelops/internal/export"
	"github.com/nao1215/hotelops/pkg/middleware"
)

// handleDailyReport は日次レポートを返すハンドラを返す。
func (s *Server) handleDailyReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		date := c.Param("date")
		totals, err := s.store.DailyTotals(c.Request.Context(), date)
		if err != nil {
			s.internalError(c, "売上集計に失敗しました", err)
			return
		}
		sales, count := sumTotals(totals)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"report": gin.H{
				"date":               date,
				"total_sales":        sales,
				"total_transactions": count,
				"employees":          totals,
			},
		})
	}
}

// handleMonthlyReport は月次レポートを返すハンドラを返す。
func (s *Server) handleMonthlyReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		year, month, ok := yearMonthParams(c)
		if !ok {
			return
		}
		summary, err := s.store.MonthlySummary(c.Request.Context(), year, month)
		if err != nil {
			s.internalError(c, "月次集計に失敗しました", err)
			return
		}

		var (
			sales float64
			count int64
		)
		for _, m := range summary {
			sales += m.TotalSales
			count += m.TransactionCount
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"report": gin.H{
				"year":               year,
				"month":              month,
				"total_sales":        sales,
				"total_transactions": count,
				"employees":          summary,
			},
		})
	}
}

// handleYearlyReport は年次レポート（月別の売上合計）を返すハンドラを返す。
func (s *Server) handleYearlyReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		year, ok := intParam(c, "year")
		if !ok {
			return
		}

		var total float64
		breakdown := make([]gin.H, 0, 12)
		for month := 1; month <= 12; month++ {
			summary, err := s.store.MonthlySummary(c.Request.Context(), int(year), month)
			if err != nil {
				s.internalError(c, "月次集計に失敗しました", err)
				return
			}
			var monthTotal float64
			for _, m := range summary {
				monthTotal += m.TotalSales
			}
			total += monthTotal
			breakdown = append(breakdown, gin.H{"month": month, "total": monthTotal})
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"report": gin.H{
				"year":              year,
				"total_sales":       total,
				"monthly_breakdown": breakdown,
			},
		})
	}
}

// handleEmployeeReport は担当者の実績レポートを返すハンドラを返す。
func (s *Server) handleEmployeeReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		employeeID, ok := intParam(c, "employee_id")
		if !ok {
			return
		}
		perf, err := s.store.EmployeePerformance(c.Request.Context(), employeeID)
		if err != nil {
			s.internalError(c, "実績の取得に失敗しました", err)
			return
		}

		var total float64
		daily := make([]gin.H, 0, len(perf))
		for _, p := range perf {
			total += p.TotalSales
			daily = append(daily, gin.H{
				"date":           p.SaleDate,
				"total_sales":    p.TotalSales,
				"room_sales":     p.RoomSales,
				"food_sales":     p.FoodSales,
				"beverage_sales": p.BeverageSales,
				"service_sales":  p.ServiceSales,
				"transactions":   p.TransactionCount,
			})
		}
		var avg float64
		if len(perf) > 0 {
			avg = total / float64(len(perf))
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"report": gin.H{
				"employee_id":       employeeID,
				"period":            c.Param("period"),
				"total_sales":       total,
				"avg_daily_sales":   avg,
				"daily_performance": daily,
			},
		})
	}
}

// exportFormat はformatクエリを検証する。Excel以外は400を返してfalseを返す。
func exportFormat(c *gin.Context) bool {
	switch c.DefaultQuery("format", "excel") {
	case "excel":
		return true
	case "pdf":
		middleware.Fail(c, http.StatusBadRequest, "PDF export is not supported")
	default:
		middleware.Fail(c, http.StatusBadRequest, "Unsupported export format")
	}
	return false
}

// sendWorkbook はワークブックを添付ファイルとして返す。
func (s *Server) sendWorkbook(c *gin.Context, filename, title string, headers []string, rows []map[string]any) {
	var buf bytes.Buffer
	if err := export.WriteTable(&buf, title, headers, rows); err != nil {
		s.internalError(c, "レポートの出力に失敗しました", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

// handleExportDaily は日次レポートをExcelファイルとして返すハンドラを返す。
func (s *Server) handleExportDaily() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !exportFormat(c) {
			return
		}
		date := c.Param("date")
		totals, err := s.store.DailyTotals(c.Request.Context(), date)
		if err != nil {
			s.internalError(c, "売上集計に失敗しました", err)
			return
		}

		rows := make([]map[string]any, 0, len(totals))
		for _, t := range totals {
			rows = append(rows, map[string]any{
				"Employee":     t.EmployeeName,
				"Total Sales":  t.TotalSales,
				"Transactions": t.Transactions,
			})
		}
		s.sendWorkbook(c,
			fmt.Sprintf("daily_report_%s.xlsx", date),
			"Daily Sales Report - "+date,
			[]string{"Employee", "Total Sales", "Transactions"},
			rows,
		)
	}
}

// handleExportMonthly は月次レポートをExcelファイルとして返すハンドラを返す。
func (s *Server) handleExportMonthly() gin.HandlerFunc {
	return func(c *gin.Context) {
		year, month, ok := yearMonthParams(c)
		if !ok || !exportFormat(c) {
			return
		}
		summary, err := s.store.MonthlySummary(c.Request.Context(), year, month)
		if err != nil {
			s.internalError(c, "月次集計に失敗しました", err)
			return
		}

		rows := make([]map[string]any, 0, len(summary))
		for _, m := range summary {
			rows = append(rows, map[string]any{
				"Employee":       m.EmployeeName,
				"Total Sales":    m.TotalSales,
				"Room Sales":     m.RoomSales,
				"Food Sales":     m.FoodSales,
				"Beverage Sales": m.BeverageSales,
				"Service Sales":  m.ServiceSales,
			})
		}
		s.sendWorkbook(c,
			fmt.Sprintf("monthly_report_%d_%02d.xlsx", year, month),
			fmt.Sprintf("Monthly Sales Report - %d/%02d", year, month),
			[]string{"Employee", "Total Sales", "Room Sales", "Food Sales", "Beverage Sales", "Service Sales"},
			rows,
		)
	}
}
