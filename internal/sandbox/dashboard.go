package sandbox

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/hotelops/pkg/middleware"
)

// leaderboardSize はランキングに含める最大人数。
const leaderboardSize = 10

// sumTotals は担当者別集計の合計金額と取引件数を返す。
func sumTotals(totals []EmployeeTotal) (float64, int64) {
	var (
		sales float64
		count int64
	)
	for _, t := range totals {
		sales += t.TotalSales
		count += t.Transactions
	}
	return sales, count
}

// handleOverview は当日の売上と客室稼働状況の概要を返すハンドラを返す。
func (s *Server) handleOverview() gin.HandlerFunc {
	return func(c *gin.Context) {
		today := s.today().Format(dateLayout)
		totals, err := s.store.DailyTotals(c.Request.Context(), today)
		if err != nil {
			s.internalError(c, "売上集計に失敗しました", err)
			return
		}
		o, err := s.store.Occupancy(c.Request.Context(), today)
		if err != nil {
			s.internalError(c, "稼働状況の集計に失敗しました", err)
			return
		}

		sales, count := sumTotals(totals)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"overview": gin.H{
				"today_sales":        sales,
				"total_transactions": count,
				"occupancy_rate":     o.OccupancyRate,
				"occupied_rooms":     o.OccupiedRooms,
				"total_rooms":        o.TotalRooms,
			},
		})
	}
}

// handleSalesTrend は前日までのdays日間の日別売上を古い順に返すハンドラを返す。
func (s *Server) handleSalesTrend() gin.HandlerFunc {
	return func(c *gin.Context) {
		days, ok := intParam(c, "days")
		if !ok {
			return
		}
		if days < 1 || days > 366 {
			middleware.Fail(c, http.StatusBadRequest, "Invalid days")
			return
		}

		today := s.today()
		trend := make([]gin.H, 0, days)
		for i := days; i > 0; i-- {
			date := today.AddDate(0, 0, -int(i)).Format(dateLayout)
			totals, err := s.store.DailyTotals(c.Request.Context(), date)
			if err != nil {
				s.internalError(c, "売上集計に失敗しました", err)
				return
			}
			sales, count := sumTotals(totals)
			trend = append(trend, gin.H{
				"date":              date,
				"total_sales":       sales,
				"transaction_count": count,
			})
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "trend": trend})
	}
}

// handleLeaderboard は前日までのdays日間の売上上位の担当者を返すハンドラを返す。
func (s *Server) handleLeaderboard() gin.HandlerFunc {
	return func(c *gin.Context) {
		days := 30
		if v := c.Query("days"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				middleware.Fail(c, http.StatusBadRequest, "Invalid days")
				return
			}
			days = n
		}

		today := s.today()
		from := today.AddDate(0, 0, -days).Format(dateLayout)
		to := today.AddDate(0, 0, -1).Format(dateLayout)
		totals, err := s.store.TotalsBetween(c.Request.Context(), from, to)
		if err != nil {
			s.internalError(c, "売上集計に失敗しました", err)
			return
		}

		leaderboard := make([]gin.H, 0, leaderboardSize)
		for i, t := range totals {
			if i == leaderboardSize {
				break
			}
			leaderboard = append(leaderboard, gin.H{
				"name":         t.EmployeeName,
				"total":        t.TotalSales,
				"transactions": t.Transactions,
			})
		}
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"leaderboard": leaderboard,
			"period_days": days,
		})
	}
}

// handleCategoryBreakdown は指定日の区分別売上を返すハンドラを返す。
func (s *Server) handleCategoryBreakdown() gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := s.store.BreakdownBy(c.Request.Context(), "category", c.Param("date"))
		if err != nil {
			s.internalError(c, "内訳の集計に失敗しました", err)
			return
		}
		out := make([]gin.H, 0, len(rows))
		for _, r := range rows {
			out = append(out, gin.H{"category": r.Key, "total": r.Total})
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "breakdown": out})
	}
}

// handlePaymentBreakdown は指定日の支払方法別の件数と売上を返すハンドラを返す。
func (s *Server) handlePaymentBreakdown() gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := s.store.BreakdownBy(c.Request.Context(), "payment_method", c.Param("date"))
		if err != nil {
			s.internalError(c, "内訳の集計に失敗しました", err)
			return
		}
		out := make([]gin.H, 0, len(rows))
		for _, r := range rows {
			out = append(out, gin.H{"payment_method": r.Key, "count": r.Count, "total": r.Total})
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "breakdown": out})
	}
}
