package sandbox

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/hotelops/pkg/middleware"
)

// saleCategories は売上区分の一覧。
var saleCategories = []string{"Room", "Food", "Beverage", "Services", "Other"}

// paymentMethods は支払方法の一覧。
var paymentMethods = []string{"Cash", "Card", "Mobile", "Check", "Online"}

// recordSaleRequest は売上登録リクエストのJSON構造。
type recordSaleRequest struct {
	EmployeeID    int64    `json:"employee_id"`
	SaleDate      string   `json:"sale_date" binding:"required"`
	Category      string   `json:"category" binding:"required"`
	Amount        *float64 `json:"amount" binding:"required"`
	Description   string   `json:"description"`
	PaymentMethod string   `json:"payment_method"`
	TransactionID string   `json:"transaction_id"`
	Notes         string   `json:"notes"`
}

// handleRecordSale は売上登録を処理するハンドラを返す。
// Employeeロールの場合は本人の売上として登録する。
func (s *Server) handleRecordSale() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req recordSaleRequest
		if !bindJSON(c, &req) {
			return
		}

		employeeID := req.EmployeeID
		if middleware.GetRole(c) == middleware.RoleEmployee {
			employeeID = middleware.GetUserID(c)
		} else if employeeID == 0 {
			middleware.Fail(c, http.StatusBadRequest, "Employee ID required")
			return
		}

		id, err := s.store.RecordSale(c.Request.Context(), Sale{
			EmployeeID:    employeeID,
			SaleDate:      req.SaleDate,
			Category:      req.Category,
			Amount:        *req.Amount,
			Description:   req.Description,
			PaymentMethod: req.PaymentMethod,
			TransactionID: req.TransactionID,
			Notes:         req.Notes,
		})
		if errors.Is(err, ErrConflict) {
			middleware.Fail(c, http.StatusBadRequest, "Transaction ID already exists")
			return
		}
		if err != nil {
			s.internalError(c, "売上の登録に失敗しました", err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Sale recorded successfully",
			"sale_id": id,
		})
	}
}

// handleDailySales は担当者の日次売上を返すハンドラを返す。
func (s *Server) handleDailySales() gin.HandlerFunc {
	return func(c *gin.Context) {
		employeeID, ok := intParam(c, "employee_id")
		if !ok {
			return
		}
		sales, err := s.store.DailySales(c.Request.Context(), employeeID, c.Param("date"))
		if err != nil {
			s.internalError(c, "売上の取得に失敗しました", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "sales": sales})
	}
}

// handleMonthlySales は月次売上を返すハンドラを返す。employee_idクエリで担当者を絞り込める。
func (s *Server) handleMonthlySales() gin.HandlerFunc {
	return func(c *gin.Context) {
		year, month, ok := yearMonthParams(c)
		if !ok {
			return
		}
		var employeeID int64
		if v := c.Query("employee_id"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				middleware.Fail(c, http.StatusBadRequest, "Invalid employee_id")
				return
			}
			employeeID = id
		}

		sales, err := s.store.MonthlySales(c.Request.Context(), year, month, employeeID)
		if err != nil {
			s.internalError(c, "売上の取得に失敗しました", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "sales": sales})
	}
}

// handleDailySummary は指定日の担当者別集計を返すハンドラを返す。
func (s *Server) handleDailySummary() gin.HandlerFunc {
	return func(c *gin.Context) {
		totals, err := s.store.DailyTotals(c.Request.Context(), c.Param("date"))
		if err != nil {
			s.internalError(c, "売上集計に失敗しました", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "summary": totals})
	}
}

// handleEmployeePerformance は担当者の日ごとの実績を返すハンドラを返す。
func (s *Server) handleEmployeePerformance() gin.HandlerFunc {
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
		c.JSON(http.StatusOK, gin.H{"success": true, "performance": perf})
	}
}

func (s *Server) handleSaleCategories() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "categories": saleCategories})
	}
}

func (s *Server) handlePaymentMethods() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "methods": paymentMethods})
	}
}
