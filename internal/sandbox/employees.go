package sandbox

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/hotelops/pkg/middleware"
)

// handleListEmployees は有効な従業員の一覧を返すハンドラを返す。roleクエリで絞り込める。
func (s *Server) handleListEmployees() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := s.store.ActiveUsers(c.Request.Context(), c.Query("role"))
		if err != nil {
			s.internalError(c, "従業員一覧の取得に失敗しました", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "employees": users})
	}
}

// handleEmployeesByDepartment は部署の従業員一覧を返すハンドラを返す。
func (s *Server) handleEmployeesByDepartment() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := s.store.ActiveUsers(c.Request.Context(), "")
		if err != nil {
			s.internalError(c, "従業員一覧の取得に失敗しました", err)
			return
		}
		department := c.Param("department")
		out := []gin.H{}
		for _, u := range users {
			if u.Department != department {
				continue
			}
			out = append(out, gin.H{
				"user_id":    u.UserID,
				"username":   u.Username,
				"full_name":  u.FullName,
				"department": u.Department,
			})
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "employees": out})
	}
}

// handleGetEmployee は従業員の詳細を返すハンドラを返す。
// Employeeロールは本人の情報のみ取得できる。
func (s *Server) handleGetEmployee() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		if middleware.GetRole(c) == middleware.RoleEmployee && middleware.GetUserID(c) != id {
			middleware.Fail(c, http.StatusForbidden, "Insufficient permissions")
			return
		}

		u, err := s.store.UserByID(c.Request.Context(), id)
		if errors.Is(err, ErrNotFound) {
			middleware.Fail(c, http.StatusNotFound, "Employee not found")
			return
		}
		if err != nil {
			s.internalError(c, "従業員の取得に失敗しました", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "employee": u})
	}
}

// handleCreateEmployee は従業員の作成を処理するハンドラを返す。
func (s *Server) handleCreateEmployee() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := s.createUser(c)
		if !ok {
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Employee created successfully",
			"user_id": id,
		})
	}
}

// handleUpdateEmployee は従業員情報の更新を処理するハンドラを返す。
func (s *Server) handleUpdateEmployee() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		var fields map[string]any
		if err := c.ShouldBindJSON(&fields); err != nil {
			middleware.Fail(c, http.StatusBadRequest, "Invalid request body")
			return
		}

		err := s.store.UpdateUser(c.Request.Context(), id, fields)
		switch {
		case errors.Is(err, ErrNoFields):
			middleware.Fail(c, http.StatusBadRequest, "No valid fields to update")
			return
		case errors.Is(err, ErrNotFound):
			middleware.Fail(c, http.StatusNotFound, "Employee not found")
			return
		case errors.Is(err, ErrConflict):
			middleware.Fail(c, http.StatusBadRequest, "Email already exists")
			return
		case err != nil:
			s.internalError(c, "従業員の更新に失敗しました", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Employee updated successfully"})
	}
}

// handleDeactivateEmployee は従業員の無効化を処理するハンドラを返す。
func (s *Server) handleDeactivateEmployee() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		if err := s.store.DeactivateUser(c.Request.Context(), id); err != nil {
			s.internalError(c, "従業員の無効化に失敗しました", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Employee deactivated successfully"})
	}
}
