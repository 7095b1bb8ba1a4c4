package sandbox

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/hotelops/pkg/middleware"
)

// createRoomRequest は客室作成リクエストのJSON構造。
type createRoomRequest struct {
	RoomNumber    string  `json:"room_number" binding:"required"`
	RoomType      string  `json:"room_type" binding:"required"`
	Capacity      int64   `json:"capacity" binding:"required,min=1"`
	PricePerNight float64 `json:"price_per_night" binding:"required,gt=0"`
}

// checkInRequest はチェックインリクエストのJSON構造。
type checkInRequest struct {
	GuestName      string `json:"guest_name" binding:"required"`
	CheckInDate    string `json:"check_in_date" binding:"required"`
	CheckOutDate   string `json:"check_out_date" binding:"required"`
	GuestEmail     string `json:"guest_email"`
	GuestPhone     string `json:"guest_phone"`
	NumberOfGuests int64  `json:"number_of_guests"`
	Notes          string `json:"notes"`
}

// checkOutRequest はチェックアウトリクエストのJSON構造。
type checkOutRequest struct {
	CheckInID int64 `json:"check_in_id" binding:"required"`
}

// handleListRooms は客室一覧を返すハンドラを返す。availableOnlyがtrueの場合は空室のみ。
func (s *Server) handleListRooms(availableOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		rooms, err := s.store.Rooms(c.Request.Context(), availableOnly)
		if err != nil {
			s.internalError(c, "客室の取得に失敗しました", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "rooms": rooms})
	}
}

// handleCreateRoom は客室の作成を処理するハンドラを返す。
func (s *Server) handleCreateRoom() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createRoomRequest
		if !bindJSON(c, &req) {
			return
		}
		id, err := s.store.CreateRoom(c.Request.Context(), Room{
			RoomNumber:    req.RoomNumber,
			RoomType:      req.RoomType,
			Capacity:      req.Capacity,
			PricePerNight: req.PricePerNight,
		})
		if errors.Is(err, ErrConflict) {
			middleware.Fail(c, http.StatusBadRequest, "Room number already exists")
			return
		}
		if err != nil {
			s.internalError(c, "客室の作成に失敗しました", err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Room created successfully",
			"room_id": id,
		})
	}
}

// handleCheckIn はチェックインを処理するハンドラを返す。担当者はログイン中のユーザー。
func (s *Server) handleCheckIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID, ok := intParam(c, "id")
		if !ok {
			return
		}
		var req checkInRequest
		if !bindJSON(c, &req) {
			return
		}
		if req.NumberOfGuests <= 0 {
			req.NumberOfGuests = 1
		}

		id, err := s.store.CheckInGuest(c.Request.Context(), CheckIn{
			RoomID:         roomID,
			GuestName:      req.GuestName,
			GuestEmail:     req.GuestEmail,
			GuestPhone:     req.GuestPhone,
			CheckInDate:    req.CheckInDate,
			CheckOutDate:   req.CheckOutDate,
			NumberOfGuests: req.NumberOfGuests,
			EmployeeID:     middleware.GetUserID(c),
			Notes:          req.Notes,
		})
		switch {
		case errors.Is(err, ErrNotFound):
			middleware.Fail(c, http.StatusNotFound, "Room not found")
			return
		case errors.Is(err, ErrRoomUnavailable):
			middleware.Fail(c, http.StatusBadRequest, "Room is not available")
			return
		case err != nil:
			s.internalError(c, "チェックインに失敗しました", err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"success":     true,
			"message":     "Guest checked in successfully",
			"check_in_id": id,
		})
	}
}

// handleCheckOut はチェックアウトを処理するハンドラを返す。
func (s *Server) handleCheckOut() gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID, ok := intParam(c, "id")
		if !ok {
			return
		}
		var req checkOutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.Fail(c, http.StatusBadRequest, "Check-in ID required")
			return
		}

		err := s.store.CheckOutGuest(c.Request.Context(), roomID, req.CheckInID)
		if errors.Is(err, ErrNotFound) {
			middleware.Fail(c, http.StatusNotFound, "Active check-in not found")
			return
		}
		if err != nil {
			s.internalError(c, "チェックアウトに失敗しました", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Guest checked out successfully"})
	}
}

// handleActiveCheckIns は滞在中のチェックイン一覧を返すハンドラを返す。
func (s *Server) handleActiveCheckIns() gin.HandlerFunc {
	return func(c *gin.Context) {
		checkIns, err := s.store.ActiveCheckIns(c.Request.Context())
		if err != nil {
			s.internalError(c, "チェックインの取得に失敗しました", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "check_ins": checkIns})
	}
}

// handleOccupancyReport は客室の稼働状況を返すハンドラを返す。
func (s *Server) handleOccupancyReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := s.store.Occupancy(c.Request.Context(), s.today().Format(dateLayout))
		if err != nil {
			s.internalError(c, "稼働状況の集計に失敗しました", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "occupancy": o})
	}
}
