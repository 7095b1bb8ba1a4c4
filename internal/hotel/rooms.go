package hotel

import (
	"context"

	"github.com/nao1215/hotelops/pkg/apiclient"
)

// RoomInput は客室作成のペイロード。
type RoomInput struct {
	RoomNumber    string  `json:"room_number"`
	RoomType      string  `json:"room_type"`
	Capacity      int     `json:"capacity"`
	PricePerNight float64 `json:"price_per_night"`
}

// CheckInInput はチェックインのペイロード。
type CheckInInput struct {
	GuestName      string `json:"guest_name"`
	CheckInDate    string `json:"check_in_date"`
	CheckOutDate   string `json:"check_out_date"`
	GuestEmail     string `json:"guest_email,omitempty"`
	GuestPhone     string `json:"guest_phone,omitempty"`
	NumberOfGuests int    `json:"number_of_guests,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// checkOutRequest はチェックアウトのペイロード。
type checkOutRequest struct {
	CheckInID int64 `json:"check_in_id"`
}

// Rooms はGET /rooms/ を呼び出す。
func (s *Service) Rooms(ctx context.Context) (apiclient.Envelope, error) {
	return s.get(ctx, "/rooms/")
}

// AvailableRooms はGET /rooms/available を呼び出す。
func (s *Service) AvailableRooms(ctx context.Context) (apiclient.Envelope, error) {
	return s.get(ctx, "/rooms/available")
}

// CreateRoom はPOST /rooms/ を呼び出す。
func (s *Service) CreateRoom(ctx context.Context, in RoomInput) (apiclient.Envelope, error) {
	return s.post(ctx, "/rooms/", in)
}

// CheckIn はPOST /rooms/{roomID}/check-in を呼び出す。
func (s *Service) CheckIn(ctx context.Context, roomID int64, in CheckInInput) (apiclient.Envelope, error) {
	return s.post(ctx, "/rooms/"+id(roomID)+"/check-in", in)
}

// CheckOut はPOST /rooms/{roomID}/check-out を呼び出す。
func (s *Service) CheckOut(ctx context.Context, roomID, checkInID int64) (apiclient.Envelope, error) {
	return s.post(ctx, "/rooms/"+id(roomID)+"/check-out", checkOutRequest{CheckInID: checkInID})
}

// ActiveCheckIns はGET /rooms/active-check-ins を呼び出す。
func (s *Service) ActiveCheckIns(ctx context.Context) (apiclient.Envelope, error) {
	return s.get(ctx, "/rooms/active-check-ins")
}

// OccupancyReport はGET /rooms/occupancy-report を呼び出す。
func (s *Service) OccupancyReport(ctx context.Context) (apiclient.Envelope, error) {
	return s.get(ctx, "/rooms/occupancy-report")
}
