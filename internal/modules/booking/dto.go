package booking

import (
	"time"

	"studiobooking/internal/domain"
	"studiobooking/internal/policy"
	"studiobooking/internal/scheduling"
)

type StaffRequest struct {
	StaffID string `json:"staff_id" binding:"required"`
	Role    string `json:"role"`
}

type CreateBookingRequest struct {
	StudioID  string    `json:"studio_id" binding:"required"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
	Notes     string    `json:"notes" binding:"max=2000"`
	// Staff and admins may book on behalf of a client.
	ClientID string         `json:"client_id"`
	StaffIDs []string       `json:"staff_ids"`
	Staff    []StaffRequest `json:"staff" binding:"dive"`
}

type UpdateBookingRequest struct {
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Status    *string    `json:"status"`
	Notes     *string    `json:"notes" binding:"omitempty,max=2000"`
}

type StaffResponse struct {
	StaffID string `json:"staff_id"`
	Name    string `json:"name,omitempty"`
	Role    string `json:"role"`
}

type BookingResponse struct {
	ID             string               `json:"id"`
	StudioID       string               `json:"studio_id"`
	StudioName     string               `json:"studio_name,omitempty"`
	ClientID       string               `json:"client_id"`
	ClientName     string               `json:"client_name,omitempty"`
	StartTime      time.Time            `json:"start_time"`
	EndTime        time.Time            `json:"end_time"`
	Hours          float64              `json:"hours"`
	Status         domain.BookingStatus `json:"status"`
	HourlyRate     float64              `json:"hourly_rate"`
	TotalPrice     float64              `json:"total_price"`
	FormattedPrice string               `json:"formatted_price"`
	Notes          string               `json:"notes,omitempty"`
	Staff          []StaffResponse      `json:"staff"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

func toBookingResponse(b *domain.Booking) BookingResponse {
	resp := BookingResponse{
		ID:             b.ID.String(),
		StudioID:       b.StudioID.String(),
		ClientID:       b.ClientID.String(),
		StartTime:      b.StartTime.UTC(),
		EndTime:        b.EndTime.UTC(),
		Hours:          scheduling.BookingInterval(b).Hours(),
		Status:         b.Status,
		HourlyRate:     b.HourlyRate,
		TotalPrice:     b.TotalPrice,
		FormattedPrice: scheduling.FormatPrice(b.TotalPrice),
		Notes:          b.Notes,
		Staff:          make([]StaffResponse, 0, len(b.StaffAssignments)),
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
	if b.Studio != nil {
		resp.StudioName = b.Studio.Name
	}
	if b.Client != nil {
		resp.ClientName = b.Client.FullName()
	}
	for _, a := range b.StaffAssignments {
		sr := StaffResponse{StaffID: a.StaffID.String(), Role: a.Role}
		if a.Staff != nil {
			sr.Name = a.Staff.FullName()
		}
		resp.Staff = append(resp.Staff, sr)
	}
	return resp
}

func toBookingResponses(list []domain.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(list))
	for i := range list {
		out = append(out, toBookingResponse(&list[i]))
	}
	return out
}

type TabResponse struct {
	ID    policy.Tab `json:"id"`
	Title string     `json:"title"`
}

type Summary struct {
	Upcoming         int64  `json:"upcoming"`
	PendingApprovals *int64 `json:"pending_approvals,omitempty"`
	TodayRevenue     string `json:"today_confirmed_revenue"`
}
