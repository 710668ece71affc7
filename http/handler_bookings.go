package http

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"shijia/entity"
)

type postBookingsRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	PartySize int    `json:"partySize"`
	VisitDate string `json:"visitDate"`
	VisitTime string `json:"visitTime"`
	Note      string `json:"note"`
}

type postBookingsResponse struct {
	BookingID string `json:"bookingId"`
	Status    string `json:"status"`
}

func (s Server) PostBookings(c echo.Context) error {
	var request postBookingsRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	if request.Name == "" {
		return badRequest("missing_name")
	}
	if request.Phone == "" {
		return badRequest("missing_phone")
	}
	if request.PartySize < 1 || request.PartySize > 50 {
		return badRequest("invalid_party_size")
	}

	visitDate, err := entity.NormalizeVisitDate(request.VisitDate)
	if err != nil {
		return mapServiceError(err, "")
	}
	visitTime, err := entity.NormalizeVisitTime(request.VisitTime)
	if err != nil {
		return mapServiceError(err, "")
	}

	booking := entity.Booking{
		BookingID: uuid.NewString(),
		Name:      request.Name,
		Phone:     request.Phone,
		Email:     request.Email,
		PartySize: request.PartySize,
		VisitDate: visitDate,
		VisitTime: visitTime,
		Note:      request.Note,
		Status:    entity.BookingStatusNew,
	}

	if err := s.bookingsRepo.Create(c.Request().Context(), booking); err != nil {
		return fmt.Errorf("could not store booking: %w", err)
	}

	return c.JSON(http.StatusCreated, postBookingsResponse{
		BookingID: booking.BookingID,
		Status:    booking.Status,
	})
}

func (s Server) GetAdminBookings(c echo.Context) error {
	bookings, err := s.bookingsRepo.FindAll(c.Request().Context())
	if err != nil {
		return fmt.Errorf("could not list bookings: %w", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"bookings": bookings,
	})
}
