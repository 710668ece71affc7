package event

import (
	"context"

	"shijia/entity"
)

type BookingsRepository interface {
	SetStatus(ctx context.Context, bookingID string, status string) error
}

type Mailer interface {
	SendBookingReceived(ctx context.Context, booking entity.Booking) (entity.EmailSendResult, error)
}

type Handler struct {
	bookingsRepo BookingsRepository
	mailer       Mailer
}

func NewHandler(bookingsRepo BookingsRepository, mailer Mailer) Handler {
	if bookingsRepo == nil {
		panic("missing bookingsRepo")
	}
	if mailer == nil {
		panic("missing mailer")
	}

	return Handler{
		bookingsRepo: bookingsRepo,
		mailer:       mailer,
	}
}
