package entity

import (
	"time"

	"github.com/google/uuid"
)

type EventHeader struct {
	ID             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func NewEventHeader() EventHeader {
	return EventHeader{
		ID:          uuid.NewString(),
		PublishedAt: time.Now().UTC(),
	}
}

func NewEventHeaderWithIdempotencyKey(idempotencyKey string) EventHeader {
	return EventHeader{
		ID:             uuid.NewString(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: idempotencyKey,
	}
}

type BookingCreated struct {
	Header    EventHeader `json:"header"`
	BookingID string      `json:"booking_id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	PartySize int         `json:"party_size"`
	VisitDate string      `json:"visit_date"`
	VisitTime string      `json:"visit_time"`
}

type OrderPaid struct {
	Header      EventHeader `json:"header"`
	OrderID     string      `json:"order_id"`
	BookingID   string      `json:"booking_id"`
	AmountCents int64       `json:"amount_cents"`
	Currency    string      `json:"currency"`
	Email       string      `json:"email"`
}

type OrderCanceled struct {
	Header    EventHeader `json:"header"`
	OrderID   string      `json:"order_id"`
	BookingID string      `json:"booking_id"`
}
