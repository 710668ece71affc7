package entity

import "time"

type Booking struct {
	BookingID string    `json:"booking_id" db:"booking_id"`
	Name      string    `json:"name" db:"name"`
	Phone     string    `json:"phone" db:"phone"`
	Email     string    `json:"email" db:"email"`
	PartySize int       `json:"party_size" db:"party_size"`
	VisitDate string    `json:"visit_date" db:"visit_date"`
	VisitTime string    `json:"visit_time" db:"visit_time"`
	Note      string    `json:"note" db:"note"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

const (
	BookingStatusNew            = "new"
	BookingStatusPaid           = "paid"
	BookingStatusPaymentExpired = "payment_expired"
)
