package entity

import (
	"database/sql"
	"time"
)

const (
	OrderStatusPending  = "pending"
	OrderStatusPaid     = "paid"
	OrderStatusCanceled = "canceled"

	OrderTypeBooking = "booking"
)

// Order is the payable unit. Booking contact fields are snapshotted at
// creation time so later booking edits don't change a priced order.
type Order struct {
	OrderID           string       `json:"order_id" db:"order_id"`
	OrderType         string       `json:"order_type" db:"order_type"`
	Status            string       `json:"status" db:"status"`
	AmountCents       int64        `json:"amount_cents" db:"amount_cents"`
	Currency          string       `json:"currency" db:"currency"`
	BookingID         string       `json:"booking_id" db:"booking_id"`
	Name              string       `json:"name" db:"name"`
	Phone             string       `json:"phone" db:"phone"`
	Email             string       `json:"email" db:"email"`
	VisitDate         string       `json:"visit_date" db:"visit_date"`
	VisitTime         string       `json:"visit_time" db:"visit_time"`
	PartySize         int          `json:"party_size" db:"party_size"`
	CheckoutSessionID string       `json:"checkout_session_id" db:"checkout_session_id"`
	PaidAt            sql.NullTime `json:"paid_at" db:"paid_at"`
	CreatedAt         time.Time    `json:"created_at" db:"created_at"`
}

func (o Order) Payable() bool {
	return o.Status == OrderStatusPending
}

type OrderItem struct {
	OrderID        string `json:"order_id" db:"order_id"`
	MenuItemID     string `json:"menu_item_id" db:"menu_item_id"`
	ItemName       string `json:"item_name" db:"item_name"`
	UnitPriceCents int64  `json:"unit_price_cents" db:"unit_price_cents"`
	Quantity       int    `json:"quantity" db:"quantity"`
}
