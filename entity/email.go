package entity

import "time"

const (
	EmailTypeOrderPaid       = "paid"
	EmailTypeBookingReceived = "booking_received"
)

// EmailEvent is the idempotency record for outbound mail. The unique
// (event_type, subject_id) pair is the sole gate preventing a duplicate send.
type EmailEvent struct {
	ID                string    `json:"id" db:"id"`
	EventType         string    `json:"event_type" db:"event_type"`
	SubjectID         string    `json:"subject_id" db:"subject_id"`
	ToEmail           string    `json:"to_email" db:"to_email"`
	FromEmail         string    `json:"from_email" db:"from_email"`
	ProviderMessageID string    `json:"provider_message_id" db:"provider_message_id"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

type EmailMessage struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}

type EmailSendResult struct {
	Sent              bool   `json:"sent"`
	Skipped           bool   `json:"skipped"`
	To                string `json:"to,omitempty"`
	ProviderMessageID string `json:"provider_message_id,omitempty"`
}
