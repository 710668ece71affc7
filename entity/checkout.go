package entity

const (
	CheckoutEventCompleted             = "checkout.session.completed"
	CheckoutEventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	CheckoutEventExpired               = "checkout.session.expired"
)

// CheckoutSession mirrors the subset of the processor's hosted checkout
// session this service cares about.
type CheckoutSession struct {
	ID            string
	URL           string
	Status        string
	PaymentStatus string
}

// Paid reports whether the processor considers the session settled. The
// session status is a fallback signal for payment methods that report
// "complete" before the payment status flips.
func (s CheckoutSession) Paid() bool {
	return s.PaymentStatus == "paid" || s.Status == "complete"
}

type CreateCheckoutSessionRequest struct {
	OrderID        string
	AmountCents    int64
	Currency       string
	Description    string
	IdempotencyKey string
	SuccessURL     string
	CancelURL      string
}

// CheckoutWebhookEvent is a processor webhook event after signature
// verification. OrderID comes from session metadata, falling back to the
// session's client reference id.
type CheckoutWebhookEvent struct {
	Type      string
	SessionID string
	OrderID   string
}
