package mailer

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"shijia/entity"
)

type EmailEventsRepository interface {
	InsertOnce(ctx context.Context, event entity.EmailEvent) (inserted bool, err error)
	SetProviderMessageID(ctx context.Context, id string, providerMessageID string) error
}

type Sender interface {
	Send(ctx context.Context, message entity.EmailMessage) (string, error)
}

type Config struct {
	From       string
	OverrideTo string
	DefaultTo  string
}

// Service sends transactional emails at most once per (event type, subject).
// The marker row is claimed before the send, so a crash between claim and send
// drops the email rather than duplicating it.
type Service struct {
	repo   EmailEventsRepository
	sender Sender
	config Config
}

func NewService(
	repo EmailEventsRepository,
	sender Sender,
	config Config,
) Service {
	if repo == nil {
		panic("missing email events repo")
	}
	if sender == nil {
		panic("missing sender")
	}

	return Service{
		repo:   repo,
		sender: sender,
		config: config,
	}
}

// SendOrderPaid sends the payment confirmation for an order. Returns
// Sent=false, Skipped=true when the confirmation was already sent.
func (s Service) SendOrderPaid(ctx context.Context, order entity.Order) (entity.EmailSendResult, error) {
	to, err := s.recipient(order.Email)
	if err != nil {
		return entity.EmailSendResult{}, err
	}

	message := entity.EmailMessage{
		From:    s.config.From,
		To:      to,
		Subject: fmt.Sprintf("Payment received for order %s", order.OrderID),
		HTML:    orderPaidHTML(order),
		Text:    orderPaidText(order),
	}

	return s.sendOnce(ctx, entity.EmailTypeOrderPaid, order.OrderID, message)
}

// SendBookingReceived acknowledges a new booking request.
func (s Service) SendBookingReceived(ctx context.Context, booking entity.Booking) (entity.EmailSendResult, error) {
	to, err := s.recipient(booking.Email)
	if err != nil {
		return entity.EmailSendResult{}, err
	}

	message := entity.EmailMessage{
		From:    s.config.From,
		To:      to,
		Subject: fmt.Sprintf("Booking request received for %s", booking.VisitDate),
		HTML:    bookingReceivedHTML(booking),
		Text:    bookingReceivedText(booking),
	}

	return s.sendOnce(ctx, entity.EmailTypeBookingReceived, booking.BookingID, message)
}

func (s Service) sendOnce(
	ctx context.Context,
	eventType string,
	subjectID string,
	message entity.EmailMessage,
) (entity.EmailSendResult, error) {
	markerID := uuid.NewString()

	inserted, err := s.repo.InsertOnce(ctx, entity.EmailEvent{
		ID:        markerID,
		EventType: eventType,
		SubjectID: subjectID,
		ToEmail:   message.To,
		FromEmail: message.From,
	})
	if err != nil {
		return entity.EmailSendResult{}, err
	}
	if !inserted {
		return entity.EmailSendResult{Skipped: true, To: message.To}, nil
	}

	providerMessageID, err := s.sender.Send(ctx, message)
	if err != nil {
		return entity.EmailSendResult{}, fmt.Errorf("could not send %s email: %w", eventType, err)
	}

	if err := s.repo.SetProviderMessageID(ctx, markerID, providerMessageID); err != nil {
		return entity.EmailSendResult{}, err
	}

	return entity.EmailSendResult{
		Sent:              true,
		To:                message.To,
		ProviderMessageID: providerMessageID,
	}, nil
}

// recipient resolves the destination address: the override wins, then the
// customer address, then the configured fallback.
func (s Service) recipient(customerEmail string) (string, error) {
	if s.config.OverrideTo != "" {
		return s.config.OverrideTo, nil
	}
	if customerEmail != "" {
		return customerEmail, nil
	}
	if s.config.DefaultTo != "" {
		return s.config.DefaultTo, nil
	}
	return "", entity.ErrEmailRecipientMissing
}

func orderPaidHTML(order entity.Order) string {
	return fmt.Sprintf(
		`<h1>Thank you, %s!</h1>
<p>Your payment of %s was received.</p>
<p>Order: %s</p>
<p>Visit: %s %s, party of %d</p>`,
		order.Name,
		formatAmount(order.AmountCents, order.Currency),
		order.OrderID,
		order.VisitDate,
		order.VisitTime,
		order.PartySize,
	)
}

func orderPaidText(order entity.Order) string {
	return fmt.Sprintf(
		"Thank you, %s! Your payment of %s was received. Order %s, visit %s %s, party of %d.",
		order.Name,
		formatAmount(order.AmountCents, order.Currency),
		order.OrderID,
		order.VisitDate,
		order.VisitTime,
		order.PartySize,
	)
}

func bookingReceivedHTML(booking entity.Booking) string {
	return fmt.Sprintf(
		`<h1>Booking request received</h1>
<p>Hi %s, we received your booking request for %s %s, party of %d.</p>
<p>Reference: %s</p>`,
		booking.Name,
		booking.VisitDate,
		booking.VisitTime,
		booking.PartySize,
		booking.BookingID,
	)
}

func bookingReceivedText(booking entity.Booking) string {
	return fmt.Sprintf(
		"Hi %s, we received your booking request for %s %s, party of %d. Reference: %s.",
		booking.Name,
		booking.VisitDate,
		booking.VisitTime,
		booking.PartySize,
		booking.BookingID,
	)
}

func formatAmount(amountCents int64, currency string) string {
	return fmt.Sprintf("%.2f %s", float64(amountCents)/100, currency)
}
