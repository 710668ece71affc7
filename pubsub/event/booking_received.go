package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"

	"shijia/entity"
)

// BookingReceivedEmailHandler sends the "we got your booking" email. The send
// is gated by the email_events unique constraint, so redelivery of the event
// results in a skip, not a duplicate email.
func (h Handler) BookingReceivedEmailHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"BookingReceivedEmailHandler",
		func(ctx context.Context, event *entity.BookingCreated) error {
			log.FromContext(ctx).
				WithField("booking_id", event.BookingID).
				Info("Sending booking received email")

			booking := entity.Booking{
				BookingID: event.BookingID,
				Name:      event.Name,
				Email:     event.Email,
				PartySize: event.PartySize,
				VisitDate: event.VisitDate,
				VisitTime: event.VisitTime,
			}

			_, err := h.mailer.SendBookingReceived(ctx, booking)
			if err != nil {
				// no recipient at all is a data condition, retrying won't help
				if errors.Is(err, entity.ErrEmailRecipientMissing) {
					log.FromContext(ctx).
						WithField("booking_id", event.BookingID).
						Warn("No recipient for booking received email")
					return nil
				}
				return fmt.Errorf("failed to send booking received email: %w", err)
			}
			return nil
		},
	)
}
