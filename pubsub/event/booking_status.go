package event

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"

	"shijia/entity"
)

func (h Handler) MarkBookingPaidHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"MarkBookingPaidHandler",
		func(ctx context.Context, event *entity.OrderPaid) error {
			if event.BookingID == "" {
				return nil
			}

			log.FromContext(ctx).
				WithField("booking_id", event.BookingID).
				WithField("order_id", event.OrderID).
				Info("Marking booking paid")

			err := h.bookingsRepo.SetStatus(ctx, event.BookingID, entity.BookingStatusPaid)
			if err != nil {
				return fmt.Errorf("failed to mark booking paid: %w", err)
			}
			return nil
		},
	)
}

func (h Handler) ReleaseExpiredBookingHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"ReleaseExpiredBookingHandler",
		func(ctx context.Context, event *entity.OrderCanceled) error {
			if event.BookingID == "" {
				return nil
			}

			log.FromContext(ctx).
				WithField("booking_id", event.BookingID).
				Info("Releasing booking after checkout expiry")

			err := h.bookingsRepo.SetStatus(ctx, event.BookingID, entity.BookingStatusPaymentExpired)
			if err != nil {
				return fmt.Errorf("failed to release booking: %w", err)
			}
			return nil
		},
	)
}
