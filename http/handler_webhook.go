package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"

	"shijia/entity"
	"shijia/payment"
)

const signatureHeader = "Stripe-Signature"

// PostStripeWebhook handles processor callbacks. Only a bad signature gets a
// 400; events we do not act on are acknowledged with 200 so the processor
// stops redelivering them.
func (s Server) PostStripeWebhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return fmt.Errorf("could not read webhook body: %w", err)
	}

	event, err := s.webhookParser.ParseWebhookEvent(payload, c.Request().Header.Get(signatureHeader))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errorBody{Error: "invalid_signature"})
	}

	ctx := c.Request().Context()
	logger := log.FromContext(ctx).
		WithField("event_type", event.Type).
		WithField("order_id", event.OrderID)

	if event.OrderID == "" {
		logger.Info("Ignoring webhook event without order reference")
		return c.JSON(http.StatusOK, map[string]bool{"received": true})
	}

	switch event.Type {
	case entity.CheckoutEventCompleted, entity.CheckoutEventAsyncPaymentSucceeded:
		result, err := s.paymentService.Confirm(ctx, event.OrderID, event.SessionID, payment.SourceWebhook)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				logger.Warn("Webhook references unknown order")
				return c.JSON(http.StatusOK, map[string]bool{"received": true})
			}
			return fmt.Errorf("could not confirm payment: %w", err)
		}
		logger.WithField("status", result.Status).Info("Processed payment webhook")

	case entity.CheckoutEventExpired:
		canceled, err := s.paymentService.Expire(ctx, event.OrderID)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				logger.Warn("Webhook references unknown order")
				return c.JSON(http.StatusOK, map[string]bool{"received": true})
			}
			return fmt.Errorf("could not expire order: %w", err)
		}
		logger.WithField("canceled", canceled).Info("Processed expiration webhook")

	default:
		logger.Info("Ignoring unhandled webhook event")
	}

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
