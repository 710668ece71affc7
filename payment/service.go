package payment

import (
	"context"

	"shijia/entity"
	"shijia/metrics"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
)

// Source identifies who asked for the confirmation. Client confirmations must
// prove they hold the session id stored on the order; webhook confirmations
// are trusted because the signature was already verified.
type Source string

const (
	SourceClient  Source = "client"
	SourceWebhook Source = "webhook"
)

type OrdersRepository interface {
	GetByID(ctx context.Context, orderID string) (entity.Order, error)
	MarkPaid(ctx context.Context, orderID string, sessionID string) (bool, error)
	MarkCanceled(ctx context.Context, orderID string) (bool, error)
}

type CheckoutGateway interface {
	GetSession(ctx context.Context, sessionID string) (entity.CheckoutSession, error)
}

type Mailer interface {
	SendOrderPaid(ctx context.Context, order entity.Order) (entity.EmailSendResult, error)
}

type Service struct {
	orders  OrdersRepository
	gateway CheckoutGateway
	mailer  Mailer
}

func NewService(
	orders OrdersRepository,
	gateway CheckoutGateway,
	mailer Mailer,
) Service {
	if orders == nil {
		panic("missing orders repo")
	}
	if gateway == nil {
		panic("missing checkout gateway")
	}
	if mailer == nil {
		panic("missing mailer")
	}

	return Service{
		orders:  orders,
		gateway: gateway,
		mailer:  mailer,
	}
}

type Result struct {
	Status  string
	Emailed bool
	Reason  string
}

// Confirm settles an order after the processor reports the session as paid.
// It is safe to call concurrently from the success page and the webhook: the
// conditional status transition in the repository picks exactly one winner,
// and only the winner sends the confirmation email.
func (s Service) Confirm(ctx context.Context, orderID string, sessionID string, source Source) (Result, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return Result{}, err
	}

	// the cross-check comes before any answer about order state: a client
	// that cannot present the persisted session id learns nothing
	if source == SourceClient {
		if sessionID == "" || sessionID != order.CheckoutSessionID {
			return Result{}, entity.ErrSessionMismatch
		}
	}
	if sessionID == "" {
		sessionID = order.CheckoutSessionID
	}

	if order.Status == entity.OrderStatusPaid {
		return Result{Status: entity.OrderStatusPaid, Reason: "already_paid"}, nil
	}

	session, err := s.gateway.GetSession(ctx, sessionID)
	if err != nil {
		log.FromContext(ctx).
			WithField("order_id", orderID).
			WithError(err).
			Warn("Could not fetch checkout session")
		return Result{Status: entity.OrderStatusPending, Reason: "session_fetch_failed"}, nil
	}

	if !session.Paid() {
		return Result{Status: entity.OrderStatusPending, Reason: "not_paid_yet"}, nil
	}

	transitioned, err := s.orders.MarkPaid(ctx, orderID, sessionID)
	if err != nil {
		return Result{}, err
	}
	if !transitioned {
		return Result{Status: entity.OrderStatusPaid, Reason: "already_paid"}, nil
	}

	metrics.OrdersPaid.WithLabelValues(string(source)).Inc()

	order.Status = entity.OrderStatusPaid
	order.CheckoutSessionID = sessionID

	// The order is paid regardless of whether the email goes out; a send
	// failure must not roll the confirmation back.
	emailResult, err := s.mailer.SendOrderPaid(ctx, order)
	if err != nil {
		log.FromContext(ctx).
			WithField("order_id", orderID).
			WithError(err).
			Error("Could not send payment confirmation email")
		return Result{Status: entity.OrderStatusPaid}, nil
	}

	return Result{
		Status:  entity.OrderStatusPaid,
		Emailed: emailResult.Sent,
	}, nil
}

// Expire cancels a pending order whose checkout session expired. Paid orders
// are left untouched.
func (s Service) Expire(ctx context.Context, orderID string) (bool, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return false, err
	}
	if order.Status != entity.OrderStatusPending {
		return false, nil
	}

	return s.orders.MarkCanceled(ctx, orderID)
}
