package checkout

import (
	"context"
	"fmt"

	"shijia/entity"
)

type OrdersRepository interface {
	GetByID(ctx context.Context, orderID string) (entity.Order, error)
	SetCheckoutSession(ctx context.Context, orderID string, sessionID string) error
}

type CheckoutGateway interface {
	CreateSession(ctx context.Context, request entity.CreateCheckoutSessionRequest) (entity.CheckoutSession, error)
}

type Service struct {
	orders  OrdersRepository
	gateway CheckoutGateway
	siteURL string
}

func NewService(
	orders OrdersRepository,
	gateway CheckoutGateway,
	siteURL string,
) Service {
	if orders == nil {
		panic("missing orders repo")
	}
	if gateway == nil {
		panic("missing checkout gateway")
	}
	if siteURL == "" {
		panic("missing site url")
	}

	return Service{
		orders:  orders,
		gateway: gateway,
		siteURL: siteURL,
	}
}

type StartResult struct {
	URL       string
	SessionID string
}

// Start creates a hosted checkout session for a pending order and records the
// session id on the order. Retrying Start for the same order reuses the
// processor-side session via the idempotency key.
func (s Service) Start(ctx context.Context, orderID string) (StartResult, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return StartResult{}, err
	}

	if !order.Payable() {
		return StartResult{}, entity.ErrOrderNotPayable
	}
	if order.AmountCents <= 0 {
		return StartResult{}, entity.ValidationError{Code: "invalid_amount_cents"}
	}

	session, err := s.gateway.CreateSession(ctx, entity.CreateCheckoutSessionRequest{
		OrderID:        order.OrderID,
		AmountCents:    order.AmountCents,
		Currency:       order.Currency,
		Description:    fmt.Sprintf("Order %s", order.OrderID),
		IdempotencyKey: "order-checkout-" + order.OrderID,
		SuccessURL:     s.siteURL + "/pay/success?orderId=" + order.OrderID + "&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:      s.siteURL + "/pay?orderId=" + order.OrderID,
	})
	if err != nil {
		return StartResult{}, fmt.Errorf("could not start checkout for order %s: %w", order.OrderID, err)
	}

	if err := s.orders.SetCheckoutSession(ctx, order.OrderID, session.ID); err != nil {
		return StartResult{}, err
	}

	return StartResult{
		URL:       session.URL,
		SessionID: session.ID,
	}, nil
}
