package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"shijia/entity"
)

// CheckoutClient wraps the payment processor's hosted checkout API.
type CheckoutClient struct {
	api           *client.API
	webhookSecret string
}

func NewCheckoutClient(secretKey string, webhookSecret string) *CheckoutClient {
	backendConfig := &stripe.BackendConfig{
		HTTPClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	api := &client.API{}
	api.Init(secretKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendConfig),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendConfig),
	})

	return &CheckoutClient{
		api:           api,
		webhookSecret: webhookSecret,
	}
}

// CreateSession creates a hosted checkout session for the order. The order id
// rides in both metadata and client_reference_id so the confirmation step can
// use either; the idempotency key keeps processor-side retries from creating
// duplicate sessions.
func (c *CheckoutClient) CreateSession(ctx context.Context, request entity.CreateCheckoutSessionRequest) (entity.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{
			Context:        ctx,
			IdempotencyKey: stripe.String(request.IdempotencyKey),
		},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(request.OrderID),
		SuccessURL:        stripe.String(request.SuccessURL),
		CancelURL:         stripe.String(request.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(request.Currency),
					UnitAmount: stripe.Int64(request.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(request.Description),
					},
				},
			},
		},
	}
	params.AddMetadata("order_id", request.OrderID)

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return entity.CheckoutSession{}, fmt.Errorf("could not create checkout session: %w", err)
	}

	return toCheckoutSession(session), nil
}

func (c *CheckoutClient) GetSession(ctx context.Context, sessionID string) (entity.CheckoutSession, error) {
	session, err := c.api.CheckoutSessions.Get(sessionID, &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return entity.CheckoutSession{}, fmt.Errorf("could not get checkout session: %w", err)
	}

	return toCheckoutSession(session), nil
}

// ParseWebhookEvent verifies the signature against the raw request bytes and
// extracts the order reference from checkout session events.
func (c *CheckoutClient) ParseWebhookEvent(payload []byte, signatureHeader string) (entity.CheckoutWebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, c.webhookSecret)
	if err != nil {
		return entity.CheckoutWebhookEvent{}, fmt.Errorf("invalid webhook signature: %w", err)
	}

	eventType := string(event.Type)
	switch eventType {
	case entity.CheckoutEventCompleted, entity.CheckoutEventAsyncPaymentSucceeded, entity.CheckoutEventExpired:
	default:
		return entity.CheckoutWebhookEvent{Type: eventType}, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return entity.CheckoutWebhookEvent{}, fmt.Errorf("could not unmarshal checkout session: %w", err)
	}

	orderID := session.Metadata["order_id"]
	if orderID == "" {
		orderID = session.ClientReferenceID
	}

	return entity.CheckoutWebhookEvent{
		Type:      eventType,
		SessionID: session.ID,
		OrderID:   orderID,
	}, nil
}

func toCheckoutSession(session *stripe.CheckoutSession) entity.CheckoutSession {
	return entity.CheckoutSession{
		ID:            session.ID,
		URL:           session.URL,
		Status:        string(session.Status),
		PaymentStatus: string(session.PaymentStatus),
	}
}
