package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"shijia/entity"
)

type CheckoutMock struct {
	lock sync.Mutex

	Sessions          map[string]entity.CheckoutSession
	sessionsByIdemKey map[string]string
}

// CreateSession mirrors the processor's idempotency contract: the same
// idempotency key always yields the same session.
func (c *CheckoutMock) CreateSession(_ context.Context, request entity.CreateCheckoutSessionRequest) (entity.CheckoutSession, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.Sessions == nil {
		c.Sessions = make(map[string]entity.CheckoutSession)
	}
	if c.sessionsByIdemKey == nil {
		c.sessionsByIdemKey = make(map[string]string)
	}

	if sessionID, ok := c.sessionsByIdemKey[request.IdempotencyKey]; ok {
		return c.Sessions[sessionID], nil
	}

	session := entity.CheckoutSession{
		ID:            "cs_test_" + uuid.NewString(),
		URL:           "https://checkout.example.com/c/" + request.OrderID,
		Status:        "open",
		PaymentStatus: "unpaid",
	}
	c.Sessions[session.ID] = session
	c.sessionsByIdemKey[request.IdempotencyKey] = session.ID

	return session, nil
}

func (c *CheckoutMock) GetSession(_ context.Context, sessionID string) (entity.CheckoutSession, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	session, ok := c.Sessions[sessionID]
	if !ok {
		return entity.CheckoutSession{}, fmt.Errorf("no such session: %s", sessionID)
	}
	return session, nil
}

// MarkSessionPaid flips the mock session to the settled state, simulating a
// completed hosted checkout.
func (c *CheckoutMock) MarkSessionPaid(sessionID string) {
	c.lock.Lock()
	defer c.lock.Unlock()

	session := c.Sessions[sessionID]
	session.Status = "complete"
	session.PaymentStatus = "paid"
	c.Sessions[sessionID] = session
}

// ParseWebhookEvent skips signature verification and decodes the payload
// directly into the event shape.
func (c *CheckoutMock) ParseWebhookEvent(payload []byte, _ string) (entity.CheckoutWebhookEvent, error) {
	var event entity.CheckoutWebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return entity.CheckoutWebhookEvent{}, err
	}
	return event, nil
}
