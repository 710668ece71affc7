package orders_test

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shijia/db"
	"shijia/db/orders"
	"shijia/entity"
	"shijia/pubsub/outbox"
)

var (
	dbConn    *sqlx.DB
	getDbOnce sync.Once
)

func getDb(t *testing.T) *sqlx.DB {
	getDbOnce.Do(func() {
		url := os.Getenv("POSTGRES_URL")
		if url == "" {
			_, url = db.StartPostgresContainer()
		}

		var err error
		dbConn, err = sqlx.Open("postgres", url)
		require.NoError(t, err)

		require.NoError(t, db.InitializeDatabaseSchema(dbConn))
		require.NoError(t, outbox.InitializeSchema(dbConn.DB, watermill.NopLogger{}))
	})
	return dbConn
}

func newPendingOrder(bookingID string) entity.Order {
	return entity.Order{
		OrderID:     uuid.NewString(),
		OrderType:   entity.OrderTypeBooking,
		Status:      entity.OrderStatusPending,
		AmountCents: 2900,
		Currency:    "usd",
		BookingID:   bookingID,
		Name:        "Ada",
		Phone:       "555-0100",
		Email:       "ada@example.com",
		VisitDate:   "2026-10-01",
		VisitTime:   "18:30:00",
		PartySize:   2,
	}
}

func TestPostgresRepository_CreatePending_reusesPendingOrder(t *testing.T) {
	ctx := context.Background()
	repo := orders.NewPostgresRepository(getDb(t))

	bookingID := uuid.NewString()
	order := newPendingOrder(bookingID)
	items := []entity.OrderItem{
		{OrderID: order.OrderID, MenuItemID: "dumplings", ItemName: "Dumplings", UnitPriceCents: 1200, Quantity: 2},
		{OrderID: order.OrderID, MenuItemID: "tea", ItemName: "Jasmine Tea", UnitPriceCents: 500, Quantity: 1},
	}

	created, reused, err := repo.CreatePending(ctx, order, items)
	require.NoError(t, err)
	assert.False(t, reused)
	assert.Equal(t, order.OrderID, created.OrderID)

	storedItems, err := repo.FindItems(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Len(t, storedItems, 2)

	second := newPendingOrder(bookingID)
	reusedOrder, reused, err := repo.CreatePending(ctx, second, nil)
	require.NoError(t, err)
	assert.True(t, reused)
	assert.Equal(t, order.OrderID, reusedOrder.OrderID)
}

func TestPostgresRepository_MarkPaid_exactlyOnce(t *testing.T) {
	ctx := context.Background()
	repo := orders.NewPostgresRepository(getDb(t))

	order := newPendingOrder(uuid.NewString())
	_, _, err := repo.CreatePending(ctx, order, nil)
	require.NoError(t, err)

	sessionID := "cs_test_" + uuid.NewString()

	transitioned, err := repo.MarkPaid(ctx, order.OrderID, sessionID)
	require.NoError(t, err)
	assert.True(t, transitioned)

	transitioned, err = repo.MarkPaid(ctx, order.OrderID, sessionID)
	require.NoError(t, err)
	assert.False(t, transitioned)

	stored, err := repo.GetByID(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPaid, stored.Status)
	assert.Equal(t, sessionID, stored.CheckoutSessionID)
	assert.True(t, stored.PaidAt.Valid)

	events := outboxOrderPaidEvents(t, order.OrderID)
	require.Len(t, events, 1)
	assert.Equal(t, "order-paid-"+order.OrderID, events[0].Header.IdempotencyKey)
}

// forwarderEnvelope mirrors the wrapper the outbox publisher stores in the
// forwarder topic table.
type forwarderEnvelope struct {
	DestinationTopic string `json:"destination_topic"`
	Payload          []byte `json:"payload"`
}

func outboxOrderPaidEvents(t *testing.T, orderID string) []entity.OrderPaid {
	t.Helper()

	var payloads [][]byte
	err := getDb(t).Select(&payloads, `SELECT payload FROM "watermill_events_to_forward"`)
	require.NoError(t, err)

	var events []entity.OrderPaid
	for _, raw := range payloads {
		var envelope forwarderEnvelope
		require.NoError(t, json.Unmarshal(raw, &envelope))
		if envelope.DestinationTopic != "events.OrderPaid" {
			continue
		}

		var event entity.OrderPaid
		require.NoError(t, json.Unmarshal(envelope.Payload, &event))
		if event.OrderID == orderID {
			events = append(events, event)
		}
	}
	return events
}

func TestPostgresRepository_MarkCanceled_skipsPaidOrder(t *testing.T) {
	ctx := context.Background()
	repo := orders.NewPostgresRepository(getDb(t))

	order := newPendingOrder(uuid.NewString())
	_, _, err := repo.CreatePending(ctx, order, nil)
	require.NoError(t, err)

	transitioned, err := repo.MarkPaid(ctx, order.OrderID, "cs_test_"+uuid.NewString())
	require.NoError(t, err)
	require.True(t, transitioned)

	canceled, err := repo.MarkCanceled(ctx, order.OrderID)
	require.NoError(t, err)
	assert.False(t, canceled)

	stored, err := repo.GetByID(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPaid, stored.Status)
}

func TestPostgresRepository_SetCheckoutSession(t *testing.T) {
	ctx := context.Background()
	repo := orders.NewPostgresRepository(getDb(t))

	order := newPendingOrder(uuid.NewString())
	_, _, err := repo.CreatePending(ctx, order, nil)
	require.NoError(t, err)

	err = repo.SetCheckoutSession(ctx, order.OrderID, "cs_test_123")
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_123", stored.CheckoutSessionID)

	err = repo.SetCheckoutSession(ctx, uuid.NewString(), "cs_test_123")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestPostgresRepository_GetByID_notFound(t *testing.T) {
	repo := orders.NewPostgresRepository(getDb(t))

	_, err := repo.GetByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, entity.ErrNotFound)
}
