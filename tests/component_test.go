package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"shijia/entity"
	"shijia/gateway"
	"shijia/mailer"
	"shijia/pubsub"
	"shijia/service"
)

var (
	httpAddress = ":8080"
	baseURL     = "http://localhost:8080"
	adminSecret = "test-admin-secret"
)

func TestComponent(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("github.com/testcontainers/testcontainers-go.(*Reaper).Connect.func1"))
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dbconn, err := sqlx.Open("postgres", postgresURL)
	require.NoError(t, err)
	defer dbconn.Close()

	redisClient := pubsub.NewRedisClient(redisURL)
	defer redisClient.Close()

	checkoutGateway := &gateway.CheckoutMock{}
	emailSender := &gateway.EmailSenderMock{}

	done := make(chan struct{})
	go func() {
		<-done
		e := syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
		require.NoError(t, e)
	}()

	finished := make(chan struct{})
	go func() {
		svc := service.New(
			service.Config{
				Addr:        httpAddress,
				AdminSecret: adminSecret,
				SiteURL:     "https://shijia.example.test",
				Email: mailer.Config{
					From: "noreply@example.test",
				},
			},
			dbconn,
			redisClient,
			checkoutGateway,
			emailSender,
		)
		assert.NoError(t, svc.Run(ctx))
		close(finished)
	}()

	defer func() {
		close(done)
		<-finished
	}()

	waitForHttpServer(t)

	menuItemID := createMenuItem(t)
	bookingID := createBooking(t)

	assertBookingReceivedEmailSent(t, emailSender, bookingID)

	orderID, amountCents := createOrder(t, bookingID, menuItemID)
	assert.Equal(t, int64(2900), amountCents)

	// a duplicate create collapses onto the existing pending order
	dupOrderID, _ := createOrder(t, bookingID, menuItemID)
	assert.Equal(t, orderID, dupOrderID)

	sessionID := startCheckout(t, orderID)
	checkoutGateway.MarkSessionPaid(sessionID)

	// success page and webhook race for the same order
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		confirmPayment(t, orderID, sessionID)
	}()
	go func() {
		defer wg.Done()
		sendWebhook(t, entity.CheckoutWebhookEvent{
			Type:      entity.CheckoutEventCompleted,
			SessionID: sessionID,
			OrderID:   orderID,
		})
	}()
	wg.Wait()

	assertOrderStatus(t, orderID, "paid")
	assertPaidEmailSentOnce(t, emailSender, orderID)
	assertBookingStatus(t, bookingID, "paid")

	// an expired session cancels the pending order and releases the booking
	expiredBookingID := createBooking(t)
	expiredOrderID, _ := createOrder(t, expiredBookingID, menuItemID)
	expiredSessionID := startCheckout(t, expiredOrderID)

	sendWebhook(t, entity.CheckoutWebhookEvent{
		Type:      entity.CheckoutEventExpired,
		SessionID: expiredSessionID,
		OrderID:   expiredOrderID,
	})

	assertOrderStatus(t, expiredOrderID, "canceled")
	assertBookingStatus(t, expiredBookingID, "payment_expired")
}

func waitForHttpServer(t *testing.T) {
	t.Helper()

	require.EventuallyWithT(
		t,
		func(t *assert.CollectT) {
			resp, err := http.Get(baseURL + "/health")
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()

			if assert.Less(t, resp.StatusCode, 300, "API not ready, http status: %d", resp.StatusCode) {
				return
			}
		},
		time.Second*10,
		time.Millisecond*50,
	)
}

func postJSON(t *testing.T, path string, body any, headers map[string]string, out any) int {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func getJSON(t *testing.T, path string, headers map[string]string, out any) int {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func createMenuItem(t *testing.T) string {
	t.Helper()

	// no secret, no admin
	status := postJSON(t, "/admin/menu-items", map[string]any{}, nil, nil)
	require.Equal(t, http.StatusUnauthorized, status)

	var item struct {
		ID string `json:"id"`
	}
	status = postJSON(t, "/admin/menu-items", map[string]any{
		"name":        "Dumplings",
		"priceCents":  1450,
		"isAvailable": true,
		"category":    "mains",
	}, map[string]string{"X-Admin-Secret": adminSecret}, &item)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, item.ID)

	return item.ID
}

func createBooking(t *testing.T) string {
	t.Helper()

	var response struct {
		BookingID string `json:"bookingId"`
		Status    string `json:"status"`
	}
	status := postJSON(t, "/bookings", map[string]any{
		"name":      "Ada",
		"phone":     "555-0100",
		"email":     "ada@example.test",
		"partySize": 2,
		"visitDate": "10/01/2026",
		"visitTime": "6:30 PM",
	}, nil, &response)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, response.BookingID)
	require.Equal(t, "new", response.Status)

	return response.BookingID
}

func createOrder(t *testing.T, bookingID string, menuItemID string) (string, int64) {
	t.Helper()

	var response struct {
		OrderID     string `json:"orderId"`
		AmountCents int64  `json:"amountCents"`
		Reused      bool   `json:"reused"`
	}
	status := postJSON(t, "/orders", map[string]any{
		"bookingId": bookingID,
		"items": []map[string]any{
			{"menuItemId": menuItemID, "qty": 2},
		},
	}, nil, &response)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, response.OrderID)

	return response.OrderID, response.AmountCents
}

func startCheckout(t *testing.T, orderID string) string {
	t.Helper()

	var response struct {
		URL       string `json:"url"`
		SessionID string `json:"sessionId"`
	}
	status := postJSON(t, "/checkout", map[string]any{"orderId": orderID}, nil, &response)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, response.URL)
	require.NotEmpty(t, response.SessionID)

	return response.SessionID
}

func confirmPayment(t *testing.T, orderID string, sessionID string) {
	var response struct {
		Status string `json:"status"`
	}
	status := postJSON(t, "/payments/confirm", map[string]any{
		"orderId":   orderID,
		"sessionId": sessionID,
	}, nil, &response)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "paid", response.Status)
}

func sendWebhook(t *testing.T, event entity.CheckoutWebhookEvent) {
	status := postJSON(t, "/webhooks/stripe", event, nil, nil)
	assert.Equal(t, http.StatusOK, status)
}

func assertOrderStatus(t *testing.T, orderID string, expected string) {
	t.Helper()

	var response struct {
		Status string `json:"status"`
	}
	status := getJSON(t, "/orders/"+orderID, nil, &response)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, expected, response.Status)
}

func assertBookingStatus(t *testing.T, bookingID string, expected string) {
	t.Helper()

	assert.EventuallyWithT(
		t,
		func(c *assert.CollectT) {
			var response struct {
				Bookings []entity.Booking `json:"bookings"`
			}
			status := getJSON(t, "/admin/bookings", map[string]string{"X-Admin-Secret": adminSecret}, &response)
			if !assert.Equal(c, http.StatusOK, status) {
				return
			}

			booking, ok := lo.Find(response.Bookings, func(b entity.Booking) bool {
				return b.BookingID == bookingID
			})
			if !assert.True(c, ok, "booking %s not found", bookingID) {
				return
			}
			assert.Equal(c, expected, booking.Status)
		},
		10*time.Second,
		100*time.Millisecond,
	)
}

func assertBookingReceivedEmailSent(t *testing.T, sender *gateway.EmailSenderMock, bookingID string) {
	t.Helper()

	assert.EventuallyWithT(
		t,
		func(t *assert.CollectT) {
			sent := lo.Filter(sender.SentMessages(), func(m entity.EmailMessage, _ int) bool {
				return strings.Contains(m.HTML, bookingID)
			})
			assert.Len(t, sent, 1, "booking received email for %s not sent", bookingID)
		},
		10*time.Second,
		100*time.Millisecond,
	)
}

func assertPaidEmailSentOnce(t *testing.T, sender *gateway.EmailSenderMock, orderID string) {
	t.Helper()

	count := func() int {
		return lo.CountBy(sender.SentMessages(), func(m entity.EmailMessage) bool {
			return strings.Contains(m.Subject, fmt.Sprintf("order %s", orderID))
		})
	}

	assert.EventuallyWithT(
		t,
		func(t *assert.CollectT) {
			assert.Equal(t, 1, count(), "paid email for order %s not sent", orderID)
		},
		10*time.Second,
		100*time.Millisecond,
	)

	// the race between success page and webhook must not double-send
	time.Sleep(500 * time.Millisecond)
	assert.Equal(t, 1, count())
}
