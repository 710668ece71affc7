package http

import (
	"context"
	"errors"
	"net/http"

	echoHTTP "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"shijia/checkout"
	"shijia/entity"
	"shijia/order"
	"shijia/payment"
)

type BookingsRepository interface {
	Create(ctx context.Context, booking entity.Booking) error
	FindAll(ctx context.Context) ([]entity.Booking, error)
}

type MenuRepository interface {
	FindAvailable(ctx context.Context) ([]entity.MenuItem, error)
	Upsert(ctx context.Context, item entity.MenuItem) error
}

type OrdersRepository interface {
	GetByID(ctx context.Context, orderID string) (entity.Order, error)
	FindItems(ctx context.Context, orderID string) ([]entity.OrderItem, error)
}

type WebhookParser interface {
	ParseWebhookEvent(payload []byte, signatureHeader string) (entity.CheckoutWebhookEvent, error)
}

type Server struct {
	addr        string
	e           *echo.Echo
	adminSecret string

	bookingsRepo BookingsRepository
	menuRepo     MenuRepository
	ordersRepo   OrdersRepository

	orderService    order.Service
	checkoutService checkout.Service
	paymentService  payment.Service

	webhookParser WebhookParser
}

func NewServer(
	addr string,
	adminSecret string,
	bookingsRepo BookingsRepository,
	menuRepo MenuRepository,
	ordersRepo OrdersRepository,
	orderService order.Service,
	checkoutService checkout.Service,
	paymentService payment.Service,
	webhookParser WebhookParser,
) *Server {
	e := echoHTTP.NewEcho()
	e.Use(otelecho.Middleware("shijia"))

	server := &Server{
		addr:            addr,
		e:               e,
		adminSecret:     adminSecret,
		bookingsRepo:    bookingsRepo,
		menuRepo:        menuRepo,
		ordersRepo:      ordersRepo,
		orderService:    orderService,
		checkoutService: checkoutService,
		paymentService:  paymentService,
		webhookParser:   webhookParser,
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/bookings", server.PostBookings)
	e.GET("/menu", server.GetMenu)

	e.POST("/orders", server.PostOrders)
	e.GET("/orders/:id", server.GetOrder)
	e.POST("/checkout", server.PostCheckout)
	e.POST("/payments/confirm", server.PostPaymentsConfirm)
	e.POST("/webhooks/stripe", server.PostStripeWebhook)

	admin := e.Group("/admin", server.requireAdmin)
	admin.GET("/bookings", server.GetAdminBookings)
	admin.POST("/menu-items", server.PostAdminMenuItem)

	return server
}

func (s Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		err := s.e.Shutdown(ctx)
		if err != nil {
			log.FromContext(ctx).WithError(err).Error("failed to shutdown HTTP server")
		}
	}()
	log.FromContext(ctx).WithField("addr", s.addr).Info("[HTTP] server listening")
	if err := s.e.Start(s.addr); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
