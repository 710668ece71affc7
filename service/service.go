package service

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"shijia/checkout"
	"shijia/db"
	"shijia/db/bookings"
	"shijia/db/email_events"
	"shijia/db/menu"
	"shijia/db/orders"
	"shijia/entity"
	"shijia/http"
	"shijia/mailer"
	"shijia/order"
	"shijia/payment"
	"shijia/pubsub"
	"shijia/pubsub/event"
	"shijia/pubsub/outbox"
)

func init() {
	log.Init(logrus.InfoLevel)
}

// CheckoutGateway is the full payment processor surface the service needs:
// session management for checkout and confirmation, webhook parsing for the
// callback endpoint.
type CheckoutGateway interface {
	CreateSession(ctx context.Context, request entity.CreateCheckoutSessionRequest) (entity.CheckoutSession, error)
	GetSession(ctx context.Context, sessionID string) (entity.CheckoutSession, error)
	ParseWebhookEvent(payload []byte, signatureHeader string) (entity.CheckoutWebhookEvent, error)
}

type Config struct {
	Addr        string
	AdminSecret string
	SiteURL     string
	Email       mailer.Config
}

type Service struct {
	db              *sqlx.DB
	watermillRouter *message.Router
	outboxForwarder *forwarder.Forwarder
	httpServer      *http.Server
}

func New(
	config Config,
	database *sqlx.DB,
	redisClient *redis.Client,
	checkoutGateway CheckoutGateway,
	emailSender mailer.Sender,
) Service {
	bookingsRepo := bookings.NewPostgresRepository(database)
	menuRepo := menu.NewPostgresRepository(database)
	ordersRepo := orders.NewPostgresRepository(database)
	emailEventsRepo := email_events.NewPostgresRepository(database)

	watermillLogger := log.NewWatermill(log.FromContext(context.Background()))

	var redisPublisher message.Publisher
	redisPublisher = pubsub.NewRedisPublisher(redisClient, watermillLogger)
	redisPublisher = log.CorrelationPublisherDecorator{Publisher: redisPublisher}

	mailerService := mailer.NewService(emailEventsRepo, emailSender, config.Email)
	orderService := order.NewService(bookingsRepo, menuRepo, ordersRepo)
	checkoutService := checkout.NewService(ordersRepo, checkoutGateway, config.SiteURL)
	paymentService := payment.NewService(ordersRepo, checkoutGateway, mailerService)

	eventsHandler := event.NewHandler(bookingsRepo, mailerService)

	postgresSubscriber := outbox.NewPostgresSubscriber(database.DB, watermillLogger)
	outboxForwarder, err := outbox.NewForwarder(postgresSubscriber, redisPublisher, watermillLogger)
	if err != nil {
		panic(fmt.Errorf("failed to create outbox forwarder: %w", err))
	}

	eventProcessorConfig := event.NewProcessorConfig(redisClient, watermillLogger)

	watermillRouter, err := pubsub.NewWatermillRouter(
		eventProcessorConfig,
		eventsHandler,
		watermillLogger,
	)
	if err != nil {
		panic(fmt.Errorf("failed to create watermill router: %w", err))
	}

	httpServer := http.NewServer(
		config.Addr,
		config.AdminSecret,
		bookingsRepo,
		menuRepo,
		ordersRepo,
		orderService,
		checkoutService,
		paymentService,
		checkoutGateway,
	)

	return Service{
		db:              database,
		watermillRouter: watermillRouter,
		outboxForwarder: outboxForwarder,
		httpServer:      httpServer,
	}
}

func (s Service) Run(ctx context.Context) error {
	if err := db.InitializeDatabaseSchema(s.db); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	// The outbox tables must exist before the first request publishes an
	// event, not just when the forwarder subscribes.
	if err := outbox.InitializeSchema(s.db.DB, log.NewWatermill(log.FromContext(ctx))); err != nil {
		return fmt.Errorf("failed to initialize outbox schema: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.outboxForwarder.Run(ctx)
	})

	g.Go(func() error {
		return s.watermillRouter.Run(ctx)
	})

	g.Go(func() error {
		// HTTP starts after the router so the service is not healthy
		// before handlers are subscribed.
		<-s.watermillRouter.Running()

		return s.httpServer.Run(ctx)
	})

	return g.Wait()
}
