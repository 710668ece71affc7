package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"shijia/gateway"
	"shijia/mailer"
	"shijia/pubsub"
	"shijia/service"
	"shijia/tracing"
)

type options struct {
	Addr        string `long:"addr" env:"ADDR" default:":8080" description:"HTTP listen address"`
	PostgresURL string `long:"postgres-url" env:"POSTGRES_URL" required:"true" description:"Postgres connection string"`
	RedisAddr   string `long:"redis-addr" env:"REDIS_ADDR" required:"true" description:"Redis address"`

	StripeSecretKey     string `long:"stripe-secret-key" env:"STRIPE_SECRET_KEY" required:"true" description:"Stripe API secret key"`
	StripeWebhookSecret string `long:"stripe-webhook-secret" env:"STRIPE_WEBHOOK_SECRET" required:"true" description:"Stripe webhook signing secret"`

	ResendAPIKey    string `long:"resend-api-key" env:"RESEND_API_KEY" required:"true" description:"Resend API key"`
	EmailFrom       string `long:"email-from" env:"EMAIL_FROM" required:"true" description:"From address for transactional email"`
	EmailToOverride string `long:"email-to-override" env:"EMAIL_TO_OVERRIDE" description:"When set, all email goes to this address"`
	EmailDefaultTo  string `long:"email-default-to" env:"EMAIL_DEFAULT_TO" description:"Fallback recipient when the customer has no email"`

	SiteURL     string `long:"site-url" env:"SITE_URL" required:"true" description:"Public site URL for checkout redirects"`
	AdminSecret string `long:"admin-secret" env:"ADMIN_SECRET" description:"Shared secret for the admin endpoints"`

	JaegerEndpoint string `long:"jaeger-endpoint" env:"JAEGER_ENDPOINT" default:"http://localhost:14268/api/traces" description:"Jaeger collector endpoint"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}

	traceProvider := tracing.ConfigureTraceProvider(opts.JaegerEndpoint)
	defer func() {
		_ = traceProvider.Shutdown(context.Background())
	}()

	traceDB, err := otelsql.Open("postgres", opts.PostgresURL,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
	)
	if err != nil {
		logrus.WithError(err).Panic("could not open database")
	}
	dbconn := sqlx.NewDb(traceDB, "postgres")
	defer dbconn.Close()

	redisClient := pubsub.NewRedisClient(opts.RedisAddr)
	defer redisClient.Close()

	checkoutGateway := gateway.NewCheckoutClient(opts.StripeSecretKey, opts.StripeWebhookSecret)
	emailSender := gateway.NewEmailClient(opts.ResendAPIKey)

	svc := service.New(
		service.Config{
			Addr:        opts.Addr,
			AdminSecret: opts.AdminSecret,
			SiteURL:     opts.SiteURL,
			Email: mailer.Config{
				From:       opts.EmailFrom,
				OverrideTo: opts.EmailToOverride,
				DefaultTo:  opts.EmailDefaultTo,
			},
		},
		dbconn,
		redisClient,
		checkoutGateway,
		emailSender,
	)

	if err := svc.Run(ctx); err != nil {
		logrus.WithError(err).Panic("service stopped with error")
	}
}
