package bookings_test

import (
	"context"
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
	"shijia/db/bookings"
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

func TestPostgresRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo := bookings.NewPostgresRepository(getDb(t))

	booking := entity.Booking{
		BookingID: uuid.NewString(),
		Name:      "Grace",
		Phone:     "555-0101",
		Email:     "grace@example.com",
		PartySize: 4,
		VisitDate: "2026-10-02",
		VisitTime: "12:00:00",
		Status:    entity.BookingStatusNew,
	}

	err := repo.Create(ctx, booking)
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, booking.Name, stored.Name)
	assert.Equal(t, entity.BookingStatusNew, stored.Status)
}

func TestPostgresRepository_SetStatus(t *testing.T) {
	ctx := context.Background()
	repo := bookings.NewPostgresRepository(getDb(t))

	booking := entity.Booking{
		BookingID: uuid.NewString(),
		Name:      "Grace",
		Phone:     "555-0101",
		Email:     "grace@example.com",
		PartySize: 4,
		VisitDate: "2026-10-02",
		VisitTime: "12:00:00",
		Status:    entity.BookingStatusNew,
	}
	require.NoError(t, repo.Create(ctx, booking))

	err := repo.SetStatus(ctx, booking.BookingID, entity.BookingStatusPaid)
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusPaid, stored.Status)

	// unknown ids are a no-op, redelivered events must not error
	err = repo.SetStatus(ctx, uuid.NewString(), entity.BookingStatusPaid)
	assert.NoError(t, err)
}

func TestPostgresRepository_GetByID_notFound(t *testing.T) {
	repo := bookings.NewPostgresRepository(getDb(t))

	_, err := repo.GetByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, entity.ErrNotFound)
}
