package bookings

import (
	"context"
	stdSQL "database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"shijia/entity"
	"shijia/pubsub/bus"
	"shijia/pubsub/outbox"
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create stores the booking and publishes BookingCreated through the outbox,
// in one transaction.
func (r *PostgresRepository) Create(ctx context.Context, booking entity.Booking) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			rollbackErr := tx.Rollback()
			err = errors.Join(err, rollbackErr)
			return
		}
		err = tx.Commit()
	}()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO
		    bookings (booking_id, name, phone, email, party_size, visit_date, visit_time, note)
		VALUES (:booking_id, :name, :phone, :email, :party_size, :visit_date, :visit_time, :note)
		`, booking)
	if err != nil {
		return fmt.Errorf("could not add booking: %w", err)
	}

	outboxPublisher, err := outbox.NewPublisherForDb(ctx, tx.Tx)
	if err != nil {
		return fmt.Errorf("could not create outbox publisher: %w", err)
	}

	eventBus, err := bus.NewEventBus(outboxPublisher)
	if err != nil {
		return err
	}

	err = eventBus.Publish(ctx, entity.BookingCreated{
		Header:    entity.NewEventHeader(),
		BookingID: booking.BookingID,
		Name:      booking.Name,
		Email:     booking.Email,
		PartySize: booking.PartySize,
		VisitDate: booking.VisitDate,
		VisitTime: booking.VisitTime,
	})
	if err != nil {
		return fmt.Errorf("could not publish event: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, bookingID string) (entity.Booking, error) {
	var booking entity.Booking
	err := r.db.GetContext(ctx, &booking, `
		SELECT booking_id, name, phone, email, party_size, visit_date, visit_time, note, status, created_at
		FROM bookings
		WHERE booking_id = $1
	`, bookingID)
	if errors.Is(err, stdSQL.ErrNoRows) {
		return entity.Booking{}, entity.ErrNotFound
	}
	if err != nil {
		return entity.Booking{}, fmt.Errorf("could not get booking: %w", err)
	}
	return booking, nil
}

// SetStatus is a no-op for unknown booking ids: status updates arrive from
// redelivered events and must not error into the retry loop.
func (r *PostgresRepository) SetStatus(ctx context.Context, bookingID string, status string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = $2
		WHERE booking_id = $1
	`, bookingID, status)
	if err != nil {
		return fmt.Errorf("could not update booking status: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindAll(ctx context.Context) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT booking_id, name, phone, email, party_size, visit_date, visit_time, note, status, created_at
		FROM bookings
		ORDER BY created_at DESC
	`)
	return bookings, err
}
