package orders

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

const orderColumns = `order_id, order_type, status, amount_cents, currency, booking_id,
	name, phone, email, visit_date, visit_time, party_size,
	checkout_session_id, paid_at, created_at`

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreatePending inserts the order and its line items in one transaction.
// If a pending order already exists for the booking it is returned unchanged
// with reused=true. The partial unique index on (booking_id) WHERE
// status='pending' resolves concurrent duplicate requests: the loser's insert
// affects zero rows and the winner's row is returned instead.
func (r *PostgresRepository) CreatePending(
	ctx context.Context,
	order entity.Order,
	items []entity.OrderItem,
) (created entity.Order, reused bool, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return entity.Order{}, false, fmt.Errorf("could not begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			rollbackErr := tx.Rollback()
			err = errors.Join(err, rollbackErr)
			return
		}
		err = tx.Commit()
	}()

	existing, err := r.pendingForBooking(ctx, tx, order.BookingID)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, entity.ErrNotFound) {
		return entity.Order{}, false, err
	}
	err = nil

	res, err := tx.NamedExecContext(ctx, `
		INSERT INTO
		    orders (order_id, order_type, status, amount_cents, currency, booking_id,
		            name, phone, email, visit_date, visit_time, party_size)
		VALUES (:order_id, :order_type, :status, :amount_cents, :currency, :booking_id,
		        :name, :phone, :email, :visit_date, :visit_time, :party_size)
		ON CONFLICT (booking_id) WHERE status = 'pending' AND booking_id <> '' DO NOTHING
		`, order)
	if err != nil {
		return entity.Order{}, false, fmt.Errorf("could not add order: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return entity.Order{}, false, err
	}
	if rowsAffected == 0 {
		// lost the race, another request created the pending order
		existing, err = r.pendingForBooking(ctx, tx, order.BookingID)
		if err != nil {
			return entity.Order{}, false, err
		}
		return existing, true, nil
	}

	if len(items) > 0 {
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO
			    order_items (order_id, menu_item_id, item_name, unit_price_cents, quantity)
			VALUES (:order_id, :menu_item_id, :item_name, :unit_price_cents, :quantity)
			`, items)
		if err != nil {
			return entity.Order{}, false, fmt.Errorf("could not add order items: %w", err)
		}
	}

	err = tx.GetContext(ctx, &created, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE order_id = $1
	`, order.OrderID)
	if err != nil {
		return entity.Order{}, false, fmt.Errorf("could not read back order: %w", err)
	}

	return created, false, nil
}

func (r *PostgresRepository) pendingForBooking(ctx context.Context, tx *sqlx.Tx, bookingID string) (entity.Order, error) {
	if bookingID == "" {
		return entity.Order{}, entity.ErrNotFound
	}

	var order entity.Order
	err := tx.GetContext(ctx, &order, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE booking_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, bookingID, entity.OrderStatusPending)
	if errors.Is(err, stdSQL.ErrNoRows) {
		return entity.Order{}, entity.ErrNotFound
	}
	if err != nil {
		return entity.Order{}, fmt.Errorf("could not check for pending order: %w", err)
	}
	return order, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, orderID string) (entity.Order, error) {
	var order entity.Order
	err := r.db.GetContext(ctx, &order, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE order_id = $1
	`, orderID)
	if errors.Is(err, stdSQL.ErrNoRows) {
		return entity.Order{}, entity.ErrNotFound
	}
	if err != nil {
		return entity.Order{}, fmt.Errorf("could not get order: %w", err)
	}
	return order, nil
}

func (r *PostgresRepository) FindItems(ctx context.Context, orderID string) ([]entity.OrderItem, error) {
	var items []entity.OrderItem
	err := r.db.SelectContext(ctx, &items, `
		SELECT order_id, menu_item_id, item_name, unit_price_cents, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC
	`, orderID)
	return items, err
}

func (r *PostgresRepository) SetCheckoutSession(ctx context.Context, orderID string, sessionID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET checkout_session_id = $2
		WHERE order_id = $1
	`, orderID, sessionID)
	if err != nil {
		return fmt.Errorf("could not store checkout session id: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return entity.ErrNotFound
	}
	return nil
}

// MarkPaid performs the single conditional pending->paid transition and
// publishes OrderPaid through the outbox in the same transaction. A false
// return means another caller already transitioned the order (webhook vs.
// poll race, duplicate webhook delivery); that is not an error.
func (r *PostgresRepository) MarkPaid(ctx context.Context, orderID string, sessionID string) (transitioned bool, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("could not begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			rollbackErr := tx.Rollback()
			err = errors.Join(err, rollbackErr)
			return
		}
		err = tx.Commit()
	}()

	var updated entity.Order
	err = tx.GetContext(ctx, &updated, `
		UPDATE orders
		SET status = $2, checkout_session_id = $3, paid_at = now()
		WHERE order_id = $1 AND status = $4
		RETURNING `+orderColumns+`
	`, orderID, entity.OrderStatusPaid, sessionID, entity.OrderStatusPending)
	if errors.Is(err, stdSQL.ErrNoRows) {
		err = nil
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("could not mark order paid: %w", err)
	}

	err = r.publish(ctx, tx, entity.OrderPaid{
		Header:      entity.NewEventHeaderWithIdempotencyKey("order-paid-" + updated.OrderID),
		OrderID:     updated.OrderID,
		BookingID:   updated.BookingID,
		AmountCents: updated.AmountCents,
		Currency:    updated.Currency,
		Email:       updated.Email,
	})
	if err != nil {
		return false, err
	}

	return true, nil
}

// MarkCanceled is the pending->canceled counterpart of MarkPaid, used when the
// checkout session expires.
func (r *PostgresRepository) MarkCanceled(ctx context.Context, orderID string) (transitioned bool, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("could not begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			rollbackErr := tx.Rollback()
			err = errors.Join(err, rollbackErr)
			return
		}
		err = tx.Commit()
	}()

	var updated entity.Order
	err = tx.GetContext(ctx, &updated, `
		UPDATE orders
		SET status = $2
		WHERE order_id = $1 AND status = $3
		RETURNING `+orderColumns+`
	`, orderID, entity.OrderStatusCanceled, entity.OrderStatusPending)
	if errors.Is(err, stdSQL.ErrNoRows) {
		err = nil
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("could not cancel order: %w", err)
	}

	err = r.publish(ctx, tx, entity.OrderCanceled{
		Header:    entity.NewEventHeaderWithIdempotencyKey("order-canceled-" + updated.OrderID),
		OrderID:   updated.OrderID,
		BookingID: updated.BookingID,
	})
	if err != nil {
		return false, err
	}

	return true, nil
}

func (r *PostgresRepository) publish(ctx context.Context, tx *sqlx.Tx, event any) error {
	outboxPublisher, err := outbox.NewPublisherForDb(ctx, tx.Tx)
	if err != nil {
		return fmt.Errorf("could not create outbox publisher: %w", err)
	}

	eventBus, err := bus.NewEventBus(outboxPublisher)
	if err != nil {
		return err
	}

	err = eventBus.Publish(ctx, event)
	if err != nil {
		return fmt.Errorf("could not publish event: %w", err)
	}
	return nil
}
