package email_events

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"shijia/entity"
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// InsertOnce claims the (event_type, subject_id) marker. inserted=false means
// another caller already claimed it and the email must not be sent again.
func (r *PostgresRepository) InsertOnce(ctx context.Context, event entity.EmailEvent) (inserted bool, err error) {
	res, err := r.db.NamedExecContext(ctx, `
		INSERT INTO email_events (id, event_type, subject_id, to_email, from_email)
		VALUES (:id, :event_type, :subject_id, :to_email, :from_email)
		ON CONFLICT (event_type, subject_id) DO NOTHING
	`, event)
	if err != nil {
		return false, fmt.Errorf("could not insert email event: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

// SetProviderMessageID records the sender's message id on the marker row for
// traceability.
func (r *PostgresRepository) SetProviderMessageID(ctx context.Context, id string, providerMessageID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE email_events
		SET provider_message_id = $2
		WHERE id = $1
	`, id, providerMessageID)
	if err != nil {
		return fmt.Errorf("could not record provider message id: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindBySubject(ctx context.Context, eventType string, subjectID string) ([]entity.EmailEvent, error) {
	var events []entity.EmailEvent
	err := r.db.SelectContext(ctx, &events, `
		SELECT id, event_type, subject_id, to_email, from_email, provider_message_id, created_at
		FROM email_events
		WHERE event_type = $1 AND subject_id = $2
	`, eventType, subjectID)
	return events, err
}
