package menu

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

// FindAvailable returns available items in display order: category first, then
// the manual sort value, then name.
func (r *PostgresRepository) FindAvailable(ctx context.Context) ([]entity.MenuItem, error) {
	var items []entity.MenuItem
	err := r.db.SelectContext(ctx, &items, `
		SELECT id, name, description, category, price_cents, is_available, sort, image_url
		FROM menu_items
		WHERE is_available
		ORDER BY category ASC, sort ASC, name ASC
	`)
	return items, err
}

// ByIDs returns the items for the given ids, keyed by id. Missing ids are
// simply absent from the map, pricing treats that as a client error.
func (r *PostgresRepository) ByIDs(ctx context.Context, ids []string) (map[string]entity.MenuItem, error) {
	if len(ids) == 0 {
		return map[string]entity.MenuItem{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, name, description, category, price_cents, is_available, sort, image_url
		FROM menu_items
		WHERE id IN (?)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("could not build menu query: %w", err)
	}

	var items []entity.MenuItem
	err = r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("could not query menu items: %w", err)
	}

	byID := make(map[string]entity.MenuItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return byID, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, item entity.MenuItem) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO menu_items (id, name, description, category, price_cents, is_available, sort, image_url)
		VALUES (:id, :name, :description, :category, :price_cents, :is_available, :sort, :image_url)
		ON CONFLICT (id) DO UPDATE SET
		    name = EXCLUDED.name,
		    description = EXCLUDED.description,
		    category = EXCLUDED.category,
		    price_cents = EXCLUDED.price_cents,
		    is_available = EXCLUDED.is_available,
		    sort = EXCLUDED.sort,
		    image_url = EXCLUDED.image_url
	`, item)
	if err != nil {
		return fmt.Errorf("could not upsert menu item: %w", err)
	}
	return nil
}
