// README: Order store backed by PostgreSQL.
package order

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"homecall/internal/types"
)

var ErrNotFound = errors.New("order not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Create persists the order and its line items in one transaction. The write
// must be durably acknowledged before dispatch starts notifying anyone.
func (s *Store) Create(ctx context.Context, o *Order) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, user_id, address_id, payment_id, category_ids, subcategory_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(o.ID), string(o.UserID), string(o.AddressID), o.PaymentID,
		idStrings(o.CategoryIDs), idStrings(o.SubCategoryIDs), o.CreatedAt,
	)
	if err != nil {
		return err
	}
	for _, it := range o.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (order_id, service_id, category_id, subcategory_id, quantity, scheduled_date, scheduled_time)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			string(o.ID), string(it.ServiceID), string(it.CategoryID), string(it.SubcategoryID),
			it.Quantity, it.ScheduledDate, it.ScheduledTime,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) GetByID(ctx context.Context, id types.ID) (*Order, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, address_id, payment_id, category_ids, subcategory_ids, created_at
		FROM orders WHERE id = $1`, string(id),
	)
	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Store) ListByUser(ctx context.Context, userID types.ID) ([]*Order, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, address_id, payment_id, category_ids, subcategory_ids, created_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, string(userID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range out {
		if err := s.loadItems(ctx, o); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Delete removes a single order; admin purge only.
func (s *Store) Delete(ctx context.Context, id types.ID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll wipes every order; admin purge only.
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM orders`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) loadItems(ctx context.Context, o *Order) error {
	rows, err := s.db.Query(ctx, `
		SELECT service_id, category_id, subcategory_id, quantity, scheduled_date, scheduled_time
		FROM order_items WHERE order_id = $1`, string(o.ID),
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ServiceID, &it.CategoryID, &it.SubcategoryID, &it.Quantity, &it.ScheduledDate, &it.ScheduledTime); err != nil {
			return err
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var categoryIDs, subCategoryIDs []string
	err := row.Scan(&o.ID, &o.UserID, &o.AddressID, &o.PaymentID, &categoryIDs, &subCategoryIDs, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.CategoryIDs = toIDs(categoryIDs)
	o.SubCategoryIDs = toIDs(subCategoryIDs)
	return &o, nil
}

func idStrings(ids []types.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func toIDs(ss []string) []types.ID {
	out := make([]types.ID, len(ss))
	for i, s := range ss {
		out[i] = types.ID(s)
	}
	return out
}
