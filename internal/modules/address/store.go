// README: Customer address store. Addresses carry the coordinates dispatch resolves against.
package address

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"homecall/internal/types"
)

var ErrNotFound = errors.New("address not found")

type Address struct {
	ID       types.ID
	UserID   types.ID
	Line1    string
	City     string
	State    string
	Pincode  string
	Landmark string
	// Lat/Lng are nil when the address was saved without device coordinates;
	// the resolver falls back to geocoding in that case.
	Lat *float64
	Lng *float64
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, a *Address) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO addresses (id, user_id, line1, city, state, pincode, landmark, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		string(a.ID), string(a.UserID), a.Line1, a.City, a.State, a.Pincode, a.Landmark, a.Lat, a.Lng,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Address, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, line1, city, state, pincode, landmark, latitude, longitude
		FROM addresses WHERE id = $1`, string(id),
	)
	var a Address
	var lat, lng sql.NullFloat64
	err := row.Scan(&a.ID, &a.UserID, &a.Line1, &a.City, &a.State, &a.Pincode, &a.Landmark, &lat, &lng)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if lat.Valid {
		a.Lat = &lat.Float64
	}
	if lng.Valid {
		a.Lng = &lng.Float64
	}
	return &a, nil
}
