// README: Provider display profile store (name and phone shown to customers).
package provider

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"homecall/internal/types"
)

var ErrNotFound = errors.New("provider not found")

type Profile struct {
	ProviderID types.ID
	Name       string
	Phone      string
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, providerID types.ID) (*Profile, error) {
	row := s.db.QueryRow(ctx, `
		SELECT provider_id, name, phone FROM provider_profiles WHERE provider_id = $1`,
		string(providerID),
	)
	var p Profile
	err := row.Scan(&p.ProviderID, &p.Name, &p.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) Upsert(ctx context.Context, p *Profile) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO provider_profiles (provider_id, name, phone)
		VALUES ($1, $2, $3)
		ON CONFLICT (provider_id) DO UPDATE SET name = EXCLUDED.name, phone = EXCLUDED.phone`,
		string(p.ProviderID), p.Name, p.Phone,
	)
	return err
}
