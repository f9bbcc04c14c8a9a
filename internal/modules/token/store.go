// README: Device token store with one-token-per-owner upsert semantics.
package token

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"homecall/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Upsert registers the push token for an owner (user or provider), replacing
// any previously registered one.
func (s *Store) Upsert(ctx context.Context, ownerID types.ID, token string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO device_tokens (owner_id, token, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (owner_id) DO UPDATE SET token = EXCLUDED.token, updated_at = NOW()`,
		string(ownerID), token,
	)
	return err
}

// Get returns the owner's token. ok is false when no usable token exists;
// empty tokens count as unusable and are excluded from fan-out.
func (s *Store) Get(ctx context.Context, ownerID types.ID) (string, bool, error) {
	row := s.db.QueryRow(ctx, `SELECT token FROM device_tokens WHERE owner_id = $1`, string(ownerID))
	var tok string
	err := row.Scan(&tok)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if tok == "" {
		return "", false, nil
	}
	return tok, true, nil
}

func (s *Store) Delete(ctx context.Context, ownerID types.ID) error {
	_, err := s.db.Exec(ctx, `DELETE FROM device_tokens WHERE owner_id = $1`, string(ownerID))
	return err
}
