// README: Provider capability store: which (category, subcategory) pairs a provider services.
package capability

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"homecall/internal/types"
)

// Entry is one trained/equipped service pair for a provider.
type Entry struct {
	CategoryID    types.ID
	SubcategoryID types.ID
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Matches reports whether the provider has at least one capability whose
// category is in categoryIDs and whose subcategory is in subCategoryIDs.
// It is a filter predicate, not a ranking signal.
func (s *Store) Matches(ctx context.Context, providerID types.ID, categoryIDs, subCategoryIDs []types.ID) (bool, error) {
	row := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM provider_capabilities
			WHERE provider_id = $1
			  AND category_id = ANY($2)
			  AND subcategory_id = ANY($3)
		)`,
		string(providerID), idStrings(categoryIDs), idStrings(subCategoryIDs),
	)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Replace swaps the provider's capability set wholesale. Profile management
// always submits the full list, so partial updates are not supported.
func (s *Store) Replace(ctx context.Context, providerID types.ID, entries []Entry) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM provider_capabilities WHERE provider_id = $1`, string(providerID)); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := tx.Exec(ctx, `
			INSERT INTO provider_capabilities (provider_id, category_id, subcategory_id)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING`,
			string(providerID), string(e.CategoryID), string(e.SubcategoryID),
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func idStrings(ids []types.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
