// README: Engagement store backed by PostgreSQL. A partial unique index on
// order_id over non-terminal statuses enforces first-accept-wins.
package history

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"homecall/internal/types"
)

const uniqueViolation = "23505"

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Insert(ctx context.Context, h *History) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO order_histories (id, order_id, user_id, provider_id, status, otp, otp_expiry, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		string(h.ID), string(h.OrderID), string(h.UserID), string(h.ProviderID),
		string(h.Status), h.OTP, h.OTPExpiry, h.CreatedAt, h.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrConflict
	}
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*History, error) {
	return s.scanOne(s.db.QueryRow(ctx, selectHistory+` WHERE id = $1`, string(id)))
}

func (s *PGStore) GetForProvider(ctx context.Context, id, providerID types.ID) (*History, error) {
	return s.scanOne(s.db.QueryRow(ctx, selectHistory+` WHERE id = $1 AND provider_id = $2`,
		string(id), string(providerID)))
}

func (s *PGStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE order_histories
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3`,
		string(to), string(id), string(from),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) SetOTP(ctx context.Context, id types.ID, code string, expiry time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE order_histories
		SET otp = $1, otp_expiry = $2, updated_at = NOW()
		WHERE id = $3`,
		code, expiry, string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) TransitionClearOTP(ctx context.Context, id types.ID, from, to Status) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE order_histories
		SET status = $1, otp = NULL, otp_expiry = NULL, updated_at = NOW()
		WHERE id = $2 AND status = $3`,
		string(to), string(id), string(from),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) Cancel(ctx context.Context, id types.ID, reason string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE order_histories
		SET status = 'Cancelled', reason = $1, updated_at = NOW()
		WHERE id = $2 AND status IN ('Pending', 'Accepted', 'InProgress')`,
		reason, string(id),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) SetImage(ctx context.Context, id types.ID, key string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE order_histories SET image_key = $1, updated_at = NOW() WHERE id = $2`,
		key, string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) ListByProvider(ctx context.Context, providerID types.ID) ([]*History, error) {
	rows, err := s.db.Query(ctx, selectHistory+` WHERE provider_id = $1 ORDER BY created_at DESC`,
		string(providerID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.scanAll(rows)
}

func (s *PGStore) ListByOrders(ctx context.Context, orderIDs []types.ID) ([]*History, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	ids := make([]string, len(orderIDs))
	for i, id := range orderIDs {
		ids[i] = string(id)
	}
	rows, err := s.db.Query(ctx, selectHistory+` WHERE order_id = ANY($1) ORDER BY created_at DESC`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.scanAll(rows)
}

func (s *PGStore) ListStaleAccepted(ctx context.Context, now time.Time) ([]*History, error) {
	rows, err := s.db.Query(ctx, selectHistory+`
		WHERE status = 'Accepted' AND otp_expiry IS NOT NULL AND otp_expiry < $1`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.scanAll(rows)
}

const selectHistory = `
	SELECT id, order_id, user_id, provider_id, status, otp, otp_expiry, reason, image_key, created_at, updated_at
	FROM order_histories`

func (s *PGStore) scanOne(row pgx.Row) (*History, error) {
	var h History
	var otp, reason, imageKey sql.NullString
	var otpExpiry sql.NullTime

	err := row.Scan(&h.ID, &h.OrderID, &h.UserID, &h.ProviderID, &h.Status,
		&otp, &otpExpiry, &reason, &imageKey, &h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if otp.Valid {
		h.OTP = &otp.String
	}
	if otpExpiry.Valid {
		h.OTPExpiry = &otpExpiry.Time
	}
	if reason.Valid {
		h.Reason = &reason.String
	}
	if imageKey.Valid {
		h.ImageKey = &imageKey.String
	}
	return &h, nil
}

func (s *PGStore) scanAll(rows pgx.Rows) ([]*History, error) {
	var out []*History
	for rows.Next() {
		h, err := s.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
