// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "marketplace-notify/internal/common/errors"
	"marketplace-notify/internal/models"

	"github.com/google/uuid"
)

// Postgres is the production Store backed by a notifications table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Schema is the DDL the store expects. Seq is a bigserial so creation order
// is durable and breaks created_at ties.
const Schema = `
CREATE TABLE IF NOT EXISTS notifications (
    id           TEXT PRIMARY KEY,
    recipient_id TEXT NOT NULL,
    category     TEXT NOT NULL,
    title        TEXT NOT NULL,
    body         TEXT NOT NULL,
    payload      JSONB,
    priority     TEXT NOT NULL,
    is_read      BOOLEAN NOT NULL DEFAULT FALSE,
    created_at   TIMESTAMPTZ NOT NULL,
    seq          BIGSERIAL
);
CREATE INDEX IF NOT EXISTS idx_notifications_recipient
    ON notifications (recipient_id, is_read);
`

func (s *Postgres) Create(ctx context.Context, rec *models.NotificationRecord) (*models.NotificationRecord, error) {
	stored := *rec
	stored.ID = uuid.New().String()

	payloadJSON, err := json.Marshal(stored.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	const q = `
		INSERT INTO notifications (id, recipient_id, category, title, body, payload, priority, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING seq`

	err = s.db.QueryRowContext(ctx, q,
		stored.ID, stored.RecipientID, string(stored.Category),
		stored.Title, stored.Body, payloadJSON,
		string(stored.Priority), stored.IsRead, stored.CreatedAt,
	).Scan(&stored.Seq)
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError(err)
	}

	return &stored, nil
}

func (s *Postgres) Get(ctx context.Context, id string) (*models.NotificationRecord, error) {
	const q = `
		SELECT id, recipient_id, category, title, body, payload, priority, is_read, created_at, seq
		FROM notifications WHERE id = $1`

	rec, err := scanRecord(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(id)
	}
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError(err)
	}
	return rec, nil
}

func (s *Postgres) List(ctx context.Context, f Filter) ([]models.NotificationRecord, error) {
	q := `
		SELECT id, recipient_id, category, title, body, payload, priority, is_read, created_at, seq
		FROM notifications WHERE recipient_id = $1`
	args := []interface{}{f.RecipientID}

	if f.IsRead != nil {
		q += ` AND is_read = $2`
		args = append(args, *f.IsRead)
	}
	q += ` ORDER BY created_at DESC, seq DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError(err)
	}
	defer rows.Close()

	var out []models.NotificationRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, apperrors.NewStoreUnavailableError(err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreUnavailableError(err)
	}
	return out, nil
}

func (s *Postgres) Update(ctx context.Context, id string, p Patch) error {
	if p.IsRead == nil {
		return nil
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = $1 WHERE id = $2`, *p.IsRead, id)
	if err != nil {
		return apperrors.NewStoreUnavailableError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewStoreUnavailableError(err)
	}
	if n == 0 {
		return apperrors.NewNotFoundError(id)
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return apperrors.NewStoreUnavailableError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewStoreUnavailableError(err)
	}
	if n == 0 {
		return apperrors.NewNotFoundError(id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*models.NotificationRecord, error) {
	var rec models.NotificationRecord
	var category, priority string
	var payloadJSON []byte

	err := row.Scan(&rec.ID, &rec.RecipientID, &category, &rec.Title, &rec.Body,
		&payloadJSON, &priority, &rec.IsRead, &rec.CreatedAt, &rec.Seq)
	if err != nil {
		return nil, err
	}

	rec.Category = models.Category(category)
	rec.Priority = models.Priority(priority)
	if len(payloadJSON) > 0 {
		if err := json.Unmarshal(payloadJSON, &rec.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal payload: %w", err)
		}
	}
	return &rec, nil
}
