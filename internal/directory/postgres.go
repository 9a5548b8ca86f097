// internal/directory/postgres.go
package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "marketplace-notify/internal/common/errors"
	"marketplace-notify/internal/models"
)

// Postgres resolves recipients from the orders table, one column per role.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (d *Postgres) Resolve(ctx context.Context, orderID string, role models.Role) (string, error) {
	var query string
	switch role {
	case models.RoleCustomer:
		query = `SELECT customer_id FROM orders WHERE id = $1`
	case models.RoleSeller:
		query = `SELECT seller_id FROM orders WHERE id = $1`
	case models.RoleCourier:
		query = `SELECT courier_id FROM orders WHERE id = $1`
	default:
		return "", apperrors.NewUnknownRecipientError(orderID, string(role))
	}

	var recipientID sql.NullString
	err := d.db.QueryRowContext(ctx, query, orderID).Scan(&recipientID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.NewUnknownRecipientError(orderID, string(role))
	}
	if err != nil {
		return "", fmt.Errorf("resolve recipient: %w", err)
	}
	if !recipientID.Valid || recipientID.String == "" {
		return "", apperrors.NewUnknownRecipientError(orderID, string(role))
	}
	return recipientID.String, nil
}
