// internal/directory/directory_test.go
package directory

import (
	"context"
	"database/sql"
	"testing"

	apperrors "marketplace-notify/internal/common/errors"
	"marketplace-notify/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Static Directory Tests
// ==========================

func TestStatic_Resolve(t *testing.T) {
	dir := NewStatic()
	dir.Register("ORD-1", "customer-001", "seller-001", "courier-001")
	ctx := context.Background()

	tests := []struct {
		role     models.Role
		expected string
	}{
		{models.RoleCustomer, "customer-001"},
		{models.RoleSeller, "seller-001"},
		{models.RoleCourier, "courier-001"},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			id, err := dir.Resolve(ctx, "ORD-1", tt.role)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, id)
		})
	}
}

func TestStatic_Resolve_Unmapped(t *testing.T) {
	dir := NewStatic()
	dir.Register("ORD-1", "customer-001", "seller-001", "")
	ctx := context.Background()

	_, err := dir.Resolve(ctx, "ORD-1", models.RoleCourier)
	assert.True(t, apperrors.IsUnknownRecipient(err))

	_, err = dir.Resolve(ctx, "ORD-unknown", models.RoleCustomer)
	assert.True(t, apperrors.IsUnknownRecipient(err))
}

// ==========================
// Postgres Directory Tests
// ==========================

func TestPostgres_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		role     models.Role
		query    string
		expected string
	}{
		{"customer", models.RoleCustomer, `SELECT customer_id FROM orders WHERE id = \$1`, "customer-001"},
		{"seller", models.RoleSeller, `SELECT seller_id FROM orders WHERE id = \$1`, "seller-001"},
		{"courier", models.RoleCourier, `SELECT courier_id FROM orders WHERE id = \$1`, "courier-001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectQuery(tt.query).
				WithArgs("ORD-1").
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(tt.expected))

			dir := NewPostgres(db)
			id, err := dir.Resolve(context.Background(), "ORD-1", tt.role)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, id)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgres_Resolve_Unmapped(t *testing.T) {
	t.Run("no order row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT customer_id FROM orders WHERE id = \$1`).
			WithArgs("ORD-missing").
			WillReturnError(sql.ErrNoRows)

		dir := NewPostgres(db)
		_, err = dir.Resolve(context.Background(), "ORD-missing", models.RoleCustomer)
		assert.True(t, apperrors.IsUnknownRecipient(err))
	})

	t.Run("null courier column", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT courier_id FROM orders WHERE id = \$1`).
			WithArgs("ORD-1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(nil))

		dir := NewPostgres(db)
		_, err = dir.Resolve(context.Background(), "ORD-1", models.RoleCourier)
		assert.True(t, apperrors.IsUnknownRecipient(err))
	})

	t.Run("invalid role", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		dir := NewPostgres(db)
		_, err = dir.Resolve(context.Background(), "ORD-1", "bystander")
		assert.True(t, apperrors.IsUnknownRecipient(err))
	})
}
