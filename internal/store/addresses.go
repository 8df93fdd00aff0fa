package store

import (
	"context"
	"fmt"
	"time"

	"github.com/01moynul/yourqueen-golang/internal/models"
)

const addressColumns = `id, user_id, full_name, phone, address_line1, address_line2, city, state,
	postal_code, country, is_default, created_at, updated_at`

func scanAddress(row rowScanner) (*models.Address, error) {
	var a models.Address
	err := row.Scan(&a.ID, &a.UserID, &a.FullName, &a.Phone, &a.AddressLine1, &a.AddressLine2, &a.City, &a.State,
		&a.PostalCode, &a.Country, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAddresses returns the default address first, then newest first.
func (s *MySQL) ListAddresses(ctx context.Context, userID int64) ([]models.Address, error) {
	query := "SELECT " + addressColumns + " FROM addresses WHERE user_id = ? ORDER BY is_default DESC, created_at DESC, id DESC"
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query addresses: %w", err)
	}
	defer rows.Close()

	list := []models.Address{}
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		list = append(list, *a)
	}
	return list, rows.Err()
}

// CreateAddress stores a new address. When it is the default, every other
// address of the user loses the flag in the same transaction.
func (s *MySQL) CreateAddress(ctx context.Context, a *models.Address) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if a.IsDefault {
		if _, err := tx.ExecContext(ctx, "UPDATE addresses SET is_default = 0 WHERE user_id = ?", a.UserID); err != nil {
			return fmt.Errorf("clear default address: %w", err)
		}
	}

	now := time.Now()
	a.CreatedAt, a.UpdatedAt = now, now
	query := `
		INSERT INTO addresses (user_id, full_name, phone, address_line1, address_line2, city, state,
			postal_code, country, is_default, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, query, a.UserID, a.FullName, a.Phone, a.AddressLine1, a.AddressLine2, a.City, a.State,
		a.PostalCode, a.Country, a.IsDefault, now, now)
	if err != nil {
		return fmt.Errorf("insert address: %w", err)
	}
	if a.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("read address id: %w", err)
	}
	return tx.Commit()
}

// UpdateAddress overwrites an address owned by a.UserID.
func (s *MySQL) UpdateAddress(ctx context.Context, a *models.Address) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var createdAt time.Time
	err = tx.QueryRowContext(ctx, "SELECT created_at FROM addresses WHERE id = ? AND user_id = ? FOR UPDATE", a.ID, a.UserID).Scan(&createdAt)
	if err != nil {
		return notFoundOr(err, "read address")
	}

	if a.IsDefault {
		if _, err := tx.ExecContext(ctx, "UPDATE addresses SET is_default = 0 WHERE user_id = ? AND id <> ?", a.UserID, a.ID); err != nil {
			return fmt.Errorf("clear default address: %w", err)
		}
	}

	a.CreatedAt = createdAt
	a.UpdatedAt = time.Now()
	query := `
		UPDATE addresses
		SET full_name = ?, phone = ?, address_line1 = ?, address_line2 = ?, city = ?, state = ?,
			postal_code = ?, country = ?, is_default = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`
	if _, err := tx.ExecContext(ctx, query, a.FullName, a.Phone, a.AddressLine1, a.AddressLine2, a.City, a.State,
		a.PostalCode, a.Country, a.IsDefault, a.UpdatedAt, a.ID, a.UserID); err != nil {
		return fmt.Errorf("update address %d: %w", a.ID, err)
	}
	return tx.Commit()
}

func (s *MySQL) DeleteAddress(ctx context.Context, userID, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM addresses WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete address %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
