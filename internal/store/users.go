package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/01moynul/yourqueen-golang/internal/models"
)

const userColumns = `id, email, password_hash, first_name, last_name, phone, role, loyalty_points, created_at, updated_at`

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u     models.User
		phone sql.NullString
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &phone, &u.Role,
		&u.LoyaltyPoints, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if phone.Valid {
		u.Phone = &phone.String
	}
	return &u, nil
}

// CreateUser inserts a new account. Emails are stored lower-cased.
func (s *MySQL) CreateUser(ctx context.Context, u *models.User) error {
	now := time.Now()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = models.RoleCustomer
	}
	u.CreatedAt, u.UpdatedAt = now, now

	query := `
		INSERT INTO users (email, password_hash, first_name, last_name, phone, role, loyalty_points, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`

	result, err := s.db.ExecContext(ctx, query, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone, u.Role, now, now)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	if u.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("read user id: %w", err)
	}
	return nil
}

func (s *MySQL) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", strings.ToLower(strings.TrimSpace(email)))
	return userOrNotFound(scanUser(row))
}

func (s *MySQL) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return userOrNotFound(scanUser(row))
}

func userOrNotFound(u *models.User, err error) (*models.User, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// UserRole returns the user's current role.
func (s *MySQL) UserRole(ctx context.Context, userID int64) (string, error) {
	var role string
	err := s.db.QueryRowContext(ctx, "SELECT role FROM users WHERE id = ?", userID).Scan(&role)
	if err != nil {
		return "", notFoundOr(err, "get user role")
	}
	return role, nil
}

// ProfileUpdate holds the profile fields a user may change. Nil fields are
// left alone.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

// UpdateProfile applies upd to the user's row and returns the fresh user.
func (s *MySQL) UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) (*models.User, error) {
	sets := []string{"updated_at = NOW()"}
	var args []any
	if upd.FirstName != nil {
		sets = append(sets, "first_name = ?")
		args = append(args, *upd.FirstName)
	}
	if upd.LastName != nil {
		sets = append(sets, "last_name = ?")
		args = append(args, *upd.LastName)
	}
	if upd.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, *upd.Phone)
	}
	args = append(args, userID)

	result, err := s.db.ExecContext(ctx, "UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("update profile of user %d: %w", userID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return s.GetUserByID(ctx, userID)
}

// UpdatePasswordHash stores a new bcrypt hash for the user.
func (s *MySQL) UpdatePasswordHash(ctx context.Context, userID int64, hash string) error {
	result, err := s.db.ExecContext(ctx, "UPDATE users SET password_hash = ?, updated_at = NOW() WHERE id = ?", hash, userID)
	if err != nil {
		return fmt.Errorf("update password of user %d: %w", userID, err)
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

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Role  string
	Page  int
	Limit int
}

// ListUsers returns one page of accounts, newest first, and the total count.
func (s *MySQL) ListUsers(ctx context.Context, f UserFilter) ([]models.User, int, error) {
	where := ""
	var args []any
	if f.Role != "" {
		where = " WHERE role = ?"
		args = append(args, f.Role)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := "SELECT " + userColumns + " FROM users" + where + " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}
