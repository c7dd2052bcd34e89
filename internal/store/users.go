package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/zkralj/knjiznica/internal/model"
)

// CreateUser creates a new user. Email is stored lowercased; a duplicate
// active email returns ErrDuplicate.
func CreateUser(ctx context.Context, db *sql.DB, name, email, passwordHash, role, gender, dateOfBirth string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	result, err := db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, role, gender, date_of_birth)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		name, email, passwordHash, role, nullable(gender), nullable(dateOfBirth),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("creating user: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// CreateOAuthUser creates a user carrying a third-party identity.
func CreateOAuthUser(ctx context.Context, db *sql.DB, name, email, passwordHash, gender, dateOfBirth, provider, providerUID string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	result, err := db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, role, gender, date_of_birth, provider, provider_uid)
		 VALUES (?, ?, ?, 'member', ?, ?, ?, ?)`,
		name, email, passwordHash, nullable(gender), nullable(dateOfBirth), provider, providerUID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("creating user: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	return scanUserRow(db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, gender, date_of_birth,
		        provider, provider_uid, created_at, deleted_at
		 FROM users WHERE id = ?`, id,
	))
}

// GetUserByEmail returns a user by email, case-insensitively.
// Soft-deleted users are excluded.
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*model.User, error) {
	return scanUserRow(db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, gender, date_of_birth,
		        provider, provider_uid, created_at, deleted_at
		 FROM users WHERE lower(email) = lower(?) AND deleted_at IS NULL`, email,
	))
}

// ListUsers returns all non-deleted users.
func ListUsers(ctx context.Context, db *sql.DB) ([]model.User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, email, password_hash, role, gender, date_of_birth,
		        provider, provider_uid, created_at, deleted_at
		 FROM users WHERE deleted_at IS NULL ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateUserProfile updates a user's editable profile fields.
func UpdateUserProfile(ctx context.Context, db *sql.DB, id int64, name, gender, dateOfBirth string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET name = ?, gender = ?, date_of_birth = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		name, nullable(gender), nullable(dateOfBirth), id,
	)
	if err != nil {
		return fmt.Errorf("updating user profile: %w", err)
	}
	return nil
}

// UpdateUserRole updates a user's role.
func UpdateUserRole(ctx context.Context, db *sql.DB, id int64, role string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET role = ? WHERE id = ? AND deleted_at IS NULL`,
		role, id,
	)
	if err != nil {
		return fmt.Errorf("updating user role: %w", err)
	}
	return nil
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id int64, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// DeleteUser soft-deletes a user.
func DeleteUser(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserRow(row *sql.Row) (*model.User, error) {
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func scanUser(s rowScanner) (*model.User, error) {
	u := &model.User{}
	var gender, dateOfBirth, provider, providerUID sql.NullString
	err := s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&gender, &dateOfBirth, &provider, &providerUID, &u.CreatedAt, &u.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	u.Gender = gender.String
	u.DateOfBirth = dateOfBirth.String
	u.Provider = provider.String
	u.ProviderUID = providerUID.String
	return u, nil
}

// nullable maps an empty string to NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// isUniqueViolation reports whether err is a SQLite unique constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
