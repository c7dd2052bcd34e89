package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zkralj/knjiznica/internal/model"
)

// CreatePublisher creates a new publisher.
func CreatePublisher(ctx context.Context, db *sql.DB, name string) (*model.Publisher, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO publishers (name) VALUES (?)`, name,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("creating publisher: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("creating publisher: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting publisher id: %w", err)
	}

	return GetPublisher(ctx, db, id)
}

// GetPublisher returns a publisher by ID.
func GetPublisher(ctx context.Context, db *sql.DB, id int64) (*model.Publisher, error) {
	p := &model.Publisher{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, created_at, deleted_at FROM publishers WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.CreatedAt, &p.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting publisher: %w", err)
	}
	return p, nil
}

// ListPublishers returns all non-deleted publishers.
func ListPublishers(ctx context.Context, db *sql.DB) ([]model.Publisher, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, created_at, deleted_at
		 FROM publishers WHERE deleted_at IS NULL ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing publishers: %w", err)
	}
	defer rows.Close()

	var publishers []model.Publisher
	for rows.Next() {
		var p model.Publisher
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning publisher: %w", err)
		}
		publishers = append(publishers, p)
	}
	return publishers, rows.Err()
}

// UpdatePublisher updates a publisher's name.
func UpdatePublisher(ctx context.Context, db *sql.DB, id int64, name string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE publishers SET name = ? WHERE id = ? AND deleted_at IS NULL`,
		name, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("updating publisher: %w", ErrDuplicate)
		}
		return fmt.Errorf("updating publisher: %w", err)
	}
	return nil
}

// DeletePublisher soft-deletes a publisher. Returns ErrConflict if any live
// book still references it.
func DeletePublisher(ctx context.Context, db *sql.DB, id int64) error {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM books WHERE publisher_id = ? AND deleted_at IS NULL`, id,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking publisher books: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("publisher has %d books: %w", count, ErrConflict)
	}

	_, err = db.ExecContext(ctx,
		`UPDATE publishers SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting publisher: %w", err)
	}
	return nil
}
