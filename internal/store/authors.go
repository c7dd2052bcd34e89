package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zkralj/knjiznica/internal/model"
)

// CreateAuthor creates a new author.
func CreateAuthor(ctx context.Context, db *sql.DB, name, bio, nationality, birthDate, deathDate string) (*model.Author, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO authors (name, bio, nationality, birth_date, death_date)
		 VALUES (?, ?, ?, ?, ?)`,
		name, nullable(bio), nullable(nationality), nullable(birthDate), nullable(deathDate),
	)
	if err != nil {
		return nil, fmt.Errorf("creating author: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting author id: %w", err)
	}

	return GetAuthor(ctx, db, id)
}

// GetAuthor returns an author by ID.
func GetAuthor(ctx context.Context, db *sql.DB, id int64) (*model.Author, error) {
	a := &model.Author{}
	var bio, nationality, birthDate, deathDate sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, bio, nationality, birth_date, death_date, created_at, deleted_at
		 FROM authors WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &bio, &nationality, &birthDate, &deathDate, &a.CreatedAt, &a.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting author: %w", err)
	}
	a.Bio = bio.String
	a.Nationality = nationality.String
	a.BirthDate = birthDate.String
	a.DeathDate = deathDate.String
	return a, nil
}

// ListAuthors returns all non-deleted authors with their live book counts.
// living filters to authors with no death date ("alive"), with one
// ("deceased"), or applies no filter when empty.
func ListAuthors(ctx context.Context, db *sql.DB, living string) ([]model.Author, error) {
	query := `SELECT a.id, a.name, a.bio, a.nationality, a.birth_date, a.death_date,
	                 a.created_at, a.deleted_at,
	                 COUNT(b.id) AS book_count
	          FROM authors a
	          LEFT JOIN books b ON b.author_id = a.id AND b.deleted_at IS NULL
	          WHERE a.deleted_at IS NULL`

	switch living {
	case "alive":
		query += ` AND a.death_date IS NULL`
	case "deceased":
		query += ` AND a.death_date IS NOT NULL`
	}

	query += ` GROUP BY a.id ORDER BY a.name`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing authors: %w", err)
	}
	defer rows.Close()

	var authors []model.Author
	for rows.Next() {
		var a model.Author
		var bio, nationality, birthDate, deathDate sql.NullString
		if err := rows.Scan(&a.ID, &a.Name, &bio, &nationality, &birthDate, &deathDate,
			&a.CreatedAt, &a.DeletedAt, &a.BookCount); err != nil {
			return nil, fmt.Errorf("scanning author: %w", err)
		}
		a.Bio = bio.String
		a.Nationality = nationality.String
		a.BirthDate = birthDate.String
		a.DeathDate = deathDate.String
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// UpdateAuthor updates an author's fields.
func UpdateAuthor(ctx context.Context, db *sql.DB, id int64, name, bio, nationality, birthDate, deathDate string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE authors SET name = ?, bio = ?, nationality = ?, birth_date = ?, death_date = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		name, nullable(bio), nullable(nationality), nullable(birthDate), nullable(deathDate), id,
	)
	if err != nil {
		return fmt.Errorf("updating author: %w", err)
	}
	return nil
}

// DeleteAuthor soft-deletes an author. Returns ErrConflict if any live book
// still references the author.
func DeleteAuthor(ctx context.Context, db *sql.DB, id int64) error {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM books WHERE author_id = ? AND deleted_at IS NULL`, id,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking author books: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("author has %d books: %w", count, ErrConflict)
	}

	_, err = db.ExecContext(ctx,
		`UPDATE authors SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting author: %w", err)
	}
	return nil
}
