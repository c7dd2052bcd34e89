package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zkralj/knjiznica/internal/model"
)

// CreateReview creates a user's review of a book. A second review by the same
// user for the same book returns ErrDuplicate; a missing book ErrNotFound.
func CreateReview(ctx context.Context, db *sql.DB, bookID, userID int64, score int, comment string) (*model.Review, error) {
	book, err := GetBook(ctx, db, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil || book.DeletedAt != nil {
		return nil, fmt.Errorf("book %d: %w", bookID, ErrNotFound)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO reviews (book_id, user_id, score, comment) VALUES (?, ?, ?, ?)`,
		bookID, userID, score, nullable(comment),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("creating review: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("creating review: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting review id: %w", err)
	}

	return GetReview(ctx, db, id)
}

// GetReview returns a review by ID.
func GetReview(ctx context.Context, db *sql.DB, id int64) (*model.Review, error) {
	rv := &model.Review{}
	var comment sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT r.id, r.book_id, r.user_id, r.score, r.comment, r.created_at, u.name
		 FROM reviews r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.id = ?`, id,
	).Scan(&rv.ID, &rv.BookID, &rv.UserID, &rv.Score, &comment, &rv.CreatedAt, &rv.UserName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting review: %w", err)
	}
	rv.Comment = comment.String
	return rv, nil
}

// ListBookReviews returns a book's reviews, newest first.
func ListBookReviews(ctx context.Context, db *sql.DB, bookID int64) ([]model.Review, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT r.id, r.book_id, r.user_id, r.score, r.comment, r.created_at, u.name
		 FROM reviews r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.book_id = ?
		 ORDER BY r.created_at DESC, r.id DESC`, bookID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		var rv model.Review
		var comment sql.NullString
		if err := rows.Scan(&rv.ID, &rv.BookID, &rv.UserID, &rv.Score, &comment, &rv.CreatedAt, &rv.UserName); err != nil {
			return nil, fmt.Errorf("scanning review: %w", err)
		}
		rv.Comment = comment.String
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

// DeleteReview deletes a user's review of a book. Returns ErrNotFound if the
// user has no review for the book.
func DeleteReview(ctx context.Context, db *sql.DB, bookID, userID int64) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM reviews WHERE book_id = ? AND user_id = ?`,
		bookID, userID,
	)
	if err != nil {
		return fmt.Errorf("deleting review: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted review: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("review: %w", ErrNotFound)
	}
	return nil
}
