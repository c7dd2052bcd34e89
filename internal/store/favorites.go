package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/zkralj/knjiznica/internal/model"
)

// AddFavorite links a user to a favorable entity. The target is resolved by
// its tagged kind; a missing target returns ErrNotFound and a repeated add
// returns ErrDuplicate.
func AddFavorite(ctx context.Context, db *sql.DB, userID int64, kind string, favorableID int64) (*model.Favorite, error) {
	if !model.ValidFavorableKind(kind) {
		return nil, fmt.Errorf("invalid favorable kind %q", kind)
	}

	exists, err := favorableExists(ctx, db, kind, favorableID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%s %d: %w", kind, favorableID, ErrNotFound)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO favorites (user_id, kind, favorable_id) VALUES (?, ?, ?)`,
		userID, kind, favorableID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("adding favorite: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("adding favorite: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting favorite id: %w", err)
	}

	f := &model.Favorite{ID: id, UserID: userID, Kind: kind, FavorableID: favorableID}
	return f, nil
}

// RemoveFavorite removes a user's favorite. Returns ErrNotFound if no
// matching favorite exists.
func RemoveFavorite(ctx context.Context, db *sql.DB, userID int64, kind string, favorableID int64) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND kind = ? AND favorable_id = ?`,
		userID, kind, favorableID,
	)
	if err != nil {
		return fmt.Errorf("removing favorite: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking removed favorite: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("favorite: %w", ErrNotFound)
	}
	return nil
}

// IsFavorite reports whether the user has favorited the entity.
func IsFavorite(ctx context.Context, db *sql.DB, userID int64, kind string, favorableID int64) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM favorites WHERE user_id = ? AND kind = ? AND favorable_id = ?`,
		userID, kind, favorableID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking favorite: %w", err)
	}
	return count > 0, nil
}

// ListFavoriteBooks returns the user's favorited books, newest favorite first.
func ListFavoriteBooks(ctx context.Context, db *sql.DB, userID int64) ([]model.Book, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+bookColumns+bookJoins+`
		 JOIN favorites f ON f.kind = 'book' AND f.favorable_id = b.id
		 WHERE f.user_id = ? AND b.deleted_at IS NULL
		 ORDER BY f.created_at DESC, f.id DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing favorite books: %w", err)
	}
	defer rows.Close()

	return collectBooks(rows)
}

// ListFavoriteAuthors returns the user's followed authors with book counts,
// newest follow first.
func ListFavoriteAuthors(ctx context.Context, db *sql.DB, userID int64) ([]model.Author, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT a.id, a.name, a.bio, a.nationality, a.birth_date, a.death_date,
		        a.created_at, a.deleted_at,
		        (SELECT COUNT(*) FROM books b
		         WHERE b.author_id = a.id AND b.deleted_at IS NULL) AS book_count
		 FROM authors a
		 JOIN favorites f ON f.kind = 'author' AND f.favorable_id = a.id
		 WHERE f.user_id = ? AND a.deleted_at IS NULL
		 ORDER BY f.created_at DESC, f.id DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing favorite authors: %w", err)
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

// FavoriteBookStats summarizes a user's favorited books.
func FavoriteBookStats(ctx context.Context, db *sql.DB, userID int64) (*model.FavoriteStats, error) {
	stats := &model.FavoriteStats{}
	// The category join multiplies rows, so every count is DISTINCT.
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT b.id),
		        COUNT(DISTINCT b.author_id),
		        COUNT(DISTINCT bc.category_id),
		        COUNT(DISTINCT b.publisher_id)
		 FROM favorites f
		 JOIN books b ON b.id = f.favorable_id AND b.deleted_at IS NULL
		 LEFT JOIN book_categories bc ON bc.book_id = b.id
		 WHERE f.user_id = ? AND f.kind = 'book'`, userID,
	).Scan(&stats.TotalFavorites, &stats.UniqueAuthors, &stats.UniqueCategories, &stats.UniquePublishers)
	if err != nil {
		return nil, fmt.Errorf("computing favorite stats: %w", err)
	}
	return stats, nil
}

// FollowedAuthorStats summarizes the book counts of the authors a user follows.
func FollowedAuthorStats(ctx context.Context, db *sql.DB, userID int64) (*model.FollowStats, error) {
	authors, err := ListFavoriteAuthors(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	stats := &model.FollowStats{}
	if len(authors) == 0 {
		return stats, nil
	}

	for _, a := range authors {
		stats.TotalBooks += a.BookCount
	}
	avg := float64(stats.TotalBooks) / float64(len(authors))
	stats.AvgBooks = math.Floor(avg*10+0.5) / 10
	return stats, nil
}

func favorableExists(ctx context.Context, db *sql.DB, kind string, id int64) (bool, error) {
	var query string
	switch kind {
	case model.FavorableAuthor:
		query = `SELECT COUNT(*) FROM authors WHERE id = ? AND deleted_at IS NULL`
	case model.FavorableBook:
		query = `SELECT COUNT(*) FROM books WHERE id = ? AND deleted_at IS NULL`
	default:
		return false, fmt.Errorf("invalid favorable kind %q", kind)
	}

	var count int
	if err := db.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return false, fmt.Errorf("resolving favorable: %w", err)
	}
	return count > 0, nil
}
