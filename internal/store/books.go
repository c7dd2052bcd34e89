package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/zkralj/knjiznica/internal/model"
)

const bookColumns = `b.id, b.title, b.description, b.cover_mime,
	b.total_quantity, b.available_quantity, b.borrow_count, b.publication_year,
	b.author_id, b.publisher_id, b.created_at, b.updated_at, b.deleted_at,
	a.name AS author_name, p.name AS publisher_name`

const bookJoins = ` FROM books b
	JOIN authors a ON a.id = b.author_id
	JOIN publishers p ON p.id = b.publisher_id`

// CreateBook creates a new book. The referenced author and publisher must
// exist and be live, otherwise ErrNotFound is returned.
func CreateBook(ctx context.Context, db *sql.DB, title, description string, totalQuantity, availableQuantity int, publicationYear *int, authorID, publisherID int64) (*model.Book, error) {
	if author, err := GetAuthor(ctx, db, authorID); err != nil {
		return nil, err
	} else if author == nil || author.DeletedAt != nil {
		return nil, fmt.Errorf("author %d: %w", authorID, ErrNotFound)
	}
	if publisher, err := GetPublisher(ctx, db, publisherID); err != nil {
		return nil, err
	} else if publisher == nil || publisher.DeletedAt != nil {
		return nil, fmt.Errorf("publisher %d: %w", publisherID, ErrNotFound)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO books (title, description, total_quantity, available_quantity,
		                    publication_year, author_id, publisher_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		title, nullable(description), totalQuantity, availableQuantity,
		publicationYear, authorID, publisherID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating book: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting book id: %w", err)
	}

	return GetBook(ctx, db, id)
}

// GetBook returns a book by ID with author/publisher names and its average
// rating populated.
func GetBook(ctx context.Context, db *sql.DB, id int64) (*model.Book, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+bookColumns+bookJoins+` WHERE b.id = ?`, id,
	)
	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rating, err := AverageRating(ctx, db, id)
	if err != nil {
		return nil, err
	}
	b.AverageRating = rating
	return b, nil
}

// Book list orderings.
const (
	OrderRecent      = "recent"      // newest first, by creation time
	OrderRecommended = "recommended" // newest publication year first
	OrderTitle       = "title"
)

// ListBooks returns non-deleted books, optionally filtered by author or
// category, in the requested order.
func ListBooks(ctx context.Context, db *sql.DB, authorID, categoryID int64, order string) ([]model.Book, error) {
	query := `SELECT ` + bookColumns + bookJoins + ` WHERE b.deleted_at IS NULL`
	var args []any

	if authorID > 0 {
		query += ` AND b.author_id = ?`
		args = append(args, authorID)
	}
	if categoryID > 0 {
		query += ` AND b.id IN (SELECT book_id FROM book_categories WHERE category_id = ?)`
		args = append(args, categoryID)
	}

	switch order {
	case OrderRecent:
		query += ` ORDER BY b.created_at DESC, b.id DESC`
	case OrderRecommended:
		query += ` ORDER BY b.publication_year DESC, b.id`
	default:
		query += ` ORDER BY b.title, b.id`
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	defer rows.Close()

	return collectBooks(rows)
}

// SearchBooks searches non-deleted books by the given search type. An empty
// query returns no results; callers that want the full catalog instead use
// ListBooks. searchType must already be normalized via model.ParseSearchType.
func SearchBooks(ctx context.Context, db *sql.DB, query, searchType string) ([]model.Book, error) {
	if query == "" {
		return nil, nil
	}

	q := `SELECT DISTINCT ` + bookColumns + bookJoins + `
	      LEFT JOIN book_categories bc ON bc.book_id = b.id
	      LEFT JOIN categories c ON c.id = bc.category_id
	      WHERE b.deleted_at IS NULL AND `

	pattern := "%" + query + "%"
	var args []any

	switch searchType {
	case model.SearchTypeTitle:
		q += `b.title LIKE ?`
		args = append(args, pattern)
	case model.SearchTypeAuthor:
		q += `a.name LIKE ?`
		args = append(args, pattern)
	case model.SearchTypePublisher:
		q += `p.name LIKE ?`
		args = append(args, pattern)
	case model.SearchTypeCategory:
		q += `c.name LIKE ?`
		args = append(args, pattern)
	default: // model.SearchTypeAll
		q += `(b.title LIKE ? OR a.name LIKE ? OR p.name LIKE ? OR c.name LIKE ?)`
		args = append(args, pattern, pattern, pattern, pattern)
	}

	q += ` ORDER BY b.title, b.id`

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("searching books: %w", err)
	}
	defer rows.Close()

	return collectBooks(rows)
}

// MostBorrowed ranks books by summed reservation quantity, optionally
// restricted to requests whose request_date falls in the given calendar year
// and/or month. Ties break by ascending book id. Books never borrowed in the
// window are omitted.
func MostBorrowed(ctx context.Context, db *sql.DB, year, month, limit int) ([]model.RankedBook, error) {
	query := `SELECT ` + bookColumns + `, SUM(bri.quantity) AS window_count
	          FROM borrow_request_items bri
	          JOIN borrow_requests br ON br.id = bri.borrow_request_id
	          JOIN books b ON b.id = bri.book_id
	          JOIN authors a ON a.id = b.author_id
	          JOIN publishers p ON p.id = b.publisher_id
	          WHERE b.deleted_at IS NULL`
	var args []any

	if year > 0 {
		query += ` AND CAST(strftime('%Y', br.request_date) AS INTEGER) = ?`
		args = append(args, year)
	}
	if month > 0 {
		query += ` AND CAST(strftime('%m', br.request_date) AS INTEGER) = ?`
		args = append(args, month)
	}

	query += ` GROUP BY b.id ORDER BY window_count DESC, b.id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ranking most borrowed books: %w", err)
	}
	defer rows.Close()

	var ranked []model.RankedBook
	for rows.Next() {
		var rb model.RankedBook
		if err := scanBookInto(rows, &rb.Book, &rb.WindowBorrowCount); err != nil {
			return nil, err
		}
		ranked = append(ranked, rb)
	}
	return ranked, rows.Err()
}

// AverageRating returns the mean review score for a book, rounded half-up to
// one decimal. A book with no reviews has a rating of exactly 0.
func AverageRating(ctx context.Context, db *sql.DB, bookID int64) (float64, error) {
	var avg sql.NullFloat64
	err := db.QueryRowContext(ctx,
		`SELECT AVG(score) FROM reviews WHERE book_id = ?`, bookID,
	).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("computing average rating: %w", err)
	}
	if !avg.Valid {
		return 0, nil
	}
	return math.Floor(avg.Float64*10+0.5) / 10, nil
}

// UpdateBook updates a book's metadata and quantities.
func UpdateBook(ctx context.Context, db *sql.DB, id int64, title, description string, totalQuantity, availableQuantity int, publicationYear *int, authorID, publisherID int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE books SET title = ?, description = ?, total_quantity = ?,
		        available_quantity = ?, publication_year = ?, author_id = ?,
		        publisher_id = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		title, nullable(description), totalQuantity, availableQuantity,
		publicationYear, authorID, publisherID, id,
	)
	if err != nil {
		return fmt.Errorf("updating book: %w", err)
	}
	return nil
}

// DeleteBook soft-deletes a book.
func DeleteBook(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE books SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}
	return nil
}

// SetBookCover stores a book's cover image.
func SetBookCover(ctx context.Context, db *sql.DB, id int64, cover []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE books SET cover = ?, cover_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		cover, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting book cover: %w", err)
	}
	return nil
}

// GetBookCover returns a book's cover image data and MIME type.
func GetBookCover(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var cover []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT cover, cover_mime FROM books WHERE id = ?`, id,
	).Scan(&cover, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting book cover: %w", err)
	}
	return cover, mime.String, nil
}

func scanBook(s rowScanner) (*model.Book, error) {
	b := &model.Book{}
	if err := scanBookInto(s, b); err != nil {
		return nil, err
	}
	return b, nil
}

// scanBookInto scans the bookColumns set plus any trailing columns into b.
func scanBookInto(s rowScanner, b *model.Book, extra ...any) error {
	var description, coverMime sql.NullString
	var year sql.NullInt64
	dest := []any{&b.ID, &b.Title, &description, &coverMime,
		&b.TotalQuantity, &b.AvailableQuantity, &b.BorrowCount, &year,
		&b.AuthorID, &b.PublisherID, &b.CreatedAt, &b.UpdatedAt, &b.DeletedAt,
		&b.AuthorName, &b.PublisherName}
	dest = append(dest, extra...)

	err := s.Scan(dest...)
	if err == sql.ErrNoRows {
		return err
	}
	if err != nil {
		return fmt.Errorf("scanning book: %w", err)
	}

	b.Description = description.String
	b.CoverMime = coverMime.String
	if year.Valid {
		y := int(year.Int64)
		b.PublicationYear = &y
	}
	return nil
}

func collectBooks(rows *sql.Rows) ([]model.Book, error) {
	var books []model.Book
	for rows.Next() {
		var b model.Book
		if err := scanBookInto(rows, &b); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}
