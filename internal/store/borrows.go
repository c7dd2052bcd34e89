package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zkralj/knjiznica/internal/model"
)

// CheckoutCart converts a cart into a borrow request in a single transaction:
// every line's book gets a conditional decrement of available_quantity and an
// increment of borrow_count, the request header and items are inserted, and
// the cart is cleared. Any line exceeding availability aborts the whole
// checkout with ErrInsufficientStock; no partial decrement can commit.
func CheckoutCart(ctx context.Context, db *sql.DB, cartID, userID int64, startDate, endDate string) (*model.BorrowRequest, error) {
	start, err := time.Parse(model.DateFormat, startDate)
	if err != nil {
		return nil, fmt.Errorf("start_date: %w", ErrInvalid)
	}
	end, err := time.Parse(model.DateFormat, endDate)
	if err != nil {
		return nil, fmt.Errorf("end_date: %w", ErrInvalid)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end_date before start_date: %w", ErrInvalid)
	}

	requestDate := time.Now().Format(model.DateFormat)
	if startDate < requestDate {
		return nil, fmt.Errorf("start_date before today: %w", ErrInvalid)
	}

	cart, err := GetCart(ctx, db, cartID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, fmt.Errorf("cart: %w", ErrNotFound)
	}
	if len(cart.Items) == 0 {
		return nil, fmt.Errorf("cart is empty: %w", ErrInvalid)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO borrow_requests (user_id, request_date, start_date, end_date)
		 VALUES (?, ?, ?, ?)`,
		userID, requestDate, startDate, endDate,
	)
	if err != nil {
		return nil, fmt.Errorf("creating borrow request: %w", err)
	}

	requestID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting borrow request id: %w", err)
	}

	for _, item := range cart.Items {
		// Conditional decrement: zero affected rows means the book no longer
		// has enough copies, which fails the entire checkout.
		res, err := tx.ExecContext(ctx,
			`UPDATE books
			 SET available_quantity = available_quantity - ?,
			     borrow_count = borrow_count + ?,
			     updated_at = CURRENT_TIMESTAMP
			 WHERE id = ? AND deleted_at IS NULL AND available_quantity >= ?`,
			item.Quantity, item.Quantity, item.BookID, item.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("reserving book %d: %w", item.BookID, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("checking reservation of book %d: %w", item.BookID, err)
		}
		if n == 0 {
			return nil, fmt.Errorf("book %d: %w", item.BookID, ErrInsufficientStock)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO borrow_request_items (borrow_request_id, book_id, quantity)
			 VALUES (?, ?, ?)`,
			requestID, item.BookID, item.Quantity,
		); err != nil {
			return nil, fmt.Errorf("creating borrow request item: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = ?`, cartID,
	); err != nil {
		return nil, fmt.Errorf("clearing cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing checkout: %w", err)
	}

	return GetBorrowRequest(ctx, db, requestID)
}

// GetBorrowRequest returns a borrow request by ID with its items.
func GetBorrowRequest(ctx context.Context, db *sql.DB, id int64) (*model.BorrowRequest, error) {
	br := &model.BorrowRequest{}
	err := db.QueryRowContext(ctx,
		`SELECT id, user_id, request_date, start_date, end_date, created_at
		 FROM borrow_requests WHERE id = ?`, id,
	).Scan(&br.ID, &br.UserID, &br.RequestDate, &br.StartDate, &br.EndDate, &br.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting borrow request: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT bri.id, bri.borrow_request_id, bri.book_id, bri.quantity, b.title
		 FROM borrow_request_items bri
		 JOIN books b ON b.id = bri.book_id
		 WHERE bri.borrow_request_id = ?
		 ORDER BY bri.id`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("getting borrow request items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.BorrowRequestItem
		if err := rows.Scan(&item.ID, &item.BorrowRequestID, &item.BookID, &item.Quantity, &item.Title); err != nil {
			return nil, fmt.Errorf("scanning borrow request item: %w", err)
		}
		br.Items = append(br.Items, item)
	}
	return br, rows.Err()
}

// ListUserBorrowRequests returns a user's borrow requests, newest first,
// with their items.
func ListUserBorrowRequests(ctx context.Context, db *sql.DB, userID int64) ([]model.BorrowRequest, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, request_date, start_date, end_date, created_at
		 FROM borrow_requests WHERE user_id = ?
		 ORDER BY request_date DESC, id DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing borrow requests: %w", err)
	}
	defer rows.Close()

	var requests []model.BorrowRequest
	for rows.Next() {
		var br model.BorrowRequest
		if err := rows.Scan(&br.ID, &br.UserID, &br.RequestDate, &br.StartDate, &br.EndDate, &br.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning borrow request: %w", err)
		}
		requests = append(requests, br)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range requests {
		full, err := GetBorrowRequest(ctx, db, requests[i].ID)
		if err != nil {
			return nil, err
		}
		requests[i].Items = full.Items
	}
	return requests, nil
}
