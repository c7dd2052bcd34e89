package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/zkralj/knjiznica/internal/model"
)

// CartIdleDays is how long an untouched cart survives before opportunistic
// cleanup removes it.
const CartIdleDays = 30

// CreateCart creates a new empty borrow cart with a fresh opaque token.
// Expired idle carts are pruned opportunistically, like revoked tokens.
func CreateCart(ctx context.Context, db *sql.DB) (*model.Cart, error) {
	_, _ = db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM carts WHERE updated_at < datetime('now', '-%d days')`, CartIdleDays),
	)

	token := uuid.NewString()
	result, err := db.ExecContext(ctx,
		`INSERT INTO carts (token) VALUES (?)`, token,
	)
	if err != nil {
		return nil, fmt.Errorf("creating cart: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting cart id: %w", err)
	}

	return GetCart(ctx, db, id)
}

// GetCart returns a cart by ID with its ordered items.
func GetCart(ctx context.Context, db *sql.DB, id int64) (*model.Cart, error) {
	c := &model.Cart{}
	err := db.QueryRowContext(ctx,
		`SELECT id, token, user_id, created_at, updated_at FROM carts WHERE id = ?`, id,
	).Scan(&c.ID, &c.Token, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting cart: %w", err)
	}

	if err := loadCartItems(ctx, db, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetCartByToken returns a cart by its opaque token with its ordered items.
func GetCartByToken(ctx context.Context, db *sql.DB, token string) (*model.Cart, error) {
	c := &model.Cart{}
	err := db.QueryRowContext(ctx,
		`SELECT id, token, user_id, created_at, updated_at FROM carts WHERE token = ?`, token,
	).Scan(&c.ID, &c.Token, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting cart by token: %w", err)
	}

	if err := loadCartItems(ctx, db, c); err != nil {
		return nil, err
	}
	return c, nil
}

// AddToCart merges quantity into the cart's line for the book, appending a
// new line if none exists. Availability is not checked here; the cart is
// exploratory and validation happens at checkout.
func AddToCart(ctx context.Context, db *sql.DB, cartID, bookID int64, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}

	book, err := GetBook(ctx, db, bookID)
	if err != nil {
		return err
	}
	if book == nil || book.DeletedAt != nil {
		return fmt.Errorf("book %d: %w", bookID, ErrNotFound)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO cart_items (cart_id, book_id, quantity, position)
		 VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM cart_items WHERE cart_id = ?))
		 ON CONFLICT (cart_id, book_id) DO UPDATE SET quantity = quantity + ?`,
		cartID, bookID, quantity, cartID, quantity,
	)
	if err != nil {
		return fmt.Errorf("adding to cart: %w", err)
	}

	if err := touchCart(ctx, tx, cartID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing cart addition: %w", err)
	}
	return nil
}

// SetCartItemQuantity replaces a cart line's quantity. Zero removes the line.
func SetCartItemQuantity(ctx context.Context, db *sql.DB, cartID, bookID int64, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("quantity cannot be negative")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var result sql.Result
	if quantity == 0 {
		result, err = tx.ExecContext(ctx,
			`DELETE FROM cart_items WHERE cart_id = ? AND book_id = ?`, cartID, bookID,
		)
	} else {
		result, err = tx.ExecContext(ctx,
			`UPDATE cart_items SET quantity = ? WHERE cart_id = ? AND book_id = ?`,
			quantity, cartID, bookID,
		)
	}
	if err != nil {
		return fmt.Errorf("updating cart item: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking cart item update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("cart item: %w", ErrNotFound)
	}

	if err := touchCart(ctx, tx, cartID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing cart update: %w", err)
	}
	return nil
}

// ClearCart removes all lines from a cart.
func ClearCart(ctx context.Context, db *sql.DB, cartID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = ?`, cartID,
	); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}

	if err := touchCart(ctx, tx, cartID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing cart clear: %w", err)
	}
	return nil
}

// BindCartToUser attaches the cart to a user on login and absorbs any older
// carts bound to that user, summing quantities line by line. The current
// token keeps working, so carts survive sign-in and sign-out.
func BindCartToUser(ctx context.Context, db *sql.DB, cartID, userID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Merge lines from the user's previous carts into this one.
	rows, err := tx.QueryContext(ctx,
		`SELECT ci.book_id, SUM(ci.quantity)
		 FROM cart_items ci
		 JOIN carts c ON c.id = ci.cart_id
		 WHERE c.user_id = ? AND c.id != ?
		 GROUP BY ci.book_id`, userID, cartID,
	)
	if err != nil {
		return fmt.Errorf("reading previous carts: %w", err)
	}

	type line struct {
		bookID   int64
		quantity int
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.bookID, &l.quantity); err != nil {
			rows.Close()
			return fmt.Errorf("scanning previous cart line: %w", err)
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading previous carts: %w", err)
	}

	for _, l := range lines {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cart_items (cart_id, book_id, quantity, position)
			 VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM cart_items WHERE cart_id = ?))
			 ON CONFLICT (cart_id, book_id) DO UPDATE SET quantity = quantity + ?`,
			cartID, l.bookID, l.quantity, cartID, l.quantity,
		); err != nil {
			return fmt.Errorf("merging cart line: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM carts WHERE user_id = ? AND id != ?`, userID, cartID,
	); err != nil {
		return fmt.Errorf("removing previous carts: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE carts SET user_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		userID, cartID,
	); err != nil {
		return fmt.Errorf("binding cart to user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing cart bind: %w", err)
	}
	return nil
}

func loadCartItems(ctx context.Context, db *sql.DB, c *model.Cart) error {
	rows, err := db.QueryContext(ctx,
		`SELECT ci.book_id, ci.quantity, ci.position, b.title, b.available_quantity
		 FROM cart_items ci
		 JOIN books b ON b.id = ci.book_id
		 WHERE ci.cart_id = ?
		 ORDER BY ci.position`, c.ID,
	)
	if err != nil {
		return fmt.Errorf("loading cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.BookID, &item.Quantity, &item.Position, &item.Title, &item.AvailableQuantity); err != nil {
			return fmt.Errorf("scanning cart item: %w", err)
		}
		c.Items = append(c.Items, item)
	}
	return rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func touchCart(ctx context.Context, ex execer, cartID int64) error {
	if _, err := ex.ExecContext(ctx,
		`UPDATE carts SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, cartID,
	); err != nil {
		return fmt.Errorf("touching cart: %w", err)
	}
	return nil
}
