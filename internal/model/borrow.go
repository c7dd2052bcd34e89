package model

import "time"

// Cart is a borrow cart: intended book/quantity pairs held against an opaque
// session token before checkout. It is independent of the auth session so it
// survives sign-in and sign-out.
type Cart struct {
	ID        int64     `json:"id"`
	Token     string    `json:"token"`
	UserID    *int64    `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []CartItem `json:"items"`
}

// CartItem is one ordered cart line.
type CartItem struct {
	BookID   int64 `json:"book_id"`
	Quantity int   `json:"quantity"`
	Position int   `json:"-"`

	// Joined fields (not always populated).
	Title             string `json:"title,omitempty"`
	AvailableQuantity int    `json:"available_quantity,omitempty"`
}

// BorrowRequest is a persisted reservation header owning its line items.
type BorrowRequest struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	RequestDate string    `json:"request_date"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	CreatedAt   time.Time `json:"created_at"`

	Items []BorrowRequestItem `json:"items,omitempty"`
}

// BorrowRequestItem reserves a quantity of one book. Immutable once created.
type BorrowRequestItem struct {
	ID              int64 `json:"id"`
	BorrowRequestID int64 `json:"borrow_request_id"`
	BookID          int64 `json:"book_id"`
	Quantity        int   `json:"quantity"`

	// Joined fields (not always populated).
	Title string `json:"title,omitempty"`
}
