package store

import "errors"

// Sentinel errors for domain failures the API maps to specific statuses.
// Not-found lookups follow the (nil, nil) convention of the Get functions;
// these cover the cases where an operation must refuse to proceed.
var (
	// ErrDuplicate signals a uniqueness violation (email, favorite, review).
	ErrDuplicate = errors.New("already exists")

	// ErrConflict signals a referential conflict, e.g. deleting an author
	// that still has books.
	ErrConflict = errors.New("conflicting records exist")

	// ErrInsufficientStock signals a checkout line exceeding a book's
	// available quantity.
	ErrInsufficientStock = errors.New("insufficient available quantity")

	// ErrNotFound signals a referenced entity that does not exist, used
	// where (nil, nil) cannot carry the information (multi-step operations).
	ErrNotFound = errors.New("not found")

	// ErrInvalid signals input the store refuses, e.g. malformed or
	// out-of-order checkout dates.
	ErrInvalid = errors.New("invalid input")
)
