package model

import (
	"fmt"
	"time"
)

// Book represents a catalog book with quantity-based inventory.
type Book struct {
	ID                int64      `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	CoverMime         string     `json:"cover_mime,omitempty"`
	TotalQuantity     int        `json:"total_quantity"`
	AvailableQuantity int        `json:"available_quantity"`
	BorrowCount       int        `json:"borrow_count"`
	PublicationYear   *int       `json:"publication_year,omitempty"`
	AuthorID          int64      `json:"author_id"`
	PublisherID       int64      `json:"publisher_id"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	DeletedAt         *time.Time `json:"deleted_at,omitempty"`

	// Joined fields (not always populated).
	AuthorName    string  `json:"author_name,omitempty"`
	PublisherName string  `json:"publisher_name,omitempty"`
	AverageRating float64 `json:"average_rating"`
}

// RankedBook is a book annotated with its borrow total for a time window,
// distinct from the lifetime BorrowCount column.
type RankedBook struct {
	Book
	WindowBorrowCount int `json:"window_borrow_count"`
}

// Field limits.
const (
	MaxBookTitleLength       = 255
	MaxBookDescriptionLength = 5000
	MinPublicationYear       = 1000
)

// ValidateBook checks book fields against domain rules.
func ValidateBook(title, description string, totalQuantity, availableQuantity int, publicationYear *int) error {
	if title == "" {
		return fmt.Errorf("title required")
	}
	if len(title) > MaxBookTitleLength {
		return fmt.Errorf("title too long (max %d)", MaxBookTitleLength)
	}
	if len(description) > MaxBookDescriptionLength {
		return fmt.Errorf("description too long (max %d)", MaxBookDescriptionLength)
	}
	if totalQuantity < 0 {
		return fmt.Errorf("total_quantity cannot be negative")
	}
	if availableQuantity < 0 || availableQuantity > totalQuantity {
		return fmt.Errorf("available_quantity must be between 0 and total_quantity")
	}
	if publicationYear != nil && *publicationYear <= MinPublicationYear {
		return fmt.Errorf("publication_year must be greater than %d", MinPublicationYear)
	}
	return nil
}

// Search types for the book search endpoint.
const (
	SearchTypeTitle     = "title"
	SearchTypeAuthor    = "author"
	SearchTypePublisher = "publisher"
	SearchTypeCategory  = "category"
	SearchTypeAll       = "all"
)

// ParseSearchType maps an input string to a search type. Unknown or empty
// values coerce to SearchTypeAll, so every input yields a usable search type.
func ParseSearchType(s string) string {
	switch s {
	case SearchTypeTitle, SearchTypeAuthor, SearchTypePublisher, SearchTypeCategory:
		return s
	default:
		return SearchTypeAll
	}
}
