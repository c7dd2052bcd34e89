package model

import "time"

// Favorite links a user to a favorable entity (a book or an author).
// The polymorphic target is a tagged kind plus id.
type Favorite struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Kind        string    `json:"kind"`
	FavorableID int64     `json:"favorable_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Favorable kinds.
const (
	FavorableAuthor = "author"
	FavorableBook   = "book"
)

// ValidFavorableKind reports whether kind names a favorable entity type.
func ValidFavorableKind(kind string) bool {
	return kind == FavorableAuthor || kind == FavorableBook
}

// FavoriteStats summarizes a user's favorite books.
type FavoriteStats struct {
	TotalFavorites   int `json:"total_favorites"`
	UniqueAuthors    int `json:"unique_authors"`
	UniqueCategories int `json:"unique_categories"`
	UniquePublishers int `json:"unique_publishers"`
}

// FollowStats summarizes a user's followed authors.
type FollowStats struct {
	TotalBooks int     `json:"total_books"`
	AvgBooks   float64 `json:"avg_books"`
}
