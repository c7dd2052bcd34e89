package model

import (
	"fmt"
	"time"
)

// Review is a user's rating and comment for a book. One per (user, book).
type Review struct {
	ID        int64     `json:"id"`
	BookID    int64     `json:"book_id"`
	UserID    int64     `json:"user_id"`
	Score     int       `json:"score"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// Joined fields (not always populated).
	UserName string `json:"user_name,omitempty"`
}

// Review score bounds and comment limit.
const (
	MinReviewScore         = 1
	MaxReviewScore         = 5
	MaxReviewCommentLength = 1000
)

// ValidateReview checks score bounds and comment length.
func ValidateReview(score int, comment string) error {
	if score < MinReviewScore || score > MaxReviewScore {
		return fmt.Errorf("score must be between %d and %d", MinReviewScore, MaxReviewScore)
	}
	if len(comment) > MaxReviewCommentLength {
		return fmt.Errorf("comment too long (max %d)", MaxReviewCommentLength)
	}
	return nil
}
