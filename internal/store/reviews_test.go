package store

import (
	"context"
	"errors"
	"testing"

	"github.com/zkralj/knjiznica/internal/db"
)

func TestCreateAndListReviews(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := mustCatalog(t, database, "Reviewed", 1)
	u1 := mustUser(t, database, "one@example.com")
	u2 := mustUser(t, database, "two@example.com")

	review, err := CreateReview(ctx, database, book.ID, u1.ID, 5, "Excellent.")
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}
	if review.Score != 5 || review.Comment != "Excellent." {
		t.Errorf("unexpected review: %+v", review)
	}

	if _, err := CreateReview(ctx, database, book.ID, u2.ID, 3, ""); err != nil {
		t.Fatalf("second user's review: %v", err)
	}

	reviews, err := ListBookReviews(ctx, database, book.ID)
	if err != nil {
		t.Fatalf("ListBookReviews: %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(reviews))
	}
	for _, r := range reviews {
		if r.UserName == "" {
			t.Error("expected joined user name")
		}
	}
}

func TestOneReviewPerUserPerBook(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := mustCatalog(t, database, "Once Only", 1)
	user := mustUser(t, database, "opinionated@example.com")

	if _, err := CreateReview(ctx, database, book.ID, user.ID, 4, ""); err != nil {
		t.Fatalf("CreateReview: %v", err)
	}
	if _, err := CreateReview(ctx, database, book.ID, user.ID, 2, "Changed my mind."); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestCreateReviewUnknownBook(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := mustUser(t, database, "reader@example.com")
	if _, err := CreateReview(ctx, database, 999, user.ID, 4, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteReview(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := mustCatalog(t, database, "Retracted", 1)
	user := mustUser(t, database, "reader@example.com")

	if _, err := CreateReview(ctx, database, book.ID, user.ID, 1, "Awful."); err != nil {
		t.Fatalf("CreateReview: %v", err)
	}

	if err := DeleteReview(ctx, database, book.ID, user.ID); err != nil {
		t.Fatalf("DeleteReview: %v", err)
	}

	reviews, _ := ListBookReviews(ctx, database, book.ID)
	if len(reviews) != 0 {
		t.Errorf("expected no reviews after delete, got %d", len(reviews))
	}

	// User may review again after retracting.
	if _, err := CreateReview(ctx, database, book.ID, user.ID, 4, "Better on reread."); err != nil {
		t.Fatalf("re-reviewing after delete: %v", err)
	}

	if err := DeleteReview(ctx, database, book.ID, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for someone else's review, got %v", err)
	}
}
