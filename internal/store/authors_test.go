package store

import (
	"context"
	"errors"
	"testing"

	"github.com/zkralj/knjiznica/internal/db"
)

func TestCreateAndGetAuthor(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	author, err := CreateAuthor(ctx, database, "Ivan Cankar", "Slovene writer.", "Slovenian", "1876-05-10", "1918-12-11")
	if err != nil {
		t.Fatalf("CreateAuthor: %v", err)
	}

	got, err := GetAuthor(ctx, database, author.ID)
	if err != nil {
		t.Fatalf("GetAuthor: %v", err)
	}
	if got == nil {
		t.Fatal("expected author, got nil")
	}
	if got.Name != "Ivan Cankar" {
		t.Errorf("expected name 'Ivan Cankar', got %q", got.Name)
	}
	if got.BirthDate != "1876-05-10" || got.DeathDate != "1918-12-11" {
		t.Errorf("unexpected dates: %q, %q", got.BirthDate, got.DeathDate)
	}
}

func TestListAuthorsLivingFilter(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateAuthor(ctx, database, "Living Author", "", "", "1980-01-01", "")
	CreateAuthor(ctx, database, "Deceased Author", "", "", "1900-01-01", "1980-01-01")

	all, err := ListAuthors(ctx, database, "")
	if err != nil {
		t.Fatalf("ListAuthors: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 authors, got %d", len(all))
	}

	alive, _ := ListAuthors(ctx, database, "alive")
	if len(alive) != 1 || alive[0].Name != "Living Author" {
		t.Errorf("expected only the living author")
	}

	deceased, _ := ListAuthors(ctx, database, "deceased")
	if len(deceased) != 1 || deceased[0].Name != "Deceased Author" {
		t.Errorf("expected only the deceased author")
	}
}

func TestListAuthorsBookCount(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a := mustAuthor(t, database, "Prolific")
	mustAuthor(t, database, "Unpublished")
	p := mustPublisher(t, database, "Press")
	mustBook(t, database, "One", 1, a.ID, p.ID)
	deleted := mustBook(t, database, "Two", 1, a.ID, p.ID)
	DeleteBook(ctx, database, deleted.ID)

	authors, err := ListAuthors(ctx, database, "")
	if err != nil {
		t.Fatalf("ListAuthors: %v", err)
	}

	counts := map[string]int{}
	for _, author := range authors {
		counts[author.Name] = author.BookCount
	}
	if counts["Prolific"] != 1 {
		t.Errorf("expected 1 live book for Prolific, got %d", counts["Prolific"])
	}
	if counts["Unpublished"] != 0 {
		t.Errorf("expected 0 books for Unpublished, got %d", counts["Unpublished"])
	}
}

func TestUpdateAuthor(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	author := mustAuthor(t, database, "Before")
	if err := UpdateAuthor(ctx, database, author.ID, "After", "New bio", "British", "1950-06-01", ""); err != nil {
		t.Fatalf("UpdateAuthor: %v", err)
	}

	got, _ := GetAuthor(ctx, database, author.ID)
	if got.Name != "After" || got.Bio != "New bio" || got.Nationality != "British" {
		t.Errorf("update not applied: %+v", got)
	}
}

func TestDeleteAuthorBlockedByBooks(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	author := mustAuthor(t, database, "Referenced")
	p := mustPublisher(t, database, "Press")
	book := mustBook(t, database, "Holding On", 1, author.ID, p.ID)

	if err := DeleteAuthor(ctx, database, author.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// Author still listed.
	authors, _ := ListAuthors(ctx, database, "")
	if len(authors) != 1 {
		t.Fatalf("expected author to survive blocked delete")
	}

	// After the book is gone the delete goes through.
	DeleteBook(ctx, database, book.ID)
	if err := DeleteAuthor(ctx, database, author.ID); err != nil {
		t.Fatalf("DeleteAuthor after book removal: %v", err)
	}

	authors, _ = ListAuthors(ctx, database, "")
	if len(authors) != 0 {
		t.Errorf("expected no authors after delete, got %d", len(authors))
	}
}

func TestDeletePublisherBlockedByBooks(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a := mustAuthor(t, database, "Author")
	publisher := mustPublisher(t, database, "Referenced Press")
	book := mustBook(t, database, "Holding On", 1, a.ID, publisher.ID)

	if err := DeletePublisher(ctx, database, publisher.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	DeleteBook(ctx, database, book.ID)
	if err := DeletePublisher(ctx, database, publisher.ID); err != nil {
		t.Fatalf("DeletePublisher after book removal: %v", err)
	}
}

func TestDeleteCategoryUnlinksBooks(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := mustCatalog(t, database, "Categorized", 1)
	category := mustCategory(t, database, "Ephemeral")
	if err := SetBookCategories(ctx, database, book.ID, []int64{category.ID}); err != nil {
		t.Fatalf("SetBookCategories: %v", err)
	}

	if err := DeleteCategory(ctx, database, category.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}

	categories, _ := GetBookCategories(ctx, database, book.ID)
	if len(categories) != 0 {
		t.Errorf("expected no categories after delete, got %d", len(categories))
	}

	// The book itself is untouched.
	got, _ := GetBook(ctx, database, book.ID)
	if got == nil || got.DeletedAt != nil {
		t.Error("expected book to survive category deletion")
	}
}

func TestDuplicateCategoryName(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	mustCategory(t, database, "Poetry")
	if _, err := CreateCategory(ctx, database, "Poetry"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}
