package store

import (
	"context"
	"errors"
	"testing"

	"github.com/zkralj/knjiznica/internal/db"
	"github.com/zkralj/knjiznica/internal/model"
)

func TestAddAndRemoveFavorite(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := mustCatalog(t, database, "Liked", 1)
	user := mustUser(t, database, "fan@example.com")

	favorite, err := AddFavorite(ctx, database, user.ID, model.FavorableBook, book.ID)
	if err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	if favorite.Kind != model.FavorableBook {
		t.Errorf("expected kind %q, got %q", model.FavorableBook, favorite.Kind)
	}

	is, err := IsFavorite(ctx, database, user.ID, model.FavorableBook, book.ID)
	if err != nil {
		t.Fatalf("IsFavorite: %v", err)
	}
	if !is {
		t.Error("expected IsFavorite true")
	}

	if err := RemoveFavorite(ctx, database, user.ID, model.FavorableBook, book.ID); err != nil {
		t.Fatalf("RemoveFavorite: %v", err)
	}
	is, _ = IsFavorite(ctx, database, user.ID, model.FavorableBook, book.ID)
	if is {
		t.Error("expected IsFavorite false after removal")
	}

	if err := RemoveFavorite(ctx, database, user.ID, model.FavorableBook, book.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second removal, got %v", err)
	}
}

func TestDuplicateFavoriteRejected(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := mustCatalog(t, database, "Liked Twice", 1)
	user := mustUser(t, database, "fan@example.com")

	if _, err := AddFavorite(ctx, database, user.ID, model.FavorableBook, book.ID); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	if _, err := AddFavorite(ctx, database, user.ID, model.FavorableBook, book.ID); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestFavoriteKindsAreIndependent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a := mustAuthor(t, database, "Author")
	p := mustPublisher(t, database, "Press")
	book := mustBook(t, database, "Book", 1, a.ID, p.ID)
	user := mustUser(t, database, "fan@example.com")

	if _, err := AddFavorite(ctx, database, user.ID, model.FavorableAuthor, a.ID); err != nil {
		t.Fatalf("favoriting author: %v", err)
	}
	if _, err := AddFavorite(ctx, database, user.ID, model.FavorableBook, book.ID); err != nil {
		t.Fatalf("favoriting book: %v", err)
	}

	books, err := ListFavoriteBooks(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("ListFavoriteBooks: %v", err)
	}
	if len(books) != 1 || books[0].ID != book.ID {
		t.Errorf("expected 1 favorite book")
	}

	authors, err := ListFavoriteAuthors(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("ListFavoriteAuthors: %v", err)
	}
	if len(authors) != 1 || authors[0].ID != a.ID {
		t.Errorf("expected 1 followed author")
	}
}

func TestAddFavoriteUnknownTarget(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := mustUser(t, database, "fan@example.com")
	if _, err := AddFavorite(ctx, database, user.ID, model.FavorableBook, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := AddFavorite(ctx, database, user.ID, "magazine", 1); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestFavoriteBookStats(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a1 := mustAuthor(t, database, "First")
	a2 := mustAuthor(t, database, "Second")
	p1 := mustPublisher(t, database, "Press One")
	p2 := mustPublisher(t, database, "Press Two")

	b1 := mustBook(t, database, "Alpha", 1, a1.ID, p1.ID)
	b2 := mustBook(t, database, "Beta", 1, a1.ID, p2.ID)
	b3 := mustBook(t, database, "Gamma", 1, a2.ID, p1.ID)

	c1 := mustCategory(t, database, "Fiction")
	c2 := mustCategory(t, database, "History")
	if err := SetBookCategories(ctx, database, b1.ID, []int64{c1.ID, c2.ID}); err != nil {
		t.Fatalf("SetBookCategories: %v", err)
	}
	if err := SetBookCategories(ctx, database, b2.ID, []int64{c1.ID}); err != nil {
		t.Fatalf("SetBookCategories: %v", err)
	}

	user := mustUser(t, database, "fan@example.com")
	for _, id := range []int64{b1.ID, b2.ID, b3.ID} {
		if _, err := AddFavorite(ctx, database, user.ID, model.FavorableBook, id); err != nil {
			t.Fatalf("AddFavorite: %v", err)
		}
	}

	stats, err := FavoriteBookStats(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("FavoriteBookStats: %v", err)
	}
	if stats.TotalFavorites != 3 {
		t.Errorf("expected 3 favorites, got %d", stats.TotalFavorites)
	}
	if stats.UniqueAuthors != 2 {
		t.Errorf("expected 2 unique authors, got %d", stats.UniqueAuthors)
	}
	if stats.UniqueCategories != 2 {
		t.Errorf("expected 2 unique categories, got %d", stats.UniqueCategories)
	}
	if stats.UniquePublishers != 2 {
		t.Errorf("expected 2 unique publishers, got %d", stats.UniquePublishers)
	}
}

func TestFollowedAuthorStats(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a1 := mustAuthor(t, database, "Two Books")
	a2 := mustAuthor(t, database, "One Book")
	p := mustPublisher(t, database, "Press")
	mustBook(t, database, "Alpha", 1, a1.ID, p.ID)
	mustBook(t, database, "Beta", 1, a1.ID, p.ID)
	mustBook(t, database, "Gamma", 1, a2.ID, p.ID)

	user := mustUser(t, database, "fan@example.com")
	for _, id := range []int64{a1.ID, a2.ID} {
		if _, err := AddFavorite(ctx, database, user.ID, model.FavorableAuthor, id); err != nil {
			t.Fatalf("AddFavorite: %v", err)
		}
	}

	stats, err := FollowedAuthorStats(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("FollowedAuthorStats: %v", err)
	}
	if stats.TotalBooks != 3 {
		t.Errorf("expected 3 total books, got %d", stats.TotalBooks)
	}
	// 3 books over 2 authors, rounded half up to one decimal.
	if stats.AvgBooks != 1.5 {
		t.Errorf("expected 1.5 average, got %v", stats.AvgBooks)
	}
}
