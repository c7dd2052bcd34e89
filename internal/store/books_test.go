package store

import (
	"context"
	"testing"

	"github.com/zkralj/knjiznica/internal/db"
	"github.com/zkralj/knjiznica/internal/model"
)

func TestCreateAndGetBook(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a := mustAuthor(t, database, "Ivan Cankar")
	p := mustPublisher(t, database, "Mladinska knjiga")

	year := 1907
	book, err := CreateBook(ctx, database, "Hlapec Jernej", "A farmhand seeks justice.", 4, 4, &year, a.ID, p.ID)
	if err != nil {
		t.Fatalf("CreateBook: %v", err)
	}

	got, err := GetBook(ctx, database, book.ID)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got == nil {
		t.Fatal("expected book, got nil")
	}
	if got.Title != "Hlapec Jernej" {
		t.Errorf("expected title 'Hlapec Jernej', got %q", got.Title)
	}
	if got.AuthorName != "Ivan Cankar" {
		t.Errorf("expected joined author name, got %q", got.AuthorName)
	}
	if got.PublisherName != "Mladinska knjiga" {
		t.Errorf("expected joined publisher name, got %q", got.PublisherName)
	}
	if got.AvailableQuantity != 4 {
		t.Errorf("expected 4 available, got %d", got.AvailableQuantity)
	}
	if got.PublicationYear == nil || *got.PublicationYear != 1907 {
		t.Errorf("expected publication year 1907, got %v", got.PublicationYear)
	}
}

func TestCreateBookUnknownAuthor(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	p := mustPublisher(t, database, "Somewhere")
	_, err := CreateBook(ctx, database, "Orphan", "", 1, 1, nil, 999, p.ID)
	if err == nil {
		t.Fatal("expected error for unknown author")
	}
}

func TestListBooksFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a1 := mustAuthor(t, database, "First Author")
	a2 := mustAuthor(t, database, "Second Author")
	p := mustPublisher(t, database, "Press")
	c := mustCategory(t, database, "Poetry")

	b1 := mustBook(t, database, "Alpha", 1, a1.ID, p.ID)
	mustBook(t, database, "Beta", 1, a2.ID, p.ID)

	if err := SetBookCategories(ctx, database, b1.ID, []int64{c.ID}); err != nil {
		t.Fatalf("SetBookCategories: %v", err)
	}

	all, err := ListBooks(ctx, database, 0, 0, "")
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 books, got %d", len(all))
	}

	byAuthor, _ := ListBooks(ctx, database, a1.ID, 0, "")
	if len(byAuthor) != 1 || byAuthor[0].ID != b1.ID {
		t.Errorf("expected only Alpha for author filter, got %d books", len(byAuthor))
	}

	byCategory, _ := ListBooks(ctx, database, 0, c.ID, "")
	if len(byCategory) != 1 || byCategory[0].ID != b1.ID {
		t.Errorf("expected only Alpha for category filter, got %d books", len(byCategory))
	}

	byTitle, _ := ListBooks(ctx, database, 0, 0, OrderTitle)
	if len(byTitle) != 2 || byTitle[0].Title != "Alpha" {
		t.Errorf("expected title order starting with Alpha")
	}
}

func TestSearchBooks(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a := mustAuthor(t, database, "Ursula K. Le Guin")
	p := mustPublisher(t, database, "Penguin Books")
	c := mustCategory(t, database, "Science fiction")

	b1 := mustBook(t, database, "The Dispossessed", 1, a.ID, p.ID)
	mustBook(t, database, "Unrelated", 1, a.ID, p.ID)

	if err := SetBookCategories(ctx, database, b1.ID, []int64{c.ID}); err != nil {
		t.Fatalf("SetBookCategories: %v", err)
	}

	tests := []struct {
		name       string
		query      string
		searchType string
		want       int
	}{
		{"by title", "dispossessed", model.SearchTypeTitle, 1},
		{"by author", "le guin", model.SearchTypeAuthor, 2},
		{"by publisher", "penguin", model.SearchTypePublisher, 2},
		{"by category", "science", model.SearchTypeCategory, 1},
		{"all matches title", "dispossessed", model.SearchTypeAll, 1},
		{"all matches author", "le guin", model.SearchTypeAll, 2},
		{"no match", "tolkien", model.SearchTypeAll, 0},
		{"empty query matches nothing at store level", "", model.SearchTypeAll, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books, err := SearchBooks(ctx, database, tt.query, tt.searchType)
			if err != nil {
				t.Fatalf("SearchBooks: %v", err)
			}
			if len(books) != tt.want {
				t.Errorf("expected %d books, got %d", tt.want, len(books))
			}
		})
	}
}

func TestParseSearchTypeCoercesUnknown(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"title", model.SearchTypeTitle},
		{"author", model.SearchTypeAuthor},
		{"publisher", model.SearchTypePublisher},
		{"category", model.SearchTypeCategory},
		{"all", model.SearchTypeAll},
		{"", model.SearchTypeAll},
		{"isbn", model.SearchTypeAll},
		{"TITLE", model.SearchTypeAll},
	}
	for _, tt := range tests {
		if got := model.ParseSearchType(tt.in); got != tt.want {
			t.Errorf("ParseSearchType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAverageRating(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := mustCatalog(t, database, "Rated", 1)

	// No reviews yet.
	avg, err := AverageRating(ctx, database, book.ID)
	if err != nil {
		t.Fatalf("AverageRating: %v", err)
	}
	if avg != 0 {
		t.Errorf("expected 0 without reviews, got %v", avg)
	}

	u1 := mustUser(t, database, "one@example.com")
	u2 := mustUser(t, database, "two@example.com")
	u3 := mustUser(t, database, "three@example.com")

	for _, r := range []struct {
		userID int64
		score  int
	}{{u1.ID, 5}, {u2.ID, 4}, {u3.ID, 2}} {
		if _, err := CreateReview(ctx, database, book.ID, r.userID, r.score, ""); err != nil {
			t.Fatalf("CreateReview: %v", err)
		}
	}

	// (5+4+2)/3 = 3.666..., rounded half up to one decimal.
	avg, err = AverageRating(ctx, database, book.ID)
	if err != nil {
		t.Fatalf("AverageRating: %v", err)
	}
	if avg != 3.7 {
		t.Errorf("expected 3.7, got %v", avg)
	}
}

func TestMostBorrowed(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a := mustAuthor(t, database, "Author")
	p := mustPublisher(t, database, "Press")
	b1 := mustBook(t, database, "Popular", 10, a.ID, p.ID)
	b2 := mustBook(t, database, "Modest", 10, a.ID, p.ID)
	mustBook(t, database, "Never Borrowed", 10, a.ID, p.ID)

	user := mustUser(t, database, "reader@example.com")

	// Requests are inserted directly so the window filters can be exercised
	// with past dates.
	insert := func(date string, bookID int64, quantity int) {
		t.Helper()
		res, err := database.ExecContext(ctx,
			`INSERT INTO borrow_requests (user_id, request_date, start_date, end_date)
			 VALUES (?, ?, ?, ?)`, user.ID, date, date, date)
		if err != nil {
			t.Fatalf("inserting borrow request: %v", err)
		}
		id, _ := res.LastInsertId()
		if _, err := database.ExecContext(ctx,
			`INSERT INTO borrow_request_items (borrow_request_id, book_id, quantity)
			 VALUES (?, ?, ?)`, id, bookID, quantity); err != nil {
			t.Fatalf("inserting borrow request item: %v", err)
		}
	}

	insert("2025-03-10", b1.ID, 2)
	insert("2025-03-20", b1.ID, 1)
	insert("2025-03-15", b2.ID, 2)
	insert("2024-11-01", b2.ID, 5)

	// All time: Modest leads 7 to 3.
	ranked, err := MostBorrowed(ctx, database, 0, 0, 10)
	if err != nil {
		t.Fatalf("MostBorrowed: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked books, got %d", len(ranked))
	}
	if ranked[0].ID != b2.ID || ranked[0].WindowBorrowCount != 7 {
		t.Errorf("expected Modest with 7 first, got book %d count %d", ranked[0].ID, ranked[0].WindowBorrowCount)
	}

	// Year 2025: Popular leads 3 to 2.
	ranked, err = MostBorrowed(ctx, database, 2025, 0, 10)
	if err != nil {
		t.Fatalf("MostBorrowed(2025): %v", err)
	}
	if len(ranked) != 2 || ranked[0].ID != b1.ID || ranked[0].WindowBorrowCount != 3 {
		t.Fatalf("expected Popular with 3 first in 2025")
	}

	// March 2025 only.
	ranked, err = MostBorrowed(ctx, database, 2025, 3, 10)
	if err != nil {
		t.Fatalf("MostBorrowed(2025, 3): %v", err)
	}
	if len(ranked) != 2 || ranked[0].WindowBorrowCount != 3 || ranked[1].WindowBorrowCount != 2 {
		t.Fatalf("unexpected March 2025 ranking")
	}

	// November 2024: only Modest.
	ranked, err = MostBorrowed(ctx, database, 2024, 11, 10)
	if err != nil {
		t.Fatalf("MostBorrowed(2024, 11): %v", err)
	}
	if len(ranked) != 1 || ranked[0].ID != b2.ID || ranked[0].WindowBorrowCount != 5 {
		t.Fatalf("expected only Modest with 5 in November 2024")
	}

	// Empty window.
	ranked, err = MostBorrowed(ctx, database, 2023, 0, 10)
	if err != nil {
		t.Fatalf("MostBorrowed(2023): %v", err)
	}
	if len(ranked) != 0 {
		t.Errorf("expected empty ranking for 2023, got %d", len(ranked))
	}
}

func TestSoftDeleteBook(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := mustCatalog(t, database, "Delete Me", 1)
	if err := DeleteBook(ctx, database, book.ID); err != nil {
		t.Fatalf("DeleteBook: %v", err)
	}

	books, _ := ListBooks(ctx, database, 0, 0, "")
	if len(books) != 0 {
		t.Errorf("expected 0 books after soft delete, got %d", len(books))
	}

	// Still fetchable by ID, with deleted_at set.
	got, _ := GetBook(ctx, database, book.ID)
	if got == nil {
		t.Fatal("expected soft-deleted book to remain fetchable")
	}
	if got.DeletedAt == nil {
		t.Error("expected deleted_at to be set")
	}
}

func TestBookCover(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := mustCatalog(t, database, "Covered", 1)

	data, mime, err := GetBookCover(ctx, database, book.ID)
	if err != nil {
		t.Fatalf("GetBookCover: %v", err)
	}
	if data != nil || mime != "" {
		t.Error("expected no cover initially")
	}

	if err := SetBookCover(ctx, database, book.ID, []byte{1, 2, 3}, "image/png"); err != nil {
		t.Fatalf("SetBookCover: %v", err)
	}

	data, mime, err = GetBookCover(ctx, database, book.ID)
	if err != nil {
		t.Fatalf("GetBookCover: %v", err)
	}
	if len(data) != 3 || mime != "image/png" {
		t.Errorf("unexpected cover: %d bytes, mime %q", len(data), mime)
	}
}
