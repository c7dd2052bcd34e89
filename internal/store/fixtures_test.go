package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/zkralj/knjiznica/internal/model"
)

// Shared fixtures for store tests.

func mustAuthor(t *testing.T, db *sql.DB, name string) *model.Author {
	t.Helper()
	a, err := CreateAuthor(context.Background(), db, name, "", "", "", "")
	if err != nil {
		t.Fatalf("CreateAuthor(%q): %v", name, err)
	}
	return a
}

func mustPublisher(t *testing.T, db *sql.DB, name string) *model.Publisher {
	t.Helper()
	p, err := CreatePublisher(context.Background(), db, name)
	if err != nil {
		t.Fatalf("CreatePublisher(%q): %v", name, err)
	}
	return p
}

func mustCategory(t *testing.T, db *sql.DB, name string) *model.Category {
	t.Helper()
	c, err := CreateCategory(context.Background(), db, name)
	if err != nil {
		t.Fatalf("CreateCategory(%q): %v", name, err)
	}
	return c
}

func mustBook(t *testing.T, db *sql.DB, title string, quantity int, authorID, publisherID int64) *model.Book {
	t.Helper()
	b, err := CreateBook(context.Background(), db, title, "", quantity, quantity, nil, authorID, publisherID)
	if err != nil {
		t.Fatalf("CreateBook(%q): %v", title, err)
	}
	return b
}

func mustUser(t *testing.T, db *sql.DB, email string) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), db, "Test User", email, "hash", model.RoleMember, "", "")
	if err != nil {
		t.Fatalf("CreateUser(%q): %v", email, err)
	}
	return u
}

// mustCatalog creates an author, a publisher and a book with the given
// available quantity in one call, for tests that only need a book to exist.
func mustCatalog(t *testing.T, db *sql.DB, title string, quantity int) *model.Book {
	t.Helper()
	a := mustAuthor(t, db, title+" Author")
	p := mustPublisher(t, db, title+" Publisher")
	return mustBook(t, db, title, quantity, a.ID, p.ID)
}
