// Command seed fills a database with a small sample catalog for local
// development. It refuses to touch a database that already has books.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/zkralj/knjiznica/internal/config"
	"github.com/zkralj/knjiznica/internal/db"
	"github.com/zkralj/knjiznica/internal/store"
)

type seedAuthor struct {
	name        string
	bio         string
	nationality string
	birthDate   string
	deathDate   string
}

type seedBook struct {
	title       string
	description string
	author      string
	publisher   string
	categories  []string
	year        int
	total       int
}

var authors = []seedAuthor{
	{"Ivan Cankar", "Slovene writer, playwright and essayist.", "Slovenian", "1876-05-10", "1918-12-11"},
	{"France Prešeren", "Slovene Romantic poet.", "Slovenian", "1800-12-03", "1849-02-08"},
	{"Jane Austen", "English novelist known for social commentary.", "British", "1775-12-16", "1817-07-18"},
	{"Italo Calvino", "Italian journalist and writer of short stories and novels.", "Italian", "1923-10-15", "1985-09-19"},
	{"Ursula K. Le Guin", "American author of speculative fiction.", "American", "1929-10-21", "2018-01-22"},
}

var publishers = []string{
	"Mladinska knjiga",
	"Cankarjeva založba",
	"Penguin Books",
	"Harcourt",
}

var categories = []string{
	"Novel", "Poetry", "Short stories", "Science fiction", "Classics", "Drama",
}

var books = []seedBook{
	{"Hlapec Jernej in njegova pravica", "A farmhand seeks justice after forty years of work.", "Ivan Cankar", "Cankarjeva založba", []string{"Novel", "Classics"}, 1907, 4},
	{"Na klancu", "A family on the hillside at the edge of town.", "Ivan Cankar", "Mladinska knjiga", []string{"Novel", "Classics"}, 1902, 3},
	{"Poezije", "Collected poems, including the Sonnet Wreath.", "France Prešeren", "Mladinska knjiga", []string{"Poetry", "Classics"}, 1847, 5},
	{"Pride and Prejudice", "Elizabeth Bennet navigates manners and marriage.", "Jane Austen", "Penguin Books", []string{"Novel", "Classics"}, 1813, 6},
	{"Emma", "A well-meaning matchmaker misreads everyone around her.", "Jane Austen", "Penguin Books", []string{"Novel", "Classics"}, 1815, 2},
	{"Invisible Cities", "Marco Polo describes cities to Kublai Khan.", "Italo Calvino", "Harcourt", []string{"Short stories"}, 1972, 3},
	{"The Left Hand of Darkness", "An envoy on a planet whose people have no fixed sex.", "Ursula K. Le Guin", "Penguin Books", []string{"Science fiction", "Novel"}, 1969, 4},
	{"The Dispossessed", "A physicist travels between twin worlds with opposed societies.", "Ursula K. Le Guin", "Harcourt", []string{"Science fiction", "Novel"}, 1974, 3},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()

	database, err := db.Open(*dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	existing, err := store.ListBooks(ctx, database, 0, 0, "")
	if err != nil {
		slog.Error("failed to check existing books", "error", err)
		os.Exit(1)
	}
	if len(existing) > 0 {
		fmt.Fprintf(os.Stderr, "database already has %d books, refusing to seed\n", len(existing))
		os.Exit(1)
	}

	if err := seed(ctx, database); err != nil {
		slog.Error("seeding failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Seeded %d authors, %d publishers, %d categories, %d books into %s\n",
		len(authors), len(publishers), len(categories), len(books), *dbPath)
}

func seed(ctx context.Context, database *sql.DB) error {
	authorIDs := make(map[string]int64, len(authors))
	for _, a := range authors {
		created, err := store.CreateAuthor(ctx, database, a.name, a.bio, a.nationality, a.birthDate, a.deathDate)
		if err != nil {
			return fmt.Errorf("author %q: %w", a.name, err)
		}
		authorIDs[a.name] = created.ID
	}

	publisherIDs := make(map[string]int64, len(publishers))
	for _, name := range publishers {
		created, err := store.CreatePublisher(ctx, database, name)
		if err != nil {
			return fmt.Errorf("publisher %q: %w", name, err)
		}
		publisherIDs[name] = created.ID
	}

	categoryIDs := make(map[string]int64, len(categories))
	for _, name := range categories {
		created, err := store.CreateCategory(ctx, database, name)
		if err != nil {
			return fmt.Errorf("category %q: %w", name, err)
		}
		categoryIDs[name] = created.ID
	}

	for _, b := range books {
		year := b.year
		created, err := store.CreateBook(ctx, database, b.title, b.description,
			b.total, b.total, &year, authorIDs[b.author], publisherIDs[b.publisher])
		if err != nil {
			return fmt.Errorf("book %q: %w", b.title, err)
		}

		ids := make([]int64, 0, len(b.categories))
		for _, c := range b.categories {
			ids = append(ids, categoryIDs[c])
		}
		if err := store.SetBookCategories(ctx, database, created.ID, ids); err != nil {
			return fmt.Errorf("categories for %q: %w", b.title, err)
		}
	}

	return nil
}
