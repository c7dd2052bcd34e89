package store

import (
	"context"
	"errors"
	"testing"

	"github.com/zkralj/knjiznica/internal/db"
)

func TestCreateAndGetCart(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	cart, err := CreateCart(ctx, database)
	if err != nil {
		t.Fatalf("CreateCart: %v", err)
	}
	if cart.Token == "" {
		t.Error("expected a cart token")
	}
	if cart.UserID != nil {
		t.Error("expected an unbound cart")
	}

	got, err := GetCartByToken(ctx, database, cart.Token)
	if err != nil {
		t.Fatalf("GetCartByToken: %v", err)
	}
	if got == nil || got.ID != cart.ID {
		t.Fatal("expected the same cart back by token")
	}

	missing, err := GetCartByToken(ctx, database, "no-such-token")
	if err != nil {
		t.Fatalf("GetCartByToken(missing): %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown token")
	}
}

func TestAddToCartMergesQuantities(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := mustCatalog(t, database, "Merged", 10)
	cart, _ := CreateCart(ctx, database)

	if err := AddToCart(ctx, database, cart.ID, book.ID, 2); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if err := AddToCart(ctx, database, cart.ID, book.ID, 3); err != nil {
		t.Fatalf("AddToCart again: %v", err)
	}

	got, _ := GetCart(ctx, database, cart.ID)
	if len(got.Items) != 1 {
		t.Fatalf("expected 1 merged line, got %d", len(got.Items))
	}
	if got.Items[0].Quantity != 5 {
		t.Errorf("expected merged quantity 5, got %d", got.Items[0].Quantity)
	}
}

func TestAddToCartUnknownBook(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	cart, _ := CreateCart(ctx, database)
	if err := AddToCart(ctx, database, cart.ID, 999, 1); err == nil {
		t.Fatal("expected error for unknown book")
	}
}

func TestCartItemsKeepInsertionOrder(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a := mustAuthor(t, database, "Author")
	p := mustPublisher(t, database, "Press")
	b1 := mustBook(t, database, "Zebra", 5, a.ID, p.ID)
	b2 := mustBook(t, database, "Aardvark", 5, a.ID, p.ID)

	cart, _ := CreateCart(ctx, database)
	AddToCart(ctx, database, cart.ID, b1.ID, 1)
	AddToCart(ctx, database, cart.ID, b2.ID, 1)
	// Re-adding the first book must not move it to the back.
	AddToCart(ctx, database, cart.ID, b1.ID, 1)

	got, _ := GetCart(ctx, database, cart.ID)
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(got.Items))
	}
	if got.Items[0].BookID != b1.ID || got.Items[1].BookID != b2.ID {
		t.Error("expected cart lines in insertion order")
	}
}

func TestSetCartItemQuantity(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := mustCatalog(t, database, "Adjusted", 10)
	cart, _ := CreateCart(ctx, database)
	AddToCart(ctx, database, cart.ID, book.ID, 2)

	if err := SetCartItemQuantity(ctx, database, cart.ID, book.ID, 7); err != nil {
		t.Fatalf("SetCartItemQuantity: %v", err)
	}
	got, _ := GetCart(ctx, database, cart.ID)
	if got.Items[0].Quantity != 7 {
		t.Errorf("expected quantity 7, got %d", got.Items[0].Quantity)
	}

	// Zero removes the line.
	if err := SetCartItemQuantity(ctx, database, cart.ID, book.ID, 0); err != nil {
		t.Fatalf("SetCartItemQuantity(0): %v", err)
	}
	got, _ = GetCart(ctx, database, cart.ID)
	if len(got.Items) != 0 {
		t.Errorf("expected empty cart, got %d lines", len(got.Items))
	}

	// Updating a line that is not there is not found.
	if err := SetCartItemQuantity(ctx, database, cart.ID, book.ID, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBindCartToUserMergesOlderCarts(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a := mustAuthor(t, database, "Author")
	p := mustPublisher(t, database, "Press")
	b1 := mustBook(t, database, "Shared", 10, a.ID, p.ID)
	b2 := mustBook(t, database, "Only Old", 10, a.ID, p.ID)

	user := mustUser(t, database, "reader@example.com")

	// An older cart already bound to the user from a previous session.
	oldCart, _ := CreateCart(ctx, database)
	AddToCart(ctx, database, oldCart.ID, b1.ID, 1)
	AddToCart(ctx, database, oldCart.ID, b2.ID, 2)
	if err := BindCartToUser(ctx, database, oldCart.ID, user.ID); err != nil {
		t.Fatalf("binding old cart: %v", err)
	}

	// The anonymous cart from the current session.
	newCart, _ := CreateCart(ctx, database)
	AddToCart(ctx, database, newCart.ID, b1.ID, 2)

	if err := BindCartToUser(ctx, database, newCart.ID, user.ID); err != nil {
		t.Fatalf("BindCartToUser: %v", err)
	}

	got, _ := GetCart(ctx, database, newCart.ID)
	if got.UserID == nil || *got.UserID != user.ID {
		t.Fatal("expected cart bound to user")
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 merged lines, got %d", len(got.Items))
	}

	byBook := map[int64]int{}
	for _, item := range got.Items {
		byBook[item.BookID] = item.Quantity
	}
	if byBook[b1.ID] != 3 {
		t.Errorf("expected merged quantity 3 for shared book, got %d", byBook[b1.ID])
	}
	if byBook[b2.ID] != 2 {
		t.Errorf("expected quantity 2 carried over, got %d", byBook[b2.ID])
	}

	// The older cart is gone.
	old, _ := GetCart(ctx, database, oldCart.ID)
	if old != nil {
		t.Error("expected old cart to be deleted after merge")
	}
}

func TestClearCart(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := mustCatalog(t, database, "Cleared", 5)
	cart, _ := CreateCart(ctx, database)
	AddToCart(ctx, database, cart.ID, book.ID, 2)

	if err := ClearCart(ctx, database, cart.ID); err != nil {
		t.Fatalf("ClearCart: %v", err)
	}
	got, _ := GetCart(ctx, database, cart.ID)
	if len(got.Items) != 0 {
		t.Errorf("expected empty cart, got %d lines", len(got.Items))
	}
}
