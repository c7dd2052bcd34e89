package api

import (
	"database/sql"
	"net/http"

	"github.com/zkralj/knjiznica/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, maxCoverBytes int64) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	authorsHandler := &AuthorsHandler{DB: db}
	publishersHandler := &PublishersHandler{DB: db}
	categoriesHandler := &CategoriesHandler{DB: db}
	booksHandler := &BooksHandler{DB: db, MaxCoverBytes: maxCoverBytes}
	reviewsHandler := &ReviewsHandler{DB: db}
	cartHandler := &CartHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public: registration, login, OAuth exchange.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/oauth", authHandler.OAuthExchange)
	mux.HandleFunc("POST /api/auth/oauth/register", authHandler.OAuthRegister)

	// Authenticated auth routes.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Profile and personal lists.
	mux.Handle("GET /api/profile", authMW(http.HandlerFunc(usersHandler.Profile)))
	mux.Handle("PUT /api/profile", authMW(http.HandlerFunc(usersHandler.UpdateProfile)))
	mux.Handle("GET /api/profile/favorites", authMW(http.HandlerFunc(usersHandler.Favorites)))
	mux.Handle("GET /api/profile/follows", authMW(http.HandlerFunc(usersHandler.Follows)))
	mux.Handle("GET /api/profile/borrow-requests", authMW(http.HandlerFunc(usersHandler.BorrowRequests)))

	// Catalog browsing (public). Literal segments must precede {id}.
	mux.HandleFunc("GET /api/books", booksHandler.List)
	mux.HandleFunc("GET /api/books/search", booksHandler.Search)
	mux.HandleFunc("GET /api/books/most-borrowed", booksHandler.MostBorrowed)
	mux.HandleFunc("GET /api/books/{id}", booksHandler.Get)
	mux.HandleFunc("GET /api/books/{id}/cover", booksHandler.GetCover)
	mux.HandleFunc("GET /api/authors", authorsHandler.List)
	mux.HandleFunc("GET /api/authors/{id}", authorsHandler.Get)
	mux.HandleFunc("GET /api/publishers", publishersHandler.List)
	mux.HandleFunc("GET /api/categories", categoriesHandler.List)

	// Borrow cart: anonymous allowed, checkout requires a user.
	mux.HandleFunc("GET /api/cart", cartHandler.Get)
	mux.HandleFunc("DELETE /api/cart", cartHandler.Clear)
	mux.HandleFunc("POST /api/books/{id}/borrow", booksHandler.Borrow)
	mux.HandleFunc("PUT /api/cart/items/{bookId}", cartHandler.UpdateItem)
	mux.HandleFunc("DELETE /api/cart/items/{bookId}", cartHandler.RemoveItem)
	mux.Handle("POST /api/cart/checkout", authMW(http.HandlerFunc(cartHandler.Checkout)))

	// Favorites and reviews.
	mux.Handle("POST /api/books/{id}/favorite", authMW(http.HandlerFunc(booksHandler.Favorite)))
	mux.Handle("DELETE /api/books/{id}/favorite", authMW(http.HandlerFunc(booksHandler.Unfavorite)))
	mux.Handle("POST /api/authors/{id}/favorite", authMW(http.HandlerFunc(authorsHandler.Favorite)))
	mux.Handle("DELETE /api/authors/{id}/favorite", authMW(http.HandlerFunc(authorsHandler.Unfavorite)))
	mux.Handle("POST /api/books/{id}/reviews", authMW(http.HandlerFunc(reviewsHandler.Create)))
	mux.Handle("DELETE /api/books/{id}/reviews", authMW(http.HandlerFunc(reviewsHandler.Delete)))

	// Admin: user management.
	mux.Handle("GET /api/admin/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("PUT /api/admin/users/{id}/role", authMW(requireAdmin(http.HandlerFunc(usersHandler.UpdateRole))))
	mux.Handle("DELETE /api/admin/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Admin: catalog management.
	mux.Handle("POST /api/admin/authors", authMW(requireAdmin(http.HandlerFunc(authorsHandler.Create))))
	mux.Handle("PUT /api/admin/authors/{id}", authMW(requireAdmin(http.HandlerFunc(authorsHandler.Update))))
	mux.Handle("DELETE /api/admin/authors/{id}", authMW(requireAdmin(http.HandlerFunc(authorsHandler.Delete))))
	mux.Handle("POST /api/admin/publishers", authMW(requireAdmin(http.HandlerFunc(publishersHandler.Create))))
	mux.Handle("PUT /api/admin/publishers/{id}", authMW(requireAdmin(http.HandlerFunc(publishersHandler.Update))))
	mux.Handle("DELETE /api/admin/publishers/{id}", authMW(requireAdmin(http.HandlerFunc(publishersHandler.Delete))))
	mux.Handle("POST /api/admin/categories", authMW(requireAdmin(http.HandlerFunc(categoriesHandler.Create))))
	mux.Handle("PUT /api/admin/categories/{id}", authMW(requireAdmin(http.HandlerFunc(categoriesHandler.Update))))
	mux.Handle("DELETE /api/admin/categories/{id}", authMW(requireAdmin(http.HandlerFunc(categoriesHandler.Delete))))
	mux.Handle("POST /api/admin/books", authMW(requireAdmin(http.HandlerFunc(booksHandler.Create))))
	mux.Handle("PUT /api/admin/books/{id}", authMW(requireAdmin(http.HandlerFunc(booksHandler.Update))))
	mux.Handle("DELETE /api/admin/books/{id}", authMW(requireAdmin(http.HandlerFunc(booksHandler.Delete))))
	mux.Handle("PUT /api/admin/books/{id}/cover", authMW(requireAdmin(http.HandlerFunc(booksHandler.UploadCover))))

	return mux
}
