package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/zkralj/knjiznica/internal/imaging"
	"github.com/zkralj/knjiznica/internal/model"
	"github.com/zkralj/knjiznica/internal/store"
)

// BooksHandler handles public book browsing and admin book CRUD.
type BooksHandler struct {
	DB            *sql.DB
	MaxCoverBytes int64
}

type bookRequest struct {
	Title             string  `json:"title"`
	Description       string  `json:"description"`
	TotalQuantity     int     `json:"total_quantity"`
	AvailableQuantity int     `json:"available_quantity"`
	PublicationYear   *int    `json:"publication_year"`
	AuthorID          int64   `json:"author_id"`
	PublisherID       int64   `json:"publisher_id"`
	CategoryIDs       []int64 `json:"category_ids"`
}

type borrowRequestBody struct {
	Quantity int `json:"quantity"`
}

// List handles GET /api/books with optional author_id, category_id and
// order (recent, recommended, title) query parameters.
func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	authorID, _ := strconv.ParseInt(q.Get("author_id"), 10, 64)
	categoryID, _ := strconv.ParseInt(q.Get("category_id"), 10, 64)

	books, err := store.ListBooks(r.Context(), h.DB, authorID, categoryID, q.Get("order"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list books")
		return
	}
	if books == nil {
		books = []model.Book{}
	}
	jsonResponse(w, http.StatusOK, books)
}

// Get handles GET /api/books/{id}, returning the book with its categories
// and reviews.
func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	book, err := store.GetBook(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get book")
		return
	}
	if book == nil || book.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "book not found")
		return
	}

	categories, err := store.GetBookCategories(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get book categories")
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}

	reviews, err := store.ListBookReviews(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get book reviews")
		return
	}
	if reviews == nil {
		reviews = []model.Review{}
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"book":       book,
		"categories": categories,
		"reviews":    reviews,
	})
}

// Search handles GET /api/books/search?q=&search_type=.
// Unknown search types behave exactly like "all". An empty query
// returns the full catalog rather than nothing.
func (h *BooksHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	searchType := model.ParseSearchType(r.URL.Query().Get("search_type"))

	var books []model.Book
	var err error
	if query == "" {
		books, err = store.ListBooks(r.Context(), h.DB, 0, 0, "")
	} else {
		books, err = store.SearchBooks(r.Context(), h.DB, query, searchType)
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to search books")
		return
	}
	if books == nil {
		books = []model.Book{}
	}
	jsonResponse(w, http.StatusOK, books)
}

// MostBorrowed handles GET /api/books/most-borrowed?year=&month=&limit=.
func (h *BooksHandler) MostBorrowed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var year, month int
	if s := q.Get("year"); s != "" {
		year, _ = strconv.Atoi(s)
		if year <= 0 {
			jsonError(w, http.StatusBadRequest, "invalid year")
			return
		}
	}
	if s := q.Get("month"); s != "" {
		month, _ = strconv.Atoi(s)
		if month < 1 || month > 12 {
			jsonError(w, http.StatusBadRequest, "invalid month")
			return
		}
	}

	limit, _ := strconv.Atoi(q.Get("limit"))

	ranked, err := store.MostBorrowed(r.Context(), h.DB, year, month, limit)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to rank books")
		return
	}
	if ranked == nil {
		ranked = []model.RankedBook{}
	}
	jsonResponse(w, http.StatusOK, ranked)
}

// Borrow handles POST /api/books/{id}/borrow: adds the book to the borrow
// cart, merging quantities for a book already in the cart. Availability is
// checked at checkout, not here.
func (h *BooksHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	var req borrowRequestBody
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 {
		jsonError(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	cart, created, err := resolveCart(r, h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to resolve cart")
		return
	}

	if err := store.AddToCart(r.Context(), h.DB, cart.ID, id, req.Quantity); err != nil {
		storeError(w, err, "failed to add to cart")
		return
	}

	cart, err = store.GetCart(r.Context(), h.DB, cart.ID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	if created {
		setCartCookie(w, cart.Token)
	}
	jsonResponse(w, http.StatusOK, cart)
}

// Favorite handles POST /api/books/{id}/favorite.
func (h *BooksHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	claims := GetClaims(r.Context())
	favorite, err := store.AddFavorite(r.Context(), h.DB, claims.UserID, model.FavorableBook, id)
	if err != nil {
		storeError(w, err, "failed to add favorite")
		return
	}

	jsonResponse(w, http.StatusCreated, favorite)
}

// Unfavorite handles DELETE /api/books/{id}/favorite.
func (h *BooksHandler) Unfavorite(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	claims := GetClaims(r.Context())
	if err := store.RemoveFavorite(r.Context(), h.DB, claims.UserID, model.FavorableBook, id); err != nil {
		storeError(w, err, "failed to remove favorite")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "favorite removed"})
}

// GetCover handles GET /api/books/{id}/cover.
func (h *BooksHandler) GetCover(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	data, mime, err := store.GetBookCover(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get cover")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no cover")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// Create handles POST /api/admin/books.
func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := model.ValidateBook(req.Title, req.Description, req.TotalQuantity, req.AvailableQuantity, req.PublicationYear); err != nil {
		jsonError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if req.AuthorID == 0 || req.PublisherID == 0 {
		jsonError(w, http.StatusUnprocessableEntity, "author_id and publisher_id required")
		return
	}

	book, err := store.CreateBook(r.Context(), h.DB, req.Title, req.Description,
		req.TotalQuantity, req.AvailableQuantity, req.PublicationYear, req.AuthorID, req.PublisherID)
	if err != nil {
		storeError(w, err, "failed to create book")
		return
	}

	if len(req.CategoryIDs) > 0 {
		if err := store.SetBookCategories(r.Context(), h.DB, book.ID, req.CategoryIDs); err != nil {
			jsonError(w, http.StatusInternalServerError, "failed to set book categories")
			return
		}
	}

	jsonResponse(w, http.StatusCreated, book)
}

// Update handles PUT /api/admin/books/{id}.
func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	var req bookRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := model.ValidateBook(req.Title, req.Description, req.TotalQuantity, req.AvailableQuantity, req.PublicationYear); err != nil {
		jsonError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if req.AuthorID == 0 || req.PublisherID == 0 {
		jsonError(w, http.StatusUnprocessableEntity, "author_id and publisher_id required")
		return
	}

	book, err := store.GetBook(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get book")
		return
	}
	if book == nil || book.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "book not found")
		return
	}

	if err := store.UpdateBook(r.Context(), h.DB, id, req.Title, req.Description,
		req.TotalQuantity, req.AvailableQuantity, req.PublicationYear, req.AuthorID, req.PublisherID); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update book")
		return
	}

	if req.CategoryIDs != nil {
		if err := store.SetBookCategories(r.Context(), h.DB, id, req.CategoryIDs); err != nil {
			jsonError(w, http.StatusInternalServerError, "failed to set book categories")
			return
		}
	}

	book, _ = store.GetBook(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, book)
}

// Delete handles DELETE /api/admin/books/{id}.
func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	book, err := store.GetBook(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get book")
		return
	}
	if book == nil || book.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "book not found")
		return
	}

	if err := store.DeleteBook(r.Context(), h.DB, id); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete book")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "book deleted"})
}

// UploadCover handles PUT /api/admin/books/{id}/cover.
func (h *BooksHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	book, err := store.GetBook(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get book")
		return
	}
	if book == nil || book.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "book not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxCoverBytes)

	if err := r.ParseMultipartForm(h.MaxCoverBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("cover")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "cover file required")
		return
	}
	defer file.Close()

	cover, err := imaging.ProcessCover(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetBookCover(r.Context(), h.DB, id, cover.Data, cover.MIME); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save cover")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "cover uploaded"})
}
