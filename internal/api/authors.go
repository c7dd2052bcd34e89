package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/zkralj/knjiznica/internal/model"
	"github.com/zkralj/knjiznica/internal/store"
)

// AuthorsHandler handles public author browsing and admin author CRUD.
type AuthorsHandler struct {
	DB *sql.DB
}

type authorRequest struct {
	Name        string `json:"name"`
	Bio         string `json:"bio"`
	Nationality string `json:"nationality"`
	BirthDate   string `json:"birth_date"`
	DeathDate   string `json:"death_date"`
}

// List handles GET /api/authors. The living query parameter filters to
// "alive" or "deceased" authors.
func (h *AuthorsHandler) List(w http.ResponseWriter, r *http.Request) {
	authors, err := store.ListAuthors(r.Context(), h.DB, r.URL.Query().Get("living"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list authors")
		return
	}
	if authors == nil {
		authors = []model.Author{}
	}
	jsonResponse(w, http.StatusOK, authors)
}

// Get handles GET /api/authors/{id}, returning the author with their books.
func (h *AuthorsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid author id")
		return
	}

	author, err := store.GetAuthor(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get author")
		return
	}
	if author == nil || author.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "author not found")
		return
	}

	books, err := store.ListBooks(r.Context(), h.DB, id, 0, store.OrderRecent)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list author books")
		return
	}
	if books == nil {
		books = []model.Book{}
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"author": author,
		"books":  books,
	})
}

// Favorite handles POST /api/authors/{id}/favorite.
func (h *AuthorsHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid author id")
		return
	}

	claims := GetClaims(r.Context())
	favorite, err := store.AddFavorite(r.Context(), h.DB, claims.UserID, model.FavorableAuthor, id)
	if err != nil {
		storeError(w, err, "failed to add favorite")
		return
	}

	jsonResponse(w, http.StatusCreated, favorite)
}

// Unfavorite handles DELETE /api/authors/{id}/favorite.
func (h *AuthorsHandler) Unfavorite(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid author id")
		return
	}

	claims := GetClaims(r.Context())
	if err := store.RemoveFavorite(r.Context(), h.DB, claims.UserID, model.FavorableAuthor, id); err != nil {
		storeError(w, err, "failed to remove favorite")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "favorite removed"})
}

// Create handles POST /api/admin/authors.
func (h *AuthorsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req authorRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := model.ValidateAuthor(req.Name, req.Bio, req.Nationality, req.BirthDate, req.DeathDate); err != nil {
		jsonError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	author, err := store.CreateAuthor(r.Context(), h.DB, req.Name, req.Bio, req.Nationality, req.BirthDate, req.DeathDate)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create author")
		return
	}

	jsonResponse(w, http.StatusCreated, author)
}

// Update handles PUT /api/admin/authors/{id}.
func (h *AuthorsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid author id")
		return
	}

	var req authorRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := model.ValidateAuthor(req.Name, req.Bio, req.Nationality, req.BirthDate, req.DeathDate); err != nil {
		jsonError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	author, err := store.GetAuthor(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get author")
		return
	}
	if author == nil || author.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "author not found")
		return
	}

	if err := store.UpdateAuthor(r.Context(), h.DB, id, req.Name, req.Bio, req.Nationality, req.BirthDate, req.DeathDate); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update author")
		return
	}

	author, _ = store.GetAuthor(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, author)
}

// Delete handles DELETE /api/admin/authors/{id}. Deleting an author with
// live books is refused with a conflict.
func (h *AuthorsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid author id")
		return
	}

	author, err := store.GetAuthor(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get author")
		return
	}
	if author == nil || author.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "author not found")
		return
	}

	if err := store.DeleteAuthor(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "failed to delete author")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "author deleted"})
}
