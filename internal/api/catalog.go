package api

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/zkralj/knjiznica/internal/model"
	"github.com/zkralj/knjiznica/internal/store"
)

// PublishersHandler handles publisher listing and admin CRUD.
type PublishersHandler struct {
	DB *sql.DB
}

// CategoriesHandler handles category listing and admin CRUD.
type CategoriesHandler struct {
	DB *sql.DB
}

type nameRequest struct {
	Name string `json:"name"`
}

func (req *nameRequest) valid() bool {
	req.Name = strings.TrimSpace(req.Name)
	return req.Name != ""
}

// List handles GET /api/publishers.
func (h *PublishersHandler) List(w http.ResponseWriter, r *http.Request) {
	publishers, err := store.ListPublishers(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list publishers")
		return
	}
	if publishers == nil {
		publishers = []model.Publisher{}
	}
	jsonResponse(w, http.StatusOK, publishers)
}

// Create handles POST /api/admin/publishers.
func (h *PublishersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.valid() {
		jsonError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}

	publisher, err := store.CreatePublisher(r.Context(), h.DB, req.Name)
	if err != nil {
		storeError(w, err, "failed to create publisher")
		return
	}
	jsonResponse(w, http.StatusCreated, publisher)
}

// Update handles PUT /api/admin/publishers/{id}.
func (h *PublishersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid publisher id")
		return
	}

	var req nameRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.valid() {
		jsonError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}

	publisher, err := store.GetPublisher(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get publisher")
		return
	}
	if publisher == nil {
		jsonError(w, http.StatusNotFound, "publisher not found")
		return
	}

	if err := store.UpdatePublisher(r.Context(), h.DB, id, req.Name); err != nil {
		storeError(w, err, "failed to update publisher")
		return
	}

	publisher.Name = req.Name
	jsonResponse(w, http.StatusOK, publisher)
}

// Delete handles DELETE /api/admin/publishers/{id}. Deletion is refused
// while live books still reference the publisher.
func (h *PublishersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid publisher id")
		return
	}

	publisher, err := store.GetPublisher(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get publisher")
		return
	}
	if publisher == nil {
		jsonError(w, http.StatusNotFound, "publisher not found")
		return
	}

	if err := store.DeletePublisher(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "failed to delete publisher")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "publisher deleted"})
}

// List handles GET /api/categories.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := store.ListCategories(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	jsonResponse(w, http.StatusOK, categories)
}

// Create handles POST /api/admin/categories.
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.valid() {
		jsonError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}

	category, err := store.CreateCategory(r.Context(), h.DB, req.Name)
	if err != nil {
		storeError(w, err, "failed to create category")
		return
	}
	jsonResponse(w, http.StatusCreated, category)
}

// Update handles PUT /api/admin/categories/{id}.
func (h *CategoriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var req nameRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.valid() {
		jsonError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}

	if err := store.UpdateCategory(r.Context(), h.DB, id, req.Name); err != nil {
		storeError(w, err, "failed to update category")
		return
	}

	category, err := store.GetCategory(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get category")
		return
	}
	jsonResponse(w, http.StatusOK, category)
}

// Delete handles DELETE /api/admin/categories/{id}. Book links are removed
// together with the category.
func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	category, err := store.GetCategory(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get category")
		return
	}
	if category == nil {
		jsonError(w, http.StatusNotFound, "category not found")
		return
	}

	if err := store.DeleteCategory(r.Context(), h.DB, id); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "category deleted"})
}
