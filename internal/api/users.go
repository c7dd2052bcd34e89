package api

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/zkralj/knjiznica/internal/model"
	"github.com/zkralj/knjiznica/internal/store"
)

// UsersHandler handles profile and user-administration endpoints.
type UsersHandler struct {
	DB *sql.DB
}

type updateProfileRequest struct {
	Name        string `json:"name"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"date_of_birth"`
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// Profile handles GET /api/profile.
func (h *UsersHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}
	if user == nil || user.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/profile.
func (h *UsersHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}
	if !model.ValidGender(req.Gender) {
		jsonError(w, http.StatusUnprocessableEntity, "invalid gender")
		return
	}
	if req.DateOfBirth != "" {
		if _, err := time.Parse(model.DateFormat, req.DateOfBirth); err != nil {
			jsonError(w, http.StatusUnprocessableEntity, "invalid date_of_birth")
			return
		}
	}

	if err := store.UpdateUserProfile(r.Context(), h.DB, claims.UserID, req.Name, req.Gender, req.DateOfBirth); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	user, _ := store.GetUser(r.Context(), h.DB, claims.UserID)
	jsonResponse(w, http.StatusOK, user)
}

// Favorites handles GET /api/profile/favorites: favorited books with stats.
func (h *UsersHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	books, err := store.ListFavoriteBooks(r.Context(), h.DB, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list favorites")
		return
	}
	if books == nil {
		books = []model.Book{}
	}

	stats, err := store.FavoriteBookStats(r.Context(), h.DB, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to compute favorite stats")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"books": books,
		"stats": stats,
	})
}

// Follows handles GET /api/profile/follows: followed authors with stats.
func (h *UsersHandler) Follows(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	authors, err := store.ListFavoriteAuthors(r.Context(), h.DB, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list followed authors")
		return
	}
	if authors == nil {
		authors = []model.Author{}
	}

	stats, err := store.FollowedAuthorStats(r.Context(), h.DB, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to compute follow stats")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"authors": authors,
		"stats":   stats,
	})
}

// BorrowRequests handles GET /api/profile/borrow-requests.
func (h *UsersHandler) BorrowRequests(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	requests, err := store.ListUserBorrowRequests(r.Context(), h.DB, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list borrow requests")
		return
	}
	if requests == nil {
		requests = []model.BorrowRequest{}
	}
	jsonResponse(w, http.StatusOK, requests)
}

// List handles GET /api/admin/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// UpdateRole handles PUT /api/admin/users/{id}/role.
func (h *UsersHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req updateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Role != model.RoleAdmin && req.Role != model.RoleMember {
		jsonError(w, http.StatusBadRequest, "invalid role")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil || user.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := store.UpdateUserRole(r.Context(), h.DB, id, req.Role); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update role")
		return
	}

	user, _ = store.GetUser(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, user)
}

// Delete handles DELETE /api/admin/users/{id}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	claims := GetClaims(r.Context())
	if claims.UserID == id {
		jsonError(w, http.StatusConflict, "cannot delete own account")
		return
	}

	if err := store.DeleteUser(r.Context(), h.DB, id); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
