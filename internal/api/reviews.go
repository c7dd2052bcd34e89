package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/zkralj/knjiznica/internal/model"
	"github.com/zkralj/knjiznica/internal/store"
)

// ReviewsHandler handles book reviews.
type ReviewsHandler struct {
	DB *sql.DB
}

type reviewRequest struct {
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// Create handles POST /api/books/{id}/reviews. A user gets one review per
// book; a second attempt is a conflict.
func (h *ReviewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := model.ValidateReview(req.Score, req.Comment); err != nil {
		jsonError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	claims := GetClaims(r.Context())
	review, err := store.CreateReview(r.Context(), h.DB, bookID, claims.UserID, req.Score, req.Comment)
	if err != nil {
		storeError(w, err, "failed to create review")
		return
	}

	jsonResponse(w, http.StatusCreated, review)
}

// Delete handles DELETE /api/books/{id}/reviews. Members remove their own
// review; admins may remove any user's review by passing user_id.
func (h *ReviewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	claims := GetClaims(r.Context())
	userID := claims.UserID
	if s := r.URL.Query().Get("user_id"); s != "" && claims.Role == model.RoleAdmin {
		userID, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid user id")
			return
		}
	}

	if err := store.DeleteReview(r.Context(), h.DB, bookID, userID); err != nil {
		storeError(w, err, "failed to delete review")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "review deleted"})
}
