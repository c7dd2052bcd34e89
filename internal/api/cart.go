package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/zkralj/knjiznica/internal/model"
	"github.com/zkralj/knjiznica/internal/store"
)

const cartCookieName = "cart_token"

// CartHandler handles the borrow cart and checkout.
type CartHandler struct {
	DB *sql.DB
}

type cartItemRequest struct {
	Quantity int `json:"quantity"`
}

type checkoutRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// cartToken extracts the cart token from the request, checking the
// cart_token cookie first and the X-Cart-Token header as a fallback for
// clients that do not keep cookies.
func cartToken(r *http.Request) string {
	if c, err := r.Cookie(cartCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return r.Header.Get("X-Cart-Token")
}

func setCartCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cartCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   store.CartIdleDays * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set("X-Cart-Token", token)
}

// resolveCart returns the cart identified by the request's token, creating
// a new empty cart when the request carries no token or a stale one. The
// second return value reports whether a new cart was created.
func resolveCart(r *http.Request, db *sql.DB) (*model.Cart, bool, error) {
	if token := cartToken(r); token != "" {
		cart, err := store.GetCartByToken(r.Context(), db, token)
		if err != nil {
			return nil, false, err
		}
		if cart != nil {
			return cart, false, nil
		}
	}

	cart, err := store.CreateCart(r.Context(), db)
	if err != nil {
		return nil, false, err
	}
	return cart, true, nil
}

// Get handles GET /api/cart. A request without a cart returns an empty one
// without creating a row.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	if token := cartToken(r); token != "" {
		cart, err := store.GetCartByToken(r.Context(), h.DB, token)
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "failed to load cart")
			return
		}
		if cart != nil {
			jsonResponse(w, http.StatusOK, cart)
			return
		}
	}

	jsonResponse(w, http.StatusOK, model.Cart{Items: []model.CartItem{}})
}

// UpdateItem handles PUT /api/cart/items/{bookId}. A quantity of zero
// removes the line.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseInt(r.PathValue("bookId"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	var req cartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity < 0 {
		jsonError(w, http.StatusBadRequest, "quantity must not be negative")
		return
	}

	cart, err := h.requestCart(w, r)
	if err != nil || cart == nil {
		return
	}

	if err := store.SetCartItemQuantity(r.Context(), h.DB, cart.ID, bookID, req.Quantity); err != nil {
		storeError(w, err, "failed to update cart item")
		return
	}

	cart, err = store.GetCart(r.Context(), h.DB, cart.ID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}
	jsonResponse(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /api/cart/items/{bookId}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseInt(r.PathValue("bookId"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	cart, err := h.requestCart(w, r)
	if err != nil || cart == nil {
		return
	}

	if err := store.SetCartItemQuantity(r.Context(), h.DB, cart.ID, bookID, 0); err != nil {
		storeError(w, err, "failed to remove cart item")
		return
	}

	cart, err = store.GetCart(r.Context(), h.DB, cart.ID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}
	jsonResponse(w, http.StatusOK, cart)
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	cart, err := h.requestCart(w, r)
	if err != nil || cart == nil {
		return
	}

	if err := store.ClearCart(r.Context(), h.DB, cart.ID); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "cart cleared"})
}

// Checkout handles POST /api/cart/checkout. Requires authentication: the
// resulting borrow request belongs to the logged-in user.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.StartDate == "" || req.EndDate == "" {
		jsonError(w, http.StatusUnprocessableEntity, "start_date and end_date required")
		return
	}

	cart, err := h.requestCart(w, r)
	if err != nil || cart == nil {
		return
	}

	claims := GetClaims(r.Context())
	request, err := store.CheckoutCart(r.Context(), h.DB, cart.ID, claims.UserID, req.StartDate, req.EndDate)
	if err != nil {
		storeError(w, err, "failed to check out cart")
		return
	}

	jsonResponse(w, http.StatusCreated, request)
}

// requestCart loads the request's cart, writing a 404 when the request
// carries no usable cart token. Callers bail out on a nil cart.
func (h *CartHandler) requestCart(w http.ResponseWriter, r *http.Request) (*model.Cart, error) {
	token := cartToken(r)
	if token == "" {
		jsonError(w, http.StatusNotFound, "no cart")
		return nil, nil
	}

	cart, err := store.GetCartByToken(r.Context(), h.DB, token)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load cart")
		return nil, err
	}
	if cart == nil {
		jsonError(w, http.StatusNotFound, "no cart")
		return nil, nil
	}
	return cart, nil
}
