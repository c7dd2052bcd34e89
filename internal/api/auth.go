package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/zkralj/knjiznica/internal/auth"
	"github.com/zkralj/knjiznica/internal/model"
	"github.com/zkralj/knjiznica/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	DB        *sql.DB
	JWTSecret string
}

type registerRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"date_of_birth"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type oauthExchangeRequest struct {
	Provider string `json:"provider"`
	UID      string `json:"uid"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

type oauthRegisterRequest struct {
	Provider    string `json:"provider"`
	UID         string `json:"uid"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Password    string `json:"password"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"date_of_birth"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "name, email and password required")
		return
	}
	if len(req.Password) < 6 {
		jsonError(w, http.StatusUnprocessableEntity, "password too short (min 6)")
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

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, req.Name, req.Email, string(hash),
		model.RoleMember, req.Gender, req.DateOfBirth)
	if err != nil {
		storeError(w, err, "failed to create user")
		return
	}

	slog.Info("user registered", "user", user.Email)
	jsonResponse(w, http.StatusCreated, user)
}

// Login handles POST /api/auth/login. If the request carries a borrow cart
// token, the cart is bound to the user and older carts are merged in; the
// cart itself is never cleared by an auth transition.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "email and password required")
		return
	}

	user, err := store.GetUserByEmail(r.Context(), h.DB, req.Email)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		slog.Warn("login failed", "email", req.Email, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Email, user.Role)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	h.bindCart(r, user.ID)

	slog.Info("user logged in", "user", user.Email, "role", user.Role)
	jsonResponse(w, http.StatusOK, loginResponse{Token: token, User: user})
}

// Logout handles POST /api/auth/logout by revoking the token's JTI.
// The borrow cart is keyed by its own token and survives logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to revoke token")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		jsonError(w, http.StatusBadRequest, "current and new password required")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil || user == nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		jsonError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	if err := store.UpdateUserPassword(r.Context(), h.DB, claims.UserID, string(hash)); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	slog.Info("user changed own password", "user", claims.Email)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// OAuthExchange handles POST /api/auth/oauth. The OAuth handshake itself
// happens outside this service; this endpoint consumes the identity payload.
// A known email signs in; an unknown one gets the prefill data back so the
// client can complete registration.
func (h *AuthHandler) OAuthExchange(w http.ResponseWriter, r *http.Request) {
	var req oauthExchangeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Provider == "" || req.UID == "" || req.Email == "" {
		jsonError(w, http.StatusBadRequest, "provider, uid and email required")
		return
	}

	user, err := store.GetUserByEmail(r.Context(), h.DB, req.Email)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if user == nil {
		// No account yet: hand the prefill payload back for registration.
		jsonResponse(w, http.StatusOK, map[string]any{
			"registered": false,
			"prefill": map[string]string{
				"provider": req.Provider,
				"uid":      req.UID,
				"email":    req.Email,
				"name":     req.Name,
			},
		})
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Email, user.Role)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	h.bindCart(r, user.ID)

	slog.Info("user logged in via oauth", "user", user.Email, "provider", req.Provider)
	jsonResponse(w, http.StatusOK, map[string]any{
		"registered": true,
		"token":      token,
		"user":       user,
	})
}

// OAuthRegister handles POST /api/auth/oauth/register, completing a
// registration started by OAuthExchange.
func (h *AuthHandler) OAuthRegister(w http.ResponseWriter, r *http.Request) {
	var req oauthRegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Provider == "" || req.UID == "" || req.Email == "" || req.Name == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "provider, uid, email, name and password required")
		return
	}
	if !model.ValidGender(req.Gender) {
		jsonError(w, http.StatusUnprocessableEntity, "invalid gender")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := store.CreateOAuthUser(r.Context(), h.DB, req.Name, req.Email, string(hash),
		req.Gender, req.DateOfBirth, req.Provider, req.UID)
	if err != nil {
		storeError(w, err, "failed to create user")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Email, user.Role)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	h.bindCart(r, user.ID)

	slog.Info("user registered via oauth", "user", user.Email, "provider", req.Provider)
	jsonResponse(w, http.StatusCreated, loginResponse{Token: token, User: user})
}

// bindCart attaches the request's borrow cart (if any) to the user,
// merging older carts bound to the same user. Failures are logged, not
// surfaced: a cart problem must not block a login.
func (h *AuthHandler) bindCart(r *http.Request, userID int64) {
	token := cartToken(r)
	if token == "" {
		return
	}

	cart, err := store.GetCartByToken(r.Context(), h.DB, token)
	if err != nil {
		slog.Error("looking up cart on login", "error", err)
		return
	}
	if cart == nil {
		return
	}

	if err := store.BindCartToUser(r.Context(), h.DB, cart.ID, userID); err != nil {
		slog.Error("binding cart on login", "error", err)
	}
}
