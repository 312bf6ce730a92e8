// internal/handlers/user.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wildstack/server/internal/auth"
	"github.com/wildstack/server/internal/database"
	"github.com/wildstack/server/internal/models"
)

// EnsureGuestUser resolves the caller's identity from the auth_token cookie,
// minting a fresh guest identity when the cookie is missing or invalid.
// Guests are pure token-holders; nothing is written to the database.
func (s *Server) EnsureGuestUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, error) {
	token := cookieValue(r.Header.Get("Cookie"), auth.CookieName)
	if token != "" {
		if userID, err := s.Keyring.VerifyToken(token); err == nil {
			return userID, nil
		}
	}

	userID := uuid.New()
	newToken, err := s.Keyring.MintToken(userID)
	if err != nil {
		return uuid.Nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    newToken,
		HttpOnly: true,
		Path:     "/",
		MaxAge:   s.Keyring.CookieMaxAge(),
	})
	return userID, nil
}

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// CreateUserHandler registers an account. Requires a database.
func (s *Server) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "accounts are not enabled", http.StatusServiceUnavailable)
		return
	}

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "email and password are required", http.StatusBadRequest)
		return
	}

	user := models.User{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	}
	if err := s.DB.CreateUser(r.Context(), &user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			http.Error(w, "email already exists", http.StatusConflict)
			return
		}
		s.Logger.WithError(err).Error("create user failed")
		http.Error(w, "error creating user", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// LoginHandler authenticates an account and sets the session cookie. The
// token is also returned in the body for non-browser clients.
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "accounts are not enabled", http.StatusServiceUnavailable)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	user, err := s.DB.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, database.ErrInvalidCredentials) {
			http.Error(w, "authentication failed", http.StatusForbidden)
			return
		}
		s.Logger.WithError(err).Error("login failed")
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	token, err := s.Keyring.MintToken(user.ID)
	if err != nil {
		s.Logger.WithError(err).Error("mint token failed")
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		MaxAge:   s.Keyring.CookieMaxAge(),
	})
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}
