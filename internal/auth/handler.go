package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/ticket-simulator/backend/internal/models"
	"github.com/ayush/ticket-simulator/backend/internal/store"
)

// Cost is the bcrypt work factor used for new passwords (2^10 rounds).
const Cost = bcrypt.DefaultCost

// maxPasswordBytes is the most bcrypt reads; longer passwords are cut to it
// instead of being rejected.
const maxPasswordBytes = 72

func passwordBytes(pw string) []byte {
	b := []byte(pw)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}

const (
	msgRegisterOK     = "Register success"
	msgLoginOK        = "Login success"
	msgLogoutOK       = "Logout success"
	msgMissingFields  = "請提供帳號與密碼"
	msgUserExists     = "使用者名稱已存在"
	msgRegisterFailed = "註冊失敗"
	msgBadCredentials = "帳號或密碼錯誤"
	msgLoginFailed    = "登入失敗"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, username, hashedPassword string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	users UserStore
}

func NewHandler(users UserStore) *Handler {
	return &Handler{users: users}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// Register creates a new user.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error().Err(err).Msg("register: decode body")
		writeMessage(w, http.StatusInternalServerError, msgRegisterFailed)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, msgMissingFields)
		return
	}

	_, err := h.users.GetUserByUsername(r.Context(), req.Username)
	switch {
	case err == nil:
		writeMessage(w, http.StatusBadRequest, msgUserExists)
		return
	case !errors.Is(err, store.ErrNotFound):
		logger.Error().Err(err).Str("username", req.Username).Msg("register: lookup user")
		writeMessage(w, http.StatusInternalServerError, msgRegisterFailed)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword(passwordBytes(req.Password), Cost)
	if err != nil {
		logger.Error().Err(err).Msg("register: hash password")
		writeMessage(w, http.StatusInternalServerError, msgRegisterFailed)
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.Username, string(hashed))
	if errors.Is(err, store.ErrUserExists) {
		// lost a race with a concurrent registration
		writeMessage(w, http.StatusBadRequest, msgUserExists)
		return
	}
	if err != nil {
		logger.Error().Err(err).Str("username", req.Username).Msg("register: create user")
		writeMessage(w, http.StatusInternalServerError, msgRegisterFailed)
		return
	}

	logger.Info().Int64("user_id", user.ID).Msg("user registered")
	writeMessage(w, http.StatusOK, msgRegisterOK)
}

// Login checks credentials and returns the user id. Unknown users and wrong
// passwords get the same response.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error().Err(err).Msg("login: decode body")
		writeMessage(w, http.StatusInternalServerError, msgLoginFailed)
		return
	}

	user, err := h.users.GetUserByUsername(r.Context(), req.Username)
	if errors.Is(err, store.ErrNotFound) {
		writeMessage(w, http.StatusUnauthorized, msgBadCredentials)
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("login: lookup user")
		writeMessage(w, http.StatusInternalServerError, msgLoginFailed)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), passwordBytes(req.Password)); err != nil {
		writeMessage(w, http.StatusUnauthorized, msgBadCredentials)
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{Message: msgLoginOK, UserID: user.ID})
}

// Logout always succeeds; the server keeps no session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, msgLogoutOK)
}
