package http

import (
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/fjod/go_cart/storefront/internal/state"
	"go.uber.org/zap"
)

type AuthHandler struct {
	m      *state.Manager
	logger *zap.Logger
}

func NewAuthHandler(m *state.Manager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		m:      m,
		logger: logger,
	}
}

type RegisterRequestDTO struct {
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	DisplayName     string `json:"display_name"`
	DateOfBirth     string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,password_strength"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

type LoginRequestDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the stored user without its password fields.
type UserResponse struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DisplayName string `json:"display_name"`
	DateOfBirth string `json:"date_of_birth"`
	Email       string `json:"email"`
	IsLoggedIn  bool   `json:"isLoggedIn"`
}

func userResponse(u domain.User) UserResponse {
	return UserResponse{
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		DisplayName: u.DisplayName,
		DateOfBirth: u.DateOfBirth,
		Email:       u.Email,
		IsLoggedIn:  u.IsLoggedIn,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequestDTO
	if err := decodeAndValidate(r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	user, err := h.m.Session.Register(r.Context(), domain.User{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		DisplayName:     req.DisplayName,
		DateOfBirth:     req.DateOfBirth,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, userResponse(user))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequestDTO
	if err := decodeAndValidate(r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	user, err := h.m.Session.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, userResponse(user))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.m.Session.Logout(r.Context()); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.m.Session.Current()
	if !ok {
		handleError(w, r, h.logger, session.ErrNoUser)
		return
	}
	respondJSON(w, http.StatusOK, userResponse(user))
}
