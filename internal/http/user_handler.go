package http

import (
	"context"
	"net/http"
	"time"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/service"
)

type UserService interface {
	CreateUser(ctx context.Context, in service.CreateUserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, id int64, in service.UpdateUserInput) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	BlockUser(ctx context.Context, id int64) (*domain.User, error)
	UnblockUser(ctx context.Context, id int64) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
	SubmitContact(ctx context.Context, email, subject, message string) error
}

type UserHandler struct {
	users   UserService
	timeout time.Duration
}

func NewUserHandler(users UserService, timeout time.Duration) *UserHandler {
	return &UserHandler{users: users, timeout: timeout}
}

type CreateUserRequestDTO struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	Address   string `json:"address"`
	Country   string `json:"country"`
}

type UpdateUserRequestDTO struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	Email     string `json:"email" validate:"required,email"`
	Address   string `json:"address"`
	Country   string `json:"country"`
	Role      string `json:"role" validate:"omitempty,oneof=CLIENT ADMIN"`
}

type ContactRequestDTO struct {
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// GET /users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	users, err := h.users.ListUsers(ctx)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	if users == nil {
		users = []*domain.User{}
	}
	respondJSON(r.Context(), w, http.StatusOK, users)
}

// POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CreateUserRequestDTO
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.users.CreateUser(ctx, service.CreateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Address:   req.Address,
		Country:   req.Country,
	})
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusCreated, user)
}

// PUT /users/{id}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateUserRequestDTO
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.users.UpdateUser(ctx, id, service.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Address:   req.Address,
		Country:   req.Country,
		Role:      domain.Role(req.Role),
	})
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, user)
}

// PUT /users/{id}/block
func (h *UserHandler) BlockUser(w http.ResponseWriter, r *http.Request) {
	h.setAccess(w, r, h.users.BlockUser)
}

// PUT /users/{id}/unblock
func (h *UserHandler) UnblockUser(w http.ResponseWriter, r *http.Request) {
	h.setAccess(w, r, h.users.UnblockUser)
}

func (h *UserHandler) setAccess(w http.ResponseWriter, r *http.Request, apply func(context.Context, int64) (*domain.User, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user, err := apply(ctx, id)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, user)
}

// DELETE /users/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.users.DeleteUser(ctx, id); err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /profile?userId=
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := queryID(w, r, "userId", true)
	if !ok {
		return
	}
	user, err := h.users.GetUser(ctx, *userID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, user)
}

// POST /contact
func (h *UserHandler) Contact(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ContactRequestDTO
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.users.SubmitContact(ctx, req.Email, req.Subject, req.Message); err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusAccepted, map[string]string{"status": "queued"})
}
