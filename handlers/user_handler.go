package handlers

import (
	"context"
	"errors"
	"net/http"

	"challengeTrackerAPI/internal/store"
	"challengeTrackerAPI/internal/types/user"
	"challengeTrackerAPI/services"
)

// usersListLimit matches the user picker in the web client.
const usersListLimit = 10

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GET /api/users
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	users, err := h.userService.List(ctx, usersListLimit)
	if err != nil {
		respondWithServiceError(w, r, "GetUsers", err, "Failed to fetch users")
		return
	}

	respondWithJSON(w, http.StatusOK, users)
}

// GET /api/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	u, err := h.userService.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		respondWithServiceError(w, r, "GetUser", err, "Failed to fetch user")
		return
	}

	respondWithJSON(w, http.StatusOK, u)
}

// POST /api/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req user.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDecodeError(w, err, "Invalid user data")
		return
	}

	u, err := h.userService.Create(ctx, &req)
	if err != nil {
		respondWithServiceError(w, r, "CreateUser", err, "Failed to create user")
		return
	}

	respondWithJSON(w, http.StatusCreated, u)
}
