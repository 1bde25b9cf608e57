package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/oriys/vega/internal/domain"
)

// CreateUser handles POST /users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.Repo.CreateUser(r.Context(), req.Username, req.Email, req.SteamID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondOK(w, "User created successfully", map[string]int64{"id": id})
}

// ListUsers handles GET /users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Repo.ListUsers(r.Context())
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondOK(w, fmt.Sprintf("Found %d users", len(users)), users)
}

// userID parses the {id} path value, writing a 400 on non-numeric
// input.
func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "user id must be numeric")
		return 0, false
	}
	return id, true
}

// GetUser handles GET /users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	user, err := h.Repo.GetUser(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if user == nil {
		respondError(w, http.StatusNotFound, fmt.Sprintf("User %d not found", id))
		return
	}
	respondOK(w, "User found", user)
}

// DeleteUser handles DELETE /users/{id}. Deleting an id that does not
// exist is a 404, not an error.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	deleted, err := h.Repo.DeleteUser(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, fmt.Sprintf("User %d not found", id))
		return
	}
	respondOK(w, "User deleted successfully", nil)
}
