package handlers

import (
	"errors"
	"net/http"

	"github.com/gatherhub/server/internal/api/middleware"
	"github.com/gatherhub/server/internal/api/respond"
	"github.com/gatherhub/server/internal/domain/users"
)

type UsersHandler struct {
	Users *users.Service
}

func NewUsersHandler(usersService *users.Service) *UsersHandler {
	return &UsersHandler{Users: usersService}
}

type updateUserRequest struct {
	Token     string                    `json:"token,omitempty"`
	UserEmail string                    `json:"user_email" validate:"required,email"`
	Updates   map[string]map[string]any `json:"updates" validate:"required"`
}

// Update applies operator-grouped changes to a user document. Callers may
// update themselves; directors may update anyone.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFrom(r.Context())
	if !ok {
		respond.Write(w, respond.Error(http.StatusInternalServerError, "Internal server error."))
		return
	}

	var req updateUserRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respond.Write(w, respond.Error(http.StatusBadRequest, "%v", err))
		return
	}

	err := h.Users.Update(r.Context(), caller, req.UserEmail, req.Updates)
	switch {
	case errors.Is(err, users.ErrForbidden):
		respond.Write(w, respond.Error(http.StatusForbidden, "Permission denied"))
		return
	case errors.Is(err, users.ErrNotFound):
		respond.Write(w, respond.Error(http.StatusNotFound, "User email not found."))
		return
	case err != nil:
		respond.Write(w, respond.Error(http.StatusInternalServerError, "Internal server error."))
		return
	}

	respond.Write(w, respond.OK("Successful request."))
}
