package handlers

import (
	"errors"
	"net/http"

	"github.com/gatherhub/server/internal/api/middleware"
	"github.com/gatherhub/server/internal/api/respond"
	"github.com/gatherhub/server/internal/domain/users"
	"github.com/gatherhub/server/internal/email"
)

type EmailsHandler struct {
	Users *users.Service
	Email *email.Service
}

func NewEmailsHandler(usersService *users.Service, emailService *email.Service) *EmailsHandler {
	return &EmailsHandler{Users: usersService, Email: emailService}
}

type sendRequest struct {
	Token      string         `json:"token,omitempty"`
	Template   string         `json:"template" validate:"required"`
	Recipients []string       `json:"recipients,omitempty" validate:"omitempty,dive,email"`
	Links      []string       `json:"links,omitempty"`
	Query      map[string]any `json:"query,omitempty"`
}

// SendToEmails delivers a template to an explicit recipient list or to the
// users matching a document query. Non-directors may only email themselves.
func (h *EmailsHandler) SendToEmails(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFrom(r.Context())
	if !ok {
		respond.Write(w, respond.Error(http.StatusInternalServerError, "Internal server error."))
		return
	}

	var req sendRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respond.Write(w, respond.Error(http.StatusBadRequest, "%v", err))
		return
	}

	recipients := req.Recipients
	if !caller.IsDirector() {
		if len(req.Query) > 0 || len(recipients) != 1 || recipients[0] != caller.Email() {
			respond.Write(w, respond.Error(http.StatusForbidden, "Not authorized to send emails!"))
			return
		}
	}

	// The query only runs when no explicit recipient list was given.
	if len(recipients) == 0 && len(req.Query) > 0 {
		resolved, err := h.Users.Emails(r.Context(), req.Query)
		if err != nil {
			respond.Write(w, respond.Error(http.StatusInternalServerError, "Internal server error."))
			return
		}
		if len(resolved) == 0 {
			respond.Write(w, respond.NoContent())
			return
		}
		recipients = resolved
	}

	if len(recipients) == 0 {
		respond.Write(w, respond.Error(http.StatusBadRequest, "No recipients given."))
		return
	}

	failed, err := h.Email.SendToAll(recipients, req.Links, req.Template)
	switch {
	case errors.Is(err, email.ErrNoTemplate):
		respond.Write(w, respond.Error(http.StatusBadRequest, "There is no template named %s.txt", req.Template))
		return
	case errors.Is(err, email.ErrUnavailable):
		respond.Write(w, respond.Error(http.StatusInternalServerError, "Mail service unavailable."))
		return
	case err != nil:
		respond.Write(w, respond.Error(http.StatusInternalServerError, "Internal server error."))
		return
	}

	if len(failed) > 0 {
		respond.Write(w, respond.Error(http.StatusBadRequest, "List of emails failed: %v", failed))
		return
	}

	respond.Write(w, respond.OK("Success!"))
}
