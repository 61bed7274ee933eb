package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/gatherhub/server/internal/api/middleware"
	"github.com/gatherhub/server/internal/api/respond"
	"github.com/gatherhub/server/internal/auth"
	"github.com/gatherhub/server/internal/domain/users"
	"github.com/gatherhub/server/internal/email"
)

const magicLinkTemplate = "magic_link"

type AuthHandler struct {
	Users   *users.Service
	Email   *email.Service
	BaseURL string
	Logger  zerolog.Logger
}

func NewAuthHandler(usersService *users.Service, emailService *email.Service, baseURL string, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		Users:   usersService,
		Email:   emailService,
		BaseURL: baseURL,
		Logger:  logger,
	}
}

// Validate echoes back the user resolved from the request's token. The auth
// middleware has already done the work.
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		respond.Write(w, respond.Error(http.StatusInternalServerError, "Internal server error."))
		return
	}
	respond.Write(w, respond.OK(map[string]any(user)))
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respond.Write(w, respond.Error(http.StatusBadRequest, "%v", err))
		return
	}

	user, token, err := h.Users.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, users.ErrNotFound):
		respond.Write(w, respond.Error(http.StatusNotFound, "User email not found."))
		return
	case errors.Is(err, users.ErrInvalidCredentials):
		respond.Write(w, respond.Error(http.StatusForbidden, "Invalid credentials."))
		return
	case err != nil:
		h.Logger.Error().Err(err).Msg("login failed")
		respond.Write(w, respond.Error(http.StatusInternalServerError, "Internal server error."))
		return
	}

	respond.Write(w, respond.OK(map[string]any{
		"email": user.Email(),
		"token": token,
	}))
}

type magicLinkRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// MagicLink issues a single-use login link and emails it. The response does
// not reveal whether the address is registered.
func (h *AuthHandler) MagicLink(w http.ResponseWriter, r *http.Request) {
	var req magicLinkRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respond.Write(w, respond.Error(http.StatusBadRequest, "%v", err))
		return
	}

	accepted := respond.OK("If the address is registered, a login link is on its way.")

	link, err := h.Users.RequestMagicLink(r.Context(), req.Email)
	if errors.Is(err, users.ErrNotFound) {
		respond.Write(w, accepted)
		return
	}
	if err != nil {
		h.Logger.Error().Err(err).Msg("issuing magic link failed")
		respond.Write(w, respond.Error(http.StatusInternalServerError, "Internal server error."))
		return
	}

	if err := h.Email.SendLink(req.Email, link.URL(h.BaseURL), magicLinkTemplate); err != nil {
		if errors.Is(err, email.ErrNoTemplate) {
			respond.Write(w, respond.Error(http.StatusBadRequest, "There is no template named %s.txt", magicLinkTemplate))
			return
		}
		h.Logger.Error().Err(err).Str("email", req.Email).Msg("sending magic link failed")
		respond.Write(w, respond.Error(http.StatusInternalServerError, "Internal server error."))
		return
	}

	respond.Write(w, accepted)
}

type redeemRequest struct {
	Token string `json:"token" validate:"required"`
}

// Redeem exchanges a magic-link token for a session token. The token may
// arrive as a query parameter (from the emailed link) or in the body.
func (h *AuthHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		var req redeemRequest
		if err := decodeAndValidate(r, &req); err != nil {
			respond.Write(w, respond.Error(http.StatusBadRequest, "%v", err))
			return
		}
		token = req.Token
	}

	user, session, err := h.Users.RedeemMagicLink(r.Context(), token)
	switch {
	case errors.Is(err, auth.ErrLinkNotFound), errors.Is(err, auth.ErrLinkExpired):
		respond.Write(w, respond.Error(http.StatusBadRequest, "Invalid or expired login link."))
		return
	case errors.Is(err, users.ErrNotFound):
		respond.Write(w, respond.Error(http.StatusNotFound, "User email not found."))
		return
	case err != nil:
		h.Logger.Error().Err(err).Msg("redeeming magic link failed")
		respond.Write(w, respond.Error(http.StatusInternalServerError, "Internal server error."))
		return
	}

	respond.Write(w, respond.OK(map[string]any{
		"email": user.Email(),
		"token": session,
	}))
}
