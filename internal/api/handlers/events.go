package handlers

import (
	"errors"
	"net/http"

	"github.com/gatherhub/server/internal/api/middleware"
	"github.com/gatherhub/server/internal/api/respond"
	"github.com/gatherhub/server/internal/domain/events"
)

type EventsHandler struct {
	Events *events.Service
}

func NewEventsHandler(eventsService *events.Service) *EventsHandler {
	return &EventsHandler{Events: eventsService}
}

type createEventRequest struct {
	Token     string `json:"token,omitempty"`
	Name      string `json:"name" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
	EventType string `json:"event_type" validate:"required,oneof=public private"`
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFrom(r.Context())
	if !ok {
		respond.Write(w, respond.Error(http.StatusInternalServerError, "Internal server error."))
		return
	}

	var req createEventRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respond.Write(w, respond.Error(http.StatusBadRequest, "%v", err))
		return
	}

	created, err := h.Events.Create(r.Context(), caller.Email(), events.CreateParams{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		EventType: req.EventType,
	})
	if err != nil {
		respond.Write(w, eventFailure(err))
		return
	}

	respond.Write(w, respond.OK(created.Wire()))
}

type findEventsRequest struct {
	Token     string `json:"token,omitempty"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
}

// Find returns the events visible to the caller inside the requested window.
func (h *EventsHandler) Find(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFrom(r.Context())
	if !ok {
		respond.Write(w, respond.Error(http.StatusInternalServerError, "Internal server error."))
		return
	}

	var req findEventsRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respond.Write(w, respond.Error(http.StatusBadRequest, "%v", err))
		return
	}

	found, err := h.Events.Find(r.Context(), caller.Email(), req.StartDate, req.EndDate)
	if err != nil {
		respond.Write(w, eventFailure(err))
		return
	}

	wire := make([]map[string]any, len(found))
	for i, event := range found {
		wire[i] = event.Wire()
	}
	respond.Write(w, respond.OK(wire))
}

type inviteRequest struct {
	Token    string `json:"token,omitempty"`
	EventID  string `json:"event_id" validate:"required"`
	Attendee string `json:"attendee" validate:"required,email"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=host guest"`
}

func (h *EventsHandler) Invite(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFrom(r.Context())
	if !ok {
		respond.Write(w, respond.Error(http.StatusInternalServerError, "Internal server error."))
		return
	}

	var req inviteRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respond.Write(w, respond.Error(http.StatusBadRequest, "%v", err))
		return
	}

	updated, err := h.Events.Invite(r.Context(), caller.Email(), req.EventID, req.Attendee, req.Role)
	if err != nil {
		respond.Write(w, eventFailure(err))
		return
	}

	respond.Write(w, respond.OK(updated.Wire()))
}

type updateEventRequest struct {
	Token   string                    `json:"token,omitempty"`
	EventID string                    `json:"event_id" validate:"required"`
	Updates map[string]map[string]any `json:"updates" validate:"required"`
}

// Update sets fields on an event. Only the $set operator group is honored.
func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateEventRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respond.Write(w, respond.Error(http.StatusBadRequest, "%v", err))
		return
	}

	fields := req.Updates["$set"]
	if len(fields) == 0 {
		respond.Write(w, respond.Error(http.StatusBadRequest, "updates must contain a non-empty $set group"))
		return
	}

	updated, err := h.Events.Update(r.Context(), req.EventID, fields)
	if err != nil {
		respond.Write(w, eventFailure(err))
		return
	}

	respond.Write(w, respond.OK(updated.Wire()))
}

func eventFailure(err error) respond.Envelope {
	var validationErr events.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return respond.Error(http.StatusBadRequest, "%v", validationErr)
	case errors.Is(err, events.ErrNotFound):
		return respond.Error(http.StatusNotFound, "Event not found.")
	case errors.Is(err, events.ErrForbidden):
		return respond.Error(http.StatusForbidden, "Only hosts may invite to this event.")
	default:
		return respond.Error(http.StatusInternalServerError, "Internal server error.")
	}
}
