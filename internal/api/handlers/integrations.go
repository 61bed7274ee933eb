package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gatherhub/server/internal/api/respond"
	"github.com/gatherhub/server/internal/integrations/gcal"
	"github.com/gatherhub/server/internal/integrations/slack"
)

type IntegrationsHandler struct {
	Calendar *gcal.Client
	Slack    *slack.Client
}

func NewIntegrationsHandler(calendar *gcal.Client, slackClient *slack.Client) *IntegrationsHandler {
	return &IntegrationsHandler{Calendar: calendar, Slack: slackClient}
}

// CalendarFeed returns upcoming entries from the community calendar.
func (h *IntegrationsHandler) CalendarFeed(w http.ResponseWriter, r *http.Request) {
	numEvents := queryInt(r, "num_events")

	items, err := h.Calendar.UpcomingEvents(r.Context(), numEvents)
	switch {
	case errors.Is(err, gcal.ErrNoCredentials):
		respond.Write(w, respond.Error(http.StatusBadRequest, "Please interactively generate the stored credentials file."))
		return
	case errors.Is(err, gcal.ErrNoEvents):
		respond.Write(w, respond.Error(http.StatusBadRequest, "Unable to get events."))
		return
	case err != nil:
		respond.Write(w, respond.Error(http.StatusBadRequest, "Unable to get events."))
		return
	}

	respond.Write(w, respond.OK(items))
}

// ChatHistory returns recent messages from the announcements channel.
func (h *IntegrationsHandler) ChatHistory(w http.ResponseWriter, r *http.Request) {
	numMessages := queryInt(r, "num_messages")

	messages, err := h.Slack.History(r.Context(), numMessages)
	switch {
	case errors.Is(err, slack.ErrNoMessages):
		respond.Write(w, respond.Error(http.StatusBadRequest, "No messages found."))
		return
	case err != nil:
		respond.Write(w, respond.Error(http.StatusBadRequest, "Unable to retrieve messages"))
		return
	}

	respond.Write(w, respond.OK(messages))
}

func queryInt(r *http.Request, key string) int {
	value, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return value
}
