package api

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/gatherhub/server/internal/api/handlers"
	"github.com/gatherhub/server/internal/api/middleware"
	"github.com/gatherhub/server/internal/config"
	"github.com/gatherhub/server/internal/domain/events"
	"github.com/gatherhub/server/internal/domain/users"
	"github.com/gatherhub/server/internal/email"
	"github.com/gatherhub/server/internal/integrations/gcal"
	"github.com/gatherhub/server/internal/integrations/slack"
	"github.com/gatherhub/server/internal/metrics"
)

type Deps struct {
	Config   config.Config
	Logger   zerolog.Logger
	Users    *users.Service
	Events   *events.Service
	Email    *email.Service
	Calendar *gcal.Client
	Slack    *slack.Client
}

// NewRouter loads the declarative route table and binds each entry to its
// handler and auth wrapper.
func NewRouter(deps Deps) (http.Handler, error) {
	routes, err := LoadRoutes(deps.Config.Server.Routes)
	if err != nil {
		return nil, err
	}

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Email, deps.Config.Server.BaseURL, deps.Logger)
	usersHandler := handlers.NewUsersHandler(deps.Users)
	eventsHandler := handlers.NewEventsHandler(deps.Events)
	emailsHandler := handlers.NewEmailsHandler(deps.Users, deps.Email)
	integrationsHandler := handlers.NewIntegrationsHandler(deps.Calendar, deps.Slack)

	registry := map[string]http.HandlerFunc{
		"auth.login":            authHandler.Login,
		"auth.magic_link":       authHandler.MagicLink,
		"auth.redeem":           authHandler.Redeem,
		"auth.validate":         authHandler.Validate,
		"users.update":          usersHandler.Update,
		"events.create":         eventsHandler.Create,
		"events.find":           eventsHandler.Find,
		"events.invite":         eventsHandler.Invite,
		"events.update":         eventsHandler.Update,
		"emails.send":           emailsHandler.SendToEmails,
		"integrations.calendar": integrationsHandler.CalendarFeed,
		"integrations.chat":     integrationsHandler.ChatHistory,
	}

	requireUser := middleware.RequireUser(deps.Users)
	requireDirector := middleware.RequireDirector(deps.Users)

	mux := http.NewServeMux()
	for _, route := range routes {
		handler, ok := registry[route.Handler]
		if !ok {
			return nil, fmt.Errorf("route %q references unknown handler %q", route.Name, route.Handler)
		}

		var bound http.Handler = handler
		switch route.Auth {
		case AuthUser:
			bound = requireUser(bound)
		case AuthDirector:
			bound = requireDirector(bound)
		}

		mux.Handle(route.Method+" "+route.Path, bound)
	}

	mux.HandleFunc("GET /healthz", handlers.Healthz)
	mux.HandleFunc("GET /readyz", handlers.Readyz)
	mux.Handle("GET /metrics", metrics.Handler())

	var handler http.Handler = mux
	handler = metrics.Middleware(handler)
	handler = middleware.RateLimit(deps.Config.RateLimit)(handler)
	handler = middleware.CORS(deps.Config.CORS, deps.Logger)(handler)
	handler = middleware.RequestLogging(deps.Logger)(handler)
	return handler, nil
}
