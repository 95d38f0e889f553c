// Package server assembles the HTTP API: REST routes, WebSocket channels,
// and the health endpoint.
package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	authhandler "octagram/backend/internal/auth/handler"
	authservice "octagram/backend/internal/auth/service"
	healthhandler "octagram/backend/internal/health/handler"
	msghandler "octagram/backend/internal/message/handler"
	msgservice "octagram/backend/internal/message/service"
	notifhandler "octagram/backend/internal/notification/handler"
	notifservice "octagram/backend/internal/notification/service"
	posthandler "octagram/backend/internal/post/handler"
	postservice "octagram/backend/internal/post/service"
	"octagram/backend/internal/realtime"
	"octagram/backend/internal/server/middleware"
	storyhandler "octagram/backend/internal/story/handler"
	storyservice "octagram/backend/internal/story/service"
	userhandler "octagram/backend/internal/user/handler"
	userrepo "octagram/backend/internal/user/repository"
)

// Deps holds the services and middleware the router mounts.
type Deps struct {
	// Auth backs /api/auth (register, login, refresh, logout).
	Auth *authservice.AuthService
	// Users backs /api/users (profiles).
	Users userrepo.Repository
	// Posts backs /api/posts (posts, likes, comments).
	Posts *postservice.PostService
	// Stories backs /api/stories (ephemeral stories).
	Stories *storyservice.StoryService
	// Messages backs /api/messages (conversation history, read receipts).
	Messages *msgservice.MessageService
	// Notifications backs /api/notifications.
	Notifications *notifservice.NotificationService
	// Dispatcher backs the /ws/messages and /ws/notifications channels.
	Dispatcher *realtime.Dispatcher
	// AuthMW guards every authenticated route and authenticates WebSocket upgrades.
	AuthMW *middleware.Auth
	// HealthPinger is used by /healthz for DB readiness (e.g. *sql.DB). Nil skips the check.
	HealthPinger healthhandler.Pinger
	// HealthPolicyChecker is used by /healthz for the authz engine. Nil skips the check.
	HealthPolicyChecker healthhandler.PolicyChecker
	// Logger receives request logs and handler errors.
	Logger *slog.Logger
}

// NewRouter builds the full route tree.
//
// Route → handler mapping:
//   - /api/auth          → internal/auth/handler
//   - /api/users         → internal/user/handler
//   - /api/posts         → internal/post/handler
//   - /api/stories       → internal/story/handler
//   - /api/messages      → internal/message/handler
//   - /api/notifications → internal/notification/handler
//   - /ws/messages       → internal/realtime (message channel)
//   - /ws/notifications  → internal/realtime (notification channel)
//   - /healthz           → internal/health/handler
func NewRouter(deps Deps) chi.Router {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(logger, map[string]bool{"/healthz": true}))

	r.Method("GET", "/healthz", healthhandler.NewHandler(deps.HealthPinger, deps.HealthPolicyChecker))

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(rt chi.Router) {
			authhandler.NewHandler(deps.Auth, logger).Routes(rt, deps.AuthMW)
		})
		api.Route("/users", func(rt chi.Router) {
			userhandler.NewHandler(deps.Users, logger).Routes(rt, deps.AuthMW)
		})
		api.Route("/posts", func(rt chi.Router) {
			posthandler.NewHandler(deps.Posts, logger).Routes(rt, deps.AuthMW)
		})
		api.Route("/stories", func(rt chi.Router) {
			storyhandler.NewHandler(deps.Stories, logger).Routes(rt, deps.AuthMW)
		})
		api.Route("/messages", func(rt chi.Router) {
			msghandler.NewHandler(deps.Messages, logger).Routes(rt, deps.AuthMW)
		})
		api.Route("/notifications", func(rt chi.Router) {
			notifhandler.NewHandler(deps.Notifications, logger).Routes(rt, deps.AuthMW)
		})
	})

	if deps.Dispatcher != nil {
		r.Method("GET", "/ws/messages", realtime.NewMessageChannelHandler(deps.Dispatcher, deps.AuthMW, logger))
		r.Method("GET", "/ws/notifications", realtime.NewNotificationChannelHandler(deps.Dispatcher, deps.AuthMW, logger))
	}

	return r
}
