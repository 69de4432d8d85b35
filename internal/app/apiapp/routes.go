package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	discoverysvc "github.com/olzhas-sembi/dating-backend/internal/services/discovery"
	matchessvc "github.com/olzhas-sembi/dating-backend/internal/services/matches"
	messagessvc "github.com/olzhas-sembi/dating-backend/internal/services/messages"
	postssvc "github.com/olzhas-sembi/dating-backend/internal/services/posts"
	profilesvc "github.com/olzhas-sembi/dating-backend/internal/services/profiles"
	swipesvc "github.com/olzhas-sembi/dating-backend/internal/services/swipes"
	"github.com/olzhas-sembi/dating-backend/internal/transport/http/handlers"
)

type Dependencies struct {
	LastSeenStore    lastSeenToucher
	DiscoveryService *discoverysvc.Service
	MatchService     *matchessvc.Service
	MessageService   *messagessvc.Service
	PostService      *postssvc.Service
	ProfileService   *profilesvc.Service
	SwipeService     *swipesvc.Service
	Logger           *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService)
	discoveryHandler := handlers.NewDiscoveryHandler(deps.DiscoveryService)
	profileHandler := handlers.NewProfileHandler(deps.ProfileService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService)
	messagesHandler := handlers.NewMessagesHandler(deps.MessageService)
	postsHandler := handlers.NewPostsHandler(deps.PostService)

	identityMW := IdentityMiddleware(deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/v1", func(r chi.Router) {
		r.Use(identityMW)
		r.Use(LastSeenMiddleware(deps.LastSeenStore, deps.Logger))

		r.Route("/profiles", func(r chi.Router) {
			r.Get("/me", profileHandler.Me)
			r.Put("/me", profileHandler.Save)
			r.Delete("/me", profileHandler.Delete)
			r.Get("/{id}", profileHandler.Get)
		})

		r.Route("/swipes", func(r chi.Router) {
			r.Post("/like", swipeHandler.Like)
			r.Post("/dislike", swipeHandler.Dislike)
		})

		r.Get("/discovery/search", discoveryHandler.Search)

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", matchesHandler.List)
			r.Post("/{id}/messages", messagesHandler.Send)
			r.Get("/{id}/messages", messagesHandler.History)
		})

		r.Post("/messages/{id}/read", messagesHandler.MarkRead)

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", postsHandler.Feed)
			r.Post("/", postsHandler.Create)
			r.Get("/{id}", postsHandler.Get)
			r.Post("/{id}/like", postsHandler.ToggleLike)
			r.Delete("/{id}", postsHandler.Delete)
		})
	})
}
