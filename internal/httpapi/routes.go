package httpapi

import (
	"net/http"

	"github.com/DoyleJ11/live-draft-backend/internal/catalog"
	"github.com/DoyleJ11/live-draft-backend/internal/hub"
	"github.com/DoyleJ11/live-draft-backend/internal/store"
	"github.com/DoyleJ11/live-draft-backend/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type Deps struct {
	Hub            *hub.Hub
	Store          store.Store
	Catalog        catalog.Catalog
	Clock          clockwork.Clock
	Logger         *zap.Logger
	AllowedOrigins []string
	OutboxSize     int
}

func SetupRoutes(d Deps) http.Handler {
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(d.Hub, ws.Options{
		OriginPatterns: d.AllowedOrigins,
		OutboxSize:     d.OutboxSize,
		Clock:          d.Clock,
		Logger:         d.Logger,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/players", ListPlayers(d.Catalog, d.Logger))
		r.Route("/live-drafts", func(r chi.Router) {
			r.Post("/", CreateDraft(d.Hub, d.Clock, d.Logger))
			r.Get("/", ListLobbies(d.Store, d.Logger))
			r.Get("/{id}", GetDraft(d.Hub, d.Logger))
			r.Delete("/{id}", DeleteDraft(d.Hub, d.Logger))
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}
