package routes

import (
	_ "embed"
	"net/http"

	"github.com/club-padel/admin-api/handlers"
	"github.com/club-padel/admin-api/middleware"
	"github.com/club-padel/admin-api/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed swagger.json
var swaggerDoc []byte

func SetupRoutes(
	router *chi.Mux,
	authenticator *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	playerHandler *handlers.PlayerHandler,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
	registrationHandler *handlers.RegistrationHandler,
	dashboardHandler *handlers.DashboardHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	adminOnly := func(r chi.Router) chi.Router {
		r.Use(authenticator.Authenticate)
		r.Use(middleware.RequireRole(models.RoleAdmin))
		return r
	}

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/players", func(r chi.Router) {
		r.Get("/", playerHandler.List)
		r.Get("/ranking", playerHandler.Ranking)
		r.Get("/{id}", playerHandler.Get)

		r.Group(func(r chi.Router) {
			adminOnly(r)
			r.Post("/", playerHandler.Create)
			r.Put("/{id}", playerHandler.Update)
			r.Delete("/{id}", playerHandler.Delete)
			r.Post("/{id}/avatar", playerHandler.UploadAvatar)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.List)
		r.Get("/{id}", tournamentHandler.Get)
		r.Get("/{id}/matches", tournamentHandler.Matches)
		r.Get("/{id}/bracket", tournamentHandler.Bracket)

		// Подача заявки публичная: записаться может любой посетитель.
		r.Post("/{id}/registrations", registrationHandler.Submit)

		r.Group(func(r chi.Router) {
			adminOnly(r)
			r.Post("/", tournamentHandler.Create)
			r.Put("/{id}", tournamentHandler.Update)
			r.Delete("/{id}", tournamentHandler.Delete)
			r.Get("/{id}/registrations", registrationHandler.ListByTournament)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/", matchHandler.List)
		r.Get("/calendar", matchHandler.Calendar)
		r.Get("/{id}", matchHandler.Get)

		r.Group(func(r chi.Router) {
			adminOnly(r)
			r.Post("/", matchHandler.Create)
			r.Post("/{id}/result", matchHandler.Finalize)
			r.Post("/{id}/reopen", matchHandler.Reopen)
		})
	})

	router.Route("/registrations", func(r chi.Router) {
		adminOnly(r)
		r.Post("/{id}/approve", registrationHandler.Approve)
		r.Post("/{id}/reject", registrationHandler.Reject)
	})

	router.Get("/dashboard", dashboardHandler.Stats)

	router.Get("/ws/matches", webSocketHandler.ServeMatches)
	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeTournament)

	router.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(swaggerDoc)
	})
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
}
