package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/uwpokerclub/clubhouse/handlers"
	"github.com/uwpokerclub/clubhouse/middleware"
)

// SetupRoutes wires the full admin API. Everything except login and the
// websocket endpoint sits behind the JWT middleware.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	semesterHandler *handlers.SemesterHandler,
	memberHandler *handlers.MemberHandler,
	membershipHandler *handlers.MembershipHandler,
	eventHandler *handlers.EventHandler,
	participantHandler *handlers.ParticipantHandler,
	rankingHandler *handlers.RankingHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/login", authHandler.LoginHandler)
	router.Get("/ws/semesters/{semesterID}", webSocketHandler.ServeWS)

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))

		r.Route("/semesters", func(r chi.Router) {
			r.Post("/", semesterHandler.CreateHandler)
			r.Get("/", semesterHandler.ListHandler)
			r.Get("/{semesterID}", semesterHandler.GetByIDHandler)
			r.Get("/{semesterID}/dashboard", semesterHandler.DashboardHandler)
			r.Get("/{semesterID}/events", eventHandler.ListBySemesterHandler)
			r.Get("/{semesterID}/memberships", membershipHandler.ListBySemesterHandler)
			r.Get("/{semesterID}/rankings", rankingHandler.ListBySemesterHandler)
			r.Get("/{semesterID}/rankings/export", rankingHandler.DownloadExportHandler)
			r.Post("/{semesterID}/rankings/export", rankingHandler.UploadExportHandler)
		})

		r.Route("/members", func(r chi.Router) {
			r.Post("/", memberHandler.CreateHandler)
			r.Get("/", memberHandler.ListHandler)
			r.Get("/{memberID}", memberHandler.GetByIDHandler)
		})

		r.Route("/memberships", func(r chi.Router) {
			r.Post("/", membershipHandler.CreateHandler)
			r.Get("/{membershipID}", membershipHandler.GetByIDHandler)
		})

		r.Route("/events", func(r chi.Router) {
			r.Post("/", eventHandler.CreateHandler)
			r.Get("/{eventID}", eventHandler.GetByIDHandler)
			r.Patch("/{eventID}", eventHandler.UpdateHandler)
			r.Post("/{eventID}/end", eventHandler.EndHandler)
			r.Post("/{eventID}/restart", eventHandler.RestartHandler)
			r.Get("/{eventID}/participants", participantHandler.ListByEventHandler)
		})

		r.Route("/participants", func(r chi.Router) {
			r.Post("/", participantHandler.RegisterHandler)
			r.Post("/sign-out", participantHandler.SignOutHandler)
			r.Post("/sign-in", participantHandler.SignInHandler)
			r.Post("/rebuy", participantHandler.RebuyHandler)
			r.Delete("/", participantHandler.RemoveHandler)
		})
	})
}
