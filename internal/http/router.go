package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	accounthttp "github.com/deallock/deallock/internal/http/account"
	"github.com/deallock/deallock/internal/http/auth"
	dealhttp "github.com/deallock/deallock/internal/http/deal"
	notificationhttp "github.com/deallock/deallock/internal/http/notification"
)

func New(
	jwt *auth.Manager,
	accounts *accounthttp.Handler,
	deals *dealhttp.Handler,
	notifications *notificationhttp.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// The activation link lands here from the email, outside /api.
	router.Get("/activate", accounts.Activate)

	router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			accounts.Routes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(jwt.RequireAuth)

			r.Route("/deals", deals.Routes)
			r.Route("/notifications", notifications.Routes)

			r.Route("/admin", func(r chi.Router) {
				r.Use(auth.RequireAdmin)
				deals.AdminRoutes(r)
			})
		})
	})

	return router
}
