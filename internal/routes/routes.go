package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/postlane/postlane/internal/app"
	"github.com/postlane/postlane/internal/handler"
	"github.com/postlane/postlane/internal/middleware"
	"github.com/postlane/postlane/internal/token"
)

func SetupRoutes(a *app.App) http.Handler {
	auth := handler.NewAuthHandler(a.AuthService)
	users := handler.NewUserHandler(a.UserService)
	posts := handler.NewPostHandler(a.PostService)

	r := chi.NewRouter()

	r.Use(middleware.RequestLogging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.Cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/sign-up", auth.SignUp)
			r.Post("/sign-in", auth.SignIn)
			r.Post("/forgot-password", auth.ForgotPassword)
			r.Post("/account-restore", auth.AccountRestore)

			r.With(a.Auth.CheckRefreshToken).Post("/refresh", auth.Refresh)

			r.With(a.Auth.CheckActionToken(token.KindForgotPassword)).
				Put("/forgot-password", auth.ForgotPasswordSet)
			r.With(a.Auth.CheckActionToken(token.KindVerifyEmail)).
				Post("/verify-email", auth.VerifyEmail)
			r.With(a.Auth.CheckActionToken(token.KindAccountRestore)).
				Put("/account-restore", auth.AccountRestoreSet)

			r.Group(func(r chi.Router) {
				r.Use(a.Auth.CheckAccessToken)
				r.Post("/logout", auth.Logout)
				r.Post("/logout-all", auth.LogoutAll)
				r.Put("/change-password", auth.ChangePassword)
				r.Post("/resend-verification", auth.ResendVerification)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(a.Auth.CheckAccessToken)
			r.Get("/", users.List)
			r.Get("/me", users.Me)
			r.Patch("/me", users.UpdateMe)
			r.Delete("/me", users.DeleteMe)
			r.Get("/{userId}", users.ByID)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/{userId}", posts.ListByUser)

			r.Group(func(r chi.Router) {
				r.Use(a.Auth.CheckAccessToken)
				r.Use(middleware.RequireVerified)
				r.Post("/", posts.Create)
				r.Patch("/{postId}", posts.Update)
				r.Delete("/{postId}", posts.Delete)
			})
		})
	})

	return r
}
