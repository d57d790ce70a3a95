package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/feedbackdesk/feedbackdesk-backend/internal/handlers"
	"github.com/feedbackdesk/feedbackdesk-backend/internal/middleware"
	"github.com/feedbackdesk/feedbackdesk-backend/internal/models"
)

func SetupRoutes(r *chi.Mux) {
	// Public auth routes
	r.Post("/api/auth/register", handlers.Register)
	r.With(middleware.LoginRateLimit).Post("/api/auth/login", handlers.Login)

	// Everything else requires a valid session token
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/api/auth/me", handlers.Me)
		r.Get("/api/auth/developers", handlers.GetDevelopers)
		r.With(middleware.RequireRole(models.RoleAdmin)).Get("/api/users", handlers.GetUsers)

		// Feedback lifecycle. Analytics must register before the {id} routes.
		r.Get("/api/feedbacks/analytics", handlers.GetAnalytics)
		r.Get("/api/feedbacks", handlers.ListFeedbacks)
		r.Post("/api/feedbacks", handlers.CreateFeedback)
		r.Put("/api/feedbacks/{id}", handlers.UpdateFeedback)
		r.Delete("/api/feedbacks/{id}", handlers.DeleteFeedback)
		r.Post("/api/feedbacks/{id}/comments", handlers.AddComment)
		r.Delete("/api/feedbacks/{id}/comments/{commentId}", handlers.DeleteComment)

		// Notifications (pull-based; no push channel)
		r.Get("/api/notifications", handlers.GetNotifications)
		r.Put("/api/notifications/{id}/read", handlers.MarkNotificationRead)
	})
}
