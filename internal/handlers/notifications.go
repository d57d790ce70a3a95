package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/feedbackdesk/feedbackdesk-backend/internal/middleware"
	"github.com/feedbackdesk/feedbackdesk-backend/internal/services"
)

// GetNotifications handles GET /api/notifications, newest first.
func GetNotifications(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	items, err := services.ListNotifications(r.Context(), caller.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// MarkNotificationRead handles PUT /api/notifications/{id}/read. Only the
// recipient may mark their notification read.
func MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	notification, err := services.MarkNotificationRead(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, "Notification not found")
		return
	}
	writeJSON(w, http.StatusOK, notification)
}
