package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/feedbackdesk/feedbackdesk-backend/internal/middleware"
	"github.com/feedbackdesk/feedbackdesk-backend/internal/services"
)

const maxAttachmentSize = 10 << 20 // 10MB

// ListFeedbacks handles GET /api/feedbacks with filtering, search and
// pagination. Role "user" only ever sees its own records.
func ListFeedbacks(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	q := r.URL.Query()
	filters := services.ListFilters{
		Status:      q.Get("status"),
		Category:    q.Get("category"),
		Priority:    q.Get("priority"),
		SubmittedBy: q.Get("submittedBy"),
		Search:      q.Get("search"),
	}

	page, err := services.ListFeedbacks(r.Context(), caller, filters, q.Get("page"), q.Get("limit"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// CreateFeedback handles POST /api/feedbacks. Accepts either a JSON body or a
// multipart form carrying an optional file attachment.
func CreateFeedback(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	var in services.CreateFeedbackInput

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxAttachmentSize); err != nil {
			writeMessage(w, http.StatusBadRequest, "Failed to parse form")
			return
		}
		in.Title = r.FormValue("title")
		in.Description = r.FormValue("description")
		in.Category = r.FormValue("category")
		in.Priority = r.FormValue("priority")

		if file, fileHeader, err := r.FormFile("file"); err == nil {
			file.Close()
			path, err := services.Attachments.Save(r.Context(), fileHeader)
			if err != nil {
				writeError(w, err)
				return
			}
			in.Attachment = path
		}
	} else if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := services.CreateFeedback(r.Context(), caller, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// UpdateFeedback handles PUT /api/feedbacks/{id}: partial update plus the
// lifecycle notifications it triggers.
func UpdateFeedback(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	upd, err := services.ParseUpdateFields(body)
	if err != nil {
		writeError(w, err)
		return
	}

	view, err := services.UpdateFeedback(r.Context(), caller, chi.URLParam(r, "id"), upd)
	if err != nil {
		writeServiceError(w, err, "Feedback not found")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// DeleteFeedback handles DELETE /api/feedbacks/{id} (submitter or admin).
func DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := services.DeleteFeedback(r.Context(), caller, id); err != nil {
		writeServiceError(w, err, "Feedback not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "message": "Feedback deleted"})
}

type addCommentRequest struct {
	Text string `json:"text"`
}

// AddComment handles POST /api/feedbacks/{id}/comments.
func AddComment(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := services.AddComment(r.Context(), caller, chi.URLParam(r, "id"), req.Text)
	if err != nil {
		writeServiceError(w, err, "Feedback not found")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// DeleteComment handles DELETE /api/feedbacks/{id}/comments/{commentId}
// (comment author or admin).
func DeleteComment(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	view, err := services.DeleteComment(r.Context(), caller,
		chi.URLParam(r, "id"), chi.URLParam(r, "commentId"))
	if err != nil {
		writeServiceError(w, err, "Comment not found")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetAnalytics handles GET /api/feedbacks/analytics.
func GetAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := services.ComputeAnalytics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}
