package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/feedbackdesk/feedbackdesk-backend/internal/middleware"
	"github.com/feedbackdesk/feedbackdesk-backend/internal/models"
	"github.com/feedbackdesk/feedbackdesk-backend/internal/services"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned on register and login.
type AuthResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

// Register handles POST /api/auth/register.
func Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := services.CreateUser(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := services.CreateSession(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role, Token: token,
	})
}

// Login handles POST /api/auth/login.
func Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := services.AuthenticateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrNotAuthorized) {
			writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeError(w, err)
		return
	}

	token, err := services.CreateSession(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role, Token: token,
	})
}

// Me handles GET /api/auth/me.
func Me(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	user, err := services.GetUserByID(r.Context(), caller.ID)
	if err != nil {
		writeServiceError(w, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// GetDevelopers handles GET /api/auth/developers, the assignment roster.
func GetDevelopers(w http.ResponseWriter, r *http.Request) {
	developers, err := services.ListUsersByRole(r.Context(), models.RoleDeveloper)
	if err != nil {
		writeError(w, err)
		return
	}

	refs := make([]models.UserRef, 0, len(developers))
	for i := range developers {
		refs = append(refs, developers[i].Ref())
	}
	writeJSON(w, http.StatusOK, refs)
}

// GetUsers handles GET /api/users (admin only).
func GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := services.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
