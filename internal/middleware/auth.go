package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/feedbackdesk/feedbackdesk-backend/internal/models"
	"github.com/feedbackdesk/feedbackdesk-backend/internal/services"
)

type callerContextKey struct{}

// CallerFromContext returns the authenticated caller attached by RequireAuth.
func CallerFromContext(ctx context.Context) (models.Caller, bool) {
	caller, ok := ctx.Value(callerContextKey{}).(models.Caller)
	return caller, ok
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// RequireAuth resolves the bearer token to a caller identity and attaches it
// to the request context. Requests without a valid session get 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			unauthorized(w, "Not authorized, no token")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		userID, ok := services.ValidateSession(r.Context(), token)
		if !ok {
			unauthorized(w, "Not authorized, token failed")
			return
		}

		user, err := services.GetUserByID(r.Context(), userID)
		if err != nil {
			unauthorized(w, "Not authorized, token failed")
			return
		}

		caller := models.Caller{ID: user.ID, Name: user.Name, Role: user.Role}
		ctx := context.WithValue(r.Context(), callerContextKey{}, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route to the given roles. Must run after RequireAuth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := CallerFromContext(r.Context())
			if !ok {
				unauthorized(w, "Not authorized, no token")
				return
			}
			for _, role := range roles {
				if caller.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]string{
				"message": "User role " + caller.Role + " is not authorized to access this route",
			})
		})
	}
}
