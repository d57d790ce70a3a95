package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/feedbackdesk/feedbackdesk-backend/internal/models"
)

func TestCanDeleteComment(t *testing.T) {
	comment := &models.Comment{AuthorID: "user-1", Author: "Ada", Role: models.RoleUser}

	tests := []struct {
		name   string
		caller models.Caller
		want   bool
	}{
		{"author may delete", models.Caller{ID: "user-1", Role: models.RoleUser}, true},
		{"admin may delete", models.Caller{ID: "admin-1", Role: models.RoleAdmin}, true},
		{"other user may not", models.Caller{ID: "user-2", Role: models.RoleUser}, false},
		{"developer may not", models.Caller{ID: "dev-1", Role: models.RoleDeveloper}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanDeleteComment(tt.caller, comment))
		})
	}
}
