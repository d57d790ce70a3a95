package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/feedbackdesk/feedbackdesk-backend/internal/models"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		limit     string
		wantPage  int
		wantLimit int
	}{
		{"defaults on empty", "", "", 1, 10},
		{"defaults on garbage", "abc", "x", 1, 10},
		{"explicit values", "3", "25", 3, 25},
		{"zero and negative fall back", "0", "-5", 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit := ParsePagination(tt.page, tt.limit)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestPages(t *testing.T) {
	assert.Equal(t, 3, Pages(23, 10))
	assert.Equal(t, 1, Pages(10, 10))
	assert.Equal(t, 2, Pages(11, 10))
	assert.Equal(t, 0, Pages(0, 10))
	assert.Equal(t, 1, Pages(1, 10))
}

func TestCanDeleteFeedback(t *testing.T) {
	record := &models.Feedback{ID: primitive.NewObjectID(), SubmittedBy: "user-1"}

	assert.True(t, CanDeleteFeedback(models.Caller{ID: "user-1", Role: models.RoleUser}, record))
	assert.True(t, CanDeleteFeedback(models.Caller{ID: "other", Role: models.RoleAdmin}, record))
	assert.False(t, CanDeleteFeedback(models.Caller{ID: "other", Role: models.RoleUser}, record))
	assert.False(t, CanDeleteFeedback(models.Caller{ID: "other", Role: models.RoleDeveloper}, record))
}

func TestFeedbackView_ExpandsKnownRefsOnly(t *testing.T) {
	record := models.Feedback{
		ID:          primitive.NewObjectID(),
		Title:       "Broken login",
		SubmittedBy: "user-1",
		AssignedTo:  "dev-7",
	}
	refs := map[string]models.UserRef{
		"user-1": {ID: "user-1", Name: "Ada", Email: "ada@example.com"},
	}

	view := record.View(refs)

	if assert.NotNil(t, view.SubmittedBy) {
		assert.Equal(t, "Ada", view.SubmittedBy.Name)
	}
	assert.Nil(t, view.AssignedTo, "unresolvable assignee stays nil")
	assert.NotNil(t, view.Comments, "comments serialize as [] not null")
}
