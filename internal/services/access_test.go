package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/feedbackdesk/feedbackdesk-backend/internal/models"
)

func TestScopeFilters_UserPinnedToOwnRecords(t *testing.T) {
	caller := models.Caller{ID: "user-1", Role: models.RoleUser}

	tests := []struct {
		name    string
		filters ListFilters
	}{
		{"no filters", ListFilters{}},
		{"foreign submittedBy", ListFilters{SubmittedBy: "user-2"}},
		{"own submittedBy", ListFilters{SubmittedBy: "user-1"}},
		{"other filters kept", ListFilters{Status: "Open", SubmittedBy: "user-2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScopeFilters(caller, tt.filters)
			assert.Equal(t, "user-1", got.SubmittedBy)
			assert.Equal(t, tt.filters.Status, got.Status)
		})
	}
}

func TestScopeFilters_DeveloperAndAdminPassThrough(t *testing.T) {
	filters := ListFilters{Status: "Resolved", SubmittedBy: "user-2", Search: "crash"}

	for _, role := range []string{models.RoleDeveloper, models.RoleAdmin} {
		caller := models.Caller{ID: "someone", Role: role}
		assert.Equal(t, filters, ScopeFilters(caller, filters), "role %s", role)
	}
}

func TestMongoFilter(t *testing.T) {
	filter := ListFilters{Status: "Open", Priority: "High"}.MongoFilter()
	assert.Equal(t, "Open", filter["status"])
	assert.Equal(t, "High", filter["priority"])
	assert.NotContains(t, filter, "category")
	assert.NotContains(t, filter, "submitted_by")
	assert.NotContains(t, filter, "$or")

	empty := ListFilters{}.MongoFilter()
	assert.Empty(t, empty)
}

func TestMongoFilter_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	filter := ListFilters{Search: "login (beta)"}.MongoFilter()

	or, ok := filter["$or"].(bson.A)
	if !ok || len(or) != 2 {
		t.Fatalf("expected $or over title and description, got %#v", filter["$or"])
	}

	title := or[0].(bson.M)["title"].(bson.M)
	assert.Equal(t, `login \(beta\)`, title["$regex"], "regex metacharacters must be escaped")
	assert.Equal(t, "i", title["$options"])

	desc := or[1].(bson.M)["description"].(bson.M)
	assert.Equal(t, title, desc)
}
