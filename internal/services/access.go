package services

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/feedbackdesk/feedbackdesk-backend/internal/models"
)

// ListFilters are the caller-supplied query parameters for a feedback list.
type ListFilters struct {
	Status      string
	Category    string
	Priority    string
	SubmittedBy string
	Search      string
}

// ScopeFilters narrows caller-supplied filters to what the caller may see.
// Role "user" is always pinned to its own records; a supplied submittedBy
// can never widen that. Developers and admins pass through untouched.
func ScopeFilters(caller models.Caller, f ListFilters) ListFilters {
	if caller.Role == models.RoleUser {
		f.SubmittedBy = caller.ID
	}
	return f
}

// MongoFilter translates effective filters into a find filter. Unknown filter
// values simply match nothing; they are never an error.
func (f ListFilters) MongoFilter() bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if f.SubmittedBy != "" {
		filter["submitted_by"] = f.SubmittedBy
	}
	if f.Search != "" {
		// Case-insensitive substring match over title and description.
		pattern := primitiveRegex(f.Search)
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}
	return filter
}

func primitiveRegex(search string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
}
