package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category values accepted on feedback records.
var Categories = []string{
	"Bug", "Feature Request", "Improvement", "Other",
	"Software Issue", "HR Issue", "Project Issue", "Workplace Issue",
}

// Priority values accepted on feedback records.
var Priorities = []string{"Low", "Medium", "High"}

// Status values a feedback record can hold. Any status may follow any other;
// no transition table is enforced.
var Statuses = []string{
	"Submitted", "Pending", "In Progress", "Working", "Resolved", "Closed", "Open",
}

// StatusSubmitted is forced on every newly created record.
const StatusSubmitted = "Submitted"

// Comment is embedded in its parent feedback document. Author name and role
// are snapshots taken when the comment was posted, so the thread stays
// historically accurate even if the user is later renamed or promoted.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Text      string             `bson:"text" json:"text"`
	Author    string             `bson:"author" json:"author"`
	AuthorID  string             `bson:"author_id" json:"authorId"`
	Role      string             `bson:"role" json:"role"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// Feedback is the stored shape of a record. User references are Postgres ids;
// they get expanded to UserRef in FeedbackView before leaving the API.
type Feedback struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Category    string             `bson:"category"`
	Priority    string             `bson:"priority"`
	Status      string             `bson:"status"`
	SubmittedBy string             `bson:"submitted_by"`
	AssignedTo  string             `bson:"assigned_to,omitempty"`
	Attachment  string             `bson:"attachment,omitempty"`

	EstimatedResolutionDate *time.Time `bson:"estimated_resolution_date,omitempty"`

	Comments  []Comment `bson:"comments"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// FeedbackView is the API response shape of a feedback record.
type FeedbackView struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	SubmittedBy *UserRef   `json:"submittedBy"`
	AssignedTo  *UserRef   `json:"assignedTo"`
	Attachment  string     `json:"attachment,omitempty"`
	Comments    []Comment  `json:"comments"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	EstimatedResolutionDate *time.Time `json:"estimatedResolutionDate,omitempty"`
}

// View expands a stored record using the given user lookup (id -> UserRef).
// Unknown ids leave the reference nil rather than failing the response.
func (f *Feedback) View(users map[string]UserRef) FeedbackView {
	v := FeedbackView{
		ID:          f.ID.Hex(),
		Title:       f.Title,
		Description: f.Description,
		Category:    f.Category,
		Priority:    f.Priority,
		Status:      f.Status,
		Attachment:  f.Attachment,
		Comments:    f.Comments,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,

		EstimatedResolutionDate: f.EstimatedResolutionDate,
	}
	if v.Comments == nil {
		v.Comments = []Comment{}
	}
	if ref, ok := users[f.SubmittedBy]; ok {
		v.SubmittedBy = &ref
	}
	if f.AssignedTo != "" {
		if ref, ok := users[f.AssignedTo]; ok {
			v.AssignedTo = &ref
		}
	}
	return v
}

// UserIDs returns the user ids referenced by the record, for batch expansion.
func (f *Feedback) UserIDs() []string {
	ids := []string{f.SubmittedBy}
	if f.AssignedTo != "" {
		ids = append(ids, f.AssignedTo)
	}
	return ids
}
