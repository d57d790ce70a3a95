package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/feedbackdesk/feedbackdesk-backend/internal/models"
)

// UpdateFields holds a partial update. A nil pointer means the key was absent
// from the request and must be left untouched; for assignedTo and
// estimatedResolutionDate an explicit JSON null clears the field, so presence
// is tracked separately.
type UpdateFields struct {
	Title       *string
	Description *string
	Category    *string
	Priority    *string
	Status      *string

	AssignedTo    *string
	AssignedToSet bool

	EstimatedResolutionDate    *time.Time
	EstimatedResolutionDateSet bool
}

// ParseUpdateFields decodes a partial-update body, distinguishing absent keys
// from keys explicitly set to null.
func ParseUpdateFields(body []byte) (UpdateFields, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return UpdateFields{}, validationErrorf("Invalid request body")
	}

	var upd UpdateFields
	stringKeys := map[string]**string{
		"title":       &upd.Title,
		"description": &upd.Description,
		"category":    &upd.Category,
		"priority":    &upd.Priority,
		"status":      &upd.Status,
	}
	for key, dst := range stringKeys {
		msg, ok := raw[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return UpdateFields{}, validationErrorf("Invalid value for %s", key)
		}
		*dst = &s
	}

	if msg, ok := raw["assignedTo"]; ok {
		upd.AssignedToSet = true
		if string(msg) != "null" {
			var s string
			if err := json.Unmarshal(msg, &s); err != nil {
				return UpdateFields{}, validationErrorf("Invalid value for assignedTo")
			}
			upd.AssignedTo = &s
		}
	}

	if msg, ok := raw["estimatedResolutionDate"]; ok {
		upd.EstimatedResolutionDateSet = true
		if string(msg) != "null" {
			var t time.Time
			if err := json.Unmarshal(msg, &t); err != nil {
				return UpdateFields{}, validationErrorf("Invalid value for estimatedResolutionDate")
			}
			upd.EstimatedResolutionDate = &t
		}
	}

	return upd, nil
}

// NotificationDraft is a notification the lifecycle engine decided to send.
type NotificationDraft struct {
	Recipient   string
	Message     string
	Type        string
	RelatedLink string
}

// PlanTransitions inspects a partial update against the current record and
// returns the notifications it warrants:
//   - a status change notifies the submitter,
//   - a new non-empty assignee is notified, unassignment is silent.
//
// Both may fire on the same update. No status-to-status validation is done;
// any value may follow any other.
func PlanTransitions(current *models.Feedback, upd UpdateFields) []NotificationDraft {
	var drafts []NotificationDraft
	link := "/feedbacks/" + current.ID.Hex()

	if upd.Status != nil && *upd.Status != current.Status {
		drafts = append(drafts, NotificationDraft{
			Recipient:   current.SubmittedBy,
			Message:     fmt.Sprintf("Your feedback '%s' status updated to %s", current.Title, *upd.Status),
			Type:        models.NotificationInfo,
			RelatedLink: link,
		})
	}

	if upd.AssignedToSet {
		assignee := ""
		if upd.AssignedTo != nil {
			assignee = *upd.AssignedTo
		}
		if assignee != "" && assignee != current.AssignedTo {
			drafts = append(drafts, NotificationDraft{
				Recipient:   assignee,
				Message:     fmt.Sprintf("You have been assigned to feedback '%s'", current.Title),
				Type:        models.NotificationAlert,
				RelatedLink: link,
			})
		}
	}

	return drafts
}

// UpdateFeedback applies a partial update and fires any lifecycle
// notifications it triggers. Dispatch failures never roll back or fail the
// update. submittedBy is not an updatable field.
func UpdateFeedback(ctx context.Context, caller models.Caller, id string, upd UpdateFields) (*models.FeedbackView, error) {
	current, err := GetFeedback(ctx, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}

	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}
	if upd.Priority != nil {
		set["priority"] = *upd.Priority
	}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if upd.AssignedToSet {
		if upd.AssignedTo != nil && *upd.AssignedTo != "" {
			set["assigned_to"] = *upd.AssignedTo
		} else {
			unset["assigned_to"] = ""
		}
	}
	if upd.EstimatedResolutionDateSet {
		if upd.EstimatedResolutionDate != nil {
			set["estimated_resolution_date"] = *upd.EstimatedResolutionDate
		} else {
			unset["estimated_resolution_date"] = ""
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	if _, err := feedbacks().UpdateByID(ctx, current.ID, update); err != nil {
		return nil, err
	}

	for _, draft := range PlanTransitions(current, upd) {
		Dispatch(ctx, draft.Recipient, draft.Message, draft.Type, draft.RelatedLink)
	}

	updated, err := GetFeedback(ctx, id)
	if err != nil {
		return nil, err
	}
	return viewOf(ctx, updated)
}
