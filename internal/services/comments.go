package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/feedbackdesk/feedbackdesk-backend/internal/models"
)

// AddComment appends a comment to a feedback record, snapshotting the
// caller's name and role at post time. Empty text is not rejected here;
// that's left to the client.
func AddComment(ctx context.Context, caller models.Caller, feedbackID, text string) (*models.FeedbackView, error) {
	record, err := GetFeedback(ctx, feedbackID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		Text:      text,
		Author:    caller.Name,
		AuthorID:  caller.ID,
		Role:      caller.Role,
		Timestamp: time.Now().UTC(),
	}

	_, err = feedbacks().UpdateByID(ctx, record.ID, bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updated_at": comment.Timestamp},
	})
	if err != nil {
		return nil, err
	}

	updated, err := GetFeedback(ctx, feedbackID)
	if err != nil {
		return nil, err
	}
	return viewOf(ctx, updated)
}

// CanDeleteComment reports whether the caller may remove the comment: only
// its author or an admin.
func CanDeleteComment(caller models.Caller, comment *models.Comment) bool {
	return comment.AuthorID == caller.ID || caller.IsAdmin()
}

// DeleteComment removes a comment. Only its author or an admin may do so.
func DeleteComment(ctx context.Context, caller models.Caller, feedbackID, commentID string) (*models.FeedbackView, error) {
	record, err := GetFeedback(ctx, feedbackID)
	if err != nil {
		return nil, err
	}

	var target *models.Comment
	for i := range record.Comments {
		if record.Comments[i].ID.Hex() == commentID {
			target = &record.Comments[i]
			break
		}
	}
	if target == nil {
		return nil, ErrNotFound
	}

	if !CanDeleteComment(caller, target) {
		return nil, ErrNotAuthorized
	}

	_, err = feedbacks().UpdateByID(ctx, record.ID, bson.M{
		"$pull": bson.M{"comments": bson.M{"_id": target.ID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return nil, err
	}

	updated, err := GetFeedback(ctx, feedbackID)
	if err != nil {
		return nil, err
	}
	return viewOf(ctx, updated)
}
