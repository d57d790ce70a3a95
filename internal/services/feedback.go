package services

import (
	"context"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/feedbackdesk/feedbackdesk-backend/internal/database"
	"github.com/feedbackdesk/feedbackdesk-backend/internal/models"
)

const (
	feedbacksCollection = "feedbacks"

	defaultPage  = 1
	defaultLimit = 10
)

func feedbacks() *mongo.Collection {
	return database.DB.Collection(feedbacksCollection)
}

// ParsePagination parses 1-indexed page/limit query values, falling back to
// 1/10 on absent or non-numeric input.
func ParsePagination(pageStr, limitStr string) (page, limit int) {
	page = defaultPage
	limit = defaultLimit
	if n, err := strconv.Atoi(pageStr); err == nil && n > 0 {
		page = n
	}
	if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
		limit = n
	}
	return page, limit
}

// Pages returns ceil(total/limit).
func Pages(total int64, limit int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// FeedbackPage is one page of a feedback listing.
type FeedbackPage struct {
	Items []models.FeedbackView `json:"items"`
	Page  int                   `json:"page"`
	Pages int                   `json:"pages"`
	Total int64                 `json:"total"`
}

// ListFeedbacks returns the page of records the caller is allowed to see,
// newest first.
func ListFeedbacks(ctx context.Context, caller models.Caller, rawFilters ListFilters, pageStr, limitStr string) (*FeedbackPage, error) {
	filter := ScopeFilters(caller, rawFilters).MongoFilter()
	page, limit := ParsePagination(pageStr, limitStr)

	total, err := feedbacks().CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	findOptions := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := feedbacks().Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.Feedback
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	var ids []string
	for i := range records {
		ids = append(ids, records[i].UserIDs()...)
	}
	refs, err := ResolveUserRefs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]models.FeedbackView, 0, len(records))
	for i := range records {
		items = append(items, records[i].View(refs))
	}

	return &FeedbackPage{
		Items: items,
		Page:  page,
		Pages: Pages(total, limit),
		Total: total,
	}, nil
}

// CreateFeedbackInput carries the caller-supplied fields of a new record.
type CreateFeedbackInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`

	// Attachment is set server-side after the upload is stored, never taken
	// from the request body.
	Attachment string `json:"-"`
}

// CreateFeedback validates and persists a new record. Status is always forced
// to Submitted and submittedBy to the caller, whatever the request said.
func CreateFeedback(ctx context.Context, caller models.Caller, in CreateFeedbackInput) (*models.FeedbackView, error) {
	if in.Title == "" || in.Description == "" || in.Category == "" || in.Priority == "" {
		return nil, validationErrorf("Please add all fields")
	}

	now := time.Now().UTC()
	record := models.Feedback{
		ID:          primitive.NewObjectID(),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Priority:    in.Priority,
		Status:      models.StatusSubmitted,
		SubmittedBy: caller.ID,
		Attachment:  in.Attachment,
		Comments:    []models.Comment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := feedbacks().InsertOne(ctx, record); err != nil {
		return nil, err
	}

	return viewOf(ctx, &record)
}

// GetFeedback loads a stored record by id.
func GetFeedback(ctx context.Context, id string) (*models.Feedback, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var record models.Feedback
	err = feedbacks().FindOne(ctx, bson.M{"_id": oid}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// CanDeleteFeedback reports whether the caller may delete the record: only
// its submitter or an admin.
func CanDeleteFeedback(caller models.Caller, record *models.Feedback) bool {
	return record.SubmittedBy == caller.ID || caller.IsAdmin()
}

// DeleteFeedback removes a record and its comments. Only the submitter or an
// admin may delete; the attachment is removed best-effort afterwards.
func DeleteFeedback(ctx context.Context, caller models.Caller, id string) error {
	record, err := GetFeedback(ctx, id)
	if err != nil {
		return err
	}

	if !CanDeleteFeedback(caller, record) {
		return ErrNotAuthorized
	}

	if _, err := feedbacks().DeleteOne(ctx, bson.M{"_id": record.ID}); err != nil {
		return err
	}

	if record.Attachment != "" {
		if err := Attachments.Remove(ctx, record.Attachment); err != nil {
			zap.L().Warn("attachment removal failed",
				zap.String("feedback_id", id),
				zap.String("attachment", record.Attachment),
				zap.Error(err))
		}
	}

	return nil
}

// viewOf expands a stored record's user references for the API response.
func viewOf(ctx context.Context, record *models.Feedback) (*models.FeedbackView, error) {
	refs, err := ResolveUserRefs(ctx, record.UserIDs())
	if err != nil {
		return nil, err
	}
	view := record.View(refs)
	return &view, nil
}
