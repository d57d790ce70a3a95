package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/feedbackdesk/feedbackdesk-backend/internal/models"
)

// Analytics are grouped counts over the whole record set. Labels with zero
// occurrences are omitted.
type Analytics struct {
	Total    int            `json:"total"`
	Status   map[string]int `json:"status"`
	Priority map[string]int `json:"priority"`
	Category map[string]int `json:"category"`
}

// ComputeAnalytics summarizes the entire feedback collection. Deliberately
// not role-scoped; the route sits behind authentication like everything else.
func ComputeAnalytics(ctx context.Context) (*Analytics, error) {
	findOptions := options.Find().SetProjection(bson.M{
		"status":   1,
		"priority": 1,
		"category": 1,
	})

	cursor, err := feedbacks().Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.Feedback
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	return Summarize(records), nil
}

// Summarize computes grouped counts over a record set.
func Summarize(records []models.Feedback) *Analytics {
	a := &Analytics{
		Total:    len(records),
		Status:   map[string]int{},
		Priority: map[string]int{},
		Category: map[string]int{},
	}
	for i := range records {
		a.Status[records[i].Status]++
		a.Priority[records[i].Priority]++
		a.Category[records[i].Category]++
	}
	return a
}
