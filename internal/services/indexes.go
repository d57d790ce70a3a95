package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/feedbackdesk/feedbackdesk-backend/internal/database"
)

// EnsureIndexes creates the indexes the list paths rely on. Safe to call on
// every startup.
func EnsureIndexes(ctx context.Context) error {
	_, err := database.DB.Collection(feedbacksCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "submitted_by", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return err
	}

	_, err = database.DB.Collection(notificationsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}
