package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/feedbackdesk/feedbackdesk-backend/internal/database"
	"github.com/feedbackdesk/feedbackdesk-backend/internal/models"
)

const notificationsCollection = "notifications"

func notifications() *mongo.Collection {
	return database.DB.Collection(notificationsCollection)
}

// Dispatch creates a notification record for a recipient. It is best-effort:
// a failure is logged and swallowed so the triggering mutation never rolls
// back or fails because of it.
func Dispatch(ctx context.Context, recipientID, message, notificationType, relatedLink string) {
	if notificationType == "" {
		notificationType = models.NotificationInfo
	}

	notification := models.Notification{
		ID:          primitive.NewObjectID(),
		Recipient:   recipientID,
		Message:     message,
		Type:        notificationType,
		Read:        false,
		RelatedLink: relatedLink,
		CreatedAt:   time.Now().UTC(),
	}

	if _, err := notifications().InsertOne(ctx, notification); err != nil {
		zap.L().Warn("notification dispatch failed",
			zap.String("recipient", recipientID),
			zap.String("message", message),
			zap.Error(err))
	}
}

// ListNotifications returns the recipient's notifications, newest first.
func ListNotifications(ctx context.Context, recipientID string) ([]models.Notification, error) {
	findOptions := options.Find().SetSort(bson.M{"created_at": -1})

	cursor, err := notifications().Find(ctx, bson.M{"recipient": recipientID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []models.Notification{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkNotificationRead flips read to true. Only the recipient may do so.
func MarkNotificationRead(ctx context.Context, caller models.Caller, id string) (*models.Notification, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var notification models.Notification
	err = notifications().FindOne(ctx, bson.M{"_id": oid}).Decode(&notification)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if notification.Recipient != caller.ID {
		return nil, ErrNotAuthorized
	}

	if _, err := notifications().UpdateByID(ctx, oid, bson.M{"$set": bson.M{"read": true}}); err != nil {
		return nil, err
	}

	notification.Read = true
	return &notification, nil
}
