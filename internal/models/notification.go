package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	NotificationInfo    = "info"
	NotificationAlert   = "alert"
	NotificationSuccess = "success"
)

// Notification is a one-way, per-recipient record created as a side effect of
// a feedback lifecycle transition. Recipients only ever flip Read to true;
// nothing in the backend deletes them.
type Notification struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Recipient   string             `bson:"recipient" json:"recipient"`
	Message     string             `bson:"message" json:"message"`
	Type        string             `bson:"type" json:"type"`
	Read        bool               `bson:"read" json:"read"`
	RelatedLink string             `bson:"related_link,omitempty" json:"relatedLink,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
}
