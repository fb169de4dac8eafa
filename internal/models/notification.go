package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification type tags. Rows are created server side as a side effect of
// domain events, never by the client.
const (
	NotificationNewRequest   = "new_request"
	NotificationStatusChange = "status_change"
	NotificationApproved     = "approved"
	NotificationRejected     = "rejected"
	NotificationLowStock     = "low_stock"
	NotificationSystem       = "system"
)

type Notification struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           string             `bson:"userID" json:"userID"`
	Type             string             `bson:"type" json:"type"`
	Title            string             `bson:"title" json:"title"`
	Message          string             `bson:"message" json:"message"`
	IsRead           bool               `bson:"isRead" json:"isRead"`
	RelatedRequestID string             `bson:"relatedRequestID,omitempty" json:"relatedRequestID,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}
