// Package notify creates notification rows as a side effect of domain events
// and pushes the matching row-change event to the recipient's realtime
// subscription. Notifications are never created by clients directly.
package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"baustelle-wms-api-server/internal/cache"
	"baustelle-wms-api-server/internal/models"
	"baustelle-wms-api-server/internal/socket"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Service struct {
	DB    *mongo.Database
	Hub   *socket.Hub
	Cache *cache.Client
}

// UnreadCountKey is the cache key for a user's unread counter.
func UnreadCountKey(userID string) string {
	return "notifications:unread:" + userID
}

// Create inserts a notification for one user and publishes an INSERT event.
// Failures are logged, not returned: a lost notification must never fail the
// domain operation that triggered it.
func (s *Service) Create(ctx context.Context, userID, notifType, title, message, relatedRequestID string) {
	n := models.Notification{
		UserID:           userID,
		Type:             notifType,
		Title:            title,
		Message:          message,
		IsRead:           false,
		RelatedRequestID: relatedRequestID,
		CreatedAt:        time.Now(),
	}

	result, err := s.DB.Collection("notifications").InsertOne(ctx, n)
	if err != nil {
		log.Printf("Failed to create %s notification for %s: %v", notifType, userID, err)
		return
	}
	n.ID = result.InsertedID.(primitive.ObjectID)

	s.Cache.Delete(ctx, UnreadCountKey(userID))
	s.Hub.Publish(userID, socket.Event{Table: "notifications", Event: socket.EventInsert, Row: n})
}

// CreateForRole fans a notification out to every active user with the role.
func (s *Service) CreateForRole(ctx context.Context, role, notifType, title, message, relatedRequestID string) {
	cursor, err := s.DB.Collection("users").Find(ctx, bson.M{"role": role, "status": "active"})
	if err != nil {
		log.Printf("Failed to look up %s users for notification: %v", role, err)
		return
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		log.Printf("Failed to decode %s users for notification: %v", role, err)
		return
	}

	for _, u := range users {
		s.Create(ctx, u.UserID, notifType, title, message, relatedRequestID)
	}
}

// RequestStatusChanged tells the requester their request moved to a new status.
func (s *Service) RequestStatusChanged(ctx context.Context, workerID, requestNumber, newStatus string) {
	s.Create(ctx, workerID,
		models.NotificationStatusChange,
		"Request "+requestNumber,
		fmt.Sprintf("Your request %s is now %s.", requestNumber, newStatus),
		requestNumber,
	)
}

// NewRequest tells the warehouse staff a request was submitted.
func (s *Service) NewRequest(ctx context.Context, requestNumber, siteID string) {
	s.CreateForRole(ctx, models.RoleWarehouse,
		models.NotificationNewRequest,
		"New material request",
		fmt.Sprintf("Request %s was submitted for site %s.", requestNumber, siteID),
		requestNumber,
	)
}

// LowStock warns the warehouse staff that an item dropped to its minimum level.
func (s *Service) LowStock(ctx context.Context, item models.Item) {
	s.CreateForRole(ctx, models.RoleWarehouse,
		models.NotificationLowStock,
		"Low stock: "+item.Name,
		fmt.Sprintf("%s is down to %g %s (minimum %g).", item.Name, item.StockQuantity, item.Unit, item.MinStockLevel),
		"",
	)
}
