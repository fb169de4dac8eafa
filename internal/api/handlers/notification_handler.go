package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"baustelle-wms-api-server/internal/cache"
	"baustelle-wms-api-server/internal/models"
	"baustelle-wms-api-server/internal/notify"
	"baustelle-wms-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationHandler struct {
	DB       *mongo.Database
	Hub      *socket.Hub
	Cache    *cache.Client
	Notifier *notify.Service
}

type CreateNotificationPayload struct {
	UserID  string `json:"userID" binding:"required"`
	Type    string `json:"type" binding:"required"`
	Title   string `json:"title" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// GetNotifications returns the calling user's inbox, newest first.
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID := c.GetString("user_id")

	filter := bson.M{"userID": userID}
	if isRead := c.Query("isRead"); isRead != "" {
		v, err := strconv.ParseBool(isRead)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "isRead must be true or false"})
			return
		}
		filter["isRead"] = v
	}

	limit := queryInt64(c, "limit", 50)
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := h.DB.Collection("notifications").Find(context.Background(), filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query notifications"})
		return
	}
	defer cursor.Close(context.Background())

	var notifications []models.Notification
	if err = cursor.All(context.Background(), &notifications); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode notifications"})
		return
	}

	if notifications == nil {
		notifications = []models.Notification{}
	}

	c.JSON(http.StatusOK, notifications)
}

// GetUnreadCount returns the number of unread notifications, cached briefly.
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	userID := c.GetString("user_id")

	var count int64
	err := h.Cache.CacheAside(context.Background(), notify.UnreadCountKey(userID), &count, 30*time.Second, func() error {
		var err error
		count, err = h.DB.Collection("notifications").CountDocuments(context.Background(),
			bson.M{"userID": userID, "isRead": false})
		return err
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count unread notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkRead flips one notification to read and returns the updated document.
// An UPDATE event is pushed so other open sessions of the same user converge.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.GetString("user_id")

	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification id"})
		return
	}

	collection := h.DB.Collection("notifications")
	result, err := collection.UpdateOne(context.Background(),
		bson.M{"_id": oid, "userID": userID},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification as read"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	var updated models.Notification
	if err := collection.FindOne(context.Background(), bson.M{"_id": oid}).Decode(&updated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notification"})
		return
	}

	h.Cache.Delete(context.Background(), notify.UnreadCountKey(userID))
	h.Hub.Publish(userID, socket.Event{Table: "notifications", Event: socket.EventUpdate, Row: updated})

	c.JSON(http.StatusOK, updated)
}

// MarkAllRead flips every unread notification of the calling user. One
// UPDATE event is pushed per flipped row, so other open sessions of the same
// user converge the same way they do for a single read-flag flip.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := c.GetString("user_id")

	collection := h.DB.Collection("notifications")
	unreadFilter := bson.M{"userID": userID, "isRead": false}

	cursor, err := collection.Find(context.Background(), unreadFilter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load unread notifications"})
		return
	}
	var unread []models.Notification
	if err = cursor.All(context.Background(), &unread); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode unread notifications"})
		return
	}

	result, err := collection.UpdateMany(context.Background(),
		unreadFilter,
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications as read"})
		return
	}

	h.Cache.Delete(context.Background(), notify.UnreadCountKey(userID))

	for _, n := range unread {
		n.IsRead = true
		h.Hub.Publish(userID, socket.Event{Table: "notifications", Event: socket.EventUpdate, Row: n})
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read", "count": result.ModifiedCount})
}

// DeleteNotification removes one notification of the calling user.
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	userID := c.GetString("user_id")

	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification id"})
		return
	}

	var deleted models.Notification
	err = h.DB.Collection("notifications").FindOneAndDelete(context.Background(),
		bson.M{"_id": oid, "userID": userID}).Decode(&deleted)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notification"})
		}
		return
	}

	h.Cache.Delete(context.Background(), notify.UnreadCountKey(userID))
	h.Hub.Publish(userID, socket.Event{Table: "notifications", Event: socket.EventDelete, Row: deleted})

	c.Status(http.StatusNoContent)
}

// CreateNotification lets an admin push a system notice to a user.
// Domain notifications are created by the notify service, never through here.
func (h *NotificationHandler) CreateNotification(c *gin.Context) {
	var payload CreateNotificationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.Notifier.Create(context.Background(), payload.UserID, payload.Type, payload.Title, payload.Message, "")

	c.JSON(http.StatusCreated, gin.H{"status": "success"})
}
