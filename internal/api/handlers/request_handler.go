package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"baustelle-wms-api-server/internal/models"
	"baustelle-wms-api-server/internal/notify"
	"baustelle-wms-api-server/internal/status"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RequestHandler struct {
	DB       *mongo.Database
	Notifier *notify.Service
}

type RequestItemPayload struct {
	ItemID   string  `json:"itemID" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Notes    string  `json:"notes"`
}

type RequestImagePayload struct {
	ImageURL string `json:"imageURL" binding:"required"`
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
}

type CreateRequestPayload struct {
	SiteID     string                `json:"siteID" binding:"required"`
	ProjectID  string                `json:"projectID"`
	Priority   string                `json:"priority"`
	NeededDate string                `json:"neededDate"`
	Notes      string                `json:"notes"`
	Items      []RequestItemPayload  `json:"items" binding:"required,min=1,dive"`
	Images     []RequestImagePayload `json:"images" binding:"omitempty,dive"`
}

type UpdateRequestStatusPayload struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// CreateRequest handles a worker submitting a new material request.
// The request itself and its history entry are the primary operation; the
// image association is best effort and never fails an already created request.
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	workerID := c.GetString("user_id")

	var payload CreateRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if payload.Priority == "" {
		payload.Priority = status.PriorityNormal
	}
	if !status.IsValidPriority(payload.Priority) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid priority: %s", payload.Priority)})
		return
	}

	// The site reference is required and must exist.
	var site models.Site
	if err := h.DB.Collection("sites").FindOne(context.Background(), bson.M{"siteID": payload.SiteID}).Decode(&site); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Site not found: %s", payload.SiteID)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check site existence"})
		return
	}

	if payload.ProjectID != "" {
		if err := h.DB.Collection("projects").FindOne(context.Background(), bson.M{"projectID": payload.ProjectID}).Err(); err != nil {
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Project not found: %s", payload.ProjectID)})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check project existence"})
			return
		}
	}

	// Resolve every line against the catalog; the unit of measure is
	// denormalized from the catalog item at request time.
	itemCollection := h.DB.Collection("items")
	lines := make([]models.RequestItem, 0, len(payload.Items))
	for _, line := range payload.Items {
		var item models.Item
		if err := itemCollection.FindOne(context.Background(), bson.M{"itemID": line.ItemID}).Decode(&item); err != nil {
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Item not found: %s", line.ItemID)})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check item existence"})
			return
		}
		lines = append(lines, models.RequestItem{
			ItemID:   item.ItemID,
			ItemName: item.Name,
			Quantity: models.Quantity{Unit: item.Unit, Value: line.Quantity},
			Notes:    line.Notes,
		})
	}

	now := time.Now()
	newRequest := models.Request{
		RequestNumber: fmt.Sprintf("REQ-%s", strings.ToUpper(uuid.New().String()[:8])),
		WorkerID:      workerID,
		SiteID:        payload.SiteID,
		ProjectID:     payload.ProjectID,
		Status:        status.Pending,
		Priority:      payload.Priority,
		NeededDate:    payload.NeededDate,
		Notes:         payload.Notes,
		Items:         lines,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	collection := h.DB.Collection("requests")
	result, err := collection.InsertOne(context.Background(), newRequest)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create request"})
		return
	}
	newRequest.ID = result.InsertedID.(primitive.ObjectID)

	h.appendHistory(newRequest.RequestNumber, status.Pending, workerID, "Request created")

	// Associate pre-uploaded images. Failure here is logged, not surfaced:
	// the request itself was created successfully.
	if len(payload.Images) > 0 {
		images := make([]models.RequestImage, 0, len(payload.Images))
		for _, img := range payload.Images {
			images = append(images, models.RequestImage{
				ImageURL:   img.ImageURL,
				FileName:   img.FileName,
				FileSize:   img.FileSize,
				UploadedBy: workerID,
				UploadedAt: now,
			})
		}
		_, err := collection.UpdateOne(context.Background(),
			bson.M{"_id": newRequest.ID},
			bson.M{"$set": bson.M{"images": images}},
		)
		if err != nil {
			log.Printf("WARNING: request %s created but image association failed: %v", newRequest.RequestNumber, err)
		} else {
			newRequest.Images = images
		}
	}

	h.Notifier.NewRequest(context.Background(), newRequest.RequestNumber, newRequest.SiteID)

	c.JSON(http.StatusCreated, newRequest)
}

// GetRequests returns the request list, newest first, with optional filters.
func (h *RequestHandler) GetRequests(c *gin.Context) {
	filter := bson.M{}
	if s := c.Query("status"); s != "" {
		filter["status"] = s
	}
	if siteID := c.Query("siteID"); siteID != "" {
		filter["siteID"] = siteID
	}
	if projectID := c.Query("projectID"); projectID != "" {
		filter["projectID"] = projectID
	}
	if workerID := c.Query("workerID"); workerID != "" {
		filter["workerID"] = workerID
	}
	if priority := c.Query("priority"); priority != "" {
		filter["priority"] = priority
	}
	if search := c.Query("search"); search != "" {
		filter["requestNumber"] = bson.M{"$regex": search, "$options": "i"}
	}

	createdRange := bson.M{}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			createdRange["$gte"] = t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			createdRange["$lt"] = t.AddDate(0, 0, 1)
		}
	}
	if len(createdRange) > 0 {
		filter["createdAt"] = createdRange
	}

	limit := queryInt64(c, "limit", 100)
	offset := queryInt64(c, "offset", 0)
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	collection := h.DB.Collection("requests")
	cursor, err := collection.Find(context.Background(), filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query requests"})
		return
	}
	defer cursor.Close(context.Background())

	var requests []models.Request
	if err = cursor.All(context.Background(), &requests); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode requests"})
		return
	}

	if requests == nil {
		requests = []models.Request{}
	}

	c.JSON(http.StatusOK, requests)
}

// GetMyRequests returns the calling worker's own requests.
func (h *RequestHandler) GetMyRequests(c *gin.Context) {
	workerID := c.GetString("user_id")

	filter := bson.M{"workerID": workerID}
	if s := c.Query("status"); s != "" {
		filter["status"] = s
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	collection := h.DB.Collection("requests")
	cursor, err := collection.Find(context.Background(), filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query requests"})
		return
	}
	defer cursor.Close(context.Background())

	var requests []models.Request
	if err = cursor.All(context.Background(), &requests); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode requests"})
		return
	}

	if requests == nil {
		requests = []models.Request{}
	}

	c.JSON(http.StatusOK, requests)
}

// GetRequestByNumber returns one request with its items and images.
func (h *RequestHandler) GetRequestByNumber(c *gin.Context) {
	requestNumber := c.Param("id")

	collection := h.DB.Collection("requests")
	var request models.Request
	if err := collection.FindOne(context.Background(), bson.M{"requestNumber": requestNumber}).Decode(&request); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve request"})
		}
		return
	}

	c.JSON(http.StatusOK, request)
}

// UpdateRequestStatus moves a request to its next lifecycle status. The
// transition table is consulted before any write; the updated document is
// returned so callers can merge it by id instead of refetching the list.
func (h *RequestHandler) UpdateRequestStatus(c *gin.Context) {
	requestNumber := c.Param("id")
	actorID := c.GetString("user_id")

	var payload UpdateRequestStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !status.IsValid(payload.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid status: %s", payload.Status)})
		return
	}

	collection := h.DB.Collection("requests")
	var current models.Request
	if err := collection.FindOne(context.Background(), bson.M{"requestNumber": requestNumber}).Decode(&current); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve request"})
		}
		return
	}

	if !status.CanTransition(current.Status, payload.Status) {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("Cannot change status from %s to %s", current.Status, payload.Status),
		})
		return
	}

	now := time.Now()
	set := bson.M{"status": payload.Status, "updatedAt": now}
	if payload.Status == status.Confirmed {
		set["confirmedAt"] = now
		set["confirmedBy"] = actorID
	}
	if payload.Status == status.Completed {
		set["completedAt"] = now
	}

	// Compare-and-set on the previous status: two overlapping updates for the
	// same request are decided here, not by whoever refetches last.
	updateResult, err := collection.UpdateOne(context.Background(),
		bson.M{"requestNumber": requestNumber, "status": current.Status},
		bson.M{"$set": set},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update request status"})
		return
	}
	if updateResult.ModifiedCount == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Request status was changed concurrently, please reload"})
		return
	}

	h.appendHistory(requestNumber, payload.Status, actorID, payload.Notes)
	h.Notifier.RequestStatusChanged(context.Background(), current.WorkerID, requestNumber, payload.Status)

	var updated models.Request
	if err := collection.FindOne(context.Background(), bson.M{"requestNumber": requestNumber}).Decode(&updated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve updated request"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// CancelRequest cancels a request. Only the original requester (or warehouse
// staff and admins) may cancel, and only while the request is still pending.
func (h *RequestHandler) CancelRequest(c *gin.Context) {
	requestNumber := c.Param("id")
	actorID := c.GetString("user_id")
	actorRole := c.GetString("user_role")

	collection := h.DB.Collection("requests")
	var current models.Request
	if err := collection.FindOne(context.Background(), bson.M{"requestNumber": requestNumber}).Decode(&current); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve request"})
		}
		return
	}

	if actorRole == models.RoleWorker && current.WorkerID != actorID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only cancel your own requests"})
		return
	}

	// Atomic filter on pending: cancelling a request that already moved on
	// must fail, no matter what the caller last saw.
	updateResult, err := collection.UpdateOne(context.Background(),
		bson.M{"requestNumber": requestNumber, "status": status.Pending},
		bson.M{"$set": bson.M{"status": status.Cancelled, "updatedAt": time.Now()}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel request"})
		return
	}
	if updateResult.ModifiedCount == 0 {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("Only pending requests can be cancelled (current status: %s)", current.Status),
		})
		return
	}

	h.appendHistory(requestNumber, status.Cancelled, actorID, "Request cancelled")
	if actorID != current.WorkerID {
		h.Notifier.RequestStatusChanged(context.Background(), current.WorkerID, requestNumber, status.Cancelled)
	}

	c.Status(http.StatusNoContent)
}

// GetRequestHistory returns the append-only status history, newest first.
func (h *RequestHandler) GetRequestHistory(c *gin.Context) {
	requestNumber := c.Param("id")

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := h.DB.Collection("request_history").Find(context.Background(),
		bson.M{"requestNumber": requestNumber}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query request history"})
		return
	}
	defer cursor.Close(context.Background())

	var history []models.RequestHistoryEntry
	if err = cursor.All(context.Background(), &history); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode request history"})
		return
	}

	if history == nil {
		history = []models.RequestHistoryEntry{}
	}

	c.JSON(http.StatusOK, history)
}

func (h *RequestHandler) appendHistory(requestNumber, newStatus, actorID, notes string) {
	entry := models.RequestHistoryEntry{
		RequestNumber: requestNumber,
		Status:        newStatus,
		ChangedBy:     actorID,
		Notes:         notes,
		CreatedAt:     time.Now(),
	}
	if _, err := h.DB.Collection("request_history").InsertOne(context.Background(), entry); err != nil {
		log.Printf("CRITICAL: failed to append history entry for %s (%s): %v", requestNumber, newStatus, err)
	}
}
