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

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReturnHandler struct {
	DB        *mongo.Database
	Notifier  *notify.Service
	Warehouse *WarehouseHandler
}

type ReturnItemPayload struct {
	ItemID    string  `json:"itemID" binding:"required"`
	Quantity  float64 `json:"quantity" binding:"required,gt=0"`
	Condition string  `json:"condition" binding:"omitempty,oneof=good damaged"`
	Notes     string  `json:"notes"`
}

type CreateReturnPayload struct {
	SiteID string              `json:"siteID"`
	Reason string              `json:"reason"`
	Items  []ReturnItemPayload `json:"items" binding:"required,min=1,dive"`
	Notes  string              `json:"notes"`
}

type ApproveReturnPayload struct {
	LocationID string `json:"locationID" binding:"required"`
	Notes      string `json:"notes"`
}

var returnTransitions = map[string][]string{
	models.ReturnStatusPending:   {models.ReturnStatusApproved, models.ReturnStatusRejected},
	models.ReturnStatusApproved:  {models.ReturnStatusCompleted},
	models.ReturnStatusRejected:  {},
	models.ReturnStatusCompleted: {},
}

func returnCanTransition(from, to string) bool {
	for _, next := range returnTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CreateReturn registers unused material a worker wants to give back.
func (h *ReturnHandler) CreateReturn(c *gin.Context) {
	workerID := c.GetString("user_id")

	var payload CreateReturnPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	itemCollection := h.DB.Collection("items")
	lines := make([]models.ReturnItem, 0, len(payload.Items))
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
		condition := line.Condition
		if condition == "" {
			condition = "good"
		}
		lines = append(lines, models.ReturnItem{
			ItemID:    item.ItemID,
			Quantity:  models.Quantity{Unit: item.Unit, Value: line.Quantity},
			Condition: condition,
			Notes:     line.Notes,
		})
	}

	now := time.Now()
	newReturn := models.ReturnRequest{
		ReturnNumber: fmt.Sprintf("RET-%s", strings.ToUpper(uuid.New().String()[:8])),
		WorkerID:     workerID,
		SiteID:       payload.SiteID,
		Status:       models.ReturnStatusPending,
		Reason:       payload.Reason,
		Items:        lines,
		Notes:        payload.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	result, err := h.DB.Collection("return_requests").InsertOne(context.Background(), newReturn)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create return request"})
		return
	}
	newReturn.ID = result.InsertedID.(primitive.ObjectID)

	c.JSON(http.StatusCreated, newReturn)
}

// GetReturns lists return requests, newest first. Workers only see their own.
func (h *ReturnHandler) GetReturns(c *gin.Context) {
	filter := bson.M{}
	if c.GetString("user_role") == models.RoleWorker {
		filter["workerID"] = c.GetString("user_id")
	}
	if s := c.Query("status"); s != "" {
		filter["status"] = s
	}
	if siteID := c.Query("siteID"); siteID != "" {
		filter["siteID"] = siteID
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := h.DB.Collection("return_requests").Find(context.Background(), filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query return requests"})
		return
	}
	defer cursor.Close(context.Background())

	var returns []models.ReturnRequest
	if err = cursor.All(context.Background(), &returns); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode return requests"})
		return
	}

	if returns == nil {
		returns = []models.ReturnRequest{}
	}

	c.JSON(http.StatusOK, returns)
}

// GetReturnByNumber returns one return request.
func (h *ReturnHandler) GetReturnByNumber(c *gin.Context) {
	returnNumber := c.Param("id")

	var ret models.ReturnRequest
	err := h.DB.Collection("return_requests").FindOne(context.Background(), bson.M{"returnNumber": returnNumber}).Decode(&ret)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Return request not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve return request"})
		}
		return
	}

	if c.GetString("user_role") == models.RoleWorker && ret.WorkerID != c.GetString("user_id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only view your own return requests"})
		return
	}

	c.JSON(http.StatusOK, ret)
}

// ApproveReturn accepts the return and books the goods back into stock.
func (h *ReturnHandler) ApproveReturn(c *gin.Context) {
	approverID := c.GetString("user_id")

	var payload ApproveReturnPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.transition(c, models.ReturnStatusApproved, approverID, func(ret models.ReturnRequest) {
		for _, line := range ret.Items {
			// Damaged goods are not restocked.
			if line.Condition == "damaged" {
				continue
			}
			_, err := h.Warehouse.bookTransaction(context.Background(), CreateTransactionPayload{
				ItemID:          line.ItemID,
				LocationID:      payload.LocationID,
				TransactionType: models.TransactionIn,
				Quantity:        line.Quantity.Value,
				ReferenceType:   "return_request",
				ReferenceID:     ret.ReturnNumber,
				Notes:           payload.Notes,
			}, approverID)
			if err != nil {
				log.Printf("CRITICAL: failed to restock %s line %s: %v", ret.ReturnNumber, line.ItemID, err)
			}
		}
		h.Notifier.Create(context.Background(), ret.WorkerID, models.NotificationApproved,
			"Rückgabe genehmigt",
			fmt.Sprintf("Ihre Rückgabe %s wurde genehmigt.", ret.ReturnNumber), "")
	})
}

// RejectReturn declines the return.
func (h *ReturnHandler) RejectReturn(c *gin.Context) {
	approverID := c.GetString("user_id")

	h.transition(c, models.ReturnStatusRejected, approverID, func(ret models.ReturnRequest) {
		h.Notifier.Create(context.Background(), ret.WorkerID, models.NotificationRejected,
			"Rückgabe abgelehnt",
			fmt.Sprintf("Ihre Rückgabe %s wurde abgelehnt.", ret.ReturnNumber), "")
	})
}

// CompleteReturn closes an approved return once the goods physically arrived.
func (h *ReturnHandler) CompleteReturn(c *gin.Context) {
	h.transition(c, models.ReturnStatusCompleted, c.GetString("user_id"), nil)
}

func (h *ReturnHandler) transition(c *gin.Context, to, actorID string, onSuccess func(models.ReturnRequest)) {
	returnNumber := c.Param("id")

	collection := h.DB.Collection("return_requests")
	var current models.ReturnRequest
	if err := collection.FindOne(context.Background(), bson.M{"returnNumber": returnNumber}).Decode(&current); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Return request not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve return request"})
		}
		return
	}

	if !returnCanTransition(current.Status, to) {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("Cannot change return status from %s to %s", current.Status, to),
		})
		return
	}

	now := time.Now()
	set := bson.M{"status": to, "updatedAt": now}
	if to == models.ReturnStatusApproved || to == models.ReturnStatusRejected {
		set["approvedBy"] = actorID
		set["approvedAt"] = now
	}

	result, err := collection.UpdateOne(context.Background(),
		bson.M{"returnNumber": returnNumber, "status": current.Status},
		bson.M{"$set": set},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update return request"})
		return
	}
	if result.ModifiedCount == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Return request was changed concurrently, please reload"})
		return
	}

	if onSuccess != nil {
		onSuccess(current)
	}

	var updated models.ReturnRequest
	if err := collection.FindOne(context.Background(), bson.M{"returnNumber": returnNumber}).Decode(&updated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve updated return request"})
		return
	}

	c.JSON(http.StatusOK, updated)
}
