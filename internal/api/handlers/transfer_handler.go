package handlers

import (
	"context"
	"fmt"
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

type TransferHandler struct {
	DB       *mongo.Database
	Notifier *notify.Service
}

type TransferItemPayload struct {
	ItemID   string  `json:"itemID" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Notes    string  `json:"notes"`
}

type CreateTransferPayload struct {
	FromSiteID string                `json:"fromSiteID" binding:"required"`
	ToSiteID   string                `json:"toSiteID" binding:"required"`
	Items      []TransferItemPayload `json:"items" binding:"required,min=1,dive"`
	Notes      string                `json:"notes"`
}

var transferTransitions = map[string][]string{
	models.TransferStatusPending:   {models.TransferStatusApproved, models.TransferStatusRejected},
	models.TransferStatusApproved:  {models.TransferStatusCompleted},
	models.TransferStatusRejected:  {},
	models.TransferStatusCompleted: {},
}

func transferCanTransition(from, to string) bool {
	for _, next := range transferTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CreateTransfer registers a material move between two sites.
func (h *TransferHandler) CreateTransfer(c *gin.Context) {
	operatorID := c.GetString("user_id")

	var payload CreateTransferPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if payload.FromSiteID == payload.ToSiteID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Source and target site must differ"})
		return
	}

	siteCollection := h.DB.Collection("sites")
	for _, siteID := range []string{payload.FromSiteID, payload.ToSiteID} {
		if err := siteCollection.FindOne(context.Background(), bson.M{"siteID": siteID}).Err(); err != nil {
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Site not found: %s", siteID)})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check site existence"})
			return
		}
	}

	itemCollection := h.DB.Collection("items")
	lines := make([]models.TransferItem, 0, len(payload.Items))
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
		lines = append(lines, models.TransferItem{
			ItemID:   item.ItemID,
			Quantity: models.Quantity{Unit: item.Unit, Value: line.Quantity},
			Notes:    line.Notes,
		})
	}

	newTransfer := models.Transfer{
		TransferNumber: fmt.Sprintf("TRF-%s", strings.ToUpper(uuid.New().String()[:8])),
		FromSiteID:     payload.FromSiteID,
		ToSiteID:       payload.ToSiteID,
		Status:         models.TransferStatusPending,
		OperatorID:     operatorID,
		Items:          lines,
		Notes:          payload.Notes,
		CreatedAt:      time.Now(),
	}

	result, err := h.DB.Collection("transfers").InsertOne(context.Background(), newTransfer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create transfer"})
		return
	}
	newTransfer.ID = result.InsertedID.(primitive.ObjectID)

	c.JSON(http.StatusCreated, newTransfer)
}

// GetTransfers lists transfers, newest first.
func (h *TransferHandler) GetTransfers(c *gin.Context) {
	filter := bson.M{}
	if s := c.Query("status"); s != "" {
		filter["status"] = s
	}
	if siteID := c.Query("siteID"); siteID != "" {
		filter["$or"] = []bson.M{{"fromSiteID": siteID}, {"toSiteID": siteID}}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := h.DB.Collection("transfers").Find(context.Background(), filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query transfers"})
		return
	}
	defer cursor.Close(context.Background())

	var transfers []models.Transfer
	if err = cursor.All(context.Background(), &transfers); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode transfers"})
		return
	}

	if transfers == nil {
		transfers = []models.Transfer{}
	}

	c.JSON(http.StatusOK, transfers)
}

// GetTransferByNumber returns one transfer.
func (h *TransferHandler) GetTransferByNumber(c *gin.Context) {
	transferNumber := c.Param("id")

	var transfer models.Transfer
	err := h.DB.Collection("transfers").FindOne(context.Background(), bson.M{"transferNumber": transferNumber}).Decode(&transfer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transfer not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transfer"})
		}
		return
	}

	c.JSON(http.StatusOK, transfer)
}

// ApproveTransfer accepts a pending transfer.
func (h *TransferHandler) ApproveTransfer(c *gin.Context) {
	h.transition(c, models.TransferStatusApproved, func(t models.Transfer) {
		h.Notifier.Create(context.Background(), t.OperatorID, models.NotificationApproved,
			"Umlagerung genehmigt",
			fmt.Sprintf("Ihre Umlagerung %s wurde genehmigt.", t.TransferNumber), "")
	})
}

// RejectTransfer declines a pending transfer.
func (h *TransferHandler) RejectTransfer(c *gin.Context) {
	h.transition(c, models.TransferStatusRejected, func(t models.Transfer) {
		h.Notifier.Create(context.Background(), t.OperatorID, models.NotificationRejected,
			"Umlagerung abgelehnt",
			fmt.Sprintf("Ihre Umlagerung %s wurde abgelehnt.", t.TransferNumber), "")
	})
}

// CompleteTransfer closes an approved transfer after the goods moved.
func (h *TransferHandler) CompleteTransfer(c *gin.Context) {
	h.transition(c, models.TransferStatusCompleted, nil)
}

func (h *TransferHandler) transition(c *gin.Context, to string, onSuccess func(models.Transfer)) {
	transferNumber := c.Param("id")
	actorID := c.GetString("user_id")

	collection := h.DB.Collection("transfers")
	var current models.Transfer
	if err := collection.FindOne(context.Background(), bson.M{"transferNumber": transferNumber}).Decode(&current); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transfer not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transfer"})
		}
		return
	}

	if !transferCanTransition(current.Status, to) {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("Cannot change transfer status from %s to %s", current.Status, to),
		})
		return
	}

	now := time.Now()
	set := bson.M{"status": to}
	switch to {
	case models.TransferStatusApproved, models.TransferStatusRejected:
		set["approvedBy"] = actorID
		set["approvedAt"] = now
	case models.TransferStatusCompleted:
		set["completedAt"] = now
	}

	result, err := collection.UpdateOne(context.Background(),
		bson.M{"transferNumber": transferNumber, "status": current.Status},
		bson.M{"$set": set},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update transfer"})
		return
	}
	if result.ModifiedCount == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Transfer was changed concurrently, please reload"})
		return
	}

	if onSuccess != nil {
		onSuccess(current)
	}

	var updated models.Transfer
	if err := collection.FindOne(context.Background(), bson.M{"transferNumber": transferNumber}).Decode(&updated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve updated transfer"})
		return
	}

	c.JSON(http.StatusOK, updated)
}
