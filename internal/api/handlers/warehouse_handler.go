package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
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

type WarehouseHandler struct {
	DB       *mongo.Database
	Notifier *notify.Service
}

type CreateLocationPayload struct {
	Name        string `json:"name" binding:"required"`
	Zone        string `json:"zone"`
	Description string `json:"description"`
}

type CreateTransactionPayload struct {
	ItemID          string  `json:"itemID" binding:"required"`
	LocationID      string  `json:"locationID" binding:"required"`
	TransactionType string  `json:"transactionType" binding:"required,oneof=in out adjust initial"`
	Quantity        float64 `json:"quantity" binding:"required,gte=0"`
	ReferenceType   string  `json:"referenceType"`
	ReferenceID     string  `json:"referenceID"`
	Notes           string  `json:"notes"`
}

type BulkInitPayload struct {
	Records []struct {
		ItemID     string  `json:"itemID" binding:"required"`
		LocationID string  `json:"locationID" binding:"required"`
		Quantity   float64 `json:"quantity" binding:"gte=0"`
	} `json:"records" binding:"required,min=1,dive"`
}

// CreateLocation adds a storage location.
func (h *WarehouseHandler) CreateLocation(c *gin.Context) {
	var payload CreateLocationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newLocation := models.StorageLocation{
		LocationID:  fmt.Sprintf("LOC-%s", strings.ToUpper(uuid.New().String()[:8])),
		Name:        payload.Name,
		Zone:        payload.Zone,
		Description: payload.Description,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}

	result, err := h.DB.Collection("storage_locations").InsertOne(context.Background(), newLocation)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create storage location"})
		return
	}
	newLocation.ID = result.InsertedID.(primitive.ObjectID)

	c.JSON(http.StatusCreated, newLocation)
}

// GetLocations lists storage locations.
func (h *WarehouseHandler) GetLocations(c *gin.Context) {
	filter := bson.M{}
	if active := c.Query("isActive"); active != "" {
		v, err := strconv.ParseBool(active)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "isActive must be true or false"})
			return
		}
		filter["isActive"] = v
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := h.DB.Collection("storage_locations").Find(context.Background(), filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query storage locations"})
		return
	}
	defer cursor.Close(context.Background())

	var locations []models.StorageLocation
	if err = cursor.All(context.Background(), &locations); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode storage locations"})
		return
	}

	if locations == nil {
		locations = []models.StorageLocation{}
	}

	c.JSON(http.StatusOK, locations)
}

// GetInventory returns per-location stock records, optionally filtered.
func (h *WarehouseHandler) GetInventory(c *gin.Context) {
	filter := bson.M{}
	if itemID := c.Query("itemID"); itemID != "" {
		filter["itemID"] = itemID
	}
	if locationID := c.Query("locationID"); locationID != "" {
		filter["locationID"] = locationID
	}

	cursor, err := h.DB.Collection("inventory").Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query inventory"})
		return
	}
	defer cursor.Close(context.Background())

	var records []models.InventoryRecord
	if err = cursor.All(context.Background(), &records); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode inventory"})
		return
	}

	if records == nil {
		records = []models.InventoryRecord{}
	}

	c.JSON(http.StatusOK, records)
}

// GetLowStockItems lists active items at or below their minimum stock level.
func (h *WarehouseHandler) GetLowStockItems(c *gin.Context) {
	filter := bson.M{
		"isActive": true,
		"$expr":    bson.M{"$lte": bson.A{"$stockQuantity", "$minStockLevel"}},
	}

	cursor, err := h.DB.Collection("items").Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query low stock items"})
		return
	}
	defer cursor.Close(context.Background())

	var items []models.Item
	if err = cursor.All(context.Background(), &items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode items"})
		return
	}

	if items == nil {
		items = []models.Item{}
	}

	c.JSON(http.StatusOK, items)
}

// CreateTransaction books a stock movement and keeps the per-location record
// and the item's total stock in sync. Booking out more than the location
// holds is rejected.
func (h *WarehouseHandler) CreateTransaction(c *gin.Context) {
	operatorID := c.GetString("user_id")

	var payload CreateTransactionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.bookTransaction(context.Background(), payload, operatorID)
	if err != nil {
		if err == errInsufficientStock {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient stock"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, tx)
}

// GetTransactions returns booked stock movements, newest first.
func (h *WarehouseHandler) GetTransactions(c *gin.Context) {
	filter := bson.M{}
	if itemID := c.Query("itemID"); itemID != "" {
		filter["itemID"] = itemID
	}
	if operatorID := c.Query("operatorID"); operatorID != "" {
		filter["operatorID"] = operatorID
	}

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := h.DB.Collection("stock_transactions").Find(context.Background(), filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query stock transactions"})
		return
	}
	defer cursor.Close(context.Background())

	var transactions []models.StockTransaction
	if err = cursor.All(context.Background(), &transactions); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode stock transactions"})
		return
	}

	if transactions == nil {
		transactions = []models.StockTransaction{}
	}

	c.JSON(http.StatusOK, transactions)
}

// BulkInitInventory books initial stocktake records for many items at once.
// Each record is independent; failures are reported per record.
func (h *WarehouseHandler) BulkInitInventory(c *gin.Context) {
	operatorID := c.GetString("user_id")

	var payload BulkInitPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	type bulkResult struct {
		ItemID  string `json:"itemID"`
		Success bool   `json:"success"`
		Error   string `json:"error,omitempty"`
	}

	results := make([]bulkResult, 0, len(payload.Records))
	for _, record := range payload.Records {
		_, err := h.bookTransaction(context.Background(), CreateTransactionPayload{
			ItemID:          record.ItemID,
			LocationID:      record.LocationID,
			TransactionType: models.TransactionInitial,
			Quantity:        record.Quantity,
			Notes:           "Initial stocktake",
		}, operatorID)
		if err != nil {
			results = append(results, bulkResult{ItemID: record.ItemID, Success: false, Error: err.Error()})
			continue
		}
		results = append(results, bulkResult{ItemID: record.ItemID, Success: true})
	}

	c.JSON(http.StatusOK, gin.H{"total": len(payload.Records), "results": results})
}

var errInsufficientStock = fmt.Errorf("insufficient stock")

func (h *WarehouseHandler) bookTransaction(ctx context.Context, payload CreateTransactionPayload, operatorID string) (*models.StockTransaction, error) {
	inventory := h.DB.Collection("inventory")

	var record models.InventoryRecord
	currentQuantity := 0.0
	err := inventory.FindOne(ctx, bson.M{"itemID": payload.ItemID, "locationID": payload.LocationID}).Decode(&record)
	if err != nil && err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to read inventory record")
	}
	if err == nil {
		currentQuantity = record.Quantity
	}

	var newQuantity float64
	switch payload.TransactionType {
	case models.TransactionIn, models.TransactionInitial:
		newQuantity = currentQuantity + payload.Quantity
	case models.TransactionOut:
		newQuantity = currentQuantity - payload.Quantity
		if newQuantity < 0 {
			return nil, errInsufficientStock
		}
	case models.TransactionAdjust:
		newQuantity = payload.Quantity
	default:
		return nil, fmt.Errorf("invalid transaction type: %s", payload.TransactionType)
	}

	now := time.Now()
	_, err = inventory.UpdateOne(ctx,
		bson.M{"itemID": payload.ItemID, "locationID": payload.LocationID},
		bson.M{"$set": bson.M{"quantity": newQuantity, "updatedAt": now}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update inventory record")
	}

	tx := models.StockTransaction{
		ItemID:          payload.ItemID,
		LocationID:      payload.LocationID,
		TransactionType: payload.TransactionType,
		Quantity:        payload.Quantity,
		BeforeQuantity:  currentQuantity,
		AfterQuantity:   newQuantity,
		OperatorID:      operatorID,
		ReferenceType:   payload.ReferenceType,
		ReferenceID:     payload.ReferenceID,
		Notes:           payload.Notes,
		CreatedAt:       now,
	}

	result, err := h.DB.Collection("stock_transactions").InsertOne(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to record stock transaction")
	}
	tx.ID = result.InsertedID.(primitive.ObjectID)

	// Keep the catalog item's total stock in sync with the location delta.
	items := h.DB.Collection("items")
	delta := newQuantity - currentQuantity
	if _, err := items.UpdateOne(ctx,
		bson.M{"itemID": payload.ItemID},
		bson.M{"$inc": bson.M{"stockQuantity": delta}, "$set": bson.M{"updatedAt": now}},
	); err != nil {
		// The transaction is already booked; the totals can be reconciled
		// from the transactions collection.
		return &tx, nil
	}

	if delta < 0 {
		var item models.Item
		if err := items.FindOne(ctx, bson.M{"itemID": payload.ItemID}).Decode(&item); err == nil && item.IsLowStock() {
			h.Notifier.LowStock(ctx, item)
		}
	}

	return &tx, nil
}
