package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"baustelle-wms-api-server/internal/barcode"
	"baustelle-wms-api-server/internal/models"
	"baustelle-wms-api-server/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ItemHandler struct {
	DB       *mongo.Database
	Notifier *notify.Service
}

type CreateItemPayload struct {
	Name          string  `json:"name" binding:"required"`
	Type          string  `json:"type" binding:"required,oneof=material machine"`
	Category      string  `json:"category"`
	Unit          string  `json:"unit" binding:"required"`
	Description   string  `json:"description"`
	StockQuantity float64 `json:"stockQuantity" binding:"gte=0"`
	MinStockLevel float64 `json:"minStockLevel" binding:"gte=0"`
	Barcode       string  `json:"barcode"`
	ImageURL      string  `json:"imageURL"`
}

type UpdateItemPayload struct {
	Name          *string  `json:"name"`
	Category      *string  `json:"category"`
	Unit          *string  `json:"unit"`
	Description   *string  `json:"description"`
	StockQuantity *float64 `json:"stockQuantity"`
	MinStockLevel *float64 `json:"minStockLevel"`
	Barcode       *string  `json:"barcode"`
	ImageURL      *string  `json:"imageURL"`
	IsActive      *bool    `json:"isActive"`
}

// CreateItem adds a catalog entry.
func (h *ItemHandler) CreateItem(c *gin.Context) {
	var payload CreateItemPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection("items")

	if payload.Barcode != "" {
		count, err := collection.CountDocuments(context.Background(), bson.M{"barcode": payload.Barcode})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking for barcode"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "An item with this barcode already exists"})
			return
		}
	}

	prefix := "MAT"
	if payload.Type == "machine" {
		prefix = "MCH"
	}

	now := time.Now()
	newItem := models.Item{
		ItemID:        fmt.Sprintf("%s-%s", prefix, strings.ToUpper(uuid.New().String()[:8])),
		Name:          payload.Name,
		Type:          payload.Type,
		Category:      payload.Category,
		Unit:          payload.Unit,
		Description:   payload.Description,
		StockQuantity: payload.StockQuantity,
		MinStockLevel: payload.MinStockLevel,
		Barcode:       payload.Barcode,
		ImageURL:      payload.ImageURL,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	result, err := collection.InsertOne(context.Background(), newItem)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create item"})
		return
	}
	newItem.ID = result.InsertedID.(primitive.ObjectID)

	c.JSON(http.StatusCreated, newItem)
}

// GetItems lists catalog entries with optional filters.
func (h *ItemHandler) GetItems(c *gin.Context) {
	filter := bson.M{}
	if t := c.Query("type"); t != "" {
		filter["type"] = t
	}
	if category := c.Query("category"); category != "" {
		filter["category"] = category
	}
	if search := c.Query("search"); search != "" {
		filter["name"] = bson.M{"$regex": search, "$options": "i"}
	}
	if active := c.Query("isActive"); active != "" {
		v, err := strconv.ParseBool(active)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "isActive must be true or false"})
			return
		}
		filter["isActive"] = v
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := h.DB.Collection("items").Find(context.Background(), filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query items"})
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

// GetItemByID returns one catalog entry.
func (h *ItemHandler) GetItemByID(c *gin.Context) {
	itemID := c.Param("id")

	var item models.Item
	if err := h.DB.Collection("items").FindOne(context.Background(), bson.M{"itemID": itemID}).Decode(&item); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve item"})
		}
		return
	}

	c.JSON(http.StatusOK, item)
}

// UpdateItem patches a catalog entry. Dropping stock to or below the minimum
// level notifies the warehouse staff.
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	itemID := c.Param("id")

	var payload UpdateItemPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if payload.Name != nil {
		set["name"] = *payload.Name
	}
	if payload.Category != nil {
		set["category"] = *payload.Category
	}
	if payload.Unit != nil {
		set["unit"] = *payload.Unit
	}
	if payload.Description != nil {
		set["description"] = *payload.Description
	}
	if payload.StockQuantity != nil {
		set["stockQuantity"] = *payload.StockQuantity
	}
	if payload.MinStockLevel != nil {
		set["minStockLevel"] = *payload.MinStockLevel
	}
	if payload.Barcode != nil {
		set["barcode"] = *payload.Barcode
	}
	if payload.ImageURL != nil {
		set["imageURL"] = *payload.ImageURL
	}
	if payload.IsActive != nil {
		set["isActive"] = *payload.IsActive
	}

	collection := h.DB.Collection("items")
	result, err := collection.UpdateOne(context.Background(), bson.M{"itemID": itemID}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update item"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}

	var updated models.Item
	if err := collection.FindOne(context.Background(), bson.M{"itemID": itemID}).Decode(&updated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve updated item"})
		return
	}

	if payload.StockQuantity != nil && updated.IsLowStock() {
		h.Notifier.LowStock(context.Background(), updated)
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteItem deactivates a catalog entry. Requests may still reference it.
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	itemID := c.Param("id")

	result, err := h.DB.Collection("items").UpdateOne(context.Background(),
		bson.M{"itemID": itemID},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item deactivated successfully"})
}

// GetItemByBarcode looks up an item by the code a scanner decoded.
func (h *ItemHandler) GetItemByBarcode(c *gin.Context) {
	code := c.Param("code")

	var item models.Item
	if err := h.DB.Collection("items").FindOne(context.Background(), bson.M{"barcode": code}).Decode(&item); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusOK, gin.H{"found": false})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up barcode"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"found": true, "item": item, "currentStock": item.StockQuantity})
}

// GetItemBarcodePNG renders the item's barcode as a printable QR label.
func (h *ItemHandler) GetItemBarcodePNG(c *gin.Context) {
	itemID := c.Param("id")

	var item models.Item
	if err := h.DB.Collection("items").FindOne(context.Background(), bson.M{"itemID": itemID}).Decode(&item); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve item"})
		}
		return
	}

	code := item.Barcode
	if code == "" {
		code = item.ItemID
	}

	size, _ := strconv.Atoi(c.DefaultQuery("size", "256"))
	png, err := barcode.GeneratePNG(code, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate barcode image"})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
