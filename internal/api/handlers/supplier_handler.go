package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"baustelle-wms-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SupplierHandler struct {
	DB *mongo.Database
}

type CreateSupplierPayload struct {
	Name          string         `json:"name" binding:"required"`
	ContactPerson string         `json:"contactPerson"`
	Email         string         `json:"email" binding:"omitempty,email"`
	Phone         string         `json:"phone"`
	Address       models.Address `json:"address"`
	Country       string         `json:"country"`
	Notes         string         `json:"notes"`
}

type UpdateSupplierPayload struct {
	Name          *string         `json:"name"`
	ContactPerson *string         `json:"contactPerson"`
	Email         *string         `json:"email"`
	Phone         *string         `json:"phone"`
	Address       *models.Address `json:"address"`
	Country       *string         `json:"country"`
	Rating        *int            `json:"rating" binding:"omitempty,min=1,max=5"`
	Notes         *string         `json:"notes"`
	IsActive      *bool           `json:"isActive"`
}

type CreateSupplierItemPayload struct {
	SupplierID       string  `json:"supplierID" binding:"required"`
	ItemID           string  `json:"itemID" binding:"required"`
	UnitPrice        float64 `json:"unitPrice" binding:"required,gt=0"`
	LeadTimeDays     int     `json:"leadTimeDays" binding:"gte=0"`
	MinOrderQuantity float64 `json:"minOrderQuantity" binding:"gte=0"`
	Notes            string  `json:"notes"`
}

// CreateSupplier registers a new vendor.
func (h *SupplierHandler) CreateSupplier(c *gin.Context) {
	var payload CreateSupplierPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	country := payload.Country
	if country == "" {
		country = "Deutschland"
	}

	now := time.Now()
	newSupplier := models.Supplier{
		SupplierID:    fmt.Sprintf("SUP-%s", strings.ToUpper(uuid.New().String()[:8])),
		Name:          payload.Name,
		ContactPerson: payload.ContactPerson,
		Email:         payload.Email,
		Phone:         payload.Phone,
		Address:       payload.Address,
		Country:       country,
		Notes:         payload.Notes,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	result, err := h.DB.Collection("suppliers").InsertOne(context.Background(), newSupplier)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create supplier"})
		return
	}
	newSupplier.ID = result.InsertedID.(primitive.ObjectID)

	c.JSON(http.StatusCreated, newSupplier)
}

// GetSuppliers lists vendors, sorted by name.
func (h *SupplierHandler) GetSuppliers(c *gin.Context) {
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
	cursor, err := h.DB.Collection("suppliers").Find(context.Background(), filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query suppliers"})
		return
	}
	defer cursor.Close(context.Background())

	var suppliers []models.Supplier
	if err = cursor.All(context.Background(), &suppliers); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode suppliers"})
		return
	}

	if suppliers == nil {
		suppliers = []models.Supplier{}
	}

	c.JSON(http.StatusOK, suppliers)
}

// GetSupplierByID returns one vendor.
func (h *SupplierHandler) GetSupplierByID(c *gin.Context) {
	supplierID := c.Param("id")

	var supplier models.Supplier
	err := h.DB.Collection("suppliers").FindOne(context.Background(), bson.M{"supplierID": supplierID}).Decode(&supplier)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve supplier"})
		}
		return
	}

	c.JSON(http.StatusOK, supplier)
}

// UpdateSupplier patches a vendor's master data.
func (h *SupplierHandler) UpdateSupplier(c *gin.Context) {
	supplierID := c.Param("id")

	var payload UpdateSupplierPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if payload.Name != nil {
		set["name"] = *payload.Name
	}
	if payload.ContactPerson != nil {
		set["contactPerson"] = *payload.ContactPerson
	}
	if payload.Email != nil {
		set["email"] = *payload.Email
	}
	if payload.Phone != nil {
		set["phone"] = *payload.Phone
	}
	if payload.Address != nil {
		set["address"] = *payload.Address
	}
	if payload.Country != nil {
		set["country"] = *payload.Country
	}
	if payload.Rating != nil {
		set["rating"] = *payload.Rating
	}
	if payload.Notes != nil {
		set["notes"] = *payload.Notes
	}
	if payload.IsActive != nil {
		set["isActive"] = *payload.IsActive
	}

	collection := h.DB.Collection("suppliers")
	result, err := collection.UpdateOne(context.Background(), bson.M{"supplierID": supplierID}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update supplier"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
		return
	}

	var updated models.Supplier
	if err := collection.FindOne(context.Background(), bson.M{"supplierID": supplierID}).Decode(&updated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve updated supplier"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// CreateSupplierItem adds a row to a vendor's price list.
func (h *SupplierHandler) CreateSupplierItem(c *gin.Context) {
	var payload CreateSupplierItemPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Both references must exist before the price row is created.
	if err := h.DB.Collection("suppliers").FindOne(context.Background(), bson.M{"supplierID": payload.SupplierID}).Err(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Supplier not found: %s", payload.SupplierID)})
		return
	}
	if err := h.DB.Collection("items").FindOne(context.Background(), bson.M{"itemID": payload.ItemID}).Err(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Item not found: %s", payload.ItemID)})
		return
	}

	newSupplierItem := models.SupplierItem{
		SupplierID:       payload.SupplierID,
		ItemID:           payload.ItemID,
		UnitPrice:        payload.UnitPrice,
		LeadTimeDays:     payload.LeadTimeDays,
		MinOrderQuantity: payload.MinOrderQuantity,
		Notes:            payload.Notes,
		CreatedAt:        time.Now(),
	}

	result, err := h.DB.Collection("supplier_items").InsertOne(context.Background(), newSupplierItem)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create supplier item"})
		return
	}
	newSupplierItem.ID = result.InsertedID.(primitive.ObjectID)

	c.JSON(http.StatusCreated, newSupplierItem)
}

// GetSupplierItems returns a vendor's price list.
func (h *SupplierHandler) GetSupplierItems(c *gin.Context) {
	supplierID := c.Param("id")

	cursor, err := h.DB.Collection("supplier_items").Find(context.Background(), bson.M{"supplierID": supplierID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query supplier items"})
		return
	}
	defer cursor.Close(context.Background())

	var items []models.SupplierItem
	if err = cursor.All(context.Background(), &items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode supplier items"})
		return
	}

	if items == nil {
		items = []models.SupplierItem{}
	}

	c.JSON(http.StatusOK, items)
}
