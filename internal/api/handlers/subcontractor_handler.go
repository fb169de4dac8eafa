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

type SubcontractorHandler struct {
	DB *mongo.Database
}

type CreateSubcontractorPayload struct {
	Name          string `json:"name" binding:"required"`
	CompanyName   string `json:"companyName"`
	ContactPerson string `json:"contactPerson"`
	Phone         string `json:"phone"`
	Email         string `json:"email" binding:"omitempty,email"`
}

type UpdateSubcontractorPayload struct {
	Name          *string `json:"name"`
	CompanyName   *string `json:"companyName"`
	ContactPerson *string `json:"contactPerson"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email" binding:"omitempty,email"`
	IsActive      *bool   `json:"isActive"`
}

// CreateSubcontractor registers an external crew.
func (h *SubcontractorHandler) CreateSubcontractor(c *gin.Context) {
	var payload CreateSubcontractorPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	newSubcontractor := models.Subcontractor{
		SubcontractorID: fmt.Sprintf("SUB-%s", strings.ToUpper(uuid.New().String()[:8])),
		Name:            payload.Name,
		CompanyName:     payload.CompanyName,
		ContactPerson:   payload.ContactPerson,
		Phone:           payload.Phone,
		Email:           payload.Email,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	result, err := h.DB.Collection("subcontractors").InsertOne(context.Background(), newSubcontractor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subcontractor"})
		return
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newSubcontractor.ID = oid
	}

	c.JSON(http.StatusCreated, newSubcontractor)
}

// GetSubcontractors lists external crews, newest first.
func (h *SubcontractorHandler) GetSubcontractors(c *gin.Context) {
	filter := bson.M{}
	if active := c.Query("isActive"); active != "" {
		v, err := strconv.ParseBool(active)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "isActive must be true or false"})
			return
		}
		filter["isActive"] = v
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := h.DB.Collection("subcontractors").Find(context.Background(), filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query subcontractors"})
		return
	}
	defer cursor.Close(context.Background())

	var subcontractors []models.Subcontractor
	if err = cursor.All(context.Background(), &subcontractors); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode subcontractors"})
		return
	}

	if subcontractors == nil {
		subcontractors = []models.Subcontractor{}
	}

	c.JSON(http.StatusOK, subcontractors)
}

// GetSubcontractorByID returns one external crew.
func (h *SubcontractorHandler) GetSubcontractorByID(c *gin.Context) {
	subcontractorID := c.Param("id")

	var subcontractor models.Subcontractor
	err := h.DB.Collection("subcontractors").FindOne(context.Background(),
		bson.M{"subcontractorID": subcontractorID}).Decode(&subcontractor)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Subcontractor not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve subcontractor"})
		}
		return
	}

	c.JSON(http.StatusOK, subcontractor)
}

// UpdateSubcontractor patches an external crew's master data.
func (h *SubcontractorHandler) UpdateSubcontractor(c *gin.Context) {
	subcontractorID := c.Param("id")

	var payload UpdateSubcontractorPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if payload.Name != nil {
		set["name"] = *payload.Name
	}
	if payload.CompanyName != nil {
		set["companyName"] = *payload.CompanyName
	}
	if payload.ContactPerson != nil {
		set["contactPerson"] = *payload.ContactPerson
	}
	if payload.Phone != nil {
		set["phone"] = *payload.Phone
	}
	if payload.Email != nil {
		set["email"] = *payload.Email
	}
	if payload.IsActive != nil {
		set["isActive"] = *payload.IsActive
	}

	collection := h.DB.Collection("subcontractors")
	result, err := collection.UpdateOne(context.Background(),
		bson.M{"subcontractorID": subcontractorID}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subcontractor"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subcontractor not found"})
		return
	}

	var updated models.Subcontractor
	if err := collection.FindOne(context.Background(),
		bson.M{"subcontractorID": subcontractorID}).Decode(&updated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve updated subcontractor"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteSubcontractor deactivates an external crew.
func (h *SubcontractorHandler) DeleteSubcontractor(c *gin.Context) {
	subcontractorID := c.Param("id")

	result, err := h.DB.Collection("subcontractors").UpdateOne(context.Background(),
		bson.M{"subcontractorID": subcontractorID},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete subcontractor"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subcontractor not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subcontractor deactivated successfully"})
}
