package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"baustelle-wms-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SiteHandler struct {
	DB *mongo.Database
}

type CreateSitePayload struct {
	SiteID        string         `json:"siteID" binding:"required"`
	Name          string         `json:"name" binding:"required"`
	Address       models.Address `json:"address"`
	ContactPerson string         `json:"contactPerson"`
	ContactPhone  string         `json:"contactPhone"`
}

// CreateSite registers a new construction site.
func (h *SiteHandler) CreateSite(c *gin.Context) {
	var payload CreateSitePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection("sites")

	count, err := collection.CountDocuments(context.Background(), bson.M{"siteID": payload.SiteID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking for site"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Site with this ID already exists"})
		return
	}

	now := time.Now()
	newSite := models.Site{
		SiteID:        payload.SiteID,
		Name:          payload.Name,
		Address:       payload.Address,
		ContactPerson: payload.ContactPerson,
		ContactPhone:  payload.ContactPhone,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	result, err := collection.InsertOne(context.Background(), newSite)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create site"})
		return
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newSite.ID = oid
	}

	c.JSON(http.StatusCreated, newSite)
}

// GetAllSites lists construction sites.
func (h *SiteHandler) GetAllSites(c *gin.Context) {
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
	cursor, err := h.DB.Collection("sites").Find(context.Background(), filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query sites"})
		return
	}
	defer cursor.Close(context.Background())

	var sites []models.Site
	if err = cursor.All(context.Background(), &sites); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode sites"})
		return
	}

	if sites == nil {
		sites = []models.Site{}
	}

	c.JSON(http.StatusOK, sites)
}

// GetSiteByID returns one site.
func (h *SiteHandler) GetSiteByID(c *gin.Context) {
	siteID := c.Param("id")

	var site models.Site
	err := h.DB.Collection("sites").FindOne(context.Background(), bson.M{"siteID": siteID}).Decode(&site)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve site"})
		}
		return
	}

	c.JSON(http.StatusOK, site)
}

// UpdateSite updates a site's master data.
func (h *SiteHandler) UpdateSite(c *gin.Context) {
	siteID := c.Param("id")

	var payload CreateSitePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.DB.Collection("sites").UpdateOne(context.Background(),
		bson.M{"siteID": siteID},
		bson.M{"$set": bson.M{
			"name":          payload.Name,
			"address":       payload.Address,
			"contactPerson": payload.ContactPerson,
			"contactPhone":  payload.ContactPhone,
			"updatedAt":     time.Now(),
		}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update site"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Site updated successfully"})
}

// DeleteSite deactivates a site. Historic requests keep referencing it.
func (h *SiteHandler) DeleteSite(c *gin.Context) {
	siteID := c.Param("id")

	result, err := h.DB.Collection("sites").UpdateOne(context.Background(),
		bson.M{"siteID": siteID},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete site"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Site deactivated successfully"})
}
