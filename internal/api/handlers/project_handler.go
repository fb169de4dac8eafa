package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"baustelle-wms-api-server/internal/models"
	"baustelle-wms-api-server/internal/status"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProjectHandler struct {
	DB *mongo.Database
}

type CreateProjectPayload struct {
	Name          string `json:"name" binding:"required"`
	ProjectNumber string `json:"projectNumber"`
	Description   string `json:"description"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	BauleiterID   string `json:"bauleiterID"`
}

type UpdateProjectPayload struct {
	Name          *string `json:"name"`
	ProjectNumber *string `json:"projectNumber"`
	Description   *string `json:"description"`
	StartDate     *string `json:"startDate"`
	EndDate       *string `json:"endDate"`
	BauleiterID   *string `json:"bauleiterID"`
	IsActive      *bool   `json:"isActive"`
}

// bauleiterName resolves the site manager's display name for denormalized
// storage on the project document.
func (h *ProjectHandler) bauleiterName(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", nil
	}
	var user models.User
	err := h.DB.Collection("users").FindOne(ctx, bson.M{"userID": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return "", fmt.Errorf("bauleiter not found: %s", userID)
		}
		return "", err
	}
	return user.Name, nil
}

// CreateProject registers a new building contract.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var payload CreateProjectPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bauleiterName, err := h.bauleiterName(context.Background(), payload.BauleiterID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	newProject := models.Project{
		ProjectID:     fmt.Sprintf("PRJ-%s", strings.ToUpper(uuid.New().String()[:8])),
		Name:          payload.Name,
		ProjectNumber: payload.ProjectNumber,
		Description:   payload.Description,
		StartDate:     payload.StartDate,
		EndDate:       payload.EndDate,
		BauleiterID:   payload.BauleiterID,
		BauleiterName: bauleiterName,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	result, err := h.DB.Collection("projects").InsertOne(context.Background(), newProject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newProject.ID = oid
	}

	c.JSON(http.StatusCreated, newProject)
}

// GetProjects lists projects, newest first.
func (h *ProjectHandler) GetProjects(c *gin.Context) {
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
	cursor, err := h.DB.Collection("projects").Find(context.Background(), filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query projects"})
		return
	}
	defer cursor.Close(context.Background())

	var projects []models.Project
	if err = cursor.All(context.Background(), &projects); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode projects"})
		return
	}

	if projects == nil {
		projects = []models.Project{}
	}

	c.JSON(http.StatusOK, projects)
}

// GetProjectByID returns one project.
func (h *ProjectHandler) GetProjectByID(c *gin.Context) {
	projectID := c.Param("id")

	var project models.Project
	err := h.DB.Collection("projects").FindOne(context.Background(), bson.M{"projectID": projectID}).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	c.JSON(http.StatusOK, project)
}

// UpdateProject patches a project's master data.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	projectID := c.Param("id")

	var payload UpdateProjectPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if payload.Name != nil {
		set["name"] = *payload.Name
	}
	if payload.ProjectNumber != nil {
		set["projectNumber"] = *payload.ProjectNumber
	}
	if payload.Description != nil {
		set["description"] = *payload.Description
	}
	if payload.StartDate != nil {
		set["startDate"] = *payload.StartDate
	}
	if payload.EndDate != nil {
		set["endDate"] = *payload.EndDate
	}
	if payload.BauleiterID != nil {
		name, err := h.bauleiterName(context.Background(), *payload.BauleiterID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		set["bauleiterID"] = *payload.BauleiterID
		set["bauleiterName"] = name
	}
	if payload.IsActive != nil {
		set["isActive"] = *payload.IsActive
	}

	collection := h.DB.Collection("projects")
	result, err := collection.UpdateOne(context.Background(), bson.M{"projectID": projectID}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	var updated models.Project
	if err := collection.FindOne(context.Background(), bson.M{"projectID": projectID}).Decode(&updated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve updated project"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteProject deactivates a project. Historic requests keep referencing it.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	projectID := c.Param("id")

	result, err := h.DB.Collection("projects").UpdateOne(context.Background(),
		bson.M{"projectID": projectID},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deactivated successfully"})
}

type projectMaterialUsage struct {
	ItemID   string  `bson:"_id" json:"itemID"`
	ItemName string  `bson:"itemName" json:"itemName"`
	Unit     string  `bson:"unit" json:"unit"`
	Total    float64 `bson:"total" json:"total"`
}

// GetProjectMaterials sums material usage over the project's completed
// requests, heaviest consumers first.
func (h *ProjectHandler) GetProjectMaterials(c *gin.Context) {
	projectID := c.Param("id")

	if err := h.DB.Collection("projects").FindOne(context.Background(), bson.M{"projectID": projectID}).Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"projectID": projectID,
			"status":    status.Completed,
		}}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.M{
			"_id":      "$items.itemID",
			"itemName": bson.M{"$first": "$items.itemName"},
			"unit":     bson.M{"$first": "$items.quantity.unit"},
			"total":    bson.M{"$sum": "$items.quantity.value"},
		}}},
		{{Key: "$sort", Value: bson.M{"total": -1}}},
	}

	cursor, err := h.DB.Collection("requests").Aggregate(context.Background(), pipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate project materials"})
		return
	}
	defer cursor.Close(context.Background())

	var usage []projectMaterialUsage
	if err = cursor.All(context.Background(), &usage); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode project materials"})
		return
	}

	if usage == nil {
		usage = []projectMaterialUsage{}
	}

	c.JSON(http.StatusOK, usage)
}
