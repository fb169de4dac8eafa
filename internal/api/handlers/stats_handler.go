package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"baustelle-wms-api-server/internal/cache"
	"baustelle-wms-api-server/internal/models"
	"baustelle-wms-api-server/internal/status"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type StatsHandler struct {
	DB    *mongo.Database
	Cache *cache.Client
}

const statsCacheTTL = 30 * time.Second

type dashboardStats struct {
	TotalRequests      int64         `json:"totalRequests"`
	PendingRequests    int64         `json:"pendingRequests"`
	InProgressRequests int64         `json:"inProgressRequests"`
	CompletedToday     int64         `json:"completedToday"`
	LowStockItems      []models.Item `json:"lowStockItems"`
}

type monthlyItemUsage struct {
	ItemID   string  `bson:"_id" json:"itemID"`
	ItemName string  `bson:"itemName" json:"itemName"`
	Unit     string  `bson:"unit" json:"unit"`
	Total    float64 `bson:"total" json:"total"`
}

type monthlyStats struct {
	Year              int                `json:"year"`
	Month             int                `json:"month"`
	TotalRequests     int64              `json:"totalRequests"`
	CompletedRequests int64              `json:"completedRequests"`
	CancelledRequests int64              `json:"cancelledRequests"`
	ItemUsage         []monthlyItemUsage `json:"itemUsage"`
}

// GetDashboard returns the aggregate counters for the warehouse dashboard.
func (h *StatsHandler) GetDashboard(c *gin.Context) {
	var stats dashboardStats
	err := h.Cache.CacheAside(context.Background(), "stats:dashboard", &stats, statsCacheTTL, func() error {
		return h.loadDashboard(context.Background(), &stats)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute dashboard statistics"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) loadDashboard(ctx context.Context, stats *dashboardStats) error {
	requests := h.DB.Collection("requests")

	var err error
	if stats.TotalRequests, err = requests.CountDocuments(ctx, bson.M{}); err != nil {
		return err
	}
	if stats.PendingRequests, err = requests.CountDocuments(ctx, bson.M{"status": status.Pending}); err != nil {
		return err
	}
	if stats.InProgressRequests, err = requests.CountDocuments(ctx, bson.M{"status": bson.M{"$in": status.InProgress()}}); err != nil {
		return err
	}

	startOfDay := time.Now().Truncate(24 * time.Hour)
	stats.CompletedToday, err = requests.CountDocuments(ctx, bson.M{
		"status":      status.Completed,
		"completedAt": bson.M{"$gte": startOfDay},
	})
	if err != nil {
		return err
	}

	cursor, err := h.DB.Collection("items").Find(ctx, bson.M{
		"isActive": true,
		"$expr":    bson.M{"$lte": []string{"$stockQuantity", "$minStockLevel"}},
	})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &stats.LowStockItems); err != nil {
		return err
	}
	if stats.LowStockItems == nil {
		stats.LowStockItems = []models.Item{}
	}
	return nil
}

// GetMonthly returns request counts and material usage for one month.
// Usage sums the line quantities of requests completed in that month.
func (h *StatsHandler) GetMonthly(c *gin.Context) {
	now := time.Now()
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	if err != nil || year < 2000 || year > 2100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
		return
	}
	month, err := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
		return
	}

	key := fmt.Sprintf("stats:monthly:%d-%02d", year, month)
	var stats monthlyStats
	err = h.Cache.CacheAside(context.Background(), key, &stats, statsCacheTTL, func() error {
		return h.loadMonthly(context.Background(), year, month, &stats)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute monthly statistics"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) loadMonthly(ctx context.Context, year, month int, stats *monthlyStats) error {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 1, 0)
	createdInMonth := bson.M{"createdAt": bson.M{"$gte": from, "$lt": to}}

	requests := h.DB.Collection("requests")

	stats.Year = year
	stats.Month = month

	var err error
	if stats.TotalRequests, err = requests.CountDocuments(ctx, createdInMonth); err != nil {
		return err
	}
	if stats.CompletedRequests, err = requests.CountDocuments(ctx, bson.M{
		"status":      status.Completed,
		"completedAt": bson.M{"$gte": from, "$lt": to},
	}); err != nil {
		return err
	}
	if stats.CancelledRequests, err = requests.CountDocuments(ctx, bson.M{
		"status":    status.Cancelled,
		"createdAt": bson.M{"$gte": from, "$lt": to},
	}); err != nil {
		return err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status":      status.Completed,
			"completedAt": bson.M{"$gte": from, "$lt": to},
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

	cursor, err := requests.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &stats.ItemUsage); err != nil {
		return err
	}
	if stats.ItemUsage == nil {
		stats.ItemUsage = []monthlyItemUsage{}
	}
	return nil
}
