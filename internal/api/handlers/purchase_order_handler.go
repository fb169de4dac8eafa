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

type PurchaseOrderHandler struct {
	DB        *mongo.Database
	Notifier  *notify.Service
	Warehouse *WarehouseHandler
}

type PurchaseOrderItemPayload struct {
	ItemID    string  `json:"itemID" binding:"required"`
	Quantity  float64 `json:"quantity" binding:"required,gt=0"`
	UnitPrice float64 `json:"unitPrice" binding:"required,gt=0"`
	Notes     string  `json:"notes"`
}

type CreatePurchaseOrderPayload struct {
	SupplierID           string                     `json:"supplierID" binding:"required"`
	ExpectedDeliveryDate string                     `json:"expectedDeliveryDate"`
	Notes                string                     `json:"notes"`
	Items                []PurchaseOrderItemPayload `json:"items" binding:"required,min=1,dive"`
}

type ReceivePurchaseOrderPayload struct {
	LocationID string `json:"locationID" binding:"required"`
	Notes      string `json:"notes"`
}

// Purchase order lifecycle: draft -> ordered -> received, with cancellation
// possible until the goods arrive.
var poTransitions = map[string][]string{
	models.POStatusDraft:     {models.POStatusOrdered, models.POStatusCancelled},
	models.POStatusOrdered:   {models.POStatusReceived, models.POStatusCancelled},
	models.POStatusReceived:  {},
	models.POStatusCancelled: {},
}

func poCanTransition(from, to string) bool {
	for _, next := range poTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CreatePurchaseOrder drafts a new order with a supplier.
func (h *PurchaseOrderHandler) CreatePurchaseOrder(c *gin.Context) {
	creatorID := c.GetString("user_id")

	var payload CreatePurchaseOrderPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.DB.Collection("suppliers").FindOne(context.Background(), bson.M{"supplierID": payload.SupplierID}).Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Supplier not found: %s", payload.SupplierID)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check supplier existence"})
		return
	}

	itemCollection := h.DB.Collection("items")
	lines := make([]models.PurchaseOrderItem, 0, len(payload.Items))
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
		lines = append(lines, models.PurchaseOrderItem{
			ItemID:    item.ItemID,
			Quantity:  models.Quantity{Unit: item.Unit, Value: line.Quantity},
			UnitPrice: line.UnitPrice,
			Notes:     line.Notes,
		})
	}

	now := time.Now()
	newOrder := models.PurchaseOrder{
		OrderNumber:          fmt.Sprintf("PO-%s", strings.ToUpper(uuid.New().String()[:8])),
		SupplierID:           payload.SupplierID,
		Status:               models.POStatusDraft,
		Items:                lines,
		ExpectedDeliveryDate: payload.ExpectedDeliveryDate,
		Notes:                payload.Notes,
		CreatedBy:            creatorID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	result, err := h.DB.Collection("purchase_orders").InsertOne(context.Background(), newOrder)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create purchase order"})
		return
	}
	newOrder.ID = result.InsertedID.(primitive.ObjectID)

	c.JSON(http.StatusCreated, newOrder)
}

// GetPurchaseOrders lists orders, newest first.
func (h *PurchaseOrderHandler) GetPurchaseOrders(c *gin.Context) {
	filter := bson.M{}
	if s := c.Query("status"); s != "" {
		filter["status"] = s
	}
	if supplierID := c.Query("supplierID"); supplierID != "" {
		filter["supplierID"] = supplierID
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := h.DB.Collection("purchase_orders").Find(context.Background(), filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query purchase orders"})
		return
	}
	defer cursor.Close(context.Background())

	var orders []models.PurchaseOrder
	if err = cursor.All(context.Background(), &orders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode purchase orders"})
		return
	}

	if orders == nil {
		orders = []models.PurchaseOrder{}
	}

	c.JSON(http.StatusOK, orders)
}

// GetPurchaseOrderByNumber returns one order.
func (h *PurchaseOrderHandler) GetPurchaseOrderByNumber(c *gin.Context) {
	orderNumber := c.Param("id")

	var order models.PurchaseOrder
	err := h.DB.Collection("purchase_orders").FindOne(context.Background(), bson.M{"orderNumber": orderNumber}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Purchase order not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve purchase order"})
		}
		return
	}

	c.JSON(http.StatusOK, order)
}

// MarkOrdered moves a draft order to ordered.
func (h *PurchaseOrderHandler) MarkOrdered(c *gin.Context) {
	h.transition(c, models.POStatusOrdered, nil)
}

// CancelPurchaseOrder cancels an order that has not been received yet.
func (h *PurchaseOrderHandler) CancelPurchaseOrder(c *gin.Context) {
	h.transition(c, models.POStatusCancelled, nil)
}

// ReceivePurchaseOrder marks an order received and books an incoming stock
// transaction for every line at the given location.
func (h *PurchaseOrderHandler) ReceivePurchaseOrder(c *gin.Context) {
	operatorID := c.GetString("user_id")

	var payload ReceivePurchaseOrderPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.transition(c, models.POStatusReceived, func(order models.PurchaseOrder) {
		for _, line := range order.Items {
			_, err := h.Warehouse.bookTransaction(context.Background(), CreateTransactionPayload{
				ItemID:          line.ItemID,
				LocationID:      payload.LocationID,
				TransactionType: models.TransactionIn,
				Quantity:        line.Quantity.Value,
				ReferenceType:   "purchase_order",
				ReferenceID:     order.OrderNumber,
				Notes:           payload.Notes,
			}, operatorID)
			if err != nil {
				// The order is already received; stock for this line has to
				// be reconciled manually.
				log.Printf("CRITICAL: failed to book stock for %s line %s: %v", order.OrderNumber, line.ItemID, err)
			}
		}
	})
}

func (h *PurchaseOrderHandler) transition(c *gin.Context, to string, onSuccess func(models.PurchaseOrder)) {
	orderNumber := c.Param("id")

	collection := h.DB.Collection("purchase_orders")
	var current models.PurchaseOrder
	if err := collection.FindOne(context.Background(), bson.M{"orderNumber": orderNumber}).Decode(&current); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Purchase order not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve purchase order"})
		}
		return
	}

	if !poCanTransition(current.Status, to) {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("Cannot change purchase order status from %s to %s", current.Status, to),
		})
		return
	}

	now := time.Now()
	set := bson.M{"status": to, "updatedAt": now}
	if to == models.POStatusReceived {
		set["actualDeliveryDate"] = now.Format("2006-01-02")
	}

	result, err := collection.UpdateOne(context.Background(),
		bson.M{"orderNumber": orderNumber, "status": current.Status},
		bson.M{"$set": set},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update purchase order"})
		return
	}
	if result.ModifiedCount == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Purchase order was changed concurrently, please reload"})
		return
	}

	if onSuccess != nil {
		onSuccess(current)
	}

	var updated models.PurchaseOrder
	if err := collection.FindOne(context.Background(), bson.M{"orderNumber": orderNumber}).Decode(&updated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve updated purchase order"})
		return
	}

	c.JSON(http.StatusOK, updated)
}
