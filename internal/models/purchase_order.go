package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Purchase order statuses.
const (
	POStatusDraft     = "draft"
	POStatusOrdered   = "ordered"
	POStatusReceived  = "received"
	POStatusCancelled = "cancelled"
)

type PurchaseOrderItem struct {
	ItemID    string   `bson:"itemID" json:"itemID"`
	Quantity  Quantity `bson:"quantity" json:"quantity"`
	UnitPrice float64  `bson:"unitPrice" json:"unitPrice"`
	Notes     string   `bson:"notes,omitempty" json:"notes"`
}

// PurchaseOrder is an order placed with a supplier by the purchasing role.
type PurchaseOrder struct {
	ID                   primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrderNumber          string              `bson:"orderNumber" json:"orderNumber"` // e.g. "PO-1A2B3C4D"
	SupplierID           string              `bson:"supplierID" json:"supplierID"`
	Status               string              `bson:"status" json:"status"`
	Items                []PurchaseOrderItem `bson:"items" json:"items"`
	ExpectedDeliveryDate string              `bson:"expectedDeliveryDate,omitempty" json:"expectedDeliveryDate"` // YYYY-MM-DD
	ActualDeliveryDate   string              `bson:"actualDeliveryDate,omitempty" json:"actualDeliveryDate"`
	Notes                string              `bson:"notes,omitempty" json:"notes"`
	CreatedBy            string              `bson:"createdBy" json:"createdBy"`
	CreatedAt            time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time           `bson:"updatedAt" json:"updatedAt"`
}
