package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stock transaction types.
const (
	TransactionIn      = "in"
	TransactionOut     = "out"
	TransactionAdjust  = "adjust"
	TransactionInitial = "initial"
)

// StorageLocation is a named place in the warehouse (shelf, zone, yard).
type StorageLocation struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LocationID  string             `bson:"locationID" json:"locationID"` // e.g. "LOC-A-03"
	Name        string             `bson:"name" json:"name"`
	Zone        string             `bson:"zone,omitempty" json:"zone"`
	Description string             `bson:"description,omitempty" json:"description"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// InventoryRecord is the quantity of one item held at one location.
type InventoryRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ItemID     string             `bson:"itemID" json:"itemID"`
	LocationID string             `bson:"locationID" json:"locationID"`
	Quantity   float64            `bson:"quantity" json:"quantity"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// StockTransaction is one booked stock movement with before/after quantities.
type StockTransaction struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ItemID          string             `bson:"itemID" json:"itemID"`
	LocationID      string             `bson:"locationID" json:"locationID"`
	TransactionType string             `bson:"transactionType" json:"transactionType"`
	Quantity        float64            `bson:"quantity" json:"quantity"`
	BeforeQuantity  float64            `bson:"beforeQuantity" json:"beforeQuantity"`
	AfterQuantity   float64            `bson:"afterQuantity" json:"afterQuantity"`
	OperatorID      string             `bson:"operatorID" json:"operatorID"`
	ReferenceType   string             `bson:"referenceType,omitempty" json:"referenceType"` // e.g. "purchase_order", "return"
	ReferenceID     string             `bson:"referenceID,omitempty" json:"referenceID"`
	Notes           string             `bson:"notes,omitempty" json:"notes"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}
