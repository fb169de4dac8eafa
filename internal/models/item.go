package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item is a catalog entry: a material or a machine kept in the warehouse.
type Item struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ItemID        string             `bson:"itemID" json:"itemID"` // user-friendly unique ID, e.g. "MAT-0042"
	Name          string             `bson:"name" json:"name"`
	Type          string             `bson:"type" json:"type"` // "material" or "machine"
	Category      string             `bson:"category,omitempty" json:"category"`
	Unit          string             `bson:"unit" json:"unit"` // e.g. "pcs", "kg", "m"
	Description   string             `bson:"description,omitempty" json:"description"`
	StockQuantity float64            `bson:"stockQuantity" json:"stockQuantity"`
	MinStockLevel float64            `bson:"minStockLevel" json:"minStockLevel"`
	Barcode       string             `bson:"barcode,omitempty" json:"barcode"`
	ImageURL      string             `bson:"imageURL,omitempty" json:"imageURL"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsLowStock reports whether current stock is at or below the minimum level.
func (i Item) IsLowStock() bool {
	return i.StockQuantity <= i.MinStockLevel
}
