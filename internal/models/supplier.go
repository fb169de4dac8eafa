package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Supplier is a vendor the purchasing role orders material from.
type Supplier struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SupplierID    string             `bson:"supplierID" json:"supplierID"` // e.g. "SUP-1a2b3c4d"
	Name          string             `bson:"name" json:"name"`
	ContactPerson string             `bson:"contactPerson,omitempty" json:"contactPerson"`
	Email         string             `bson:"email,omitempty" json:"email"`
	Phone         string             `bson:"phone,omitempty" json:"phone"`
	Address       Address            `bson:"address,omitempty" json:"address"`
	Country       string             `bson:"country,omitempty" json:"country"`
	Rating        int                `bson:"rating,omitempty" json:"rating"` // 1..5
	Notes         string             `bson:"notes,omitempty" json:"notes"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// SupplierItem is one row of a supplier's price list.
type SupplierItem struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SupplierID       string             `bson:"supplierID" json:"supplierID"`
	ItemID           string             `bson:"itemID" json:"itemID"`
	UnitPrice        float64            `bson:"unitPrice" json:"unitPrice"`
	LeadTimeDays     int                `bson:"leadTimeDays,omitempty" json:"leadTimeDays"`
	MinOrderQuantity float64            `bson:"minOrderQuantity,omitempty" json:"minOrderQuantity"`
	Notes            string             `bson:"notes,omitempty" json:"notes"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}
