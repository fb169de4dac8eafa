package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transfer statuses.
const (
	TransferStatusPending   = "pending"
	TransferStatusApproved  = "approved"
	TransferStatusRejected  = "rejected"
	TransferStatusCompleted = "completed"
)

type TransferItem struct {
	ItemID   string   `bson:"itemID" json:"itemID"`
	Quantity Quantity `bson:"quantity" json:"quantity"`
	Notes    string   `bson:"notes,omitempty" json:"notes"`
}

// Transfer moves material from one construction site to another.
type Transfer struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TransferNumber string             `bson:"transferNumber" json:"transferNumber"` // e.g. "TRF-1A2B3C4D"
	FromSiteID     string             `bson:"fromSiteID" json:"fromSiteID"`
	ToSiteID       string             `bson:"toSiteID" json:"toSiteID"`
	Status         string             `bson:"status" json:"status"`
	OperatorID     string             `bson:"operatorID" json:"operatorID"`
	ApprovedBy     string             `bson:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	ApprovedAt     *time.Time         `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	Items          []TransferItem     `bson:"items" json:"items"`
	Notes          string             `bson:"notes,omitempty" json:"notes"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	CompletedAt    *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}
