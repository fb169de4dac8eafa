package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Return request statuses.
const (
	ReturnStatusPending   = "pending"
	ReturnStatusApproved  = "approved"
	ReturnStatusRejected  = "rejected"
	ReturnStatusCompleted = "completed"
)

type ReturnItem struct {
	ItemID    string   `bson:"itemID" json:"itemID"`
	Quantity  Quantity `bson:"quantity" json:"quantity"`
	Condition string   `bson:"condition,omitempty" json:"condition"` // e.g. "good", "damaged"
	Notes     string   `bson:"notes,omitempty" json:"notes"`
}

// ReturnRequest is a worker giving unused material back from a site.
type ReturnRequest struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReturnNumber string             `bson:"returnNumber" json:"returnNumber"` // e.g. "RET-1A2B3C4D"
	WorkerID     string             `bson:"workerID" json:"workerID"`
	SiteID       string             `bson:"siteID,omitempty" json:"siteID"`
	Status       string             `bson:"status" json:"status"`
	Reason       string             `bson:"reason,omitempty" json:"reason"`
	Items        []ReturnItem       `bson:"items" json:"items"`
	ApprovedBy   string             `bson:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	ApprovedAt   *time.Time         `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	Notes        string             `bson:"notes,omitempty" json:"notes"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
