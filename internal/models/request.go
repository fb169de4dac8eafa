package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestItem is one catalog item plus quantity within a material request.
// Lines are immutable once the parent request has been created.
type RequestItem struct {
	ItemID   string   `bson:"itemID" json:"itemID"`
	ItemName string   `bson:"itemName,omitempty" json:"itemName"`
	Quantity Quantity `bson:"quantity" json:"quantity"`
	Notes    string   `bson:"notes,omitempty" json:"notes"`
}

// RequestImage is an uploaded photo attached to a request.
type RequestImage struct {
	ImageURL   string    `bson:"imageURL" json:"imageURL"`
	FileName   string    `bson:"fileName,omitempty" json:"fileName"`
	FileSize   int64     `bson:"fileSize,omitempty" json:"fileSize"`
	UploadedBy string    `bson:"uploadedBy,omitempty" json:"uploadedBy"`
	UploadedAt time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

// Request is a worker's ask for materials or machines to be delivered to a site.
type Request struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestNumber string             `bson:"requestNumber" json:"requestNumber"`
	WorkerID      string             `bson:"workerID" json:"workerID"`
	SiteID        string             `bson:"siteID" json:"siteID"`
	ProjectID     string             `bson:"projectID,omitempty" json:"projectID,omitempty"`
	Status        string             `bson:"status" json:"status"`
	Priority      string             `bson:"priority" json:"priority"`
	NeededDate    string             `bson:"neededDate,omitempty" json:"neededDate"` // YYYY-MM-DD
	Notes         string             `bson:"notes,omitempty" json:"notes"`
	Items         []RequestItem      `bson:"items" json:"items"`
	Images        []RequestImage     `bson:"images,omitempty" json:"images"`
	ConfirmedAt   *time.Time         `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	ConfirmedBy   string             `bson:"confirmedBy,omitempty" json:"confirmedBy,omitempty"`
	CompletedAt   *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RequestHistoryEntry is one append-only audit record of a status change.
type RequestHistoryEntry struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestNumber string             `bson:"requestNumber" json:"requestNumber"`
	Status        string             `bson:"status" json:"status"`
	ChangedBy     string             `bson:"changedBy" json:"changedBy"`
	Notes         string             `bson:"notes,omitempty" json:"notes"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}
