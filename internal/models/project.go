package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project is a building contract material requests can be booked against.
// One site may serve several projects.
type Project struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID     string             `bson:"projectID" json:"projectID"` // e.g. "PRJ-1A2B3C4D"
	Name          string             `bson:"name" json:"name"`
	ProjectNumber string             `bson:"projectNumber,omitempty" json:"projectNumber"` // external/accounting number
	Description   string             `bson:"description,omitempty" json:"description"`
	StartDate     string             `bson:"startDate,omitempty" json:"startDate"` // YYYY-MM-DD
	EndDate       string             `bson:"endDate,omitempty" json:"endDate"`
	BauleiterID   string             `bson:"bauleiterID,omitempty" json:"bauleiterID"` // site manager user id
	BauleiterName string             `bson:"bauleiterName,omitempty" json:"bauleiterName"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
