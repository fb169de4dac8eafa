package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subcontractor is an external crew working on a site; their people may
// request material the same way own workers do.
type Subcontractor struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SubcontractorID string             `bson:"subcontractorID" json:"subcontractorID"` // e.g. "SUB-1A2B3C4D"
	Name            string             `bson:"name" json:"name"`
	CompanyName     string             `bson:"companyName,omitempty" json:"companyName"`
	ContactPerson   string             `bson:"contactPerson,omitempty" json:"contactPerson"`
	Phone           string             `bson:"phone,omitempty" json:"phone"`
	Email           string             `bson:"email,omitempty" json:"email"`
	IsActive        bool               `bson:"isActive" json:"isActive"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
