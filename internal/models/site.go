package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Site is a construction site (Baustelle) material requests are delivered to.
type Site struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SiteID        string             `bson:"siteID" json:"siteID"` // user-friendly unique ID, e.g. "BS-NORD-01"
	Name          string             `bson:"name" json:"name"`
	Address       Address            `bson:"address,omitempty" json:"address"`
	ContactPerson string             `bson:"contactPerson,omitempty" json:"contactPerson"`
	ContactPhone  string             `bson:"contactPhone,omitempty" json:"contactPhone"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
