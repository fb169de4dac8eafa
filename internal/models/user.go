package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles.
const (
	RoleWorker     = "worker"
	RoleWarehouse  = "warehouse"
	RolePurchasing = "purchasing"
	RoleAdmin      = "admin"
)

// User matches the document stored in MongoDB.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"userID" json:"userID"` // e.g. "worker-1a2b3c4d"
	Email     string             `bson:"email" json:"email"`
	Name      string             `bson:"name" json:"name"`
	Password  string             `bson:"password" json:"-"`
	Role      string             `bson:"role" json:"role"`
	Phone     string             `bson:"phone,omitempty" json:"phone"`
	Status    string             `bson:"status" json:"status"` // "active" or "inactive"
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
