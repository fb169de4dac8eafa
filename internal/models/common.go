package models

// Quantity carries a numeric amount together with its unit of measure.
// The unit is denormalized from the catalog item at the time a line is written.
type Quantity struct {
	Unit  string  `bson:"unit,omitempty" json:"unit"`
	Value float64 `bson:"value,omitempty" json:"value"`
}

// Address is a structured postal address for sites and suppliers.
type Address struct {
	Street     string `bson:"street,omitempty" json:"street"`
	City       string `bson:"city,omitempty" json:"city"`
	PostalCode string `bson:"postalCode,omitempty" json:"postalCode"`
}
