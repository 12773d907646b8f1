package models

import "time"

// Address is the shop's street address.
type Address struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode string `bson:"zip_code,omitempty" json:"zip_code,omitempty"`
}

// GeoPoint is a GeoJSON point, [longitude, latitude].
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// Rating aggregates customer reviews for a shop.
type Rating struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

// Shop is a barbershop in the directory. The queue engine only needs its ID
// as a partition key; the rest backs the customer-facing directory.
type Shop struct {
	ID          string    `bson:"id" json:"id"`
	OwnerID     string    `bson:"owner_id" json:"owner_id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Address     Address   `bson:"address" json:"address"`
	Location    GeoPoint  `bson:"location" json:"location"`
	Phone       string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Email       string    `bson:"email,omitempty" json:"email,omitempty"`
	Rating      Rating    `bson:"rating" json:"rating"`
	IsActive    bool      `bson:"is_active" json:"is_active"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}
