package models

import "time"

// Service represents a shop's offering. Duration and price feed the wait-time
// estimator and the fast-track surcharge rule.
type Service struct {
	ID          string    `bson:"id" json:"id"`
	ShopID      string    `bson:"shop_id" json:"shop_id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Duration    int       `bson:"duration" json:"duration"` // minutes, at least 5
	Price       float64   `bson:"price" json:"price"`
	Category    string    `bson:"category,omitempty" json:"category,omitempty"`
	IsActive    bool      `bson:"is_active" json:"is_active"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}
