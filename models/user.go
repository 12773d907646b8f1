package models

import "time"

// User roles.
const (
	RoleCustomer  = "customer"
	RoleShopOwner = "shop_owner"
)

// User is a customer or shop owner account. Authentication flows are handled
// upstream; the backend only reads identity and tier from the bearer token.
type User struct {
	ID           string       `bson:"id" json:"id"`
	Name         string       `bson:"name" json:"name"`
	Email        string       `bson:"email" json:"email"`
	PasswordHash string       `bson:"password_hash" json:"-"`
	Role         string       `bson:"role" json:"role"`
	CustomerType CustomerType `bson:"customer_type" json:"customer_type"`
	Phone        string       `bson:"phone,omitempty" json:"phone,omitempty"`
	CreatedAt    time.Time    `bson:"created_at" json:"created_at"`
}
