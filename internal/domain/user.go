package domain

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleDriver   Role = "driver"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Email        string    `bson:"email" json:"email"`
	Name         string    `bson:"name" json:"name"`
	Role         Role      `bson:"role" json:"role"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	LastLogoutAt time.Time `bson:"last_logout_at,omitempty" json:"-"`
}
