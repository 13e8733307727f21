package models

import (
	"fmt"
	"time"
)

// Role is the closed set of user roles. Role drives both view access and
// mutation authorization; handling must be exhaustive at every switch.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
	RoleClient Role = "client"
)

// ParseRole validates a raw role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleOwner, RoleClient:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// User represents an account: brokerage staff (admin), a property owner, or
// a client browsing the public site.
type User struct {
	Base         `bson:",inline"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	Phone        string    `bson:"phone" json:"phone"`
	Avatar       string    `bson:"avatar" json:"avatar"`
	Role         Role      `bson:"role" json:"role"`
	PasswordHash string    `bson:"password" json:"-"`
	Favorites    []string  `bson:"favorites" json:"favorites"` // property ids
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
	Deleted      bool      `bson:"deleted" json:"-"`
}

// HasFavorite reports whether a property id is in the user's favorites set.
func (u *User) HasFavorite(propertyID string) bool {
	for _, id := range u.Favorites {
		if id == propertyID {
			return true
		}
	}
	return false
}
