package models

import "time"

// PropertyStatus is the lifecycle state of a property on the books.
type PropertyStatus string

const (
	PropertyAvailable PropertyStatus = "available"
	PropertyRented    PropertyStatus = "rented"
	PropertySold      PropertyStatus = "sold"
)

// Property represents a property managed by the brokerage.
type Property struct {
	Base        `bson:",inline"`
	Title       string         `bson:"title" json:"title"`
	Description string         `bson:"description" json:"description"`
	Status      PropertyStatus `bson:"status" json:"status"`
	OwnerID     string         `bson:"owner_id" json:"owner_id"`
	Price       float64        `bson:"price" json:"price"`
	Location    string         `bson:"location" json:"location"`
	Image       string         `bson:"image" json:"image"`            // cover image S3 key or URL
	Images      []string       `bson:"images" json:"images"`          // gallery, S3 keys
	Bedrooms    int            `bson:"bedrooms" json:"bedrooms"`
	Bathrooms   int            `bson:"bathrooms" json:"bathrooms"`
	AreaSqM     float64        `bson:"area_sqm" json:"area_sqm"`
	CreatedAt   time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `bson:"updated_at" json:"updated_at"`
	Deleted     bool           `bson:"deleted" json:"-"` // Soft delete flag
}

// PropertyFilter narrows public property browsing.
type PropertyFilter struct {
	Status   *PropertyStatus
	Location string // case-insensitive substring
	MinPrice *float64
	MaxPrice *float64
}
