package state

import (
	"strings"
	"time"

	"github.com/inaciosamuel465/estateflow/internal/models"
)

// PropertyUpdate is a partial update. Nil fields are left untouched.
type PropertyUpdate struct {
	Title       *string
	Description *string
	Status      *models.PropertyStatus
	Price       *float64
	Location    *string
	Image       *string
	Images      *[]string
	Bedrooms    *int
	Bathrooms   *int
	AreaSqM     *float64
}

func (u PropertyUpdate) apply(p *models.Property) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Location != nil {
		p.Location = *u.Location
	}
	if u.Image != nil {
		p.Image = *u.Image
	}
	if u.Images != nil {
		p.Images = append([]string(nil), (*u.Images)...)
	}
	if u.Bedrooms != nil {
		p.Bedrooms = *u.Bedrooms
	}
	if u.Bathrooms != nil {
		p.Bathrooms = *u.Bathrooms
	}
	if u.AreaSqM != nil {
		p.AreaSqM = *u.AreaSqM
	}
	p.UpdatedAt = time.Now()
}

// ContractUpdate is a partial update. Nil fields are left untouched. The
// two-level pointers allow clearing an optional field by setting the outer
// pointer to a nil inner value.
type ContractUpdate struct {
	Status            *models.ContractStatus
	Value             *float64
	CommissionRate    *float64
	DueDay            *int
	EndDate           **time.Time
	NextPaymentStatus *models.PaymentStatus
	LastPaymentDate   **time.Time
	OwnerPaidDate     **time.Time
	InstallmentsPaid  *int
}

func (u ContractUpdate) apply(c *models.Contract) {
	if u.Status != nil {
		c.Status = *u.Status
	}
	if u.Value != nil {
		c.Value = *u.Value
	}
	if u.CommissionRate != nil {
		c.CommissionRate = *u.CommissionRate
	}
	if u.DueDay != nil {
		c.DueDay = *u.DueDay
	}
	if u.EndDate != nil {
		c.EndDate = *u.EndDate
	}
	if u.NextPaymentStatus != nil {
		c.NextPaymentStatus = *u.NextPaymentStatus
	}
	if u.LastPaymentDate != nil {
		c.LastPaymentDate = *u.LastPaymentDate
	}
	if u.OwnerPaidDate != nil {
		c.OwnerPaidDate = *u.OwnerPaidDate
	}
	if u.InstallmentsPaid != nil {
		c.InstallmentsPaid = u.InstallmentsPaid
	}
	c.UpdatedAt = time.Now()
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func ptr[T any](v T) *T { return &v }
