package models

import (
	"math"
	"time"
)

type ContractType string

const (
	ContractRent ContractType = "rent"
	ContractSale ContractType = "sale"
)

type ContractStatus string

const (
	ContractActive    ContractStatus = "active"
	ContractCompleted ContractStatus = "completed"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentOverdue PaymentStatus = "overdue"
)

// Contract represents a rental or sale agreement between an owner and a
// client, brokered by the agency. PropertyTitle and PropertyImage are copied
// from the property at creation time so contract rows stay displayable even
// when the property record changes later.
type Contract struct {
	Base          `bson:",inline"`
	PropertyID    string       `bson:"property_id" json:"property_id"`
	PropertyTitle string       `bson:"property_title" json:"property_title"`
	PropertyImage string       `bson:"property_image" json:"property_image"`

	Type   ContractType   `bson:"type" json:"type"`
	Status ContractStatus `bson:"status" json:"status"`

	ClientID    string `bson:"client_id" json:"client_id"`
	ClientName  string `bson:"client_name" json:"client_name"`
	ClientPhone string `bson:"client_phone" json:"client_phone"`
	OwnerID     string `bson:"owner_id" json:"owner_id"`
	OwnerName   string `bson:"owner_name" json:"owner_name"`
	OwnerPhone  string `bson:"owner_phone" json:"owner_phone"`

	Value          float64 `bson:"value" json:"value"`
	CommissionRate float64 `bson:"commission_rate" json:"commission_rate"` // percentage
	DueDay         int     `bson:"due_day" json:"due_day"`                 // 1-31

	StartDate time.Time  `bson:"start_date" json:"start_date"`
	EndDate   *time.Time `bson:"end_date,omitempty" json:"end_date,omitempty"`

	NextPaymentStatus PaymentStatus `bson:"next_payment_status" json:"next_payment_status"`
	LastPaymentDate   *time.Time    `bson:"last_payment_date,omitempty" json:"last_payment_date,omitempty"`
	OwnerPaidDate     *time.Time    `bson:"owner_paid_date,omitempty" json:"owner_paid_date,omitempty"`

	// Sale financing only. Invariant: InstallmentsPaid <= InstallmentsTotal;
	// equality transitions Status to completed.
	InstallmentsTotal *int `bson:"installments_total,omitempty" json:"installments_total,omitempty"`
	InstallmentsPaid  *int `bson:"installments_paid,omitempty" json:"installments_paid,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
	Deleted   bool      `bson:"deleted" json:"-"`
}

// DaysUntilEnd returns the whole days remaining until the contract end date,
// rounded up. Returns false when no end date is set.
func (c *Contract) DaysUntilEnd(now time.Time) (int, bool) {
	if c.EndDate == nil {
		return 0, false
	}
	days := int(math.Ceil(c.EndDate.Sub(now).Hours() / 24))
	return days, true
}

// Commission returns the agency's cut of the contract value.
func (c *Contract) Commission() float64 {
	return c.Value * c.CommissionRate / 100
}
