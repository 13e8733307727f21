package models

import (
	"fmt"
	"time"
)

type NotificationType string

const (
	NotificationContract NotificationType = "contract"
	NotificationProperty NotificationType = "property"
	NotificationLead     NotificationType = "lead"
)

// Notification is an admin-facing alert. The list is kept ordered by
// Timestamp descending for display.
type Notification struct {
	Base       `bson:",inline"`
	Type       NotificationType `bson:"type" json:"type"`
	Message    string           `bson:"message" json:"message"`
	ContractID string           `bson:"contract_id,omitempty" json:"contract_id,omitempty"`
	Timestamp  time.Time        `bson:"timestamp" json:"timestamp"`
	Read       bool             `bson:"read" json:"read"`
}

// ExpiringMarker is the fixed wording that tags a contract notification as
// an expiry alert. The expiry scan's dedup check looks for it.
const ExpiringMarker = "expiring soon"

// ExpiryReason renders the reason text for a contract that ends in the given
// number of days. It always contains ExpiringMarker.
func ExpiryReason(days int) string {
	return fmt.Sprintf("%s, %d days until the end date", ExpiringMarker, days)
}

// The constructors below are the single place notification message text is
// built. The expiry scan deduplicates by scanning message text, so the
// wording here is load-bearing: contract messages must carry the property
// title and, for expiry alerts, the reason tag.

func NewContractNotification(contractID, propertyTitle, reason string, now time.Time) Notification {
	return Notification{
		Base:       NewBase(),
		Type:       NotificationContract,
		ContractID: contractID,
		Message:    fmt.Sprintf("Contract for %q: %s", propertyTitle, reason),
		Timestamp:  now,
	}
}

func NewPropertyNotification(propertyTitle, reason string, now time.Time) Notification {
	return Notification{
		Base:      NewBase(),
		Type:      NotificationProperty,
		Message:   fmt.Sprintf("Property %q: %s", propertyTitle, reason),
		Timestamp: now,
	}
}

func NewLeadNotification(leadName, propertyTitle string, now time.Time) Notification {
	msg := fmt.Sprintf("New lead: %s started a conversation", leadName)
	if propertyTitle != "" {
		msg = fmt.Sprintf("New lead: %s asked about %q", leadName, propertyTitle)
	}
	return Notification{
		Base:      NewBase(),
		Type:      NotificationLead,
		Message:   msg,
		Timestamp: now,
	}
}
