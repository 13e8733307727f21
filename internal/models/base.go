package models

import "github.com/google/uuid"

// NewID returns a new canonical entity identifier. Identifiers are plain
// strings chosen once at creation time; legacy numeric ids coming from old
// deep links are coerced at the API boundary, never stored.
func NewID() string {
	return uuid.NewString()
}

type Base struct {
	ID string `bson:"_id,omitempty" json:"id,omitempty"`
}

func (m *Base) GenIDIfEmpty() {
	if m.ID == "" {
		m.ID = NewID()
	}
}

func NewBase() Base {
	return Base{ID: NewID()}
}
