package entities

import (
	"time"
)

// Requester represents a service-seeker. A requester record is created on
// the first enquiry attempt for an email; there is no separate registration.
type Requester struct {
	ID    string `json:"id" db:"id"`
	Email string `json:"email" db:"email"`
	Name  string `json:"name" db:"name"`
	Phone string `json:"phone" db:"phone"`

	// EnquiryCount is the remaining enquiry allowance. Decremented by one
	// per successful enquiry, never below zero.
	EnquiryCount int `json:"enquiry_count" db:"enquiry_count"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
