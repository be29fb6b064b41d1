package entities

import (
	"time"
)

// EnquiryStatus is the workflow state of a quote request.
type EnquiryStatus string

const (
	EnquiryPending    EnquiryStatus = "pending"
	EnquiryInProgress EnquiryStatus = "in_progress"
	EnquiryCompleted  EnquiryStatus = "completed"
	EnquiryCancelled  EnquiryStatus = "cancelled"
)

// CanTransitionTo reports whether a status change is a legal workflow step.
// Enquiries are never deleted, only status-updated.
func (s EnquiryStatus) CanTransitionTo(next EnquiryStatus) bool {
	switch s {
	case EnquiryPending:
		return next == EnquiryInProgress || next == EnquiryCancelled
	case EnquiryInProgress:
		return next == EnquiryCompleted || next == EnquiryCancelled
	default:
		return false
	}
}

// Enquiry links a Requester to a Provider, representing one quote request.
type Enquiry struct {
	ID          string        `json:"id" db:"id"`
	ProviderID  string        `json:"provider_id" db:"provider_id"`
	RequesterID string        `json:"requester_id" db:"requester_id"`
	Services    []string      `json:"services" db:"-"`
	Category    string        `json:"category" db:"category"`
	Location    string        `json:"location,omitempty" db:"location"`
	Budget      string        `json:"budget,omitempty" db:"budget"`
	Description string        `json:"description" db:"description"`
	Status      EnquiryStatus `json:"status" db:"status"`

	PreferredDate *time.Time `json:"preferred_date,omitempty" db:"preferred_date"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
