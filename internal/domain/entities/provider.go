package entities

import (
	"time"
)

// ApplicationStatus is the lifecycle state of a provider listing.
type ApplicationStatus string

const (
	StatusPending     ApplicationStatus = "pending"
	StatusUnderReview ApplicationStatus = "under_review"
	StatusApproved    ApplicationStatus = "approved"
	StatusRejected    ApplicationStatus = "rejected"
)

// ExpertMinRating is the rating floor at which a provider qualifies as an expert.
// The flag is set at write time, not re-evaluated continuously.
const ExpertMinRating = 4.0

// Provider represents a registered service business in the directory
type Provider struct {
	ID             string            `json:"id" db:"id"`
	OwnerName      string            `json:"owner_name" db:"owner_name"`
	Email          string            `json:"email" db:"email"`
	Phone          string            `json:"phone" db:"phone"`
	Category       string            `json:"category" db:"category"`
	Services       []string          `json:"services" db:"-"`
	Description    string            `json:"description" db:"description"`
	Address        Address           `json:"address" db:"-"`
	ServiceRadius  ServiceRadius     `json:"service_radius" db:"-"`
	PaymentMethods []string          `json:"payment_methods" db:"-"`
	Insured        bool              `json:"insured" db:"insured"`
	Rating         float64           `json:"rating" db:"rating"`
	ReviewCount    int               `json:"review_count" db:"review_count"`
	Verified       bool              `json:"verified" db:"verified"`
	Expert         bool              `json:"expert" db:"expert"`
	Status         ApplicationStatus `json:"application_status" db:"application_status"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at" db:"updated_at"`
}

// Address represents a free-text physical address. Providers populate the
// region/state fields inconsistently, so location filters match across
// several of them.
type Address struct {
	Street  string `json:"street" db:"street"`
	City    string `json:"city" db:"city"`
	Region  string `json:"region" db:"region"`
	State   string `json:"state" db:"state"`
	Country string `json:"country" db:"country"`
}

// ServiceRadius is the provider-declared maximum service distance. Distance
// is owner-entered free text (e.g. "10 km"), not a structured quantity.
type ServiceRadius struct {
	OriginCity string `json:"origin_city" db:"radius_origin_city"`
	Distance   string `json:"distance" db:"radius_distance"`
}

// Suggestion is a lightweight provider projection served by the typeahead
// suggestion index.
type Suggestion struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	City     string  `json:"city"`
	Rating   float64 `json:"rating"`
}
