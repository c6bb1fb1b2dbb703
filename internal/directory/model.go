package directory

import "time"

// EmploymentStatus enumerates recipient employment states.
type EmploymentStatus string

const (
	// StatusActive marks a recipient eligible to receive stock.
	StatusActive EmploymentStatus = "active"
	// StatusLeft marks a recipient who has left the organisation.
	StatusLeft EmploymentStatus = "left"
	// StatusSuspended marks a temporarily disabled recipient.
	StatusSuspended EmploymentStatus = "suspended"
)

// Recipient represents an employee who can receive issued stock.
type Recipient struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Department string           `json:"department"`
	Status     EmploymentStatus `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// RecipientInfo is the lookup view consumed by the issuance services.
type RecipientInfo struct {
	Name   string
	Active bool
}
