// Package models defines server-side data models persisted in the database.
package models

import "time"

// Status is the persisted payment status of a milestone.
type Status string

const (
	StatusPending          Status = "pending"
	StatusPaymentSubmitted Status = "payment_submitted"
	StatusApproved         Status = "approved"
	StatusRejected         Status = "rejected"
)

// Valid reports whether s is one of the four persisted statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaymentSubmitted, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Deliverable is the freelancer's work artifact attached to a milestone.
type Deliverable struct {
	Name string
	Size int64
	// URL is the object URL recorded at upload time. Older rows carry only this.
	URL string
	// StorageKey is the canonical object key inside the deliverables bucket.
	StorageKey string
}

// Milestone is a priced unit of project work with its own payment and
// delivery lifecycle.
type Milestone struct {
	ID        string
	ProjectID string
	Title     string
	// PriceMinor is the price in minor currency units; never negative.
	PriceMinor int64
	Status     Status

	// FreelancerID and ClientID are resolved through the parent project.
	FreelancerID string
	ClientID     string

	Deliverable   *Deliverable
	WatermarkText *string

	PaymentProofURL string
	PaymentProofKey string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPaymentProof reports whether a proof has been submitted at least once.
func (m *Milestone) HasPaymentProof() bool {
	return m.PaymentProofURL != ""
}
