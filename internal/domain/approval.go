// Package domain provides the domain model for AgroPlan: accounts, farmers,
// land parcels, crop plans and the yield reference data.
package domain

import "fmt"

// ApprovalStatus is the review state of a Land or CropPlan, and the derived
// review state of a Farmer.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Valid reports whether s is one of the three known statuses.
func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// ParseApprovalStatus converts user input into an ApprovalStatus.
func ParseApprovalStatus(raw string) (ApprovalStatus, error) {
	s := ApprovalStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown approval status %q", raw)
	}
	return s, nil
}

// StatusFilter selects records by approval status in admin listings. The zero
// value matches every status.
type StatusFilter struct {
	Status ApprovalStatus
}

// ParseStatusFilter accepts "", "all" (any case) or a concrete status.
func ParseStatusFilter(raw string) (StatusFilter, error) {
	switch raw {
	case "", "all", "All", "ALL":
		return StatusFilter{}, nil
	}
	s, err := ParseApprovalStatus(raw)
	if err != nil {
		return StatusFilter{}, err
	}
	return StatusFilter{Status: s}, nil
}

// All reports whether the filter matches every status.
func (f StatusFilter) All() bool {
	return f.Status == ""
}
