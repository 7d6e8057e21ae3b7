package models

import "time"

// Subscription statuses
const (
	SubscriptionActive    = "Active"
	SubscriptionCancelled = "Cancelled"
	SubscriptionInactive  = "Inactive"
)

// Subscription is a user's plan record. At most one row per user may hold
// status "Active"; the partial unique index on subscriptions enforces this,
// so a racing second activation fails at the database rather than in code.
type Subscription struct {
	ID          string
	UserID      string
	Plan        string
	Status      string // "Active", "Cancelled", "Inactive"
	RenewalDate time.Time
	StartDate   time.Time
	EndDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NextRenewal returns the renewal date for a subscription started at t:
// one calendar month later, normalized to a date-only UTC value so stored
// renewal dates compare consistently regardless of server timezone.
func NextRenewal(t time.Time) time.Time {
	r := t.UTC().AddDate(0, 1, 0)
	return time.Date(r.Year(), r.Month(), r.Day(), 0, 0, 0, 0, time.UTC)
}
