package models

import (
	"time"
)

// Roles
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// Plans
const (
	PlanStarter = "Starter"
	PlanPro     = "Pro"
	PlanExpert  = "Expert"
)

// Account statuses
const (
	StatusActive    = "Active"
	StatusCancelled = "Cancelled"
	StatusSuspended = "Suspended" // admins only
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string // "user", "admin", "superadmin"
	Plan         string // "Starter", "Pro", "Expert"
	Status       string // "Active", "Cancelled"
	CreatedAt    time.Time
	UpdatedAt    time.Time

	PasswordChangedAt *time.Time
}

// Admin accounts live in their own table and are only created through the
// provisioning command, never through the public API.
type Admin struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string // "admin", "superadmin"
	Status       string // "Active", "Suspended", "Cancelled"
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidPlan reports whether p is one of the purchasable plan names.
func ValidPlan(p string) bool {
	switch p {
	case PlanStarter, PlanPro, PlanExpert:
		return true
	}
	return false
}
