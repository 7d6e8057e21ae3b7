package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Audit actions
const (
	AuditActionCreate   = "create"
	AuditActionUpdate   = "update"
	AuditActionDelete   = "delete"
	AuditActionLogin    = "login"
	AuditActionLogout   = "logout"
	AuditActionActivate = "activate"
	AuditActionCancel   = "cancel"
)

// Entity types
const (
	AuditEntityUser         = "user"
	AuditEntitySubscription = "subscription"
	AuditEntityPackage      = "package"
	AuditEntityLanding      = "landing_settings"
)

// AuditLog is an append-only record of a state-changing action. ActorID is a
// weak reference: it is nulled when the actor is not a row in users (e.g. an
// admin from the admins table), and the users FK is ON DELETE SET NULL.
type AuditLog struct {
	ID         uuid.UUID
	ActorID    *uuid.UUID
	Action     string
	EntityType *string
	EntityID   *string
	Changes    AuditChanges
	IPAddress  *string
	CreatedAt  time.Time
}

// AuditChanges holds the structured payload describing what changed.
type AuditChanges map[string]interface{}

// Scan implements sql.Scanner for JSONB
func (ac *AuditChanges) Scan(value interface{}) error {
	if value == nil {
		*ac = make(AuditChanges)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return ErrBadRequest
	}

	var m map[string]interface{}
	if err := json.Unmarshal(bytes, &m); err != nil {
		return err
	}
	*ac = AuditChanges(m)
	return nil
}

// Value implements driver.Valuer for JSONB
func (ac AuditChanges) Value() (driver.Value, error) {
	if ac == nil {
		return nil, nil
	}
	return json.Marshal(ac)
}
