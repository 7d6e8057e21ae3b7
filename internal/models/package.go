package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Package is a purchasable offering shown on the marketing site.
type Package struct {
	ID           string
	Name         string
	Description  string
	Price        float64
	Currency     string
	Features     FeatureList
	Active       bool
	DisplayOrder int
	CreatedBy    *string // nulled when the creating admin is deleted
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PackageUpdate is the field set a package update provides. Zero is a valid
// price and inactive a valid state, so every field is a pointer: nil keeps
// the stored value.
type PackageUpdate struct {
	Name         *string
	Description  *string
	Price        *float64
	Currency     *string
	Features     FeatureList
	Active       *bool
	DisplayOrder *int
}

// FeatureList is an ordered list of feature strings stored as JSON.
type FeatureList []string

// Scan implements sql.Scanner. A stored value that is not a JSON string
// array degrades to a single-element list holding the raw value, so one
// malformed row never breaks the public package listing.
func (fl *FeatureList) Scan(value interface{}) error {
	if value == nil {
		*fl = FeatureList{}
		return nil
	}

	var raw string
	switch v := value.(type) {
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return ErrBadRequest
	}

	var features []string
	if err := json.Unmarshal([]byte(raw), &features); err != nil {
		*fl = FeatureList{raw}
		return nil
	}
	*fl = FeatureList(features)
	return nil
}

// Value implements driver.Valuer.
func (fl FeatureList) Value() (driver.Value, error) {
	if fl == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal([]string(fl))
}
