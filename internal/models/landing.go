package models

import (
	"encoding/json"
	"time"
)

// LandingSettings is the single-row JSON document behind the editable
// landing page. Writes replace the whole document; there is no partial merge
// and no schema validation beyond being valid JSON.
type LandingSettings struct {
	Content   json.RawMessage
	UpdatedAt time.Time
}
