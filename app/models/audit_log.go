package models

import (
	"encoding/json"
	"time"
)

// AuditLog is one entry of the admin security log. Details is free-form JSON
// (object, string, number, bool or null) and is kept raw.
type AuditLog struct {
	ID        uint            `json:"id"`
	Action    string          `json:"action"`
	Details   json.RawMessage `json:"details,omitempty"`
	IPAddress string          `json:"ipAddress"`
	CreatedAt time.Time       `json:"createdAt"`
	User      *struct {
		Email string `json:"email"`
	} `json:"user,omitempty"`
}

// DetailsText renders Details for a table cell.
func (l AuditLog) DetailsText() string {
	if len(l.Details) == 0 || string(l.Details) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(l.Details, &s); err == nil {
		return s
	}
	return string(l.Details)
}
