package models

import (
	"encoding/json"
	"time"
)

// Audit actions recorded against register entries.
const (
	AuditActionCreate           = "CREATE"
	AuditActionUpdate           = "UPDATE"
	AuditActionDelete           = "DELETE"
	AuditActionTransition       = "TRANSITION"
	AuditActionToggle           = "TOGGLE"
	AuditActionRegulatorNotify  = "REGULATOR_NOTIFY"
	AuditActionExport           = "EXPORT"
	AuditActionHTTPRequestWrite = "HTTP_WRITE"
)

// SystemAddress stands in for the client address of changes made by
// scheduled jobs rather than a request.
const SystemAddress = "system"

// AuditLog is one row of the accountability trail.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// NewAuditLog attributes an action on resource to actor. An empty
// resourceID leaves the column null.
func NewAuditLog(actor Actor, action, resource, resourceID string) *AuditLog {
	log := &AuditLog{
		Action:    action,
		Resource:  resource,
		IPAddress: actor.IP,
		UserAgent: actor.Agent,
	}
	if actor.UserID != "" {
		id := actor.UserID
		log.UserID = &id
	}
	if resourceID != "" {
		log.ResourceID = &resourceID
	}
	if log.IPAddress == "" {
		log.IPAddress = SystemAddress
	}
	return log
}

// WithValues stores JSON snapshots of the record before and after the
// change. Values that cannot be encoded are omitted.
func (l *AuditLog) WithValues(oldValues, newValues interface{}) *AuditLog {
	l.OldValues = auditJSON(oldValues)
	l.NewValues = auditJSON(newValues)
	return l
}

func auditJSON(value interface{}) []byte {
	if value == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	return raw
}
