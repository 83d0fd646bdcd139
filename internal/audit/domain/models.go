// Package domain describes the audit trail kept for every posting and
// reconciliation event.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// AuditLog is one recorded action. Action is the event type and the
// target is the aggregate the event was raised for.
type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	TenantID   snowflake.ID      `gorm:"column:tenant_id;not null" json:"tenant_id"`
	Action     string            `gorm:"type:text;not null" json:"action"`
	TargetType string            `gorm:"column:target_type;type:text;not null" json:"target_type"`
	TargetID   *string           `gorm:"column:target_id;type:text" json:"target_id,omitempty"`
	EventID    *string           `gorm:"column:event_id;type:text" json:"event_id,omitempty"`
	RequestID  *string           `gorm:"column:request_id;type:text" json:"request_id,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"not null" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }

type AuditCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}
