package models

import (
	"time"

	"ginkit/internal/uuid"

	"gorm.io/gorm"
)

// AuditAction is the kind of mutation an audit entry describes.
type AuditAction string

// Audit action kinds.
const (
	AuditActionCreate AuditAction = "Create"
	AuditActionUpdate AuditAction = "Update"
	AuditActionDelete AuditAction = "Delete"
)

// AuditEntry is an append-only snapshot of an entity taken when a create,
// update or delete is staged. It is written in the same transaction as the
// mutation it describes.
type AuditEntry struct {
	ID          string      `gorm:"type:uuid;primaryKey" json:"id"`
	TableName   string      `gorm:"size:128;not null;index:idx_audit_table_action" json:"table_name"`
	DateCreated time.Time   `gorm:"not null;index" json:"date_created"`
	Action      AuditAction `gorm:"size:16;not null;index:idx_audit_table_action" json:"action"`
	UserID      string      `gorm:"size:64;not null;index" json:"user_id"`
	JSONBody    string      `gorm:"column:json_body;type:text;not null" json:"json_body"`
}

// BeforeCreate assigns the entry ID.
func (e *AuditEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New()
	}
	return nil
}
