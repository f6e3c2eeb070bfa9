package models

import (
	"time"

	"ginkit/internal/uuid"

	"gorm.io/gorm"
)

// LogRecord is a structured log line persisted by the database log core.
type LogRecord struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	Level     string    `gorm:"size:16;not null;index" json:"level"`
	Logger    string    `gorm:"size:128;index" json:"logger"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Caller    string    `gorm:"size:256" json:"caller,omitempty"`
	Fields    string    `gorm:"type:text" json:"fields,omitempty"`
	Stack     string    `gorm:"type:text" json:"stack,omitempty"`
}

// BeforeCreate assigns the record ID.
func (r *LogRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New()
	}
	return nil
}
