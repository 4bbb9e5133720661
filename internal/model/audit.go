package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditEntry tracks Who, What, and When for every committed action.
// Action is a human-readable description; Details optionally carries the
// structured payload. Append-only: entries are never updated or deleted.
type AuditEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Username  string    `gorm:"type:varchar(100);not null" json:"username"`
	Action    string    `gorm:"type:text;not null" json:"action"`
	Details   string    `gorm:"type:jsonb" json:"details,omitempty"` // optional serialized context
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (e *AuditEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}
