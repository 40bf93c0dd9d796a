package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is the durable in-app exposure notice. It carries the vague
// elapsed phrase, never the encounter date, and nothing identifying the
// reporter. ReadAt is set once by the recipient and never cleared.
type Notification struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RecipientRef string     `gorm:"size:100;not null;index"`
	ConditionID  string     `gorm:"size:50;not null;index"`
	VagueElapsed string     `gorm:"size:100;not null"`
	DeliveredAt  time.Time  `gorm:"autoCreateTime"`
	ReadAt       *time.Time `gorm:"index"`
}
