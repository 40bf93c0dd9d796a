package models

import (
	"time"

	"github.com/google/uuid"
)

// Contact is an address-book entry owned by a reporting user. UserRef is set
// when the contact is a platform user; Phone when the owner recorded a
// number. Either, both, or neither may be present.
type Contact struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerRef    string    `gorm:"size:100;not null;index"`
	DisplayName string    `gorm:"size:200;not null"`
	UserRef     string    `gorm:"size:100;index"`
	Phone       string    `gorm:"size:32"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

type Encounter struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerRef   string    `gorm:"size:100;not null;index"`
	ContactID  uuid.UUID `gorm:"type:uuid;not null;index"`
	OccurredAt time.Time `gorm:"not null;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`

	Contact Contact `gorm:"foreignKey:ContactID;constraint:OnDelete:CASCADE"`
}
