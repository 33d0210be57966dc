package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Guest RSVP statuses
const (
	RSVPYes   = "yes"
	RSVPNo    = "no"
	RSVPMaybe = "maybe"
)

// Guest is a wedding invitee. Soft-deletable: removed guests disappear from
// the guest list but keep their RSVP history.
type Guest struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WeddingID  uuid.UUID `gorm:"type:uuid;not null;index" json:"wedding_id"`
	Wedding    Wedding   `gorm:"foreignKey:WeddingID" json:"-"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Contact    string    `gorm:"type:varchar(255)" json:"contact"`
	RSVPStatus string    `gorm:"type:varchar(20);not null;default:maybe" json:"rsvp_status"`
	Message    *string   `gorm:"type:text" json:"message"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	SoftDelete
}

func (g *Guest) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
