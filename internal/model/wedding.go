package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Wedding statuses
const (
	WeddingStatusDraft     = "draft"
	WeddingStatusPublished = "published"
	WeddingStatusArchived  = "archived"
)

// Wedding is the tenant root: one site per wedding, owned by a user.
// Soft-deletable so cancelled weddings stay around for audits and billing.
type Wedding struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User         User            `gorm:"foreignKey:UserID" json:"-"`
	TemplateID   *uuid.UUID      `gorm:"type:uuid" json:"template_id"`
	Template     *Template       `gorm:"foreignKey:TemplateID" json:"-"`
	PaymentID    *uuid.UUID      `gorm:"type:uuid" json:"payment_id"`
	Status       string          `gorm:"type:varchar(30);not null;default:draft" json:"status"`
	Slug         *string         `gorm:"type:varchar(150);uniqueIndex" json:"slug"`
	CustomDomain *string         `gorm:"type:varchar(255)" json:"custom_domain"`
	ConfigData   json.RawMessage `gorm:"type:jsonb" json:"config_data"`
	Guests       []Guest         `gorm:"foreignKey:WeddingID" json:"-"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	SoftDelete
}

func (w *Wedding) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
