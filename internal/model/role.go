package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Built-in role names seeded at bootstrap. RoleSuperuser is protected: the
// system must always keep at least one holder.
const (
	RoleSuperuser = "superuser"
	RoleCustomer  = "customer"
	RoleEmployee  = "employee"
)

// Role represents a named capability tag attached to users via user_roles.
type Role struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string       `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Description  string       `gorm:"type:text" json:"description"`
	Capabilities []Capability `gorm:"many2many:role_capabilities;" json:"capabilities"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Capability represents a single permission that can be granted through roles
type Capability struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code  string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"code"` // e.g. "weddings.write"
	Name  string    `gorm:"type:varchar(255);not null" json:"name"`
	Group string    `gorm:"type:varchar(50);not null;index" json:"group"` // "weddings", "users", "admin"...
}

func (c *Capability) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// UserRole is the explicit user ↔ role link row. Composite key, no identity of
// its own; created and destroyed only by role assignment and removal.
type UserRole struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	RoleID uuid.UUID `gorm:"type:uuid;primaryKey" json:"role_id"`
}

func (UserRole) TableName() string {
	return "user_roles"
}
