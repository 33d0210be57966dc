package model

import "time"

// SoftDelete marks an entity as logically removable. Rows carrying a non-null
// DeletedAt still exist physically (audits, referential integrity) but are
// hidden from default reads by the repository's visibility scope.
//
// Deliberately not gorm.DeletedAt: visibility filtering must be an explicit
// step on the read path, chosen by the repository, not an ORM callback.
type SoftDelete struct {
	DeletedAt *time.Time `gorm:"index" json:"-"`
}

func (SoftDelete) softDeletable() {}

// SoftDeletable is satisfied only by embedding SoftDelete.
type SoftDeletable interface {
	softDeletable()
}

// IsDeleted reports whether the record has been soft-deleted.
func (s SoftDelete) IsDeleted() bool {
	return s.DeletedAt != nil
}
