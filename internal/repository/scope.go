package repository

import (
	"backend/internal/model"

	"gorm.io/gorm"
)

// ReadOption tweaks visibility for a single read.
type ReadOption func(*readConfig)

type readConfig struct {
	includeDeleted bool
}

// IncludeDeleted opts one read into seeing soft-deleted rows (audit views).
func IncludeDeleted() ReadOption {
	return func(c *readConfig) {
		c.includeDeleted = true
	}
}

func applyReadOptions(opts []ReadOption) readConfig {
	var cfg readConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func isSoftDeletable(entity any) bool {
	_, ok := entity.(model.SoftDeletable)
	return ok
}

// visible is the soft-delete filter: every repository read passes through it.
// For entities embedding model.SoftDelete it appends `deleted_at IS NULL`
// unless the caller opted in via IncludeDeleted. For everything else it is a
// no-op. Writes never go through here — a row must stay reachable so it can
// be stamped deleted.
func visible(db *gorm.DB, entity any, cfg readConfig) *gorm.DB {
	if cfg.includeDeleted {
		return db
	}
	if _, ok := entity.(model.SoftDeletable); !ok {
		return db
	}
	return db.Where("deleted_at IS NULL")
}
