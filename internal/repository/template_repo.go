package repository

import (
	"backend/internal/model"

	"gorm.io/gorm"
)

// TemplateRepository is the generic base as-is; templates need no extra
// queries beyond uniform CRUD.
type TemplateRepository = Repo[model.Template]

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return NewRepo[model.Template](db)
}
