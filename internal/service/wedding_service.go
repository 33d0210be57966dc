package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/projection"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateWeddingRequest struct {
	TemplateID   *string         `json:"template_id"`
	Slug         *string         `json:"slug"`
	CustomDomain *string         `json:"custom_domain"`
	ConfigData   json.RawMessage `json:"config_data"`
}

type UpdateWeddingRequest struct {
	Status       *string         `json:"status"`
	TemplateID   *string         `json:"template_id"`
	Slug         *string         `json:"slug"`
	CustomDomain *string         `json:"custom_domain"`
	ConfigData   json.RawMessage `json:"config_data"`
}

type WeddingResponse struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	TemplateID   *uuid.UUID      `json:"template_id"`
	PaymentID    *uuid.UUID      `json:"payment_id"`
	Status       string          `json:"status"`
	Slug         *string         `json:"slug"`
	CustomDomain *string         `json:"custom_domain"`
	ConfigData   json.RawMessage `json:"config_data"`
	Deleted      bool            `json:"deleted"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Deleted is computed from the soft-delete stamp so audit listings can tell
// live rows from stamped ones.
var weddingProjector = projection.New[model.Wedding, WeddingResponse]().
	Transform("Deleted", func(w *model.Wedding) any {
		return w.IsDeleted()
	})

func validWeddingStatus(status string) bool {
	switch status {
	case model.WeddingStatusDraft, model.WeddingStatusPublished, model.WeddingStatusArchived:
		return true
	}
	return false
}

// --- Interface ---

type WeddingService interface {
	Create(ctx context.Context, principal *model.User, req CreateWeddingRequest) (*WeddingResponse, error)
	Get(ctx context.Context, principal *model.User, id uuid.UUID, includeDeleted bool) (*WeddingResponse, error)
	GetBySlug(ctx context.Context, slug string) (*WeddingResponse, error)
	List(ctx context.Context, principal *model.User, offset, limit int, includeDeleted bool) (projection.Page[WeddingResponse], error)
	Update(ctx context.Context, principal *model.User, id uuid.UUID, req UpdateWeddingRequest) (*WeddingResponse, error)
	Delete(ctx context.Context, principal *model.User, id uuid.UUID) error
}

type weddingService struct {
	weddings  repository.WeddingRepository
	templates *repository.TemplateRepository
	tx        repository.TransactionManager
}

func NewWeddingService(weddings repository.WeddingRepository, templates *repository.TemplateRepository, tx repository.TransactionManager) WeddingService {
	return &weddingService{weddings: weddings, templates: templates, tx: tx}
}

// --- Implementation ---

// canManageAll reports whether the principal may operate on weddings they do
// not own. Recomputed from the live role set on every call.
func canManageAll(principal *model.User) bool {
	return Decide(principal, CapWeddingsManage) == nil
}

func (s *weddingService) ownedOrManaged(principal *model.User, wedding *model.Wedding) error {
	if wedding.UserID == principal.ID {
		return nil
	}
	if canManageAll(principal) {
		return nil
	}
	return apperr.ErrForbidden
}

func (s *weddingService) resolveTemplate(ctx context.Context, raw *string) (*uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	templateID, err := uuid.Parse(*raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid template id", apperr.ErrValidation)
	}
	if _, err := s.templates.Get(ctx, templateID); err != nil {
		return nil, err
	}
	return &templateID, nil
}

func (s *weddingService) Create(ctx context.Context, principal *model.User, req CreateWeddingRequest) (*WeddingResponse, error) {
	wedding := &model.Wedding{
		UserID:       principal.ID,
		Status:       model.WeddingStatusDraft,
		Slug:         req.Slug,
		CustomDomain: req.CustomDomain,
		ConfigData:   req.ConfigData,
	}
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		templateID, err := s.resolveTemplate(txCtx, req.TemplateID)
		if err != nil {
			return err
		}
		wedding.TemplateID = templateID
		return s.weddings.Create(txCtx, wedding)
	})
	if err != nil {
		return nil, err
	}
	res := weddingProjector.One(wedding)
	return &res, nil
}

func (s *weddingService) Get(ctx context.Context, principal *model.User, id uuid.UUID, includeDeleted bool) (*WeddingResponse, error) {
	var opts []repository.ReadOption
	if includeDeleted {
		if err := Decide(principal, CapWeddingsAudit); err != nil {
			return nil, err
		}
		opts = append(opts, repository.IncludeDeleted())
	}
	wedding, err := s.weddings.Get(ctx, id, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.ownedOrManaged(principal, wedding); err != nil {
		return nil, err
	}
	res := weddingProjector.One(wedding)
	return &res, nil
}

// GetBySlug is the public wedding-site read: no principal, published sites
// only. Draft, archived, and soft-deleted weddings all read as missing.
func (s *weddingService) GetBySlug(ctx context.Context, slug string) (*WeddingResponse, error) {
	wedding, err := s.weddings.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if wedding.Status != model.WeddingStatusPublished {
		return nil, apperr.ErrNotFound
	}
	res := weddingProjector.One(wedding)
	return &res, nil
}

// List returns the principal's own weddings; holders of weddings.manage see
// every wedding, and weddings.audit unlocks soft-deleted rows.
func (s *weddingService) List(ctx context.Context, principal *model.User, offset, limit int, includeDeleted bool) (projection.Page[WeddingResponse], error) {
	var opts []repository.ReadOption
	if includeDeleted {
		if err := Decide(principal, CapWeddingsAudit); err != nil {
			return projection.Page[WeddingResponse]{}, err
		}
		opts = append(opts, repository.IncludeDeleted())
	}

	if canManageAll(principal) {
		weddings, err := s.weddings.List(ctx, offset, limit, opts...)
		if err != nil {
			return projection.Page[WeddingResponse]{}, err
		}
		total, err := s.weddings.Count(ctx, opts...)
		if err != nil {
			return projection.Page[WeddingResponse]{}, err
		}
		return weddingProjector.PageOf(weddings, offset, limit, &total), nil
	}

	weddings, total, err := s.weddings.ListByOwner(ctx, principal.ID, offset, limit, opts...)
	if err != nil {
		return projection.Page[WeddingResponse]{}, err
	}
	return weddingProjector.PageOf(weddings, offset, limit, &total), nil
}

func (s *weddingService) Update(ctx context.Context, principal *model.User, id uuid.UUID, req UpdateWeddingRequest) (*WeddingResponse, error) {
	if req.Status != nil && !validWeddingStatus(*req.Status) {
		return nil, fmt.Errorf("%w: invalid status %q", apperr.ErrValidation, *req.Status)
	}

	var updated *model.Wedding
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		wedding, err := s.weddings.Get(txCtx, id)
		if err != nil {
			return err
		}
		if err := s.ownedOrManaged(principal, wedding); err != nil {
			return err
		}

		changes := map[string]any{}
		if req.Status != nil {
			changes["status"] = *req.Status
		}
		if req.Slug != nil {
			changes["slug"] = *req.Slug
		}
		if req.CustomDomain != nil {
			changes["custom_domain"] = *req.CustomDomain
		}
		if req.ConfigData != nil {
			changes["config_data"] = req.ConfigData
		}
		if req.TemplateID != nil {
			templateID, err := s.resolveTemplate(txCtx, req.TemplateID)
			if err != nil {
				return err
			}
			changes["template_id"] = templateID
		}

		if err := s.weddings.Update(txCtx, wedding, changes); err != nil {
			return err
		}
		updated = wedding
		return nil
	})
	if err != nil {
		return nil, err
	}
	res := weddingProjector.One(updated)
	return &res, nil
}

// Delete soft-deletes: the row is stamped, kept for audits, and disappears
// from default reads. Re-deleting is a no-op.
func (s *weddingService) Delete(ctx context.Context, principal *model.User, id uuid.UUID) error {
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		wedding, err := s.weddings.Get(txCtx, id, repository.IncludeDeleted())
		if err != nil {
			return err
		}
		if err := s.ownedOrManaged(principal, wedding); err != nil {
			return err
		}
		return s.weddings.Remove(txCtx, id)
	})
}
