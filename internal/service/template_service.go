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
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateTemplateRequest struct {
	Name        string          `json:"name" binding:"required"`
	ThemeConfig json.RawMessage `json:"theme_config"`
	PreviewURL  *string         `json:"preview_url"`
	Price       string          `json:"price"`
}

type UpdateTemplateRequest struct {
	Name        *string         `json:"name"`
	ThemeConfig json.RawMessage `json:"theme_config"`
	PreviewURL  *string         `json:"preview_url"`
	Price       *string         `json:"price"`
}

type TemplateResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	ThemeConfig json.RawMessage `json:"theme_config"`
	PreviewURL  *string         `json:"preview_url"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
}

var templateProjector = projection.New[model.Template, TemplateResponse]()

// --- Interface ---

type TemplateService interface {
	Create(ctx context.Context, req CreateTemplateRequest) (*TemplateResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*TemplateResponse, error)
	List(ctx context.Context, offset, limit int) (projection.Page[TemplateResponse], error)
	Update(ctx context.Context, id uuid.UUID, req UpdateTemplateRequest) (*TemplateResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type templateService struct {
	templates *repository.TemplateRepository
	tx        repository.TransactionManager
}

func NewTemplateService(templates *repository.TemplateRepository, tx repository.TransactionManager) TemplateService {
	return &templateService{templates: templates, tx: tx}
}

// --- Implementation ---

func parsePrice(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	price, err := decimal.NewFromString(raw)
	if err != nil || price.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: invalid price %q", apperr.ErrValidation, raw)
	}
	return price, nil
}

func (s *templateService) Create(ctx context.Context, req CreateTemplateRequest) (*TemplateResponse, error) {
	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}
	template := &model.Template{
		Name:        req.Name,
		ThemeConfig: req.ThemeConfig,
		PreviewURL:  req.PreviewURL,
		Price:       price,
	}
	if err := s.templates.Create(ctx, template); err != nil {
		return nil, err
	}
	res := templateProjector.One(template)
	return &res, nil
}

func (s *templateService) Get(ctx context.Context, id uuid.UUID) (*TemplateResponse, error) {
	template, err := s.templates.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res := templateProjector.One(template)
	return &res, nil
}

func (s *templateService) List(ctx context.Context, offset, limit int) (projection.Page[TemplateResponse], error) {
	templates, err := s.templates.List(ctx, offset, limit)
	if err != nil {
		return projection.Page[TemplateResponse]{}, err
	}
	total, err := s.templates.Count(ctx)
	if err != nil {
		return projection.Page[TemplateResponse]{}, err
	}
	return templateProjector.PageOf(templates, offset, limit, &total), nil
}

func (s *templateService) Update(ctx context.Context, id uuid.UUID, req UpdateTemplateRequest) (*TemplateResponse, error) {
	var updated *model.Template
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		template, err := s.templates.Get(txCtx, id)
		if err != nil {
			return err
		}
		changes := map[string]any{}
		if req.Name != nil {
			changes["name"] = *req.Name
		}
		if req.ThemeConfig != nil {
			changes["theme_config"] = req.ThemeConfig
		}
		if req.PreviewURL != nil {
			changes["preview_url"] = *req.PreviewURL
		}
		if req.Price != nil {
			price, err := parsePrice(*req.Price)
			if err != nil {
				return err
			}
			changes["price"] = price
		}
		if err := s.templates.Update(txCtx, template, changes); err != nil {
			return err
		}
		updated = template
		return nil
	})
	if err != nil {
		return nil, err
	}
	res := templateProjector.One(updated)
	return &res, nil
}

func (s *templateService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.templates.Remove(ctx, id)
}
