package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/projection"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateGuestRequest struct {
	Name       string  `json:"name" binding:"required"`
	Contact    string  `json:"contact"`
	RSVPStatus string  `json:"rsvp_status"`
	Message    *string `json:"message"`
}

type UpdateGuestRequest struct {
	Name       *string `json:"name"`
	Contact    *string `json:"contact"`
	RSVPStatus *string `json:"rsvp_status"`
	Message    *string `json:"message"`
}

type GuestResponse struct {
	ID         uuid.UUID `json:"id"`
	WeddingID  uuid.UUID `json:"wedding_id"`
	Name       string    `json:"name"`
	Contact    string    `json:"contact"`
	RSVPStatus string    `json:"rsvp_status"`
	Message    *string   `json:"message"`
	Deleted    bool      `json:"deleted"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

var guestProjector = projection.New[model.Guest, GuestResponse]().
	Transform("Deleted", func(g *model.Guest) any {
		return g.IsDeleted()
	})

func validRSVP(status string) bool {
	switch status {
	case model.RSVPYes, model.RSVPNo, model.RSVPMaybe:
		return true
	}
	return false
}

// RSVPBroadcaster pushes guest-list changes to connected wedding dashboards.
type RSVPBroadcaster interface {
	BroadcastRSVP(weddingID uuid.UUID, event string, guest GuestResponse)
}

// --- Interface ---

type GuestService interface {
	Create(ctx context.Context, principal *model.User, weddingID uuid.UUID, req CreateGuestRequest) (*GuestResponse, error)
	Get(ctx context.Context, principal *model.User, id uuid.UUID, includeDeleted bool) (*GuestResponse, error)
	ListByWedding(ctx context.Context, principal *model.User, weddingID uuid.UUID, offset, limit int, includeDeleted bool) (projection.Page[GuestResponse], error)
	RSVPSummary(ctx context.Context, principal *model.User, weddingID uuid.UUID) (map[string]int64, error)
	Update(ctx context.Context, principal *model.User, id uuid.UUID, req UpdateGuestRequest) (*GuestResponse, error)
	Delete(ctx context.Context, principal *model.User, id uuid.UUID) error
}

type guestService struct {
	guests   repository.GuestRepository
	weddings repository.WeddingRepository
	tx       repository.TransactionManager
	events   RSVPBroadcaster
}

func NewGuestService(guests repository.GuestRepository, weddings repository.WeddingRepository, tx repository.TransactionManager, events RSVPBroadcaster) GuestService {
	return &guestService{guests: guests, weddings: weddings, tx: tx, events: events}
}

// --- Implementation ---

// guardWedding resolves the owning wedding and checks the principal may touch
// its guest list.
func (s *guestService) guardWedding(ctx context.Context, principal *model.User, weddingID uuid.UUID) (*model.Wedding, error) {
	wedding, err := s.weddings.Get(ctx, weddingID)
	if err != nil {
		return nil, err
	}
	if wedding.UserID != principal.ID && !canManageAll(principal) {
		return nil, apperr.ErrForbidden
	}
	return wedding, nil
}

func (s *guestService) notify(event string, guest GuestResponse) {
	if s.events != nil {
		s.events.BroadcastRSVP(guest.WeddingID, event, guest)
	}
}

func (s *guestService) Create(ctx context.Context, principal *model.User, weddingID uuid.UUID, req CreateGuestRequest) (*GuestResponse, error) {
	status := req.RSVPStatus
	if status == "" {
		status = model.RSVPMaybe
	}
	if !validRSVP(status) {
		return nil, fmt.Errorf("%w: invalid rsvp_status %q", apperr.ErrValidation, status)
	}

	guest := &model.Guest{
		WeddingID:  weddingID,
		Name:       req.Name,
		Contact:    req.Contact,
		RSVPStatus: status,
		Message:    req.Message,
	}
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.guardWedding(txCtx, principal, weddingID); err != nil {
			return err
		}
		return s.guests.Create(txCtx, guest)
	})
	if err != nil {
		return nil, err
	}

	res := guestProjector.One(guest)
	s.notify("guest.created", res)
	return &res, nil
}

func (s *guestService) Get(ctx context.Context, principal *model.User, id uuid.UUID, includeDeleted bool) (*GuestResponse, error) {
	var opts []repository.ReadOption
	if includeDeleted {
		if err := Decide(principal, CapWeddingsAudit); err != nil {
			return nil, err
		}
		opts = append(opts, repository.IncludeDeleted())
	}
	guest, err := s.guests.Get(ctx, id, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := s.guardWedding(ctx, principal, guest.WeddingID); err != nil {
		return nil, err
	}
	res := guestProjector.One(guest)
	return &res, nil
}

func (s *guestService) ListByWedding(ctx context.Context, principal *model.User, weddingID uuid.UUID, offset, limit int, includeDeleted bool) (projection.Page[GuestResponse], error) {
	var opts []repository.ReadOption
	if includeDeleted {
		if err := Decide(principal, CapWeddingsAudit); err != nil {
			return projection.Page[GuestResponse]{}, err
		}
		opts = append(opts, repository.IncludeDeleted())
	}
	if _, err := s.guardWedding(ctx, principal, weddingID); err != nil {
		return projection.Page[GuestResponse]{}, err
	}
	guests, total, err := s.guests.ListByWedding(ctx, weddingID, offset, limit, opts...)
	if err != nil {
		return projection.Page[GuestResponse]{}, err
	}
	return guestProjector.PageOf(guests, offset, limit, &total), nil
}

func (s *guestService) RSVPSummary(ctx context.Context, principal *model.User, weddingID uuid.UUID) (map[string]int64, error) {
	if _, err := s.guardWedding(ctx, principal, weddingID); err != nil {
		return nil, err
	}
	return s.guests.CountByRSVP(ctx, weddingID)
}

func (s *guestService) Update(ctx context.Context, principal *model.User, id uuid.UUID, req UpdateGuestRequest) (*GuestResponse, error) {
	if req.RSVPStatus != nil && !validRSVP(*req.RSVPStatus) {
		return nil, fmt.Errorf("%w: invalid rsvp_status %q", apperr.ErrValidation, *req.RSVPStatus)
	}

	var updated *model.Guest
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		guest, err := s.guests.Get(txCtx, id)
		if err != nil {
			return err
		}
		if _, err := s.guardWedding(txCtx, principal, guest.WeddingID); err != nil {
			return err
		}

		changes := map[string]any{}
		if req.Name != nil {
			changes["name"] = *req.Name
		}
		if req.Contact != nil {
			changes["contact"] = *req.Contact
		}
		if req.RSVPStatus != nil {
			changes["rsvp_status"] = *req.RSVPStatus
		}
		if req.Message != nil {
			changes["message"] = *req.Message
		}

		if err := s.guests.Update(txCtx, guest, changes); err != nil {
			return err
		}
		updated = guest
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := guestProjector.One(updated)
	s.notify("guest.updated", res)
	return &res, nil
}

func (s *guestService) Delete(ctx context.Context, principal *model.User, id uuid.UUID) error {
	var removed *model.Guest
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		guest, err := s.guests.Get(txCtx, id, repository.IncludeDeleted())
		if err != nil {
			return err
		}
		if _, err := s.guardWedding(txCtx, principal, guest.WeddingID); err != nil {
			return err
		}
		removed = guest
		return s.guests.Remove(txCtx, id)
	})
	if err != nil {
		return err
	}
	s.notify("guest.removed", guestProjector.One(removed))
	return nil
}
