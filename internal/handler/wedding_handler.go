package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type WeddingHandler struct {
	weddingService service.WeddingService
	guestService   service.GuestService
	auth           gin.HandlerFunc
}

func NewWeddingHandler(weddingService service.WeddingService, guestService service.GuestService, auth gin.HandlerFunc) *WeddingHandler {
	return &WeddingHandler{weddingService: weddingService, guestService: guestService, auth: auth}
}

// RegisterRoutes binds wedding and nested guest endpoints. Ownership checks
// live in the services; no per-route capability gate is needed here.
func (h *WeddingHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Public wedding site, addressed by slug. No auth.
	router.GET("/public/weddings/:slug", h.GetPublicWedding)

	weddings := router.Group("/weddings", h.auth)
	{
		weddings.POST("", h.CreateWedding)
		weddings.GET("", h.ListWeddings)
		weddings.GET("/:id", h.GetWedding)
		weddings.PATCH("/:id", h.UpdateWedding)
		weddings.DELETE("/:id", h.DeleteWedding)

		weddings.POST("/:id/guests", h.CreateGuest)
		weddings.GET("/:id/guests", h.ListGuests)
		weddings.GET("/:id/guests/summary", h.RSVPSummary)
	}
}

// GetPublicWedding serves a published wedding site by slug
// @Summary      Public wedding site
// @Tags         weddings
// @Produce      json
// @Param        slug  path      string  true  "Wedding slug"
// @Success      200   {object}  response.Response{data=service.WeddingResponse}
// @Failure      404   {object}  response.Response
// @Router       /public/weddings/{slug} [get]
func (h *WeddingHandler) GetPublicWedding(c *gin.Context) {
	wedding, err := h.weddingService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, wedding))
}

// CreateWedding creates a draft wedding owned by the caller
// @Summary      Create wedding
// @Tags         weddings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateWeddingRequest  true  "Wedding Payload"
// @Success      201      {object}  response.Response{data=service.WeddingResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /weddings [post]
func (h *WeddingHandler) CreateWedding(c *gin.Context) {
	var req service.CreateWeddingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	wedding, err := h.weddingService.Create(c.Request.Context(), middleware.Principal(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, wedding))
}

// ListWeddings pages the caller's weddings (or all, for managers)
// @Summary      List weddings
// @Tags         weddings
// @Produce      json
// @Security     BearerAuth
// @Param        page             query     int   false  "Page number"
// @Param        limit            query     int   false  "Page size"
// @Param        include_deleted  query     bool  false  "Include soft-deleted rows (audit capability required)"
// @Success      200              {object}  response.Response
// @Router       /weddings [get]
func (h *WeddingHandler) ListWeddings(c *gin.Context) {
	params := pagination.Parse(c)
	page, err := h.weddingService.List(c.Request.Context(), middleware.Principal(c),
		params.Offset, params.Limit, pagination.IncludeDeleted(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, page))
}

// GetWedding returns one wedding
// @Summary      Get wedding
// @Tags         weddings
// @Produce      json
// @Security     BearerAuth
// @Param        id               path      string  true   "Wedding ID"
// @Param        include_deleted  query     bool    false  "See soft-deleted row (audit capability required)"
// @Success      200              {object}  response.Response{data=service.WeddingResponse}
// @Failure      404              {object}  response.Response
// @Router       /weddings/{id} [get]
func (h *WeddingHandler) GetWedding(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid wedding id"))
		return
	}
	wedding, err := h.weddingService.Get(c.Request.Context(), middleware.Principal(c), id, pagination.IncludeDeleted(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, wedding))
}

// UpdateWedding applies a partial update
// @Summary      Update wedding
// @Tags         weddings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Wedding ID"
// @Param        payload  body      service.UpdateWeddingRequest  true  "Partial Update"
// @Success      200      {object}  response.Response{data=service.WeddingResponse}
// @Failure      404      {object}  response.Response
// @Router       /weddings/{id} [patch]
func (h *WeddingHandler) UpdateWedding(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid wedding id"))
		return
	}
	var req service.UpdateWeddingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	wedding, err := h.weddingService.Update(c.Request.Context(), middleware.Principal(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, wedding))
}

// DeleteWedding soft-deletes a wedding
// @Summary      Delete wedding
// @Tags         weddings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Wedding ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /weddings/{id} [delete]
func (h *WeddingHandler) DeleteWedding(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid wedding id"))
		return
	}
	if err := h.weddingService.Delete(c.Request.Context(), middleware.Principal(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Message(http.StatusOK, "Wedding deleted"))
}

// CreateGuest adds a guest to the wedding
// @Summary      Add guest
// @Tags         guests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Wedding ID"
// @Param        payload  body      service.CreateGuestRequest  true  "Guest Payload"
// @Success      201      {object}  response.Response{data=service.GuestResponse}
// @Failure      404      {object}  response.Response
// @Router       /weddings/{id}/guests [post]
func (h *WeddingHandler) CreateGuest(c *gin.Context) {
	weddingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid wedding id"))
		return
	}
	var req service.CreateGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	guest, err := h.guestService.Create(c.Request.Context(), middleware.Principal(c), weddingID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, guest))
}

// ListGuests pages the wedding's guest list
// @Summary      List guests
// @Tags         guests
// @Produce      json
// @Security     BearerAuth
// @Param        id               path      string  true   "Wedding ID"
// @Param        page             query     int     false  "Page number"
// @Param        limit            query     int     false  "Page size"
// @Param        include_deleted  query     bool    false  "Include soft-deleted rows (audit capability required)"
// @Success      200              {object}  response.Response
// @Router       /weddings/{id}/guests [get]
func (h *WeddingHandler) ListGuests(c *gin.Context) {
	weddingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid wedding id"))
		return
	}
	params := pagination.Parse(c)
	page, err := h.guestService.ListByWedding(c.Request.Context(), middleware.Principal(c),
		weddingID, params.Offset, params.Limit, pagination.IncludeDeleted(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, page))
}

// RSVPSummary tallies guests per rsvp status
// @Summary      RSVP summary
// @Tags         guests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Wedding ID"
// @Success      200  {object}  response.Response
// @Router       /weddings/{id}/guests/summary [get]
func (h *WeddingHandler) RSVPSummary(c *gin.Context) {
	weddingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid wedding id"))
		return
	}
	summary, err := h.guestService.RSVPSummary(c.Request.Context(), middleware.Principal(c), weddingID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
